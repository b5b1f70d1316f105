package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"gophtasks/cmd/client/cmd/output"
	"gophtasks/cmd/client/cmd/types"
)

var completeUndo bool

var CompleteCmd = &cobra.Command{
	Use:     "complete <id>",
	Aliases: []string{"done"},
	Short:   "Отметить задачу выполненной",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		id, err := types.ParseID(args[0])
		if err != nil {
			return err
		}

		t, err := app.Tasks().Complete(cmd.Context(), id, !completeUndo)
		if err != nil {
			return fmt.Errorf("ошибка изменения задачи: %w", err)
		}
		return output.Task(cmd.OutOrStdout(), t)
	},
}

func init() {
	CompleteCmd.Flags().BoolVar(&completeUndo, "undo", false, "снять отметку о выполнении")
}
