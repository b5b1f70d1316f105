package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"gophtasks/cmd/client/cmd/output"
	"gophtasks/cmd/client/cmd/types"
)

var GetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Показать задачу",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		id, err := types.ParseID(args[0])
		if err != nil {
			return err
		}

		t, err := app.Tasks().Get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("ошибка получения задачи: %w", err)
		}
		return output.Task(cmd.OutOrStdout(), t)
	},
}
