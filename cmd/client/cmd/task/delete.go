package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"gophtasks/cmd/client/cmd/output"
	"gophtasks/cmd/client/cmd/types"
)

var DeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Удалить задачу",
	Long: `Удаление задачи.

Черновик, ещё не отправленный на сервер, удаляется сразу. Остальные задачи
скрываются и удаляются на сервере при следующей синхронизации.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		id, err := types.ParseID(args[0])
		if err != nil {
			return err
		}

		if err := app.Tasks().Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("ошибка удаления задачи: %w", err)
		}
		if output.JSON {
			return output.WriteJSON(cmd.OutOrStdout(), map[string]int64{"deleted": id})
		}
		output.OK(cmd.OutOrStdout(), "Задача %d удалена", id)
		return nil
	},
}
