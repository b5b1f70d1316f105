package task

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gophtasks/cmd/client/cmd/output"
	"gophtasks/cmd/client/cmd/types"
)

var CommentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Комментарии к задаче",
}

var CommentAddCmd = &cobra.Command{
	Use:   "add <task-id> <text>...",
	Short: "Добавить комментарий",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		id, err := types.ParseID(args[0])
		if err != nil {
			return err
		}

		t, err := app.Tasks().AddComment(cmd.Context(), id, strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("ошибка добавления комментария: %w", err)
		}
		return output.Task(cmd.OutOrStdout(), t)
	},
}

var CommentRemoveCmd = &cobra.Command{
	Use:   "remove <task-id> <comment-id>",
	Short: "Удалить комментарий",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		id, err := types.ParseID(args[0])
		if err != nil {
			return err
		}
		commentID, err := types.ParseID(args[1])
		if err != nil {
			return err
		}

		t, err := app.Tasks().RemoveComment(cmd.Context(), id, commentID)
		if err != nil {
			return fmt.Errorf("ошибка удаления комментария: %w", err)
		}
		return output.Task(cmd.OutOrStdout(), t)
	},
}

func init() {
	CommentCmd.AddCommand(CommentAddCmd, CommentRemoveCmd)
}
