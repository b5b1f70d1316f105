package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"gophtasks/cmd/client/cmd/output"
	"gophtasks/cmd/client/cmd/types"
	"gophtasks/internal/domain/task"
)

var mediaType string

var AttachCmd = &cobra.Command{
	Use:   "attach <task-id> <url>",
	Short: "Прикрепить изображение или видео по ссылке",
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

		t, err := app.Tasks().AttachMedia(cmd.Context(), id, args[1], task.MediaType(mediaType))
		if err != nil {
			return fmt.Errorf("ошибка добавления вложения: %w", err)
		}
		return output.Task(cmd.OutOrStdout(), t)
	},
}

func init() {
	AttachCmd.Flags().StringVar(&mediaType, "type", string(task.MediaImage), "тип вложения: image или video")
}
