package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"gophtasks/cmd/client/cmd/output"
	"gophtasks/cmd/client/cmd/types"
	"gophtasks/internal/domain/task"
)

var (
	listAll    bool
	listStatus string
	listDone   bool
	listOpen   bool
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список задач",
	Long: `Просмотр локальных задач.

Задачи, ожидающие удаления на сервере, скрыты; флаг --all показывает и их.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		filter := task.Filter{IncludeDeleted: listAll}
		if listStatus != "" {
			status := task.SyncStatus(listStatus)
			if err := status.Validate(); err != nil {
				return err
			}
			filter.Status = status
			filter.IncludeDeleted = filter.IncludeDeleted || status == task.StatusPendingDelete
		}
		switch {
		case listDone && listOpen:
			return fmt.Errorf("флаги --done и --open несовместимы")
		case listDone:
			filter.Completed = &listDone
		case listOpen:
			completed := false
			filter.Completed = &completed
		}

		tasks, err := app.Tasks().List(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("ошибка получения задач: %w", err)
		}
		return output.Tasks(cmd.OutOrStdout(), tasks)
	},
}

func init() {
	ListCmd.Flags().BoolVarP(&listAll, "all", "a", false, "показывать задачи, ожидающие удаления")
	ListCmd.Flags().StringVarP(&listStatus, "status", "s", "", "фильтр по статусу синхронизации")
	ListCmd.Flags().BoolVar(&listDone, "done", false, "только выполненные")
	ListCmd.Flags().BoolVar(&listOpen, "open", false, "только невыполненные")
}
