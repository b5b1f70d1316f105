package task

import (
	"github.com/spf13/cobra"
)

// TaskCmd - родительская команда для всех операций с задачами
var TaskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks", "t"},
	Short:   "Управление задачами",
	Long: `Создание, просмотр, изменение и удаление задач.

Все изменения сохраняются локально и отправляются на сервер при синхронизации.
Новые задачи получают временный отрицательный ID до подтверждения сервером.`,
}
