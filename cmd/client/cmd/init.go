// cmd/client/cmd/init.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gophtasks/cmd/client/cmd/auth"
	"gophtasks/cmd/client/cmd/output"
	"gophtasks/cmd/client/cmd/sync"
	"gophtasks/cmd/client/cmd/task"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Проверить настройку клиента GophTasks",
	Long: `Команда init показывает, где хранятся данные клиента, и проверяет
соединение с сервером. Без сервера клиент работает в офлайн-режиме.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "=== Настройка GophTasks ===")
		fmt.Fprintf(out, "Данные:  %s\n", cfg.DataPath)
		fmt.Fprintf(out, "Журнал:  %s\n", cfg.LogPath)
		fmt.Fprintf(out, "Сервер:  %s\n", cfg.BaseURL())
		fmt.Fprintln(out)

		fmt.Fprintln(out, "Проверка соединения с сервером...")
		if err := app.CheckConnection(cmd.Context()); err != nil {
			output.Warn(out, "не удалось подключиться к серверу: %v", err)
			fmt.Fprintln(out, "Вы можете работать в офлайн-режиме, задачи будут отправлены позже.")
		} else {
			output.OK(out, "Соединение с сервером установлено")
		}

		if _, err := app.GetToken(); err != nil {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Что дальше:")
			fmt.Fprintln(out, "1. Сохраните токен доступа: gophtasks auth login")
			fmt.Fprintln(out, "2. Создайте первую задачу: gophtasks task create \"Купить молоко\"")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)

	// Добавляем команды аутентификации
	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)

	// Добавляем команды работы с задачами
	rootCmd.AddCommand(task.TaskCmd)
	task.TaskCmd.AddCommand(task.CreateCmd)
	task.TaskCmd.AddCommand(task.ListCmd)
	task.TaskCmd.AddCommand(task.GetCmd)
	task.TaskCmd.AddCommand(task.UpdateCmd)
	task.TaskCmd.AddCommand(task.CompleteCmd)
	task.TaskCmd.AddCommand(task.DeleteCmd)
	task.TaskCmd.AddCommand(task.CommentCmd)
	task.TaskCmd.AddCommand(task.AttachCmd)

	rootCmd.AddCommand(sync.SyncCmd)
}
