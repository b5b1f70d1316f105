// cmd/client/cmd/auth/login.go
package auth

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gophtasks/cmd/client/cmd/output"
	"gophtasks/cmd/client/cmd/types"
)

var (
	tokenFlag string
	skipSync  bool
)

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Сохранить токен доступа",
	Long: `Сохраняет токен доступа к серверу задач.

После сохранения выполняется синхронизация, чтобы проверить токен
и загрузить задачи с сервера.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		token := tokenFlag
		if token == "" {
			fmt.Fprint(cmd.ErrOrStderr(), "Токен: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("ошибка чтения токена: %w", err)
			}
			token = string(raw)
		}

		if err := app.SaveToken(token); err != nil {
			return err
		}
		output.OK(cmd.OutOrStdout(), "Токен сохранён")

		if skipSync {
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Синхронизация данных...")
		report, err := app.Sync(cmd.Context(), nil)
		if err != nil {
			output.Warn(cmd.OutOrStdout(), "ошибка синхронизации: %v", err)
			fmt.Fprintln(cmd.OutOrStdout(), "Вы можете продолжить работу в офлайн-режиме")
			return nil
		}
		if len(report.Push.Failures) > 0 {
			output.Warn(cmd.OutOrStdout(), "Синхронизация завершена с ошибками (%d)", len(report.Push.Failures))
			return nil
		}
		output.OK(cmd.OutOrStdout(), "Данные синхронизированы")
		return nil
	},
}

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Удалить сохранённый токен",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.ClearToken(); err != nil {
			return err
		}
		output.OK(cmd.OutOrStdout(), "Токен удалён, локальные задачи сохранены")
		return nil
	},
}

func init() {
	LoginCmd.Flags().StringVar(&tokenFlag, "token", "", "токен доступа (по умолчанию запрашивается интерактивно)")
	LoginCmd.Flags().BoolVar(&skipSync, "no-sync", false, "не синхронизировать после входа")
}
