package auth

import (
	"github.com/spf13/cobra"
)

// AuthCmd - родительская команда для управления токеном доступа к серверу
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Управление доступом к серверу",
	Long:  `Сохранение и удаление токена доступа к серверу задач.`,
}
