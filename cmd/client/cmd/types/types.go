package types

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"gophtasks/internal/app/client"
)

var ErrNoApp = errors.New("приложение не инициализировано")

// App достаёт клиентское приложение из контекста команды.
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := client.FromContext(cmd.Context())
	if !ok {
		return nil, ErrNoApp
	}
	return app, nil
}

// ParseID разбирает ID задачи. Черновики имеют отрицательные ID.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("некорректный ID задачи: " + strconv.Quote(s))
	}
	return id, nil
}
