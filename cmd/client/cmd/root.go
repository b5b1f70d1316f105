// cmd/client/cmd/root.go
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"gophtasks/cmd/client/cmd/output"
	"gophtasks/internal/app/client"
	"gophtasks/internal/app/client/config"
	"gophtasks/internal/utils/logger"
)

var (
	cfgFile   string
	cfg       *config.Config
	log       *slog.Logger
	logCloser io.Closer
	app       *client.App
	debug     bool
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "gophtasks",
	Short: "GophTasks - менеджер задач с офлайн-синхронизацией",
	Long: `GophTasks — клиент списка задач, который работает без сети.

Задачи хранятся локально и отправляются на сервер, когда он доступен.
Изменения с сервера загружаются при каждой синхронизации.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	err := rootCmd.Execute()
	if cerr := closeApp(); cerr != nil {
		fmt.Fprintf(os.Stderr, "Ошибка завершения: %v\n", cerr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.LoadFile(cfgFile)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Переопределяем настройки из флагов командной строки
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}
	if debug {
		cfg.Env = logger.EnvDev
	}

	// Журнал пишется в файл, чтобы не смешиваться с выводом команд
	log, logCloser, err = logger.NewFile(cfg.Env, cfg.LogPath)
	if err != nil {
		return fmt.Errorf("ошибка настройки журнала: %w", err)
	}

	app, err = client.New(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	cmd.SetContext(client.WithApp(cmd.Context(), app))
	return nil
}

func closeApp() error {
	var errs []error
	if app != nil {
		errs = append(errs, app.Close())
	}
	if logCloser != nil {
		errs = append(errs, logCloser.Close())
	}
	return errors.Join(errs...)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл (YAML)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный журнал")
	rootCmd.PersistentFlags().BoolVar(&output.JSON, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера GophTasks (host:port)")
}
