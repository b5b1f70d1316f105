package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Фоновая синхронизация",
	Long: `Запускает синхронизацию по таймеру и после каждого локального изменения.
Остановка по Ctrl+C.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Синхронизация каждые %v, журнал: %s\n", cfg.Interval(), cfg.LogPath)
		if err := app.Run(ctx); err != nil {
			return fmt.Errorf("фоновая синхронизация остановлена: %w", err)
		}
		return nil
	},
}
