package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"gophtasks/cmd/client/cmd/output"
	"gophtasks/cmd/client/cmd/types"
	"gophtasks/internal/app/client"
	syncer "gophtasks/internal/domain/sync"
)

const maxShownFailures = 3

var (
	syncStatus bool
	pullFull   bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизация с сервером",
	Long: `Отправляет локальные изменения на сервер и загружает изменения с сервера.

Задачи, которые сервер отклонил, получают статус sync_error и не блокируют
остальные. Их можно исправить и отправить повторно командой sync retry.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if syncStatus {
			return showStatus(cmd.Context(), cmd.OutOrStdout(), app)
		}
		return runSync(cmd, app)
	},
}

var PushCmd = &cobra.Command{
	Use:   "push",
	Short: "Только отправить локальные изменения",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		res, err := app.Push(cmd.Context(), progress(cmd.ErrOrStderr()))
		if err != nil {
			return fmt.Errorf("ошибка отправки: %w", err)
		}
		if output.JSON {
			return output.WriteJSON(cmd.OutOrStdout(), res)
		}
		printPush(cmd.OutOrStdout(), res)
		return nil
	},
}

var PullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Только загрузить изменения с сервера",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		stats, err := app.Pull(cmd.Context(), pullFull)
		if err != nil {
			return fmt.Errorf("ошибка загрузки: %w", err)
		}
		if output.JSON {
			return output.WriteJSON(cmd.OutOrStdout(), stats)
		}
		printPull(cmd.OutOrStdout(), stats)
		return nil
	},
}

var RetryCmd = &cobra.Command{
	Use:   "retry <id>",
	Short: "Повторно отправить одну задачу",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		id, err := types.ParseID(args[0])
		if err != nil {
			return err
		}

		err = app.Retry(cmd.Context(), id)
		switch {
		case errors.Is(err, syncer.ErrAlreadySynced):
			output.OK(cmd.OutOrStdout(), "Задача %d уже синхронизирована", id)
			return nil
		case err != nil:
			return fmt.Errorf("задача %d не отправлена: %w", id, err)
		}
		output.OK(cmd.OutOrStdout(), "Задача %d отправлена", id)
		return nil
	},
}

func runSync(cmd *cobra.Command, app *client.App) error {
	out := cmd.OutOrStdout()
	start := time.Now()

	report, err := app.Sync(cmd.Context(), progress(cmd.ErrOrStderr()))
	if err != nil {
		if report != nil && report.Push != nil && !output.JSON {
			printPush(out, report.Push)
		}
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}

	if output.JSON {
		return output.WriteJSON(out, report)
	}

	printPush(out, report.Push)
	printPull(out, report.Pull)
	fmt.Fprintf(out, "Время выполнения: %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(out, "Последняя синхронизация: %s\n", report.LastSyncedAt.Local().Format(time.DateTime))
	return nil
}

func showStatus(ctx context.Context, out io.Writer, app *client.App) error {
	st, err := app.Status(ctx)
	if err != nil {
		return fmt.Errorf("ошибка получения статуса: %w", err)
	}
	if output.JSON {
		return output.WriteJSON(out, st)
	}

	fmt.Fprintln(out, "=== Статус синхронизации ===")
	fmt.Fprintf(out, "  Новые:            %d\n", st.Pending.PendingCreation)
	fmt.Fprintf(out, "  Изменённые:       %d\n", st.Pending.PendingUpdate)
	fmt.Fprintf(out, "  Удалённые:        %d\n", st.Pending.PendingDelete)
	fmt.Fprintf(out, "  С ошибкой:        %d\n", st.Pending.SyncError)
	if st.LastSyncedAt != nil {
		fmt.Fprintf(out, "  Последняя:        %s\n", st.LastSyncedAt.Local().Format(time.DateTime))
	} else {
		fmt.Fprintln(out, "  Последняя:        никогда")
	}
	if st.Syncing {
		output.Warn(out, "Синхронизация выполняется")
	}

	for _, t := range st.Failed {
		fmt.Fprintf(out, "  %d %q: %s\n", t.ID, t.Title, t.SyncErrorDetails)
	}

	fmt.Fprint(out, "Сервер: ")
	if err := app.CheckConnection(ctx); err != nil {
		fmt.Fprintf(out, "недоступен (%v)\n", err)
	} else {
		fmt.Fprintln(out, "OK")
	}
	return nil
}

func printPush(out io.Writer, res *syncer.Result) {
	if res.Total == 0 {
		fmt.Fprintln(out, "Нет изменений для отправки")
		return
	}
	fmt.Fprintf(out, "Отправлено на сервер: %d из %d\n", res.Success, res.Total)
	for i, f := range res.Failures {
		if i == maxShownFailures {
			fmt.Fprintf(out, "  ... и еще %d ошибок\n", len(res.Failures)-maxShownFailures)
			break
		}
		output.Warn(out, "%d: %s", f.ID, f.Reason)
	}
}

func printPull(out io.Writer, stats syncer.PullStats) {
	kind := "изменения"
	if stats.Full {
		kind = "полная загрузка"
	}
	fmt.Fprintf(out, "Загружено с сервера (%s): %d, применено %d, пропущено %d\n",
		kind, stats.Fetched, stats.Applied, stats.Skipped)
}

func progress(w io.Writer) syncer.ProgressFunc {
	if output.JSON {
		return nil
	}
	return func(current, total int) {
		fmt.Fprintf(w, "\rОтправка %d/%d", current, total)
		if current == total {
			fmt.Fprintln(w)
		}
	}
}

func init() {
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "показать статус синхронизации")
	PullCmd.Flags().BoolVar(&pullFull, "full", false, "загрузить все задачи, игнорируя чекпоинт")
	SyncCmd.AddCommand(PushCmd, PullCmd, RetryCmd)
}
