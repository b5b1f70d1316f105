package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gophtasks/internal/domain/task"
)

// Pull загружает задачи с сервера и записывает их локально как synced.
// Черновики с отрицательными ID не затрагиваются: сервер выдаёт только положительные ID.
// Задачи с неотправленными локальными изменениями пропускаются при PullProtectPending.
func (s *Service) Pull(ctx context.Context, since *time.Time) (PullStats, error) {
	stats := PullStats{Full: since == nil}

	remote, err := s.remote.Fetch(ctx, since)
	if err != nil {
		return stats, fmt.Errorf("fetch tasks: %w", err)
	}
	stats.Fetched = len(remote)

	err = s.store.Update(ctx, func(tx task.Tx) error {
		stats.Applied, stats.Skipped = 0, 0

		for _, r := range remote {
			if r.ID <= 0 {
				s.log.Warn("ignoring remote task with non-positive id", "task_id", r.ID)
				stats.Skipped++
				continue
			}

			cur, err := tx.Get(ctx, r.ID)
			switch {
			case errors.Is(err, task.ErrNotFound), errors.Is(err, task.ErrCorrupt):
			case err != nil:
				return err
			case cur.SyncStatus != task.StatusSynced && s.policy == PullProtectPending:
				s.log.Debug("keeping unsent local changes", "task_id", r.ID, "status", cur.SyncStatus.String())
				stats.Skipped++
				continue
			}

			t := &task.Task{ID: r.ID, Payload: r.Payload}
			t.MarkSynced()
			if err := tx.Put(ctx, t); err != nil {
				return err
			}
			stats.Applied++
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("apply pulled tasks: %w", err)
	}

	s.log.Debug("tasks pulled",
		"fetched", stats.Fetched,
		"applied", stats.Applied,
		"skipped", stats.Skipped,
		"full", stats.Full,
	)
	return stats, nil
}
