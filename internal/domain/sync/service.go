package sync

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"gophtasks/internal/domain/task"
)

// Servicer — движок синхронизации локального хранилища с сервером.
// Реализация не реентерабельна: параллельные вызовы сериализует вызывающая сторона.
type Servicer interface {
	// ProcessQueue отправляет на сервер все задачи со статусом, отличным от synced.
	ProcessQueue(ctx context.Context, progress ProgressFunc) (*Result, error)
	// PushTask повторно отправляет одну задачу.
	PushTask(ctx context.Context, id int64) error
	// Pull загружает задачи с сервера: все или изменённые после since.
	Pull(ctx context.Context, since *time.Time) (PullStats, error)
	// Refresh загружает задачи от последнего чекпоинта и сдвигает его.
	Refresh(ctx context.Context, full bool) (PullStats, error)
	// Run выполняет отправку, затем загрузку.
	Run(ctx context.Context, progress ProgressFunc) (*Report, error)
	Checkpoint(ctx context.Context) (task.SyncCheckpoint, error)
}

type Service struct {
	store  task.Store
	remote Remote
	log    *slog.Logger
	policy PullPolicy
	now    func() time.Time
}

type Option func(*Service)

func WithPullPolicy(p PullPolicy) Option {
	return func(s *Service) {
		if p.Valid() {
			s.policy = p
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store task.Store, remote Remote, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		remote: remote,
		log:    log.With("component", "sync"),
		policy: PullProtectPending,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Run(ctx context.Context, progress ProgressFunc) (*Report, error) {
	start := s.now()
	s.log.Info("sync started")

	report := &Report{}

	push, err := s.ProcessQueue(ctx, progress)
	report.Push = push
	if err != nil {
		return report, fmt.Errorf("push: %w", err)
	}

	report.Pull, err = s.Refresh(ctx, false)
	if err != nil {
		return report, fmt.Errorf("pull: %w", err)
	}

	cp, err := s.Checkpoint(ctx)
	if err != nil {
		return report, err
	}
	report.LastSyncedAt = cp.LastSyncedAt

	s.log.Info("sync finished",
		"pushed", push.Success,
		"failed", len(push.Failures),
		"pulled", report.Pull.Applied,
		"skipped", report.Pull.Skipped,
		"duration", time.Since(start),
	)
	return report, nil
}

// Refresh выполняет дельта-загрузку от чекпоинта (или полную при full) и после
// успеха сдвигает чекпоинт на момент перед запросом к серверу.
func (s *Service) Refresh(ctx context.Context, full bool) (PullStats, error) {
	cp, err := s.Checkpoint(ctx)
	if err != nil {
		return PullStats{}, err
	}

	since := cp.Since()
	if full {
		since = nil
	}

	startedAt := s.now().UTC()
	stats, err := s.Pull(ctx, since)
	if err != nil {
		return stats, err
	}

	err = s.store.Update(ctx, func(tx task.Tx) error {
		return tx.SaveCheckpoint(ctx, task.SyncCheckpoint{LastSyncedAt: startedAt})
	})
	if err != nil {
		return stats, fmt.Errorf("save checkpoint: %w", err)
	}

	return stats, nil
}

func (s *Service) Checkpoint(ctx context.Context) (task.SyncCheckpoint, error) {
	var cp task.SyncCheckpoint
	err := s.store.View(ctx, func(tx task.Tx) error {
		var err error
		cp, err = tx.Checkpoint(ctx)
		return err
	})
	if err != nil {
		return cp, fmt.Errorf("read checkpoint: %w", err)
	}
	return cp, nil
}
