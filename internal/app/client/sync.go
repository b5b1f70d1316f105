package client

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	"gophtasks/internal/domain/sync"
	"gophtasks/internal/domain/task"
)

var ErrSyncInProgress = errors.New("синхронизация уже выполняется")

// syncGuard не даёт запустить два прохода синхронизации одновременно.
type syncGuard struct {
	mu        gosync.Mutex
	isSyncing bool
}

func (g *syncGuard) acquire() (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.isSyncing {
		return nil, ErrSyncInProgress
	}
	g.isSyncing = true

	return func() {
		g.mu.Lock()
		g.isSyncing = false
		g.mu.Unlock()
	}, nil
}

func (g *syncGuard) running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isSyncing
}

// Status — состояние синхронизации для вывода пользователю.
type Status struct {
	Pending      task.PendingCounts `json:"pending"`
	LastSyncedAt *time.Time         `json:"last_synced_at"`
	Failed       []task.Task        `json:"failed"`
	Syncing      bool               `json:"syncing"`
}

// Sync отправляет локальные изменения и загружает изменения сервера.
func (a *App) Sync(ctx context.Context, progress sync.ProgressFunc) (*sync.Report, error) {
	release, err := a.guard.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	return a.sync.Run(ctx, progress)
}

// Push только отправляет очередь изменений.
func (a *App) Push(ctx context.Context, progress sync.ProgressFunc) (*sync.Result, error) {
	release, err := a.guard.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	return a.sync.ProcessQueue(ctx, progress)
}

// Pull только загружает изменения сервера. full игнорирует чекпоинт.
func (a *App) Pull(ctx context.Context, full bool) (sync.PullStats, error) {
	release, err := a.guard.acquire()
	if err != nil {
		return sync.PullStats{}, err
	}
	defer release()

	return a.sync.Refresh(ctx, full)
}

// Retry повторно отправляет одну задачу, обычно в статусе sync_error.
func (a *App) Retry(ctx context.Context, id int64) error {
	release, err := a.guard.acquire()
	if err != nil {
		return err
	}
	defer release()

	return a.sync.PushTask(ctx, id)
}

func (a *App) Status(ctx context.Context) (*Status, error) {
	counts, err := a.tasks.PendingCounts(ctx)
	if err != nil {
		return nil, err
	}

	cp, err := a.sync.Checkpoint(ctx)
	if err != nil {
		return nil, err
	}

	failed, err := a.tasks.List(ctx, task.Filter{Status: task.StatusSyncError})
	if err != nil {
		return nil, err
	}

	return &Status{
		Pending:      counts,
		LastSyncedAt: cp.Since(),
		Failed:       failed,
		Syncing:      a.guard.running(),
	}, nil
}
