package task

import (
	"context"
	"time"
)

// Tx — операции над локальным хранилищем в рамках одной транзакции.
type Tx interface {
	// Get возвращает задачу по ID, ErrNotFound или ErrCorrupt для нечитаемой записи.
	Get(ctx context.Context, id int64) (*Task, error)
	List(ctx context.Context, filter Filter) ([]Task, error)
	// PendingIDs — ID всех задач со статусом, отличным от synced, в порядке вставки.
	PendingIDs(ctx context.Context) ([]int64, error)
	Counts(ctx context.Context) (PendingCounts, error)
	// MinID — наименьший ID в хранилище или 0 для пустого.
	MinID(ctx context.Context) (int64, error)
	// Put вставляет или заменяет задачу по первичному ключу.
	Put(ctx context.Context, t *Task) error
	// Delete удаляет задачу. Отсутствие записи ошибкой не считается.
	Delete(ctx context.Context, id int64) error
	Checkpoint(ctx context.Context) (SyncCheckpoint, error)
	SaveCheckpoint(ctx context.Context, cp SyncCheckpoint) error
}

// Store — локальное транзакционное хранилище задач.
// Update фиксирует изменения, только если fn вернула nil.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	// Subscribe возвращает канал, получающий сигнал после каждой зафиксированной записи.
	Subscribe() (<-chan struct{}, func())
	Close() error
}

// Repository — серверное хранилище задач.
type Repository interface {
	List(ctx context.Context, since *time.Time) ([]Remote, error)
	Get(ctx context.Context, id int64) (*Remote, error)
	Create(ctx context.Context, p Payload) (int64, error)
	Update(ctx context.Context, id int64, p Payload) error
	Delete(ctx context.Context, id int64) error
}
