package sync

import (
	"context"
	"time"

	"gophtasks/internal/domain/task"
)

// Remote — серверная сторона синхронизации.
type Remote interface {
	// Fetch возвращает все задачи или только изменённые после since.
	Fetch(ctx context.Context, since *time.Time) ([]task.Remote, error)
	// Insert создаёт задачу и возвращает выданный сервером ID.
	Insert(ctx context.Context, p task.Payload) (int64, error)
	Update(ctx context.Context, id int64, p task.Payload) error
	Delete(ctx context.Context, id int64) error
}
