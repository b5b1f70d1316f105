package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// CreateInput — поля новой задачи. Пустой Priority означает medium.
type CreateInput struct {
	Title       string
	Description *string
	DueDate     *string
	Priority    Priority
}

// LocalService выполняет пользовательские операции над локальными задачами
// и ведёт статусы синхронизации.
type LocalService struct {
	store Store
	ids   *IDAllocator
	log   *slog.Logger
	now   func() time.Time
}

// NewLocalService создаёт сервис, засевая генератор ID наименьшим ID из хранилища.
func NewLocalService(ctx context.Context, store Store, log *slog.Logger) (*LocalService, error) {
	var floor int64
	err := store.View(ctx, func(tx Tx) error {
		var err error
		floor, err = tx.MinID(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read min task id: %w", err)
	}

	return &LocalService{
		store: store,
		ids:   NewIDAllocator(floor),
		log:   log.With("component", "local_tasks"),
		now:   time.Now,
	}, nil
}

// WithClock подменяет часы сервиса и генератора ID.
func (s *LocalService) WithClock(now func() time.Time) *LocalService {
	s.now = now
	s.ids.now = now
	return s
}

func (s *LocalService) Create(ctx context.Context, in CreateInput) (*Task, error) {
	now := FormatTime(s.now())
	t := &Task{
		Payload: Payload{
			Description: in.Description,
			Priority:    in.Priority,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		SyncStatus: StatusPendingCreation,
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}

	patch := Patch{Title: Some(in.Title)}
	if in.DueDate != nil {
		patch.DueDate = Some(in.DueDate)
	}
	if err := t.Apply(patch); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	err := s.store.Update(ctx, func(tx Tx) error {
		for {
			t.ID = s.ids.Next()
			_, err := tx.Get(ctx, t.ID)
			if errors.Is(err, ErrNotFound) {
				break
			}
			if err != nil && !errors.Is(err, ErrCorrupt) {
				return err
			}
		}
		return tx.Put(ctx, t)
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.log.Debug("task created", "task_id", t.ID)
	return t, nil
}

// Update применяет частичное изменение и переводит статус по правилам локального редактирования.
func (s *LocalService) Update(ctx context.Context, id int64, patch Patch) (*Task, error) {
	return s.mutate(ctx, id, func(t *Task) error {
		return t.Apply(patch)
	})
}

func (s *LocalService) Complete(ctx context.Context, id int64, done bool) (*Task, error) {
	return s.Update(ctx, id, Patch{IsCompleted: Some(done)})
}

func (s *LocalService) AddComment(ctx context.Context, id int64, content string) (*Task, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("comment must not be empty")
	}
	return s.mutate(ctx, id, func(t *Task) error {
		t.Comments = append(t.Comments, Comment{
			ID:        s.ids.Next(),
			Content:   content,
			CreatedAt: FormatTime(s.now()),
		})
		return nil
	})
}

func (s *LocalService) RemoveComment(ctx context.Context, id, commentID int64) (*Task, error) {
	return s.mutate(ctx, id, func(t *Task) error {
		for i, c := range t.Comments {
			if c.ID == commentID {
				t.Comments = append(t.Comments[:i], t.Comments[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("comment %d not found", commentID)
	})
}

// AttachMedia прикрепляет ссылку на уже загруженный файл.
func (s *LocalService) AttachMedia(ctx context.Context, id int64, url string, kind MediaType) (*Task, error) {
	m := Media{
		ID:        uuid.NewString(),
		URL:       strings.TrimSpace(url),
		Type:      kind,
		CreatedAt: FormatTime(s.now()),
	}
	return s.mutate(ctx, id, func(t *Task) error {
		t.Media = append(t.Media, m)
		return nil
	})
}

func (s *LocalService) mutate(ctx context.Context, id int64, change func(t *Task) error) (*Task, error) {
	var out *Task
	err := s.store.Update(ctx, func(tx Tx) error {
		t, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if t.SyncStatus == StatusPendingDelete {
			return ErrTaskDeleted
		}
		if err := change(t); err != nil {
			return err
		}
		if err := t.Validate(); err != nil {
			return err
		}
		if err := t.TouchLocal(); err != nil {
			return err
		}
		t.UpdatedAt = FormatTime(s.now())
		out = t
		return tx.Put(ctx, t)
	})
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	return out, nil
}

// Delete уничтожает черновик сразу или помечает задачу для удаления на сервере.
func (s *LocalService) Delete(ctx context.Context, id int64) error {
	err := s.store.Update(ctx, func(tx Tx) error {
		t, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		destroy, err := t.DeleteLocal()
		if err != nil {
			return err
		}
		if destroy {
			return tx.Delete(ctx, id)
		}
		return tx.Put(ctx, t)
	})
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func (s *LocalService) Get(ctx context.Context, id int64) (*Task, error) {
	var t *Task
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		t, err = tx.Get(ctx, id)
		return err
	})
	return t, err
}

func (s *LocalService) List(ctx context.Context, filter Filter) ([]Task, error) {
	var tasks []Task
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		tasks, err = tx.List(ctx, filter)
		return err
	})
	return tasks, err
}

func (s *LocalService) PendingCounts(ctx context.Context) (PendingCounts, error) {
	var counts PendingCounts
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		counts, err = tx.Counts(ctx)
		return err
	})
	return counts, err
}
