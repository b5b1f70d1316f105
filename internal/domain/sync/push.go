package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gophtasks/internal/domain/task"
)

// recordError — сбой отправки одной задачи. Он превращается в статус sync_error
// и не прерывает проход очереди.
type recordError struct {
	reason string
	cause  error
}

func (e *recordError) Error() string {
	return e.reason
}

func (e *recordError) Unwrap() []error {
	return []error{ErrPushFailed, e.cause}
}

func newRecordError(cause error) *recordError {
	reason := cause.Error()
	if strings.TrimSpace(reason) == "" {
		reason = task.UnknownErrorReason
	}
	return &recordError{reason: reason, cause: cause}
}

// ProcessQueue снимает список ожидающих задач и отправляет их строго по очереди.
// Ошибка возвращается только при сбое самого прохода: хранилище недоступно или
// контекст отменён. Частичный результат при этом тоже возвращается.
func (s *Service) ProcessQueue(ctx context.Context, progress ProgressFunc) (*Result, error) {
	var ids []int64
	err := s.store.View(ctx, func(tx task.Tx) error {
		var err error
		ids, err = tx.PendingIDs(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot sync queue: %w", err)
	}

	res := &Result{Total: len(ids), Failures: []Failure{}}
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if progress != nil {
			progress(i+1, len(ids))
		}

		_, err := s.push(ctx, id)
		var rerr *recordError
		switch {
		case errors.As(err, &rerr):
			res.fail(id, rerr.reason)
		case err != nil:
			return res, err
		default:
			res.Success++
		}
	}

	if len(ids) > 0 {
		s.log.Info("sync queue processed",
			"total", res.Total,
			"success", res.Success,
			"failed", len(res.Failures),
		)
	}
	return res, nil
}

// PushTask отправляет одну задачу тем же путём, что и ProcessQueue.
// Сбой отправки возвращается как ошибка, совместимая с ErrPushFailed.
func (s *Service) PushTask(ctx context.Context, id int64) error {
	op, err := s.push(ctx, id)
	if err != nil {
		return err
	}
	if op == task.OpNone {
		return ErrAlreadySynced
	}
	return nil
}

func (s *Service) push(ctx context.Context, id int64) (task.Op, error) {
	var t *task.Task
	err := s.store.View(ctx, func(tx task.Tx) error {
		var err error
		t, err = tx.Get(ctx, id)
		return err
	})
	switch {
	case errors.Is(err, task.ErrNotFound):
		return task.OpNone, newRecordError(err)
	case errors.Is(err, task.ErrCorrupt):
		s.log.Error("skipping unreadable task", "task_id", id, "error", err)
		return task.OpNone, newRecordError(err)
	case err != nil:
		return task.OpNone, fmt.Errorf("read task %d: %w", id, err)
	}

	op, err := t.PushOp()
	if err != nil {
		s.log.Error("skipping task with unknown status", "task_id", id, "error", err)
		return task.OpNone, newRecordError(err)
	}

	var newID int64
	switch op {
	case task.OpNone:
		return op, nil
	case task.OpCreate:
		newID, err = s.remote.Insert(ctx, t.Payload)
	case task.OpUpdate:
		err = s.remote.Update(ctx, t.ID, t.Payload)
	case task.OpDelete:
		err = s.remote.Delete(ctx, t.ID)
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return op, ctxErr
		}
		return op, s.markFailed(ctx, t, err)
	}

	if err := s.acknowledge(ctx, t, op, newID); err != nil {
		s.log.Error("server accepted task but local state was not updated",
			"task_id", t.ID, "op", op.String(), "error", err)
		return op, fmt.Errorf("acknowledge task %d: %w", t.ID, err)
	}

	s.log.Debug("task pushed", "task_id", t.ID, "op", op.String(), "server_id", newID)
	return op, nil
}

// acknowledge фиксирует подтверждение сервера. Если задачу изменили локально,
// пока шёл запрос, изменения сохраняются и остаются в очереди.
func (s *Service) acknowledge(ctx context.Context, pushed *task.Task, op task.Op, newID int64) error {
	// Ответ сервера уже получен: локальная запись должна состояться и после отмены.
	ctx = context.WithoutCancel(ctx)
	return s.store.Update(ctx, func(tx task.Tx) error {
		cur, err := tx.Get(ctx, pushed.ID)
		if errors.Is(err, task.ErrNotFound) {
			if op == task.OpCreate {
				// Черновик удалён во время отправки: серверная копия тоже должна уйти.
				tombstone := &task.Task{ID: newID, Payload: pushed.Payload, SyncStatus: task.StatusPendingDelete}
				return tx.Put(ctx, tombstone)
			}
			return nil
		}
		if errors.Is(err, task.ErrCorrupt) {
			cur = pushed.Clone()
		} else if err != nil {
			return err
		}

		untouched := cur.SyncStatus == pushed.SyncStatus && cur.Payload.Equal(pushed.Payload)

		switch op {
		case task.OpCreate:
			next := cur.Clone()
			next.ID = newID
			if untouched {
				next.MarkSynced()
			} else {
				next.SyncStatus = task.StatusPendingUpdate
				next.SyncErrorDetails = ""
			}
			if err := tx.Delete(ctx, pushed.ID); err != nil {
				return err
			}
			return tx.Put(ctx, next)
		case task.OpUpdate:
			if !untouched {
				return nil
			}
			cur.MarkSynced()
			return tx.Put(ctx, cur)
		case task.OpDelete:
			return tx.Delete(ctx, pushed.ID)
		default:
			return fmt.Errorf("unexpected op %s", op)
		}
	})
}

// markFailed переводит задачу в sync_error, если она ещё есть в хранилище.
func (s *Service) markFailed(ctx context.Context, t *task.Task, cause error) error {
	rerr := newRecordError(cause)
	ctx = context.WithoutCancel(ctx)
	s.log.Warn("task push failed", "task_id", t.ID, "reason", rerr.reason)

	err := s.store.Update(ctx, func(tx task.Tx) error {
		cur, err := tx.Get(ctx, t.ID)
		if errors.Is(err, task.ErrNotFound) || errors.Is(err, task.ErrCorrupt) {
			return nil
		}
		if err != nil {
			return err
		}
		cur.MarkFailed(rerr.reason)
		return tx.Put(ctx, cur)
	})
	if err != nil {
		return fmt.Errorf("record failure of task %d: %w", t.ID, err)
	}

	return rerr
}
