package task

import (
	"fmt"
	"strings"
)

type SyncStatus string

const (
	StatusPendingCreation SyncStatus = "pending_creation"
	StatusPendingUpdate   SyncStatus = "pending_update"
	StatusPendingDelete   SyncStatus = "pending_delete"
	StatusSyncError       SyncStatus = "sync_error"
	StatusSynced          SyncStatus = "synced"
)

// UnknownErrorReason сохраняется вместо пустого текста ошибки.
const UnknownErrorReason = "unknown error"

func (s SyncStatus) Validate() error {
	switch s {
	case StatusPendingCreation, StatusPendingUpdate, StatusPendingDelete, StatusSyncError, StatusSynced:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownStatus, string(s))
}

func (s SyncStatus) String() string {
	return string(s)
}

// Op — удалённая операция, которой отправляется задача.
type Op int

const (
	OpNone Op = iota
	OpCreate
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "none"
	}
}

// recovered выбирает статус для задачи, выходящей из sync_error, только по знаку ID.
func recovered(id int64) SyncStatus {
	if id < 0 {
		return StatusPendingCreation
	}
	return StatusPendingUpdate
}

// TouchLocal переводит задачу в новый статус после локального изменения полей.
func (t *Task) TouchLocal() error {
	switch t.SyncStatus {
	case StatusSyncError:
		t.SyncStatus = recovered(t.ID)
		t.SyncErrorDetails = ""
	case StatusPendingCreation:
	case StatusSynced, StatusPendingUpdate:
		t.SyncStatus = StatusPendingUpdate
	case StatusPendingDelete:
		return ErrTaskDeleted
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, string(t.SyncStatus))
	}
	return nil
}

// DeleteLocal применяет локальное удаление. Возвращает true, если запись нужно
// уничтожить сразу: сервер о ней не знает.
func (t *Task) DeleteLocal() (bool, error) {
	switch t.SyncStatus {
	case StatusPendingCreation:
		return true, nil
	case StatusSyncError:
		if t.ID < 0 {
			return true, nil
		}
		t.SyncStatus = StatusPendingDelete
		t.SyncErrorDetails = ""
	case StatusSynced, StatusPendingUpdate, StatusPendingDelete:
		t.SyncStatus = StatusPendingDelete
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownStatus, string(t.SyncStatus))
	}
	return false, nil
}

// PushOp выбирает удалённую операцию для текущего статуса.
// Задачи в sync_error направляются по знаку ID, как при восстановлении.
func (t *Task) PushOp() (Op, error) {
	status := t.SyncStatus
	if status == StatusSyncError {
		status = recovered(t.ID)
	}

	switch status {
	case StatusPendingCreation:
		return OpCreate, nil
	case StatusPendingUpdate:
		return OpUpdate, nil
	case StatusPendingDelete:
		return OpDelete, nil
	case StatusSynced:
		return OpNone, nil
	default:
		return OpNone, fmt.Errorf("%w: %q", ErrUnknownStatus, string(t.SyncStatus))
	}
}

// MarkSynced фиксирует подтверждение сервера.
func (t *Task) MarkSynced() {
	t.SyncStatus = StatusSynced
	t.SyncErrorDetails = ""
}

// MarkFailed переводит задачу в sync_error с причиной сбоя.
func (t *Task) MarkFailed(reason string) {
	if strings.TrimSpace(reason) == "" {
		reason = UnknownErrorReason
	}
	t.SyncStatus = StatusSyncError
	t.SyncErrorDetails = reason
}

// CheckInvariants проверяет согласованность метаданных синхронизации.
func (t *Task) CheckInvariants() error {
	if err := t.SyncStatus.Validate(); err != nil {
		return err
	}
	if (t.SyncStatus == StatusSyncError) != (t.SyncErrorDetails != "") {
		return fmt.Errorf("task %d: error details must be set only in %s", t.ID, StatusSyncError)
	}
	if t.ID < 0 && t.SyncStatus != StatusPendingCreation && t.SyncStatus != StatusSyncError {
		return fmt.Errorf("task %d: unacknowledged task cannot be %s", t.ID, t.SyncStatus)
	}
	if t.ID == 0 {
		return fmt.Errorf("task id must not be zero")
	}
	return nil
}
