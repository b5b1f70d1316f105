package task

import (
	"slices"
	"time"
)

// Task — синхронизируемая задача вместе с метаданными синхронизации.
// Отрицательный ID означает, что сервер ещё ни разу не подтвердил запись.
type Task struct {
	ID int64 `json:"id"`
	Payload
	SyncStatus       SyncStatus `json:"sync_status"`
	SyncErrorDetails string     `json:"sync_error_details,omitempty"`
}

// Payload — пользовательские поля задачи, передаваемые на сервер.
type Payload struct {
	Title       string    `json:"title" minLength:"1" doc:"Task title"`
	Description *string   `json:"description,omitempty" doc:"Free-form description"`
	DueDate     *string   `json:"due_date,omitempty" doc:"ISO-8601 due date"`
	IsCompleted bool      `json:"is_completed"`
	Priority    Priority  `json:"priority"`
	CreatedAt   string    `json:"created_at" doc:"ISO-8601 creation time, never changes"`
	UpdatedAt   string    `json:"updated_at,omitempty" doc:"ISO-8601 time of the last change"`
	Comments    []Comment `json:"comments,omitempty"`
	Media       []Media   `json:"media,omitempty"`
}

type Comment struct {
	ID        int64  `json:"id"`
	Content   string `json:"content" minLength:"1"`
	CreatedAt string `json:"created_at"`
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

type Media struct {
	ID        string    `json:"id"`
	URL       string    `json:"url" minLength:"1"`
	Type      MediaType `json:"type" enum:"image,video"`
	CreatedAt string    `json:"created_at"`
}

// SyncCheckpoint — единственная запись с моментом последней успешной загрузки с сервера.
type SyncCheckpoint struct {
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// Epoch — значение чекпоинта до первой синхронизации.
var Epoch = time.Unix(0, 0).UTC()

// DefaultCheckpoint возвращает чекпоинт, созданный при первом обращении.
func DefaultCheckpoint() SyncCheckpoint {
	return SyncCheckpoint{LastSyncedAt: Epoch}
}

// Since возвращает границу дельта-загрузки или nil для полной загрузки.
func (c SyncCheckpoint) Since() *time.Time {
	if !c.LastSyncedAt.After(Epoch) {
		return nil
	}
	since := c.LastSyncedAt
	return &since
}

// PendingCounts — количество записей, ожидающих отправки, по статусам.
type PendingCounts struct {
	PendingCreation int `json:"pending_creation"`
	PendingUpdate   int `json:"pending_update"`
	PendingDelete   int `json:"pending_delete"`
	SyncError       int `json:"sync_error"`
	Total           int `json:"total"`
}

// Filter ограничивает выборку локальных задач.
type Filter struct {
	// IncludeDeleted показывает задачи, ожидающие удаления на сервере.
	IncludeDeleted bool
	// Status оставляет только задачи с указанным статусом.
	Status SyncStatus
	// Completed оставляет только выполненные (true) или невыполненные (false) задачи.
	Completed *bool
}

// Match проверяет, подходит ли задача под фильтр.
func (f Filter) Match(t *Task) bool {
	if !f.IncludeDeleted && t.SyncStatus == StatusPendingDelete && f.Status != StatusPendingDelete {
		return false
	}
	if f.Status != "" && t.SyncStatus != f.Status {
		return false
	}
	if f.Completed != nil && t.IsCompleted != *f.Completed {
		return false
	}
	return true
}

// IsDraft сообщает, что сервер ещё не выдал задаче постоянный ID.
func (t *Task) IsDraft() bool {
	return t.ID < 0
}

// Clone возвращает глубокую копию задачи.
func (t *Task) Clone() *Task {
	c := *t
	c.Payload = t.Payload.Clone()
	return &c
}

func (p Payload) Clone() Payload {
	c := p
	if p.Description != nil {
		d := *p.Description
		c.Description = &d
	}
	if p.DueDate != nil {
		d := *p.DueDate
		c.DueDate = &d
	}
	c.Comments = slices.Clone(p.Comments)
	c.Media = slices.Clone(p.Media)
	return c
}

// Equal сравнивает пользовательские поля двух версий задачи.
func (p Payload) Equal(o Payload) bool {
	return p.Title == o.Title &&
		equalPtr(p.Description, o.Description) &&
		equalPtr(p.DueDate, o.DueDate) &&
		p.IsCompleted == o.IsCompleted &&
		p.Priority == o.Priority &&
		p.CreatedAt == o.CreatedAt &&
		p.UpdatedAt == o.UpdatedAt &&
		slices.Equal(p.Comments, o.Comments) &&
		slices.Equal(p.Media, o.Media)
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
