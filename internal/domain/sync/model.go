package sync

import (
	"time"
)

// Failure — сбой отправки одной задачи.
type Failure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// Result — итог одного прохода очереди отправки.
type Result struct {
	Total    int       `json:"total"`
	Success  int       `json:"success"`
	Failures []Failure `json:"failures"`
}

func (r *Result) fail(id int64, reason string) {
	r.Failures = append(r.Failures, Failure{ID: id, Reason: reason})
}

// PullStats — итог загрузки задач с сервера.
type PullStats struct {
	Fetched int  `json:"fetched"`
	Applied int  `json:"applied"`
	Skipped int  `json:"skipped"`
	Full    bool `json:"full"`
}

// Report — итог полной синхронизации.
type Report struct {
	Push         *Result   `json:"push"`
	Pull         PullStats `json:"pull"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// ProgressFunc получает номер обрабатываемой задачи (с единицы) и размер очереди.
type ProgressFunc func(current, total int)

// PullPolicy определяет, что делать с загруженной задачей, чья локальная копия ещё не отправлена.
type PullPolicy string

const (
	// PullProtectPending пропускает такие задачи до их отправки.
	PullProtectPending PullPolicy = "protect_pending"
	// PullServerWins перезаписывает их серверной версией.
	PullServerWins PullPolicy = "server_wins"
)

func (p PullPolicy) Valid() bool {
	return p == PullProtectPending || p == PullServerWins
}
