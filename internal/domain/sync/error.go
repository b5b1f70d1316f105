package sync

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAlreadySynced = errors.New("task has nothing to push")
	ErrPushFailed    = errors.New("push failed")
)

// RemoteError — отказ сервера с HTTP-статусом. Текст ошибки — сообщение сервера
// без обёрток: он сохраняется в задаче как причина сбоя.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded with status %d", e.Status)
	}
	return e.Message
}

// Rejected сообщает, что сервер отклонил сам запрос (4xx), а не был недоступен.
func (e *RemoteError) Rejected() bool {
	return e.Status >= http.StatusBadRequest && e.Status < http.StatusInternalServerError
}
