package task

import (
	"errors"
)

var (
	ErrNotFound        = errors.New("task not found")
	ErrCorrupt         = errors.New("task record is unreadable")
	ErrInvalidTitle    = errors.New("title must not be empty")
	ErrInvalidDate     = errors.New("invalid ISO-8601 date")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidMedia    = errors.New("invalid media attachment")
	ErrTaskDeleted     = errors.New("task is pending deletion")
	ErrUnknownStatus   = errors.New("unknown sync status")
)
