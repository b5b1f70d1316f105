package task

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (Priority) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type: "string",
		Enum: []any{
			string(PriorityLow),
			string(PriorityMedium),
			string(PriorityHigh),
		},
		Description: "Task priority",
		Examples:    []any{PriorityMedium},
	}
}

// Validate проверяет, что приоритет входит в допустимый набор.
func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPriority, string(p))
}

func (p Priority) String() string {
	return string(p)
}

// ParsePriority разбирает приоритет из пользовательского ввода, пустая строка даёт medium.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(s)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}
