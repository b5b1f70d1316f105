package task

import (
	"fmt"
	"strings"
	"time"
)

// ISOLayout — канонический формат дат, сохраняемых в задаче.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// NormalizeDate приводит дату к каноническому ISO-8601 в UTC.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FormatTime(t), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// Optional отличает «поле не передано» от любого значения, включая нулевое.
type Optional[T any] struct {
	value T
	set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

func (o Optional[T]) IsSet() bool {
	return o.set
}

// Patch — частичное изменение задачи: незаданные поля пропускаются.
// Some[*string](nil) очищает необязательное поле.
type Patch struct {
	Title       Optional[string]
	Description Optional[*string]
	DueDate     Optional[*string]
	IsCompleted Optional[bool]
	Priority    Optional[Priority]
	Comments    Optional[[]Comment]
	Media       Optional[[]Media]
}

func (p Patch) Empty() bool {
	return !p.Title.set && !p.Description.set && !p.DueDate.set &&
		!p.IsCompleted.set && !p.Priority.set && !p.Comments.set && !p.Media.set
}

// Apply сливает изменение с текущими полями. При ошибке payload не меняется.
func (p *Payload) Apply(patch Patch) error {
	next := p.Clone()

	if v, ok := patch.Title.Get(); ok {
		title := strings.TrimSpace(v)
		if title == "" {
			return ErrInvalidTitle
		}
		next.Title = title
	}
	if v, ok := patch.Description.Get(); ok {
		next.Description = v
	}
	if v, ok := patch.DueDate.Get(); ok {
		if v == nil {
			next.DueDate = nil
		} else {
			d, err := NormalizeDate(*v)
			if err != nil {
				return err
			}
			next.DueDate = &d
		}
	}
	if v, ok := patch.IsCompleted.Get(); ok {
		next.IsCompleted = v
	}
	if v, ok := patch.Priority.Get(); ok {
		if err := v.Validate(); err != nil {
			return err
		}
		next.Priority = v
	}
	if v, ok := patch.Comments.Get(); ok {
		next.Comments = v
	}
	if v, ok := patch.Media.Get(); ok {
		next.Media = v
	}

	*p = next
	return nil
}

// Validate проверяет поля задачи перед записью.
func (p *Payload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrInvalidTitle
	}
	if err := p.Priority.Validate(); err != nil {
		return err
	}
	for _, m := range p.Media {
		if m.URL == "" || (m.Type != MediaImage && m.Type != MediaVideo) {
			return fmt.Errorf("%w: %s", ErrInvalidMedia, m.ID)
		}
	}
	return nil
}
