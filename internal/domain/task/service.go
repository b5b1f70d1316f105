package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

// Servicer — серверные операции над задачами.
type Servicer interface {
	List(ctx context.Context, since *time.Time) ([]Remote, error)
	Create(ctx context.Context, p Payload) (int64, error)
	Update(ctx context.Context, id int64, req UpdateRequest) error
	Delete(ctx context.Context, id int64) error
}

// Service defines the business logic of the task backend.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "task_service"),
		now:  time.Now,
	}
}

func (s *Service) List(ctx context.Context, since *time.Time) ([]Remote, error) {
	tasks, err := s.repo.List(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Service) Create(ctx context.Context, p Payload) (int64, error) {
	if err := p.normalize(s.now()); err != nil {
		s.log.Debug("validation failed", "error", err)
		return 0, err
	}

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("create task: %w", err)
	}

	s.log.Info("task created", "task_id", id)
	return id, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	payload := current.Payload
	if err := payload.Apply(req.Patch()); err != nil {
		s.log.Debug("validation failed", "task_id", id, "error", err)
		return err
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, payload); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("update task %d: %w", id, err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	s.log.Info("task deleted", "task_id", id)
	return nil
}

// normalize приводит входящие поля к каноническому виду перед вставкой.
func (p *Payload) normalize(now time.Time) error {
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	if p.CreatedAt == "" {
		p.CreatedAt = FormatTime(now)
	} else {
		created, err := NormalizeDate(p.CreatedAt)
		if err != nil {
			return err
		}
		p.CreatedAt = created
	}
	if p.DueDate != nil {
		if err := p.Apply(Patch{DueDate: Some(p.DueDate)}); err != nil {
			return err
		}
	}
	if err := p.Apply(Patch{Title: Some(p.Title)}); err != nil {
		return err
	}
	return p.Validate()
}
