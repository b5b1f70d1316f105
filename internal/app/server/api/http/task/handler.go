package task

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"gophtasks/internal/domain/task"
)

type Handler struct {
	service    task.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service task.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "task_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	var since *time.Time
	if input.Since != "" {
		t, err := time.Parse(time.RFC3339Nano, input.Since)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("invalid since", &huma.ErrorDetail{
				Message:  "expected RFC 3339 time",
				Location: "query.since",
				Value:    input.Since,
			})
		}
		since = &t
	}

	tasks, err := h.service.List(ctx, since)
	if err != nil {
		return nil, h.mapError(err)
	}
	if tasks == nil {
		tasks = []task.Remote{}
	}

	return &listOutput{Body: listResponse{Tasks: tasks}}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*createOutput, error) {
	id, err := h.service.Create(ctx, input.Body)
	if err != nil {
		return nil, h.mapError(err)
	}
	return &createOutput{Body: task.CreateResponse{ID: id}}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*struct{}, error) {
	if err := h.service.Update(ctx, input.ID, input.Body); err != nil {
		return nil, h.mapError(err)
	}
	return nil, nil
}

func (h *Handler) delete(ctx context.Context, input *deleteInput) (*struct{}, error) {
	if err := h.service.Delete(ctx, input.ID); err != nil {
		return nil, h.mapError(err)
	}
	return nil, nil
}

func (h *Handler) mapError(err error) error {
	switch {
	case errors.Is(err, task.ErrNotFound):
		return huma.Error404NotFound("task not found")
	case errors.Is(err, task.ErrInvalidTitle),
		errors.Is(err, task.ErrInvalidDate),
		errors.Is(err, task.ErrInvalidPriority),
		errors.Is(err, task.ErrInvalidMedia):
		return huma.Error422UnprocessableEntity(err.Error())
	default:
		h.log.Error("request failed", "error", err)
		return huma.Error500InternalServerError("internal error")
	}
}
