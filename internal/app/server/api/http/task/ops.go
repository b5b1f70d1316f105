package task

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "tasks-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/tasks",
		Summary:     "List tasks",
		Description: "Returns all tasks, or only those changed after `since`.",
		Tags:        []string{"tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "tasks-create",
		Method:        http.MethodPost,
		Path:          "/api/v1/tasks",
		Summary:       "Create task",
		Tags:          []string{"tasks"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
		Middlewares:   h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID:   "tasks-update",
		Method:        http.MethodPatch,
		Path:          "/api/v1/tasks/{id}",
		Summary:       "Update task",
		Description:   "Partially updates a task. Omitted fields keep their values.",
		Tags:          []string{"tasks"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
		Middlewares:   h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID:   "tasks-delete",
		Method:        http.MethodDelete,
		Path:          "/api/v1/tasks/{id}",
		Summary:       "Delete task",
		Description:   "Deleting a missing task succeeds.",
		Tags:          []string{"tasks"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
		Middlewares:   h.middleware,
	}
}
