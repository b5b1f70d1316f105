package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"gophtasks/internal/app/server/api/http/middleware/auth"
	"gophtasks/internal/domain/task"
)

// memRepository — минимальное хранилище задач для проверки маршрутизации.
type memRepository struct {
	tasks  map[int64]task.Remote
	nextID int64
}

func newMemRepository() *memRepository {
	return &memRepository{tasks: map[int64]task.Remote{}}
}

func (r *memRepository) List(context.Context, *time.Time) ([]task.Remote, error) {
	out := make([]task.Remote, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (r *memRepository) Get(_ context.Context, id int64) (*task.Remote, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, task.ErrNotFound
	}
	return &t, nil
}

func (r *memRepository) Create(_ context.Context, p task.Payload) (int64, error) {
	r.nextID++
	r.tasks[r.nextID] = task.Remote{ID: r.nextID, Payload: p}
	return r.nextID, nil
}

func (r *memRepository) Update(_ context.Context, id int64, p task.Payload) error {
	if _, ok := r.tasks[id]; !ok {
		return task.ErrNotFound
	}
	r.tasks[id] = task.Remote{ID: id, Payload: p}
	return nil
}

func (r *memRepository) Delete(_ context.Context, id int64) error {
	delete(r.tasks, id)
	return nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func TestRouter_Auth(t *testing.T) {
	hash, err := auth.HashToken("s3cret")
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(newRouter(newMemRepository(), okPinger{}, hash, log))
	defer srv.Close()

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{name: "health is public", path: "/api/v1/health", status: http.StatusOK},
		{name: "tasks without token", path: "/api/v1/tasks", status: http.StatusUnauthorized},
		{name: "tasks with wrong token", path: "/api/v1/tasks", token: "nope", status: http.StatusUnauthorized},
		{name: "tasks with token", path: "/api/v1/tasks", token: "s3cret", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL+tt.path, nil)
			require.NoError(t, err)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}
}

func TestRouter_TaskLifecycle(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(newRouter(newMemRepository(), okPinger{}, "", log))
	defer srv.Close()

	do := func(method, path, body string) *http.Response {
		t.Helper()
		var r io.Reader
		if body != "" {
			r = strings.NewReader(body)
		}
		req, err := http.NewRequest(method, srv.URL+path, r)
		require.NoError(t, err)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := do(http.MethodPost, "/api/v1/tasks",
		`{"title":"Buy milk","is_completed":false,"priority":"low","created_at":""}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"id":1`)

	resp = do(http.MethodPatch, "/api/v1/tasks/1", `{"is_completed":true}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(http.MethodPatch, "/api/v1/tasks/2", `{"is_completed":true}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(http.MethodGet, "/api/v1/tasks", "")
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"is_completed":true`)

	resp = do(http.MethodDelete, "/api/v1/tasks/1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
