package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gophtasks/internal/domain/sync"
	"gophtasks/internal/domain/task"
	"gophtasks/internal/infrastructure/storage/memory"
)

// fakeServer — минимальный сервер задач в памяти.
type fakeServer struct {
	mu      gosync.Mutex
	nextID  int64
	tasks   map[int64]task.Payload
	failFor string
	block   chan struct{}
}

func newFakeServer() *fakeServer {
	return &fakeServer{nextID: 100, tasks: make(map[int64]task.Payload)}
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/tasks":
		out := struct {
			Tasks []task.Remote `json:"tasks"`
		}{Tasks: []task.Remote{}}
		for id, p := range f.tasks {
			out.Tasks = append(out.Tasks, task.Remote{ID: id, Payload: p})
		}
		_ = json.NewEncoder(w).Encode(out)
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/tasks":
		var p task.Payload
		_ = json.NewDecoder(r.Body).Decode(&p)
		if p.Title == f.failFor {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail":"title is reserved"}`))
			return
		}
		f.nextID++
		f.tasks[f.nextID] = p
		_ = json.NewEncoder(w).Encode(task.CreateResponse{ID: f.nextID})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestApp(t *testing.T, srv *httptest.Server) *App {
	t.Helper()
	cfg := testConfig(t, srv.URL)
	app, err := newApp(context.Background(), cfg, testLogger(), memory.New(), NewHTTPClient(cfg, testLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestApp_SyncReconcilesDrafts(t *testing.T) {
	fake := newFakeServer()
	srv := httptest.NewServer(fake)
	defer srv.Close()
	app := newTestApp(t, srv)
	ctx := context.Background()

	draft, err := app.Tasks().Create(ctx, task.CreateInput{Title: "Offline task"})
	require.NoError(t, err)
	require.Negative(t, draft.ID)

	var steps []int
	report, err := app.Sync(ctx, func(current, total int) { steps = append(steps, current) })

	require.NoError(t, err)
	assert.Equal(t, []int{1}, steps)
	assert.Equal(t, 1, report.Push.Success)

	_, err = app.Tasks().Get(ctx, draft.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)
	synced, err := app.Tasks().Get(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, task.StatusSynced, synced.SyncStatus)
	assert.Equal(t, "Offline task", synced.Title)

	status, err := app.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.Pending.Total)
	assert.NotNil(t, status.LastSyncedAt)
}

func TestApp_RejectedTaskCanBeRetried(t *testing.T) {
	fake := newFakeServer()
	fake.failFor = "reserved"
	srv := httptest.NewServer(fake)
	defer srv.Close()
	app := newTestApp(t, srv)
	ctx := context.Background()

	draft, err := app.Tasks().Create(ctx, task.CreateInput{Title: "reserved"})
	require.NoError(t, err)

	result, err := app.Push(ctx, nil)
	require.NoError(t, err)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, sync.Failure{ID: draft.ID, Reason: "title is reserved"}, result.Failures[0])

	status, err := app.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status.Failed, 1)
	assert.Equal(t, "title is reserved", status.Failed[0].SyncErrorDetails)

	err = app.Retry(ctx, draft.ID)
	assert.ErrorIs(t, err, sync.ErrPushFailed)

	_, err = app.Tasks().Update(ctx, draft.ID, task.Patch{Title: task.Some("allowed")})
	require.NoError(t, err)
	require.NoError(t, app.Retry(ctx, draft.ID))

	synced, err := app.Tasks().Get(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, task.StatusSynced, synced.SyncStatus)
}

func TestApp_SyncGuard(t *testing.T) {
	fake := newFakeServer()
	fake.block = make(chan struct{})
	srv := httptest.NewServer(fake)
	defer srv.Close()
	app := newTestApp(t, srv)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := app.Pull(ctx, true)
		done <- err
	}()

	require.Eventually(t, app.guard.running, time.Second, 5*time.Millisecond)

	_, err := app.Sync(ctx, nil)
	assert.ErrorIs(t, err, ErrSyncInProgress)
	assert.ErrorIs(t, app.Retry(ctx, 1), ErrSyncInProgress)

	close(fake.block)
	require.NoError(t, <-done)
	assert.False(t, app.guard.running())
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	fake := newFakeServer()
	srv := httptest.NewServer(fake)
	defer srv.Close()
	app := newTestApp(t, srv)
	app.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	_, err := app.Tasks().Create(context.Background(), task.CreateInput{Title: "auto"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		return len(fake.tasks) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestApp_Token(t *testing.T) {
	srv := httptest.NewServer(newFakeServer())
	defer srv.Close()
	app := newTestApp(t, srv)

	_, err := app.GetToken()
	assert.Error(t, err)

	require.NoError(t, app.SaveToken(" abc \n"))
	token, err := app.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, app.ClearToken())
	_, err = app.GetToken()
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	app := &App{}
	got, ok := FromContext(WithApp(context.Background(), app))
	assert.True(t, ok)
	assert.Same(t, app, got)
}
