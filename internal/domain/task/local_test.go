package task_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"gophtasks/internal/domain/task"
	"gophtasks/internal/infrastructure/storage/memory"
)

func newLocal(t *testing.T) (*task.LocalService, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc, err := task.NewLocalService(context.Background(), store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return at })
	return svc, store
}

func seedTask(t *testing.T, store task.Store, tk task.Task) {
	t.Helper()
	err := store.Update(context.Background(), func(tx task.Tx) error {
		return tx.Put(context.Background(), &tk)
	})
	require.NoError(t, err)
}

func TestLocalService_Create(t *testing.T) {
	svc, _ := newLocal(t)
	ctx := context.Background()
	due := "2024-06-10"

	created, err := svc.Create(ctx, task.CreateInput{Title: " Plan trip ", DueDate: &due})

	require.NoError(t, err)
	assert.Equal(t, int64(-1717232400000), created.ID)
	assert.Equal(t, "Plan trip", created.Title)
	assert.Equal(t, task.PriorityMedium, created.Priority)
	assert.Equal(t, "2024-06-10T00:00:00.000Z", *created.DueDate)
	assert.Equal(t, task.StatusPendingCreation, created.SyncStatus)
	assert.Equal(t, "2024-06-01T09:00:00.000Z", created.CreatedAt)

	second, err := svc.Create(ctx, task.CreateInput{Title: "Second"})
	require.NoError(t, err)
	assert.Less(t, second.ID, created.ID)

	_, err = svc.Create(ctx, task.CreateInput{Title: ""})
	assert.ErrorIs(t, err, task.ErrInvalidTitle)
}

func TestLocalService_AllocatorSeededFromStore(t *testing.T) {
	store := memory.New()
	seedTask(t, store, task.Task{ID: -9999999999999, Payload: task.Payload{Title: "old", Priority: task.PriorityLow}, SyncStatus: task.StatusPendingCreation})

	svc, err := task.NewLocalService(context.Background(), store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), task.CreateInput{Title: "new"})

	require.NoError(t, err)
	assert.Equal(t, int64(-10000000000000), created.ID)
}

func TestLocalService_UpdateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		seed     task.Task
		expected task.SyncStatus
		err      error
	}{
		{
			name:     "synced becomes pending update",
			seed:     task.Task{ID: 12, SyncStatus: task.StatusSynced},
			expected: task.StatusPendingUpdate,
		},
		{
			name:     "draft stays pending creation",
			seed:     task.Task{ID: -12, SyncStatus: task.StatusPendingCreation},
			expected: task.StatusPendingCreation,
		},
		{
			name:     "failed task is recovered",
			seed:     task.Task{ID: 12, SyncStatus: task.StatusSyncError, SyncErrorDetails: "500"},
			expected: task.StatusPendingUpdate,
		},
		{
			name: "deleted task rejects edits",
			seed: task.Task{ID: 12, SyncStatus: task.StatusPendingDelete},
			err:  task.ErrTaskDeleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			svc, store := newLocal(t)
			tt.seed.Payload = task.Payload{Title: "Old", Priority: task.PriorityLow}
			seedTask(t, store, tt.seed)

			// Act
			updated, err := svc.Complete(context.Background(), tt.seed.ID, true)

			// Assert
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.True(t, updated.IsCompleted)
			assert.Equal(t, tt.expected, updated.SyncStatus)
			assert.Empty(t, updated.SyncErrorDetails)
			assert.Equal(t, "2024-06-01T09:00:00.000Z", updated.UpdatedAt)
		})
	}
}

func TestLocalService_UpdateMissing(t *testing.T) {
	svc, _ := newLocal(t)

	_, err := svc.Update(context.Background(), 404, task.Patch{Title: task.Some("x")})

	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestLocalService_Delete(t *testing.T) {
	svc, store := newLocal(t)
	ctx := context.Background()

	draft, err := svc.Create(ctx, task.CreateInput{Title: "draft"})
	require.NoError(t, err)
	seedTask(t, store, task.Task{ID: 30, Payload: task.Payload{Title: "synced", Priority: task.PriorityLow}, SyncStatus: task.StatusSynced})

	require.NoError(t, svc.Delete(ctx, draft.ID))
	require.NoError(t, svc.Delete(ctx, 30))
	require.NoError(t, svc.Delete(ctx, 30))

	_, err = svc.Get(ctx, draft.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)

	marked, err := svc.Get(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, task.StatusPendingDelete, marked.SyncStatus)

	visible, err := svc.List(ctx, task.Filter{})
	require.NoError(t, err)
	assert.Empty(t, visible)

	counts, err := svc.PendingCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, task.PendingCounts{PendingDelete: 1, Total: 1}, counts)
}

func TestLocalService_CommentsAndMedia(t *testing.T) {
	svc, store := newLocal(t)
	ctx := context.Background()
	seedTask(t, store, task.Task{ID: 40, Payload: task.Payload{Title: "t", Priority: task.PriorityLow}, SyncStatus: task.StatusSynced})

	withComment, err := svc.AddComment(ctx, 40, "  first  ")
	require.NoError(t, err)
	require.Len(t, withComment.Comments, 1)
	assert.Equal(t, "first", withComment.Comments[0].Content)
	assert.Equal(t, task.StatusPendingUpdate, withComment.SyncStatus)

	_, err = svc.AddComment(ctx, 40, " ")
	assert.Error(t, err)

	withMedia, err := svc.AttachMedia(ctx, 40, "https://cdn.example.com/p.jpg", task.MediaImage)
	require.NoError(t, err)
	require.Len(t, withMedia.Media, 1)
	assert.NotEmpty(t, withMedia.Media[0].ID)

	_, err = svc.AttachMedia(ctx, 40, "https://cdn.example.com/p.mp3", task.MediaType("audio"))
	assert.ErrorIs(t, err, task.ErrInvalidMedia)

	removed, err := svc.RemoveComment(ctx, 40, withComment.Comments[0].ID)
	require.NoError(t, err)
	assert.Empty(t, removed.Comments)

	_, err = svc.RemoveComment(ctx, 40, 12345)
	assert.Error(t, err)
}

func TestLocalService_ListFilters(t *testing.T) {
	svc, store := newLocal(t)
	ctx := context.Background()
	seedTask(t, store, task.Task{ID: 1, Payload: task.Payload{Title: "a", Priority: task.PriorityLow, IsCompleted: true}, SyncStatus: task.StatusSynced})
	seedTask(t, store, task.Task{ID: 2, Payload: task.Payload{Title: "b", Priority: task.PriorityLow}, SyncStatus: task.StatusPendingUpdate})
	seedTask(t, store, task.Task{ID: 3, Payload: task.Payload{Title: "c", Priority: task.PriorityLow}, SyncStatus: task.StatusPendingDelete})

	done := true
	completed, err := svc.List(ctx, task.Filter{Completed: &done})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, int64(1), completed[0].ID)

	deleted, err := svc.List(ctx, task.Filter{Status: task.StatusPendingDelete})
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, int64(3), deleted[0].ID)

	all, err := svc.List(ctx, task.Filter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
