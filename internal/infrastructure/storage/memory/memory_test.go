package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gophtasks/internal/domain/task"
)

func put(t *testing.T, s *Store, tasks ...task.Task) {
	t.Helper()
	err := s.Update(context.Background(), func(tx task.Tx) error {
		for i := range tasks {
			if err := tx.Put(context.Background(), &tasks[i]); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestStore_PendingOrderFollowsInsertion(t *testing.T) {
	s := New()
	ctx := context.Background()
	put(t, s,
		task.Task{ID: -3, Payload: task.Payload{Title: "c"}, SyncStatus: task.StatusPendingCreation},
		task.Task{ID: 7, Payload: task.Payload{Title: "a"}, SyncStatus: task.StatusSynced},
		task.Task{ID: -1, Payload: task.Payload{Title: "b"}, SyncStatus: task.StatusPendingCreation},
		task.Task{ID: 5, Payload: task.Payload{Title: "d"}, SyncStatus: task.StatusPendingUpdate},
	)
	// Перезапись не меняет позицию в очереди.
	put(t, s, task.Task{ID: -3, Payload: task.Payload{Title: "c2"}, SyncStatus: task.StatusPendingCreation})

	var ids []int64
	var lowest int64
	err := s.View(ctx, func(tx task.Tx) error {
		var err error
		if ids, err = tx.PendingIDs(ctx); err != nil {
			return err
		}
		lowest, err = tx.MinID(ctx)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{-3, -1, 5}, ids)
	assert.Equal(t, int64(-3), lowest)
}

func TestStore_UpdateRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	put(t, s, task.Task{ID: 1, Payload: task.Payload{Title: "keep"}, SyncStatus: task.StatusSynced})
	errBoom := errors.New("boom")

	err := s.Update(ctx, func(tx task.Tx) error {
		if err := tx.Delete(ctx, 1); err != nil {
			return err
		}
		if err := tx.SaveCheckpoint(ctx, task.SyncCheckpoint{LastSyncedAt: time.Now()}); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	err = s.View(ctx, func(tx task.Tx) error {
		got, err := tx.Get(ctx, 1)
		if err != nil {
			return err
		}
		assert.Equal(t, "keep", got.Title)

		cp, err := tx.Checkpoint(ctx)
		assert.Equal(t, task.DefaultCheckpoint(), cp)
		return err
	})
	require.NoError(t, err)
}

func TestStore_ViewIsReadOnly(t *testing.T) {
	s := New()

	err := s.View(context.Background(), func(tx task.Tx) error {
		return tx.Put(context.Background(), &task.Task{ID: 1, SyncStatus: task.StatusSynced})
	})

	assert.ErrorIs(t, err, errReadOnly)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	put(t, s, task.Task{ID: 2, Payload: task.Payload{Title: "orig", Comments: []task.Comment{{ID: 1, Content: "x"}}}, SyncStatus: task.StatusSynced})

	err := s.View(ctx, func(tx task.Tx) error {
		got, err := tx.Get(ctx, 2)
		if err != nil {
			return err
		}
		got.Title = "mutated"
		got.Comments[0].Content = "mutated"
		return nil
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx task.Tx) error {
		got, err := tx.Get(ctx, 2)
		if err != nil {
			return err
		}
		assert.Equal(t, "orig", got.Title)
		assert.Equal(t, "x", got.Comments[0].Content)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_CountsAndSubscribe(t *testing.T) {
	s := New()
	ctx := context.Background()
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	put(t, s,
		task.Task{ID: -1, SyncStatus: task.StatusPendingCreation},
		task.Task{ID: 2, SyncStatus: task.StatusSyncError, SyncErrorDetails: "x"},
		task.Task{ID: 3, SyncStatus: task.StatusSynced},
	)

	select {
	case <-ch:
	default:
		t.Fatal("expected change notification")
	}

	var counts task.PendingCounts
	err := s.View(ctx, func(tx task.Tx) error {
		var err error
		counts, err = tx.Counts(ctx)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, task.PendingCounts{PendingCreation: 1, SyncError: 1, Total: 2}, counts)
}

func TestStore_Closed(t *testing.T) {
	s := New()
	require.NoError(t, s.Close())

	err := s.View(context.Background(), func(task.Tx) error { return nil })

	assert.ErrorIs(t, err, ErrClosed)
}
