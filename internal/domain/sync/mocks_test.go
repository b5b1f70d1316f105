package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"gophtasks/internal/domain/task"
	"gophtasks/internal/infrastructure/storage/memory"
)

// MockRemote is a mock implementation of the Remote interface for testing
type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) Fetch(ctx context.Context, since *time.Time) ([]task.Remote, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Remote), args.Error(1)
}

func (m *MockRemote) Insert(ctx context.Context, p task.Payload) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRemote) Update(ctx context.Context, id int64, p task.Payload) error {
	args := m.Called(ctx, id, p)
	return args.Error(0)
}

func (m *MockRemote) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func payload(title string) task.Payload {
	return task.Payload{
		Title:     title,
		Priority:  task.PriorityMedium,
		CreatedAt: "2023-11-14T22:13:20.000Z",
		UpdatedAt: "2023-11-14T22:13:20.000Z",
	}
}

func seed(t *testing.T, store task.Store, tasks ...task.Task) {
	t.Helper()
	err := store.Update(context.Background(), func(tx task.Tx) error {
		for i := range tasks {
			if err := tx.Put(context.Background(), &tasks[i]); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func load(t *testing.T, store task.Store, id int64) (*task.Task, error) {
	t.Helper()
	var out *task.Task
	err := store.View(context.Background(), func(tx task.Tx) error {
		var err error
		out, err = tx.Get(context.Background(), id)
		return err
	})
	return out, err
}

func requireInvariants(t *testing.T, store task.Store) {
	t.Helper()
	err := store.View(context.Background(), func(tx task.Tx) error {
		all, err := tx.List(context.Background(), task.Filter{IncludeDeleted: true})
		if err != nil {
			return err
		}
		for i := range all {
			if err := all[i].CheckInvariants(); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

// corruptStore отдаёт ErrCorrupt при чтении одной задачи.
type corruptStore struct {
	*memory.Store
	bad int64
}

func (s corruptStore) View(ctx context.Context, fn func(tx task.Tx) error) error {
	return s.Store.View(ctx, func(tx task.Tx) error {
		return fn(corruptTx{Tx: tx, bad: s.bad})
	})
}

func (s corruptStore) Update(ctx context.Context, fn func(tx task.Tx) error) error {
	return s.Store.Update(ctx, func(tx task.Tx) error {
		return fn(corruptTx{Tx: tx, bad: s.bad})
	})
}

type corruptTx struct {
	task.Tx
	bad int64
}

func (t corruptTx) Get(ctx context.Context, id int64) (*task.Task, error) {
	if id == t.bad {
		return nil, fmt.Errorf("%w: comments: unexpected end of JSON input", task.ErrCorrupt)
	}
	return t.Tx.Get(ctx, id)
}

var errDiskIO = errors.New("disk I/O error")

// brokenStore не может открыть ни одной транзакции.
type brokenStore struct {
	*memory.Store
}

func (brokenStore) View(context.Context, func(tx task.Tx) error) error {
	return errDiskIO
}

func (brokenStore) Update(context.Context, func(tx task.Tx) error) error {
	return errDiskIO
}

// failingCheckpointStore падает на сохранении чекпоинта.
type failingCheckpointStore struct {
	*memory.Store
}

func (s failingCheckpointStore) Update(ctx context.Context, fn func(tx task.Tx) error) error {
	return s.Store.Update(ctx, func(tx task.Tx) error {
		return fn(failingCheckpointTx{Tx: tx})
	})
}

type failingCheckpointTx struct {
	task.Tx
}

func (failingCheckpointTx) SaveCheckpoint(context.Context, task.SyncCheckpoint) error {
	return errDiskIO
}
