// Package memory — локальное хранилище задач в памяти процесса.
// Используется в тестах и как запасной вариант, если SQLite недоступен.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"gophtasks/internal/domain/task"
	"gophtasks/internal/infrastructure/storage"
)

type state struct {
	tasks      map[int64]*task.Task
	seq        map[int64]int64
	nextSeq    int64
	checkpoint *task.SyncCheckpoint
}

func (s *state) clone() *state {
	c := &state{
		tasks:   make(map[int64]*task.Task, len(s.tasks)),
		seq:     make(map[int64]int64, len(s.seq)),
		nextSeq: s.nextSeq,
	}
	for id, t := range s.tasks {
		c.tasks[id] = t.Clone()
	}
	for id, n := range s.seq {
		c.seq[id] = n
	}
	if s.checkpoint != nil {
		cp := *s.checkpoint
		c.checkpoint = &cp
	}
	return c
}

type Store struct {
	mu       sync.RWMutex
	state    *state
	notifier *storage.Notifier
	closed   bool
}

func New() *Store {
	return &Store{
		state: &state{
			tasks: make(map[int64]*task.Task),
			seq:   make(map[int64]int64),
		},
		notifier: storage.NewNotifier(),
	}
}

var ErrClosed = errors.New("memory store is closed")

func (s *Store) View(ctx context.Context, fn func(tx task.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&tx{st: s.state, readOnly: true})
}

// Update выполняет fn над копией состояния и подменяет состояние только при успехе.
func (s *Store) Update(ctx context.Context, fn func(tx task.Tx) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return err
	}

	work := s.state.clone()
	if err := fn(&tx{st: work}); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = work
	s.mu.Unlock()

	s.notifier.Notify()
	return nil
}

func (s *Store) Subscribe() (<-chan struct{}, func()) {
	return s.notifier.Subscribe()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.notifier.Close()
	return nil
}

type tx struct {
	st       *state
	readOnly bool
}

var errReadOnly = errors.New("write in read-only transaction")

func (t *tx) Get(_ context.Context, id int64) (*task.Task, error) {
	rec, ok := t.st.tasks[id]
	if !ok {
		return nil, task.ErrNotFound
	}
	return rec.Clone(), nil
}

func (t *tx) ordered() []*task.Task {
	out := make([]*task.Task, 0, len(t.st.tasks))
	for _, rec := range t.st.tasks {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return t.st.seq[out[i].ID] < t.st.seq[out[j].ID]
	})
	return out
}

func (t *tx) List(_ context.Context, filter task.Filter) ([]task.Task, error) {
	var out []task.Task
	for _, rec := range t.ordered() {
		if filter.Match(rec) {
			out = append(out, *rec.Clone())
		}
	}
	return out, nil
}

func (t *tx) PendingIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	for _, rec := range t.ordered() {
		if rec.SyncStatus != task.StatusSynced {
			ids = append(ids, rec.ID)
		}
	}
	return ids, nil
}

func (t *tx) Counts(_ context.Context) (task.PendingCounts, error) {
	var c task.PendingCounts
	for _, rec := range t.st.tasks {
		switch rec.SyncStatus {
		case task.StatusPendingCreation:
			c.PendingCreation++
		case task.StatusPendingUpdate:
			c.PendingUpdate++
		case task.StatusPendingDelete:
			c.PendingDelete++
		case task.StatusSyncError:
			c.SyncError++
		case task.StatusSynced:
			continue
		}
		c.Total++
	}
	return c, nil
}

func (t *tx) MinID(_ context.Context) (int64, error) {
	var lowest int64
	for id := range t.st.tasks {
		if id < lowest {
			lowest = id
		}
	}
	return lowest, nil
}

func (t *tx) Put(_ context.Context, rec *task.Task) error {
	if t.readOnly {
		return errReadOnly
	}
	if err := rec.SyncStatus.Validate(); err != nil {
		return err
	}
	if _, ok := t.st.seq[rec.ID]; !ok {
		t.st.nextSeq++
		t.st.seq[rec.ID] = t.st.nextSeq
	}
	t.st.tasks[rec.ID] = rec.Clone()
	return nil
}

func (t *tx) Delete(_ context.Context, id int64) error {
	if t.readOnly {
		return errReadOnly
	}
	delete(t.st.tasks, id)
	delete(t.st.seq, id)
	return nil
}

func (t *tx) Checkpoint(_ context.Context) (task.SyncCheckpoint, error) {
	if t.st.checkpoint == nil {
		return task.DefaultCheckpoint(), nil
	}
	return *t.st.checkpoint, nil
}

func (t *tx) SaveCheckpoint(_ context.Context, cp task.SyncCheckpoint) error {
	if t.readOnly {
		return errReadOnly
	}
	t.st.checkpoint = &cp
	return nil
}
