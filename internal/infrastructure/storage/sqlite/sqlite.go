package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"gophtasks/internal/domain/task"
	"gophtasks/internal/infrastructure/storage"
)

const checkpointID = "singleton"

type Storage struct {
	db       *sql.DB
	log      *slog.Logger
	notifier *storage.Notifier
}

func New(path string, log *slog.Logger) (*Storage, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}
	// Транзакции выполняются строго по одной.
	db.SetMaxOpenConns(1)

	s := &Storage{
		db:       db,
		log:      log.With("component", "sqlite_storage"),
		notifier: storage.NewNotifier(),
	}

	if err := s.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return s, nil
}

func (s *Storage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY,
			seq INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			due_date TEXT,
			is_completed BOOLEAN NOT NULL DEFAULT 0,
			priority TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT '',
			comments TEXT NOT NULL DEFAULT '[]',
			media TEXT NOT NULL DEFAULT '[]',
			sync_status TEXT NOT NULL,
			sync_error_details TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(sync_status);
		CREATE INDEX IF NOT EXISTS idx_tasks_seq ON tasks(seq);

		CREATE TABLE IF NOT EXISTS sync_state (
			id TEXT PRIMARY KEY,
			last_synced_at TEXT NOT NULL
		);
	`)

	return err
}

func (s *Storage) View(ctx context.Context, fn func(tx task.Tx) error) error {
	return s.withTx(ctx, fn)
}

func (s *Storage) Update(ctx context.Context, fn func(tx task.Tx) error) error {
	if err := s.withTx(ctx, fn); err != nil {
		return err
	}
	s.notifier.Notify()
	return nil
}

// withTx открывает транзакцию и фиксирует её, только если fn завершилась без ошибки.
func (s *Storage) withTx(ctx context.Context, fn func(tx task.Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rerr := sqlTx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			s.log.Error("rollback failed", "error", rerr)
		}
	}()

	if err = fn(&tx{tx: sqlTx, log: s.log}); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	committed = true
	return nil
}

func (s *Storage) Subscribe() (<-chan struct{}, func()) {
	return s.notifier.Subscribe()
}

func (s *Storage) Close() error {
	s.notifier.Close()
	return s.db.Close()
}

type tx struct {
	tx  *sql.Tx
	log *slog.Logger
}

const selectColumns = `SELECT id, title, description, due_date, is_completed, priority,
	created_at, updated_at, comments, media, sync_status, sync_error_details FROM tasks`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*task.Task, error) {
	var (
		t           task.Task
		description sql.NullString
		dueDate     sql.NullString
		details     sql.NullString
		comments    string
		media       string
		status      string
		priority    string
	)

	err := row.Scan(&t.ID, &t.Title, &description, &dueDate, &t.IsCompleted, &priority,
		&t.CreatedAt, &t.UpdatedAt, &comments, &media, &status, &details)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.String
	}
	t.Priority = task.Priority(priority)
	t.SyncStatus = task.SyncStatus(status)
	t.SyncErrorDetails = details.String

	if err := t.SyncStatus.Validate(); err != nil {
		return &t, fmt.Errorf("%w: task %d: %v", task.ErrCorrupt, t.ID, err)
	}
	if err := decodeCollections(comments, media, &t.Payload); err != nil {
		return &t, fmt.Errorf("%w: task %d: %v", task.ErrCorrupt, t.ID, err)
	}

	return &t, nil
}

func (t *tx) Get(ctx context.Context, id int64) (*task.Task, error) {
	row := t.tx.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)

	rec, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, task.ErrCorrupt) {
			return nil, err
		}
		return nil, fmt.Errorf("ошибка получения задачи: %w", err)
	}
	return rec, nil
}

func (t *tx) List(ctx context.Context, filter task.Filter) ([]task.Task, error) {
	rows, err := t.tx.QueryContext(ctx, selectColumns+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	var out []task.Task
	for rows.Next() {
		rec, err := scanTask(rows)
		if err != nil {
			if errors.Is(err, task.ErrCorrupt) {
				t.log.Error("skipping unreadable task", "error", err)
				continue
			}
			return nil, fmt.Errorf("ошибка чтения задачи: %w", err)
		}
		if filter.Match(rec) {
			out = append(out, *rec)
		}
	}

	return out, rows.Err()
}

func (t *tx) PendingIDs(ctx context.Context) ([]int64, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id FROM tasks WHERE sync_status != ? ORDER BY seq`, string(task.StatusSynced))
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки очереди синхронизации: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (t *tx) Counts(ctx context.Context) (task.PendingCounts, error) {
	var c task.PendingCounts

	rows, err := t.tx.QueryContext(ctx,
		`SELECT sync_status, COUNT(*) FROM tasks WHERE sync_status != ? GROUP BY sync_status`,
		string(task.StatusSynced))
	if err != nil {
		return c, fmt.Errorf("ошибка подсчёта задач: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return c, err
		}
		switch task.SyncStatus(status) {
		case task.StatusPendingCreation:
			c.PendingCreation = n
		case task.StatusPendingUpdate:
			c.PendingUpdate = n
		case task.StatusPendingDelete:
			c.PendingDelete = n
		case task.StatusSyncError:
			c.SyncError = n
		}
		c.Total += n
	}

	return c, rows.Err()
}

func (t *tx) MinID(ctx context.Context) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, `SELECT COALESCE(MIN(id), 0) FROM tasks`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка получения минимального id: %w", err)
	}
	return id, nil
}

func (t *tx) Put(ctx context.Context, rec *task.Task) error {
	if err := rec.SyncStatus.Validate(); err != nil {
		return err
	}

	comments, media, err := encodeCollections(&rec.Payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации задачи %d: %w", rec.ID, err)
	}

	var details sql.NullString
	if rec.SyncErrorDetails != "" {
		details = sql.NullString{String: rec.SyncErrorDetails, Valid: true}
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO tasks (id, seq, title, description, due_date, is_completed, priority,
		                   created_at, updated_at, comments, media, sync_status, sync_error_details)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM tasks), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			due_date = excluded.due_date,
			is_completed = excluded.is_completed,
			priority = excluded.priority,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			comments = excluded.comments,
			media = excluded.media,
			sync_status = excluded.sync_status,
			sync_error_details = excluded.sync_error_details
	`, rec.ID, rec.Title, rec.Description, rec.DueDate, rec.IsCompleted, string(rec.Priority),
		rec.CreatedAt, rec.UpdatedAt, comments, media, string(rec.SyncStatus), details)
	if err != nil {
		return fmt.Errorf("ошибка сохранения задачи %d: %w", rec.ID, err)
	}

	return nil
}

func (t *tx) Delete(ctx context.Context, id int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("ошибка удаления задачи %d: %w", id, err)
	}
	return nil
}

func (t *tx) Checkpoint(ctx context.Context) (task.SyncCheckpoint, error) {
	var raw string
	err := t.tx.QueryRowContext(ctx,
		`SELECT last_synced_at FROM sync_state WHERE id = ?`, checkpointID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return task.DefaultCheckpoint(), nil
	}
	if err != nil {
		return task.SyncCheckpoint{}, fmt.Errorf("ошибка чтения чекпоинта: %w", err)
	}

	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		t.log.Warn("checkpoint is unreadable, falling back to full pull", "value", raw)
		return task.DefaultCheckpoint(), nil
	}
	return task.SyncCheckpoint{LastSyncedAt: at}, nil
}

func (t *tx) SaveCheckpoint(ctx context.Context, cp task.SyncCheckpoint) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO sync_state (id, last_synced_at) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET last_synced_at = excluded.last_synced_at
	`, checkpointID, cp.LastSyncedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("ошибка сохранения чекпоинта: %w", err)
	}
	return nil
}
