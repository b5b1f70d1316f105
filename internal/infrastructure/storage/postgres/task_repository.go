package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"gophtasks/internal/domain/task"
)

const taskColumns = `id, title, description, due_date, is_completed, priority,
		       created_at, updated_at, comments, media`

type TaskRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewTaskRepository(pool *pgxpool.Pool, log *slog.Logger) *TaskRepository {
	return &TaskRepository{
		pool: pool,
		log:  log.With("component", "task_repository"),
	}
}

// List возвращает все задачи или только изменённые строго после since.
func (r *TaskRepository) List(ctx context.Context, since *time.Time) ([]task.Remote, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if since == nil {
		rows, err = r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE updated_at > $1 ORDER BY id`, since.UTC())
	}
	if err != nil {
		r.log.Error("failed to list tasks", "error", err)
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []task.Remote{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, id int64) (*task.Remote, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.ErrNotFound
		}
		r.log.Error("failed to get task", "task_id", id, "error", err)
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) Create(ctx context.Context, p task.Payload) (int64, error) {
	comments, media, err := marshalCollections(p)
	if err != nil {
		return 0, err
	}

	const query = `
		INSERT INTO tasks (title, description, due_date, is_completed, priority,
		                   created_at, comments, media)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var id int64
	err = r.pool.QueryRow(ctx, query,
		p.Title, p.Description, p.DueDate, p.IsCompleted, string(p.Priority),
		p.CreatedAt, comments, media,
	).Scan(&id)
	if err != nil {
		r.log.Error("failed to create task", "error", err)
		return 0, fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

// Update заменяет пользовательские поля и сдвигает updated_at на время сервера.
func (r *TaskRepository) Update(ctx context.Context, id int64, p task.Payload) error {
	comments, media, err := marshalCollections(p)
	if err != nil {
		return err
	}

	const query = `
		UPDATE tasks
		SET title = $2, description = $3, due_date = $4, is_completed = $5,
		    priority = $6, comments = $7, media = $8, updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		id, p.Title, p.Description, p.DueDate, p.IsCompleted, string(p.Priority),
		comments, media,
	)
	if err != nil {
		r.log.Error("failed to update task", "task_id", id, "error", err)
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

// Delete удаляет задачу, повторное удаление ошибкой не считается.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		r.log.Error("failed to delete task", "task_id", id, "error", err)
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func scanTask(row pgx.Row) (*task.Remote, error) {
	var (
		t         task.Remote
		priority  string
		updatedAt time.Time
		comments  []byte
		media     []byte
	)

	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.DueDate, &t.IsCompleted, &priority,
		&t.CreatedAt, &updatedAt, &comments, &media,
	)
	if err != nil {
		return nil, err
	}

	t.Priority = task.Priority(priority)
	t.UpdatedAt = task.FormatTime(updatedAt)
	if err := json.Unmarshal(comments, &t.Comments); err != nil {
		return nil, fmt.Errorf("decode comments of task %d: %w", t.ID, err)
	}
	if err := json.Unmarshal(media, &t.Media); err != nil {
		return nil, fmt.Errorf("decode media of task %d: %w", t.ID, err)
	}
	return &t, nil
}

func marshalCollections(p task.Payload) (comments, media []byte, err error) {
	if p.Comments == nil {
		p.Comments = []task.Comment{}
	}
	if p.Media == nil {
		p.Media = []task.Media{}
	}
	if comments, err = json.Marshal(p.Comments); err != nil {
		return nil, nil, fmt.Errorf("encode comments: %w", err)
	}
	if media, err = json.Marshal(p.Media); err != nil {
		return nil, nil, fmt.Errorf("encode media: %w", err)
	}
	return comments, media, nil
}
