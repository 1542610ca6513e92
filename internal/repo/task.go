package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/tasky/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
	// ErrorInvalidReference is returned when a row points at a missing list.
	ErrorInvalidReference = errors.New("invalid reference")
)

const taskColumns = `id, text, description, is_important, completed, list_id, position, created_at`

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo { // Конструктор
	return &TaskRepo{
		pool: pool,
	}
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.Text, &t.Description, &t.Important, &t.Completed, &t.ListID, &t.Position, &t.CreatedAt)
	return t, err
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	created, err := scanTask(r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, text, description, is_important, completed, list_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+taskColumns,
		t.ID, t.Text, t.Description, t.Important, t.Completed, t.ListID,
	))
	return created, mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, id string) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1
	`, id))
	return t, mapError(err)
}

// List возвращает задачи в порядке отображения: сначала размещённые, затем новые.
func (r *TaskRepo) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE ($1::text IS NULL OR list_id = $1)
		  AND ($2::date IS NULL OR (created_at AT TIME ZONE 'UTC')::date = $2::date)
		ORDER BY position ASC NULLS LAST, created_at DESC, id DESC
	`, filter.ListID, filter.Date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) Update(ctx context.Context, id string, p model.TaskPatch) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET text         = COALESCE($2, text),
		    description  = COALESCE($3, description),
		    is_important = COALESCE($4, is_important),
		    completed    = COALESCE($5, completed),
		    list_id      = COALESCE($6, list_id)
		WHERE id = $1
		RETURNING `+taskColumns,
		id, p.Text, p.Description, p.Important, p.Completed, p.ListID,
	))
	return t, mapError(err)
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

// Reorder присваивает position = индекс id в массиве одним запросом.
// Если хотя бы одной задачи нет, транзакция откатывается.
func (r *TaskRepo) Reorder(ctx context.Context, ids []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
		UPDATE tasks
		SET position = v.pos - 1
		FROM unnest($1::text[]) WITH ORDINALITY AS v(id, pos)
		WHERE tasks.id = v.id
	`, ids)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() != int64(len(ids)) {
		return fmt.Errorf("%w: %d of %d tasks exist", ErrorNotFound, cmd.RowsAffected(), len(ids))
	}
	return tx.Commit(ctx)
}

func (r *TaskRepo) SaveIdempotencyKey(ctx context.Context, key, resourceID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (key, resource_id) VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`, key, resourceID)
	return err
}

func (r *TaskRepo) GetIdempotencyKey(ctx context.Context, key string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		SELECT resource_id FROM idempotency_keys WHERE key = $1
	`, key).Scan(&id)
	return id, mapError(err)
}

func (r *TaskRepo) GetStats(ctx context.Context) (model.Stats, error) {
	var s model.Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE is_important AND NOT completed),
			count(*) FILTER (WHERE NOT is_important AND NOT completed),
			count(*) FILTER (WHERE completed),
			count(*)
		FROM tasks
	`).Scan(&s.Important, &s.Regular, &s.Completed, &s.TotalTasks)
	return s, err
}

// CountByDay считает задачи, созданные в [from, to), по дням (UTC).
func (r *TaskRepo) CountByDay(ctx context.Context, from, to time.Time) (map[string]int, error) {
	return countByDay(ctx, r.pool, "tasks", from, to)
}

func countByDay(ctx context.Context, pool *pgxpool.Pool, table string, from, to time.Time) (map[string]int, error) {
	rows, err := pool.Query(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, count(*)
		FROM `+table+`
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY day
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		counts[day] = n
	}
	return counts, rows.Err()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrorConflict
		case "23503":
			return ErrorInvalidReference
		}
	}
	return err
}
