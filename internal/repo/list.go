package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/tasky/internal/model"
)

type ListRepo struct {
	pool *pgxpool.Pool
}

func NewListRepo(pool *pgxpool.Pool) *ListRepo {
	return &ListRepo{pool: pool}
}

func (r *ListRepo) Create(ctx context.Context, l model.List) (model.List, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lists (id, name) VALUES ($1, $2)
		RETURNING id, name, created_at
	`, l.ID, l.Name).Scan(&l.ID, &l.Name, &l.CreatedAt)
	return l, mapError(err)
}

func (r *ListRepo) List(ctx context.Context) ([]model.List, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, created_at FROM lists ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := make([]model.List, 0)
	for rows.Next() {
		var l model.List
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (r *ListRepo) Rename(ctx context.Context, id, name string) (model.List, error) {
	var l model.List
	err := r.pool.QueryRow(ctx, `
		UPDATE lists SET name = $2 WHERE id = $1
		RETURNING id, name, created_at
	`, id, name).Scan(&l.ID, &l.Name, &l.CreatedAt)
	return l, mapError(err)
}

// Delete переносит задачи списка в default и удаляет список в одной транзакции.
func (r *ListRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE tasks SET list_id = $2 WHERE list_id = $1`, id, model.DefaultListID); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return tx.Commit(ctx)
}
