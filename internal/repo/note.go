package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/tasky/internal/model"
)

const noteColumns = `id, title, content, is_important, created_at, updated_at`

type NoteRepo struct {
	pool *pgxpool.Pool
}

func NewNoteRepo(pool *pgxpool.Pool) *NoteRepo {
	return &NoteRepo{pool: pool}
}

func scanNote(row pgx.Row) (model.Note, error) {
	var n model.Note
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.Important, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

func (r *NoteRepo) Create(ctx context.Context, n model.Note) (model.Note, error) {
	created, err := scanNote(r.pool.QueryRow(ctx, `
		INSERT INTO notes (id, title, content, is_important)
		VALUES ($1, $2, $3, $4)
		RETURNING `+noteColumns,
		n.ID, n.Title, n.Content, n.Important,
	))
	return created, mapError(err)
}

func (r *NoteRepo) List(ctx context.Context, filter model.NoteFilter) ([]model.Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE ($1::date IS NULL OR (created_at AT TIME ZONE 'UTC')::date = $1::date)
		ORDER BY created_at DESC, id DESC
	`, filter.Date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]model.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *NoteRepo) Update(ctx context.Context, id string, p model.NotePatch) (model.Note, error) {
	n, err := scanNote(r.pool.QueryRow(ctx, `
		UPDATE notes
		SET title        = COALESCE($2, title),
		    content      = COALESCE($3, content),
		    is_important = COALESCE($4, is_important),
		    updated_at   = now()
		WHERE id = $1
		RETURNING `+noteColumns,
		id, p.Title, p.Content, p.Important,
	))
	return n, mapError(err)
}

func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM notes WHERE id = $1", id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *NoteRepo) CountByDay(ctx context.Context, from, to time.Time) (map[string]int, error) {
	return countByDay(ctx, r.pool, "notes", from, to)
}
