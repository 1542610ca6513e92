package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/tasky/internal/model"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Get(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `
		SELECT username, password_hash, created_at FROM users WHERE username = $1
	`, username).Scan(&u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, mapError(err)
}

// Create fails with ErrorConflict when the user already exists.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash) VALUES ($1, $2)
		RETURNING username, password_hash, created_at
	`, u.Username, u.PasswordHash).Scan(&u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, mapError(err)
}
