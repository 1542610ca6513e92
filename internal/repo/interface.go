package repo

import (
	"context"
	"time"

	"github.com/BuzzLyutic/tasky/internal/model"
)

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, id string) error
	// Reorder sets position = index for every id in one statement.
	Reorder(ctx context.Context, ids []string) error
	SaveIdempotencyKey(ctx context.Context, key, resourceID string) error
	GetIdempotencyKey(ctx context.Context, key string) (string, error)
	GetStats(ctx context.Context) (model.Stats, error)
	CountByDay(ctx context.Context, from, to time.Time) (map[string]int, error)
}

type NoteRepository interface {
	Create(ctx context.Context, n model.Note) (model.Note, error)
	List(ctx context.Context, filter model.NoteFilter) ([]model.Note, error)
	Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, error)
	Delete(ctx context.Context, id string) error
	CountByDay(ctx context.Context, from, to time.Time) (map[string]int, error)
}

type ListRepository interface {
	Create(ctx context.Context, l model.List) (model.List, error)
	List(ctx context.Context) ([]model.List, error)
	Rename(ctx context.Context, id, name string) (model.List, error)
	// Delete moves the list's tasks to the default list before removing it.
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Get(ctx context.Context, username string) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
}
