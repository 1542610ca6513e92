package service

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/BuzzLyutic/tasky/internal/model"
	"github.com/BuzzLyutic/tasky/internal/repo"
)

type ListService struct {
	repo repo.ListRepository
}

func NewListService(repo repo.ListRepository) *ListService {
	return &ListService{repo: repo}
}

func (s *ListService) Create(ctx context.Context, name string) (model.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.List{}, invalid("name is required")
	}
	return s.repo.Create(ctx, model.List{ID: ulid.Make().String(), Name: name})
}

func (s *ListService) List(ctx context.Context) ([]model.List, error) {
	return s.repo.List(ctx)
}

func (s *ListService) Rename(ctx context.Context, id, name string) (model.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.List{}, invalid("name is required")
	}
	return s.repo.Rename(ctx, id, name)
}

// Delete removes a list; its tasks end up in the default list.
func (s *ListService) Delete(ctx context.Context, id string) error {
	if id == model.DefaultListID {
		return invalid("the default list cannot be deleted")
	}
	return s.repo.Delete(ctx, id)
}
