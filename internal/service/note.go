package service

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/BuzzLyutic/tasky/internal/model"
	"github.com/BuzzLyutic/tasky/internal/repo"
)

type NoteService struct {
	repo repo.NoteRepository
}

func NewNoteService(repo repo.NoteRepository) *NoteService {
	return &NoteService{repo: repo}
}

func (s *NoteService) Create(ctx context.Context, n model.Note) (model.Note, error) {
	if strings.TrimSpace(n.Title) == "" {
		return model.Note{}, invalid("title is required")
	}
	n.ID = ulid.Make().String()
	n.Title = strings.TrimSpace(n.Title)
	return s.repo.Create(ctx, n)
}

func (s *NoteService) List(ctx context.Context, filter model.NoteFilter) ([]model.Note, error) {
	return s.repo.List(ctx, filter)
}

func (s *NoteService) Update(ctx context.Context, id string, p model.NotePatch) (model.Note, error) {
	if p.Title == nil && p.Content == nil && p.Important == nil {
		return model.Note{}, invalid("nothing to update")
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return model.Note{}, invalid("title must not be blank")
	}
	return s.repo.Update(ctx, id, p)
}

func (s *NoteService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
