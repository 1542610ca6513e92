package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasky/internal/model"
	"github.com/BuzzLyutic/tasky/internal/repo"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

type TaskService struct {
	repo   repo.TaskRepository
	logger *zap.Logger
}

func NewTaskService(repo repo.TaskRepository, logger *zap.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

func (s *TaskService) Create(ctx context.Context, d model.TaskDraft, idempKey string) (model.Task, error) {
	if err := validateText(d.Text); err != nil { // Валидация модели на корректность введенных данных
		return model.Task{}, err
	}

	if idempKey != "" { // Обеспечение идемпотентности - если ключ с ресурсом уже существует, мы не создаем его еще раз
		if existingID, err := s.repo.GetIdempotencyKey(ctx, idempKey); err == nil {
			return s.repo.Get(ctx, existingID)
		}
	}

	listID := d.ListID
	if strings.TrimSpace(listID) == "" {
		listID = model.DefaultListID
	}

	// Создание новой задачи
	resource, err := s.repo.Create(ctx, model.Task{
		ID:          ulid.Make().String(),
		Text:        strings.TrimSpace(d.Text),
		Description: d.Description,
		Important:   d.Important,
		Completed:   d.Completed,
		ListID:      listID,
	})
	if err != nil {
		return resource, err
	}

	// Сохранение нового ключа
	if idempKey != "" {
		if err := s.repo.SaveIdempotencyKey(ctx, idempKey, resource.ID); err != nil {
			s.logger.Warn("failed to save idempotency key", zap.String("key", idempKey), zap.Error(err))
		}
	}

	return resource, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (model.Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *TaskService) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	return s.repo.List(ctx, filter)
}

func (s *TaskService) Update(ctx context.Context, id string, p model.TaskPatch) (model.Task, error) {
	if p.Empty() {
		return model.Task{}, invalid("nothing to update")
	}
	if p.Text != nil {
		if err := validateText(*p.Text); err != nil {
			return model.Task{}, err
		}
	}
	if p.ListID != nil && strings.TrimSpace(*p.ListID) == "" {
		return model.Task{}, invalid("listId must not be blank")
	}
	return s.repo.Update(ctx, id, p)
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Reorder sets every listed task's position to its index in ids.
func (s *TaskService) Reorder(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return invalid("ids must not contain blanks")
		}
		if _, dup := seen[id]; dup {
			return invalid("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
	return s.repo.Reorder(ctx, ids)
}

func (s *TaskService) GetStats(ctx context.Context) (model.Stats, error) {
	return s.repo.GetStats(ctx)
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return invalid("text is required")
	}
	return nil
}
