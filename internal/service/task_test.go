package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasky/internal/model"
	"github.com/BuzzLyutic/tasky/internal/repo"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Get(ctx context.Context, id string) (model.Task, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, id string, p model.TaskPatch) (model.Task, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) Reorder(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockTaskRepository) SaveIdempotencyKey(ctx context.Context, key, resourceID string) error {
	args := m.Called(ctx, key, resourceID)
	return args.Error(0)
}

func (m *MockTaskRepository) GetIdempotencyKey(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockTaskRepository) GetStats(ctx context.Context) (model.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Stats), args.Error(1)
}

func (m *MockTaskRepository) CountByDay(ctx context.Context, from, to time.Time) (map[string]int, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(map[string]int), args.Error(1)
}

func newTaskService(m *MockTaskRepository) *TaskService {
	return NewTaskService(m, zap.NewNop())
}

func TestTaskService_Create(t *testing.T) {
	tests := []struct {
		name      string
		draft     model.TaskDraft
		idempKey  string
		setupMock func(*MockTaskRepository)
		wantErr   error
	}{
		{
			name:  "successful creation without idempotency key",
			draft: model.TaskDraft{Text: "  Test Task  "},
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(t model.Task) bool {
					return t.Text == "Test Task" && t.ListID == model.DefaultListID && len(t.ID) == 26
				})).Return(model.Task{ID: "01J0000000000000000000000A", Text: "Test Task"}, nil)
			},
		},
		{
			name:  "explicit list is kept",
			draft: model.TaskDraft{Text: "Work", ListID: "work"},
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(t model.Task) bool {
					return t.ListID == "work"
				})).Return(model.Task{ID: "t1", Text: "Work", ListID: "work"}, nil)
			},
		},
		{
			name:      "validation error - empty text",
			draft:     model.TaskDraft{Text: ""},
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:      "validation error - whitespace text",
			draft:     model.TaskDraft{Text: "   "},
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:     "idempotency - key exists",
			draft:    model.TaskDraft{Text: "Test Task"},
			idempKey: "key-123",
			setupMock: func(m *MockTaskRepository) {
				m.On("GetIdempotencyKey", mock.Anything, "key-123").Return("t42", nil)
				m.On("Get", mock.Anything, "t42").Return(model.Task{ID: "t42", Text: "Test Task"}, nil)
			},
		},
		{
			name:     "idempotency - new key",
			draft:    model.TaskDraft{Text: "Test Task"},
			idempKey: "key-456",
			setupMock: func(m *MockTaskRepository) {
				m.On("GetIdempotencyKey", mock.Anything, "key-456").Return("", repo.ErrorNotFound)
				m.On("Create", mock.Anything, mock.Anything).Return(model.Task{ID: "t1", Text: "Test Task"}, nil)
				m.On("SaveIdempotencyKey", mock.Anything, "key-456", "t1").Return(nil)
			},
		},
		{
			name:  "unknown list",
			draft: model.TaskDraft{Text: "x", ListID: "ghost"},
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(model.Task{}, repo.ErrorInvalidReference)
			},
			wantErr: repo.ErrorInvalidReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			service := newTaskService(mockRepo)
			result, err := service.Create(context.Background(), tt.draft, tt.idempKey)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, result.ID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_Update(t *testing.T) {
	text := "Updated"
	blank := "  "
	done := true

	tests := []struct {
		name      string
		patch     model.TaskPatch
		setupMock func(*MockTaskRepository)
		wantErr   error
	}{
		{
			name:  "text",
			patch: model.TaskPatch{Text: &text},
			setupMock: func(m *MockTaskRepository) {
				m.On("Update", mock.Anything, "t1", model.TaskPatch{Text: &text}).
					Return(model.Task{ID: "t1", Text: "Updated"}, nil)
			},
		},
		{
			name:  "flag only",
			patch: model.TaskPatch{Completed: &done},
			setupMock: func(m *MockTaskRepository) {
				m.On("Update", mock.Anything, "t1", mock.Anything).Return(model.Task{ID: "t1", Completed: true}, nil)
			},
		},
		{
			name:      "empty patch",
			patch:     model.TaskPatch{},
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:      "blank text",
			patch:     model.TaskPatch{Text: &blank},
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:      "blank list",
			patch:     model.TaskPatch{ListID: &blank},
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:  "missing task",
			patch: model.TaskPatch{Completed: &done},
			setupMock: func(m *MockTaskRepository) {
				m.On("Update", mock.Anything, "t1", mock.Anything).Return(model.Task{}, repo.ErrorNotFound)
			},
			wantErr: repo.ErrorNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			_, err := newTaskService(mockRepo).Update(context.Background(), "t1", tt.patch)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_Reorder(t *testing.T) {
	tests := []struct {
		name      string
		ids       []string
		setupMock func(*MockTaskRepository)
		wantErr   error
	}{
		{
			name: "forwards the full order",
			ids:  []string{"b", "a", "c"},
			setupMock: func(m *MockTaskRepository) {
				m.On("Reorder", mock.Anything, []string{"b", "a", "c"}).Return(nil)
			},
		},
		{
			name:      "empty is a no-op",
			ids:       nil,
			setupMock: func(m *MockTaskRepository) {},
		},
		{
			name:      "duplicate id",
			ids:       []string{"a", "b", "a"},
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:      "blank id",
			ids:       []string{"a", ""},
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name: "unknown id",
			ids:  []string{"a", "ghost"},
			setupMock: func(m *MockTaskRepository) {
				m.On("Reorder", mock.Anything, mock.Anything).Return(repo.ErrorNotFound)
			},
			wantErr: repo.ErrorNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			err := newTaskService(mockRepo).Reorder(context.Background(), tt.ids)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_GetStats(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	expectedStats := model.Stats{Important: 2, Regular: 5, Completed: 10, TotalTasks: 17}

	mockRepo.On("GetStats", mock.Anything).Return(expectedStats, nil)

	stats, err := newTaskService(mockRepo).GetStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, expectedStats, stats)
	mockRepo.AssertExpectations(t)
}
