package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/BuzzLyutic/tasky/internal/model"
	"github.com/BuzzLyutic/tasky/internal/repo"
	"github.com/BuzzLyutic/tasky/internal/service"
	"github.com/BuzzLyutic/tasky/tests"
)

type apiFixture struct {
	t      *testing.T
	router http.Handler
	token  string
}

func setupAPI(t *testing.T) *apiFixture {
	pool, cleanup := tests.SetupTestDB(t)
	t.Cleanup(cleanup)

	logger := zap.NewNop()
	taskRepo := repo.NewTaskRepo(pool)
	noteRepo := repo.NewNoteRepo(pool)

	router := NewRouter(Services{
		Tasks:    service.NewTaskService(taskRepo, logger),
		Notes:    service.NewNoteService(noteRepo),
		Lists:    service.NewListService(repo.NewListRepo(pool)),
		Calendar: service.NewCalendarService(taskRepo, noteRepo),
		Auth:     service.NewAuthService(repo.NewUserRepo(pool), "test-secret", time.Hour, service.WithHashCost(bcrypt.MinCost)),
	}, logger, []string{"*"})

	f := &apiFixture{t: t, router: router}
	w := f.do(http.MethodPost, "/api/auth", LoginRequest{Password: "pw"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp LoginResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	f.token = resp.Token
	return f
}

func (f *apiFixture) do(method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	f.t.Helper()

	var buf []byte
	if body != nil {
		var err error
		buf, err = json.Marshal(body)
		require.NoError(f.t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) createTask(text string) model.Task {
	f.t.Helper()
	w := f.do(http.MethodPost, "/api/tasks", model.TaskDraft{Text: text}, nil)
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	var task model.Task
	require.NoError(f.t, json.NewDecoder(w.Body).Decode(&task))
	return task
}

func decodeTasks(t *testing.T, w *httptest.ResponseRecorder) []model.Task {
	t.Helper()
	var tasks []model.Task
	require.NoError(t, json.NewDecoder(w.Body).Decode(&tasks))
	return tasks
}

func TestTaskHandler_Create(t *testing.T) {
	api := setupAPI(t)

	tests := []struct {
		name          string
		body          any
		idempKey      string
		wantCode      int
		checkResponse func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:     "successful creation",
			body:     model.TaskDraft{Text: "Test Task", Important: true},
			wantCode: http.StatusCreated,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var task model.Task
				require.NoError(t, json.NewDecoder(w.Body).Decode(&task))
				assert.NotEmpty(t, task.ID)
				assert.Equal(t, "Test Task", task.Text)
				assert.True(t, task.Important)
				assert.Equal(t, model.DefaultListID, task.ListID)
				assert.Nil(t, task.Position)
				assert.Equal(t, "/api/tasks/"+task.ID, w.Header().Get("Location"))
			},
		},
		{
			name:     "empty body",
			body:     nil,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "validation error",
			body:     model.TaskDraft{Text: ""},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown list",
			body:     model.TaskDraft{Text: "x", ListID: "ghost"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "with idempotency key",
			body:     model.TaskDraft{Text: "Idempotent Task"},
			idempKey: "test-key-123",
			wantCode: http.StatusCreated,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				// Send again with same key
				w2 := api.do(http.MethodPost, "/api/tasks", model.TaskDraft{Text: "Idempotent Task"},
					map[string]string{"Idempotency-Key": "test-key-123"})

				var task1, task2 model.Task
				require.NoError(t, json.NewDecoder(w.Body).Decode(&task1))
				require.NoError(t, json.NewDecoder(w2.Body).Decode(&task2))

				assert.Equal(t, task1.ID, task2.ID, "should return same task")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := map[string]string{}
			if tt.idempKey != "" {
				header["Idempotency-Key"] = tt.idempKey
			}

			w := api.do(http.MethodPost, "/api/tasks", tt.body, header)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestTaskHandler_GetUpdateDelete(t *testing.T) {
	api := setupAPI(t)
	created := api.createTask("Original")

	t.Run("get existing task", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/tasks/"+created.ID, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var task model.Task
		require.NoError(t, json.NewDecoder(w.Body).Decode(&task))
		assert.Equal(t, created.ID, task.ID)
	})

	t.Run("get non-existing task", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/tasks/99999", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("partial update", func(t *testing.T) {
		w := api.do(http.MethodPatch, "/api/tasks/"+created.ID, map[string]any{"completed": true}, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var task model.Task
		require.NoError(t, json.NewDecoder(w.Body).Decode(&task))
		assert.True(t, task.Completed)
		assert.Equal(t, "Original", task.Text)
	})

	t.Run("empty patch", func(t *testing.T) {
		w := api.do(http.MethodPatch, "/api/tasks/"+created.ID, map[string]any{}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("successful delete", func(t *testing.T) {
		w := api.do(http.MethodDelete, "/api/tasks/"+created.ID, nil, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("delete non-existing", func(t *testing.T) {
		w := api.do(http.MethodDelete, "/api/tasks/"+created.ID, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTaskHandler_Reorder(t *testing.T) {
	api := setupAPI(t)
	a, b, c := api.createTask("a"), api.createTask("b"), api.createTask("c")

	t.Run("list starts newest first", func(t *testing.T) {
		tasks := decodeTasks(t, api.do(http.MethodGet, "/api/tasks", nil, nil))
		require.Len(t, tasks, 3)
		assert.Equal(t, []string{c.ID, b.ID, a.ID}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
	})

	t.Run("reorder sets positions", func(t *testing.T) {
		w := api.do(http.MethodPut, "/api/tasks/reorder", ReorderRequest{IDs: []string{b.ID, a.ID, c.ID}}, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		tasks := decodeTasks(t, api.do(http.MethodGet, "/api/tasks", nil, nil))
		require.Len(t, tasks, 3)
		for i, want := range []string{b.ID, a.ID, c.ID} {
			assert.Equal(t, want, tasks[i].ID)
			require.NotNil(t, tasks[i].Position)
			assert.Equal(t, i, *tasks[i].Position)
		}
	})

	t.Run("duplicate ids", func(t *testing.T) {
		w := api.do(http.MethodPut, "/api/tasks/reorder", ReorderRequest{IDs: []string{a.ID, a.ID}}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := api.do(http.MethodPut, "/api/tasks/reorder", ReorderRequest{IDs: []string{a.ID, "ghost"}}, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTaskHandler_ListFilters(t *testing.T) {
	api := setupAPI(t)
	api.createTask("home")

	w := api.do(http.MethodPost, "/api/lists", map[string]string{"name": "Work"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var work model.List
	require.NoError(t, json.NewDecoder(w.Body).Decode(&work))

	w = api.do(http.MethodPost, "/api/tasks", model.TaskDraft{Text: "report", ListID: work.ID}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	tasks := decodeTasks(t, api.do(http.MethodGet, "/api/tasks?listId="+work.ID, nil, nil))
	require.Len(t, tasks, 1)
	assert.Equal(t, "report", tasks[0].Text)

	today := time.Now().UTC().Format(dateLayout)
	tasks = decodeTasks(t, api.do(http.MethodGet, "/api/tasks?date="+today, nil, nil))
	assert.Len(t, tasks, 2)

	w = api.do(http.MethodGet, "/api/tasks?date=yesterday", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_Stats(t *testing.T) {
	api := setupAPI(t)

	for i := 0; i < 6; i++ {
		draft := model.TaskDraft{Text: fmt.Sprintf("Task %d", i), Important: i%2 == 0, Completed: i == 5}
		w := api.do(http.MethodPost, "/api/tasks", draft, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := api.do(http.MethodGet, "/api/stats", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var stats model.Stats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, model.Stats{Important: 3, Regular: 2, Completed: 1, TotalTasks: 6}, stats)
}

func TestNotesListsCalendar(t *testing.T) {
	api := setupAPI(t)

	t.Run("notes", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/notes", map[string]any{"title": "idea", "content": "x"}, nil)
		require.Equal(t, http.StatusCreated, w.Code)
		var note model.Note
		require.NoError(t, json.NewDecoder(w.Body).Decode(&note))

		w = api.do(http.MethodPatch, "/api/notes/"+note.ID, map[string]any{"isImportant": true}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = api.do(http.MethodGet, "/api/notes", nil, nil)
		var notes []model.Note
		require.NoError(t, json.NewDecoder(w.Body).Decode(&notes))
		require.Len(t, notes, 1)
		assert.True(t, notes[0].Important)

		w = api.do(http.MethodPost, "/api/notes", map[string]any{"title": ""}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("deleting a list moves its tasks to default", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/lists", map[string]string{"name": "Temp"}, nil)
		require.Equal(t, http.StatusCreated, w.Code)
		var list model.List
		require.NoError(t, json.NewDecoder(w.Body).Decode(&list))

		w = api.do(http.MethodPost, "/api/tasks", model.TaskDraft{Text: "orphaned", ListID: list.ID}, nil)
		require.Equal(t, http.StatusCreated, w.Code)
		var task model.Task
		require.NoError(t, json.NewDecoder(w.Body).Decode(&task))

		w = api.do(http.MethodDelete, "/api/lists/"+list.ID, nil, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = api.do(http.MethodGet, "/api/tasks/"+task.ID, nil, nil)
		require.NoError(t, json.NewDecoder(w.Body).Decode(&task))
		assert.Equal(t, model.DefaultListID, task.ListID)
	})

	t.Run("default list is protected", func(t *testing.T) {
		w := api.do(http.MethodDelete, "/api/lists/"+model.DefaultListID, nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("calendar", func(t *testing.T) {
		now := time.Now().UTC()
		w := api.do(http.MethodGet, fmt.Sprintf("/api/calendar?year=%d&month=%d", now.Year(), int(now.Month())), nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var days []model.CalendarDay
		require.NoError(t, json.NewDecoder(w.Body).Decode(&days))
		require.NotEmpty(t, days)
		today := days[now.Day()-1]
		assert.Equal(t, now.Format(dateLayout), today.Date)
		assert.Equal(t, 1, today.NoteCount)
		assert.Equal(t, 1, today.TodoCount)

		w = api.do(http.MethodGet, "/api/calendar?year=2025&month=13", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w = api.do(http.MethodGet, "/api/calendar", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler(t *testing.T) {
	api := setupAPI(t)
	api.token = ""

	w := api.do(http.MethodPost, "/api/auth", LoginRequest{Password: "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/auth", LoginRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/auth", LoginRequest{Password: "pw"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
