package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/tasky/internal/model"
)

func newServer(t *testing.T, r chi.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithToken("tok"))
}

func TestClient_Fetch(t *testing.T) {
	r := chi.NewRouter()
	var gotQuery, gotAuth string
	r.Get("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]model.Task{{ID: "a", Text: "first"}})
	})
	c := newServer(t, r)

	list := "work"
	day := time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)
	tasks, err := c.Fetch(context.Background(), model.TaskFilter{ListID: &list, Date: &day})

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "first", tasks[0].Text)
	assert.Equal(t, "date=2025-04-02&listId=work", gotQuery)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestClient_Create(t *testing.T) {
	r := chi.NewRouter()
	var keys []string
	r.Post("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		var draft model.TaskDraft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(model.Task{ID: "n1", Text: draft.Text, Important: draft.Important})
	})
	c := newServer(t, r)

	task, err := c.Create(context.Background(), model.TaskDraft{Text: "buy milk", Important: true})
	require.NoError(t, err)
	assert.Equal(t, "n1", task.ID)
	assert.True(t, task.Important)

	_, err = c.Create(context.Background(), model.TaskDraft{Text: "again"})
	require.NoError(t, err)

	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.NotEqual(t, keys[0], keys[1])
}

func TestClient_BulkSetPositions(t *testing.T) {
	r := chi.NewRouter()
	var got struct {
		IDs []string `json:"ids"`
	}
	r.Put("/api/tasks/reorder", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	})
	c := newServer(t, r)

	require.NoError(t, c.BulkSetPositions(context.Background(), []string{"b", "a"}))
	assert.Equal(t, []string{"b", "a"}, got.IDs)
}

func TestClient_UpdateDelete(t *testing.T) {
	r := chi.NewRouter()
	var patched map[string]any
	r.Patch("/api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
		_ = json.NewEncoder(w).Encode(model.Task{ID: chi.URLParam(r, "id"), Completed: true})
	})
	r.Delete("/api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := newServer(t, r)

	done := true
	task, err := c.Update(context.Background(), "x1", model.TaskPatch{Completed: &done})
	require.NoError(t, err)
	assert.Equal(t, "x1", task.ID)
	assert.Equal(t, map[string]any{"completed": true}, patched, "only set fields are sent")

	assert.NoError(t, c.Delete(context.Background(), "x1"))
}

func TestClient_Errors(t *testing.T) {
	r := chi.NewRouter()
	r.Delete("/api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	})
	r.Put("/api/tasks/reorder", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c := newServer(t, r)

	err := c.Delete(context.Background(), "gone")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not found", apiErr.Message)

	err = c.BulkSetPositions(context.Background(), []string{"a"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestClient_Login(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["password"] != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"fresh"}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Login(context.Background(), "nope")
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Empty(t, c.Token())

	token, err := c.Login(context.Background(), "pw")
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, "fresh", c.Token())
}
