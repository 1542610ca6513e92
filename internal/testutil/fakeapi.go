package testutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BuzzLyutic/tasky/internal/model"
)

// NewFakeAPI serves the HTTP API from store, with lists and notes kept in
// memory. Any bearer token is accepted; requests without one get 401.
func NewFakeAPI(store *FakeStore) http.Handler {
	r := chi.NewRouter()
	side := &sideStore{
		lists: []model.List{{ID: model.DefaultListID, Name: "Tasks"}},
		now:   time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	r.Post("/api/auth", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"token": "fake-token"})
	})

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") == "" {
					writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
					return
				}
				next.ServeHTTP(w, r)
			})
		})

		r.Get("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
			var filter model.TaskFilter
			if listID := r.URL.Query().Get("listId"); listID != "" {
				filter.ListID = &listID
			}
			tasks, err := store.Fetch(r.Context(), filter)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, tasks)
		})
		r.Post("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
			var draft model.TaskDraft
			if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			task, err := store.Create(r.Context(), draft)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, task)
		})
		r.Put("/api/tasks/reorder", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				IDs []string `json:"ids"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			if err := store.BulkSetPositions(r.Context(), req.IDs); err != nil {
				writeErr(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
		r.Patch("/api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
			var patch model.TaskPatch
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			task, err := store.Update(r.Context(), chi.URLParam(r, "id"), patch)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, task)
		})
		r.Delete("/api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
				writeErr(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/api/lists", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, side.allLists())
		})
		r.Post("/api/lists", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Name string `json:"name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusCreated, side.addList(req.Name))
		})
		r.Patch("/api/lists/{id}", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Name string `json:"name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			list, err := side.renameList(chi.URLParam(r, "id"), req.Name)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, list)
		})
		r.Delete("/api/lists/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := side.deleteList(chi.URLParam(r, "id")); err != nil {
				writeErr(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/api/notes", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, side.allNotes(r.URL.Query().Get("date")))
		})
		r.Post("/api/notes", func(w http.ResponseWriter, r *http.Request) {
			var n model.Note
			if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusCreated, side.addNote(n))
		})
		r.Patch("/api/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
			var patch model.NotePatch
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			note, err := side.updateNote(chi.URLParam(r, "id"), patch)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, note)
		})
		r.Delete("/api/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := side.deleteNote(chi.URLParam(r, "id")); err != nil {
				writeErr(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/api/calendar", func(w http.ResponseWriter, r *http.Request) {
			year, errY := strconv.Atoi(r.URL.Query().Get("year"))
			month, errM := strconv.Atoi(r.URL.Query().Get("month"))
			if errY != nil || errM != nil || month < 1 || month > 12 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "year and month are required"})
				return
			}
			tasks, err := store.Fetch(r.Context(), model.TaskFilter{})
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, side.calendar(year, time.Month(month), tasks))
		})
	})

	return r
}

// sideStore keeps the non-task resources of the fake API.
type sideStore struct {
	mu     sync.Mutex
	lists  []model.List
	notes  []model.Note
	nextID int
	now    time.Time
}

func (s *sideStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *sideStore) allLists() []model.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.List(nil), s.lists...)
}

func (s *sideStore) addList(name string) model.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := model.List{ID: s.id("list"), Name: name, CreatedAt: s.now}
	s.lists = append(s.lists, l)
	return l
}

func (s *sideStore) renameList(id, name string) (model.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lists {
		if s.lists[i].ID == id {
			s.lists[i].Name = name
			return s.lists[i], nil
		}
	}
	return model.List{}, ErrNotFound
}

func (s *sideStore) deleteList(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lists {
		if s.lists[i].ID == id {
			s.lists = append(s.lists[:i], s.lists[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *sideStore) allNotes(date string) []model.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Note{}
	for i := len(s.notes) - 1; i >= 0; i-- {
		if date == "" || s.notes[i].CreatedAt.Format("2006-01-02") == date {
			out = append(out, s.notes[i])
		}
	}
	return out
}

func (s *sideStore) addNote(n model.Note) model.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.id("note")
	n.CreatedAt, n.UpdatedAt = s.now, s.now
	s.notes = append(s.notes, n)
	return n
}

func (s *sideStore) updateNote(id string, p model.NotePatch) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID != id {
			continue
		}
		if p.Title != nil {
			s.notes[i].Title = *p.Title
		}
		if p.Content != nil {
			s.notes[i].Content = *p.Content
		}
		if p.Important != nil {
			s.notes[i].Important = *p.Important
		}
		return s.notes[i], nil
	}
	return model.Note{}, ErrNotFound
}

func (s *sideStore) deleteNote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *sideStore) calendar(year int, month time.Month, tasks []model.Task) []model.CalendarDay {
	s.mu.Lock()
	defer s.mu.Unlock()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := make([]model.CalendarDay, 0, 31)
	index := make(map[string]int)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		index[key] = len(days)
		days = append(days, model.CalendarDay{Date: key})
	}
	for _, t := range tasks {
		if i, ok := index[t.CreatedAt.UTC().Format("2006-01-02")]; ok {
			days[i].TodoCount++
		}
	}
	for _, n := range s.notes {
		if i, ok := index[n.CreatedAt.UTC().Format("2006-01-02")]; ok {
			days[i].NoteCount++
		}
	}
	return days
}

func writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, ErrNotFound) {
		code = http.StatusNotFound
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
