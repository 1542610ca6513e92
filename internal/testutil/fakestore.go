// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/BuzzLyutic/tasky/internal/model"
)

// ErrNotFound is returned when a task does not exist in the fake store.
var ErrNotFound = errors.New("not found")

// Op names an operation for error injection.
type Op string

const (
	OpFetch   Op = "fetch"
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
	OpBulkSet Op = "bulk-set"
)

// FakeStore is an in-memory task repository and position store.
type FakeStore struct {
	mu      sync.Mutex
	tasks   map[string]model.Task
	nextID  int
	base    time.Time
	errs    map[Op]error
	bulkSet [][]string
	updates []string
	deletes []string
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		tasks: make(map[string]model.Task),
		base:  time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		errs:  make(map[Op]error),
	}
}

// Seed stores tasks as-is.
func (f *FakeStore) Seed(tasks ...model.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range tasks {
		f.tasks[t.ID] = t
	}
}

// Fail makes every later call of op return err; a nil err clears it.
func (f *FakeStore) Fail(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, op)
		return
	}
	f.errs[op] = err
}

func (f *FakeStore) Fetch(_ context.Context, filter model.TaskFilter) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[OpFetch]; err != nil {
		return nil, err
	}

	out := make([]model.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		if filter.ListID != nil && t.ListID != *filter.ListID {
			continue
		}
		out = append(out, t)
	}
	// Map order is random; the engine must not depend on fetch order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeStore) Create(_ context.Context, d model.TaskDraft) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[OpCreate]; err != nil {
		return model.Task{}, err
	}

	f.nextID++
	listID := d.ListID
	if listID == "" {
		listID = model.DefaultListID
	}
	t := model.Task{
		ID:          fmt.Sprintf("new-%d", f.nextID),
		Text:        d.Text,
		Description: d.Description,
		Important:   d.Important,
		Completed:   d.Completed,
		ListID:      listID,
		CreatedAt:   f.base.Add(time.Duration(f.nextID) * time.Hour),
	}
	f.tasks[t.ID] = t
	return t, nil
}

func (f *FakeStore) Update(_ context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, id)
	if err := f.errs[OpUpdate]; err != nil {
		return model.Task{}, err
	}
	t, ok := f.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	t = patch.Apply(t)
	f.tasks[id] = t
	return t, nil
}

func (f *FakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if err := f.errs[OpDelete]; err != nil {
		return err
	}
	if _, ok := f.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *FakeStore) BulkSetPositions(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkSet = append(f.bulkSet, append([]string(nil), ids...))
	if err := f.errs[OpBulkSet]; err != nil {
		return err
	}
	for i, id := range ids {
		if t, ok := f.tasks[id]; ok {
			f.tasks[id] = t.WithPosition(i)
		}
	}
	return nil
}

// Task returns the stored copy of id.
func (f *FakeStore) Task(id string) (model.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	return t, ok
}

// BulkSetCalls returns the identity lists of every BulkSetPositions call.
func (f *FakeStore) BulkSetCalls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.bulkSet))
	copy(out, f.bulkSet)
	return out
}

func (f *FakeStore) UpdateCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.updates...)
}

func (f *FakeStore) DeleteCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

// Positioned builds a task at pos for seeding.
func Positioned(id string, pos int, important, completed bool) model.Task {
	return model.Task{
		ID:        id,
		Text:      id,
		Important: important,
		Completed: completed,
		ListID:    model.DefaultListID,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}.WithPosition(pos)
}
