// Package ordering keeps the client-side ordered view of tasks and drives
// optimistic reorders against the remote store.
//
// Every mutation is applied to the local view synchronously and published to
// the OnChange hook before the matching persistence call is handed to the
// dispatcher. When a reorder or delete fails to persist, the engine reloads
// from the repository and accepts whatever order the store holds.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasky/internal/model"
	"github.com/BuzzLyutic/tasky/internal/partition"
	"github.com/BuzzLyutic/tasky/internal/worker"
)

var (
	ErrTaskNotFound = errors.New("task not found in view")
	ErrTaskExists   = errors.New("task already in view")
	ErrLoad         = errors.New("failed to load tasks")
	ErrPersist      = errors.New("failed to persist change")
)

// Repository is the record store the engine loads from and delegates
// record-level mutations to.
type Repository interface {
	Fetch(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	Create(ctx context.Context, draft model.TaskDraft) (model.Task, error)
	Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, id string) error
}

// PositionStore sets position[i] = index of ids[i] for every id in one call.
type PositionStore interface {
	BulkSetPositions(ctx context.Context, ids []string) error
}

// Dispatcher runs persistence jobs off the caller's goroutine.
type Dispatcher interface {
	Submit(job worker.Job) error
	Drain()
}

type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

type State int

const (
	Idle State = iota
	Loading
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	default:
		return "error"
	}
}

// View is an immutable snapshot for the presentation layer.
type View struct {
	// Order is the flat order whose identities are sent to the position store.
	Order  []model.Task
	Groups partition.Groups
	State  State
	// Notice is the last error worth showing to the user, if any.
	Notice error
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithFilter restricts Load to one list and/or creation day.
func WithFilter(filter model.TaskFilter) Option {
	return func(e *Engine) { e.filter = filter }
}

// WithOnChange registers fn to be called with a fresh snapshot after every
// local state transition. fn must not call back into the engine's mutating
// methods synchronously.
func WithOnChange(fn func(View)) Option {
	return func(e *Engine) { e.onChange = fn }
}

type Engine struct {
	repo      Repository
	positions PositionStore
	dispatch  Dispatcher
	logger    *zap.Logger
	filter    model.TaskFilter
	onChange  func(View)

	mu     sync.Mutex
	order  []model.Task
	state  State
	notice error
}

func New(repo Repository, positions PositionStore, dispatch Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		repo:      repo,
		positions: positions,
		dispatch:  dispatch,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// View returns the current snapshot.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Wait blocks until all persistence calls issued so far, and any reloads they
// triggered, have finished.
func (e *Engine) Wait() {
	e.dispatch.Drain()
}

// Dismiss clears the current notice.
func (e *Engine) Dismiss() {
	e.mu.Lock()
	e.notice = nil
	v := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(v)
}

// Load replaces the view with the repository's current tasks. On failure the
// view is emptied and the engine enters the Failed state.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	e.state = Loading
	v := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(v)

	tasks, err := e.repo.Fetch(ctx, e.filter)

	e.mu.Lock()
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrLoad, err)
		e.order = nil
		e.state = Failed
		e.notice = err
	} else {
		e.order = Sort(tasks)
		e.state = Idle
		e.notice = nil
	}
	v = e.snapshotLocked()
	e.mu.Unlock()
	e.notify(v)

	if err != nil {
		e.logger.Error("load failed", zap.Error(err))
		return err
	}
	e.logger.Debug("view loaded", zap.Int("tasks", len(v.Order)))
	return nil
}

// Create asks the repository for a new record and inserts it on top.
func (e *Engine) Create(ctx context.Context, draft model.TaskDraft) (model.Task, error) {
	t, err := e.repo.Create(ctx, draft)
	if err != nil {
		e.setNotice(fmt.Errorf("%w: %w", ErrPersist, err))
		return model.Task{}, err
	}
	if err := e.Insert(t); err != nil {
		return t, err
	}
	return t, nil
}

// Insert places t at the head of its group and renumbers everything.
func (e *Engine) Insert(t model.Task) error {
	e.mu.Lock()
	if e.indexLocked(t.ID) >= 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskExists, t.ID)
	}
	order := make([]model.Task, 0, len(e.order)+1)
	order = append(order, t)
	order = append(order, e.order...)
	ids := e.commitLocked(order)
	v := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(v)
	e.persistOrder("insert", ids)
	return nil
}

// Move swaps id with the nearest task of the same group in direction dir.
// It reports false when id is already at its group's boundary.
func (e *Engine) Move(id string, dir Direction) (bool, error) {
	e.mu.Lock()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	step := 1
	if dir == Up {
		step = -1
	}
	j := idx + step
	for j >= 0 && j < len(e.order) && !partition.Same(e.order[j], e.order[idx]) {
		j += step
	}
	if j < 0 || j >= len(e.order) {
		e.mu.Unlock()
		return false, nil
	}

	order := clone(e.order)
	order[idx], order[j] = order[j], order[idx]
	ids := e.commitLocked(order)
	v := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(v)
	e.persistOrder("move-"+dir.String(), ids)
	return true, nil
}

// DragMove moves sourceID to targetID's slot inside their shared group. Drops
// across groups are ignored and report false.
func (e *Engine) DragMove(sourceID, targetID string) (bool, error) {
	if sourceID == targetID {
		return false, nil
	}

	e.mu.Lock()
	si, ti := e.indexLocked(sourceID), e.indexLocked(targetID)
	if si < 0 || ti < 0 {
		e.mu.Unlock()
		missing := sourceID
		if si >= 0 {
			missing = targetID
		}
		return false, fmt.Errorf("%w: %s", ErrTaskNotFound, missing)
	}
	source, target := e.order[si], e.order[ti]
	if !partition.Same(source, target) {
		e.mu.Unlock()
		e.logger.Debug("drop across groups ignored",
			zap.String("source", sourceID),
			zap.String("target", targetID),
		)
		return false, nil
	}

	groups := partition.Split(e.order)
	group := partition.Of(source)

	rest := make([]model.Task, 0, len(groups.Get(group)))
	for _, t := range groups.Get(group) {
		if t.ID != sourceID {
			rest = append(rest, t)
		}
	}
	at := 0
	for i, t := range rest {
		if t.ID == targetID {
			at = i
			break
		}
	}
	moved := make([]model.Task, 0, len(rest)+1)
	moved = append(moved, rest[:at]...)
	moved = append(moved, source)
	moved = append(moved, rest[at:]...)

	ids := e.commitLocked(groups.With(group, moved).Merge())
	v := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(v)
	e.persistOrder("drag", ids)
	return true, nil
}

func (e *Engine) ToggleImportant(id string) error {
	return e.edit(id, "toggle-important", func(t model.Task) model.TaskPatch {
		v := !t.Important
		return model.TaskPatch{Important: &v}
	})
}

func (e *Engine) ToggleCompleted(id string) error {
	return e.edit(id, "toggle-completed", func(t model.Task) model.TaskPatch {
		v := !t.Completed
		return model.TaskPatch{Completed: &v}
	})
}

// Edit applies patch locally and forwards it to the repository. Position is
// never touched, so a flag change moves the task between groups on the next
// render without a reorder call.
func (e *Engine) Edit(id string, patch model.TaskPatch) error {
	return e.edit(id, "edit", func(model.Task) model.TaskPatch { return patch })
}

// Delete drops id from the view and deletes the record. Positions are not
// renumbered; the next reorder closes the gap.
func (e *Engine) Delete(id string) error {
	e.mu.Lock()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	order := make([]model.Task, 0, len(e.order)-1)
	order = append(order, e.order[:idx]...)
	order = append(order, e.order[idx+1:]...)
	e.order = order
	v := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(v)
	e.submit(worker.Job{
		Name: "delete",
		Run: func(ctx context.Context) error {
			return e.repo.Delete(ctx, id)
		},
		Err: e.reconcile,
	})
	return nil
}

func (e *Engine) edit(id, name string, patchFor func(model.Task) model.TaskPatch) error {
	e.mu.Lock()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	patch := patchFor(e.order[idx])
	order := clone(e.order)
	order[idx] = patch.Apply(order[idx])
	e.order = order
	v := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(v)
	e.submit(worker.Job{
		Name: name,
		Run: func(ctx context.Context) error {
			_, err := e.repo.Update(ctx, id, patch)
			return err
		},
		// Record-level failures leave the optimistic edit in place.
		Err: func(_ context.Context, err error) {
			e.setNotice(fmt.Errorf("%w: %w", ErrPersist, err))
		},
	})
	return nil
}

func (e *Engine) persistOrder(name string, ids []string) {
	e.submit(worker.Job{
		Name: name,
		Run: func(ctx context.Context) error {
			return e.positions.BulkSetPositions(ctx, ids)
		},
		Err: e.reconcile,
	})
}

func (e *Engine) submit(job worker.Job) {
	if err := e.dispatch.Submit(job); err != nil {
		e.logger.Error("failed to dispatch job", zap.String("job", job.Name), zap.Error(err))
		e.setNotice(fmt.Errorf("%w: %w", ErrPersist, err))
	}
}

// reconcile discards the optimistic order and reloads from the repository.
func (e *Engine) reconcile(ctx context.Context, cause error) {
	e.logger.Warn("persistence failed, reloading view", zap.Error(cause))
	if err := e.Load(ctx); err != nil {
		return
	}
	e.setNotice(fmt.Errorf("%w: %w", ErrPersist, cause))
}

func (e *Engine) setNotice(err error) {
	e.mu.Lock()
	e.notice = err
	v := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(v)
}

// commitLocked regroups order, renumbers it densely over important, regular
// and completed, installs it and returns its identities.
func (e *Engine) commitLocked(order []model.Task) []string {
	order = partition.Split(order).Merge()
	ids := make([]string, len(order))
	for i := range order {
		order[i] = order[i].WithPosition(i)
		ids[i] = order[i].ID
	}
	e.order = order
	return ids
}

func (e *Engine) indexLocked(id string) int {
	for i, t := range e.order {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) snapshotLocked() View {
	order := clone(e.order)
	return View{
		Order:  order,
		Groups: partition.Split(order),
		State:  e.state,
		Notice: e.notice,
	}
}

func (e *Engine) notify(v View) {
	if e.onChange != nil {
		e.onChange(v)
	}
}

func clone(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}
