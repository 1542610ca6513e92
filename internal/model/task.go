package model

import "time"

// DefaultListID is the list every task without an explicit list belongs to.
const DefaultListID = "default"

type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Text        string    `json:"text" yaml:"text"`
	Description string    `json:"description" yaml:"description,omitempty"`
	Important   bool      `json:"isImportant" yaml:"important"`
	Completed   bool      `json:"completed" yaml:"completed"`
	ListID      string    `json:"listId" yaml:"list_id"`
	Position    *int      `json:"position,omitempty" yaml:"position,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created_at"`
}

// HasPosition reports whether the task has ever been placed by a reorder.
func (t Task) HasPosition() bool {
	return t.Position != nil
}

// WithPosition returns a copy of t placed at pos.
func (t Task) WithPosition(pos int) Task {
	p := pos
	t.Position = &p
	return t
}

// TaskDraft is a task before the store has assigned identity and creation time.
type TaskDraft struct {
	Text        string `json:"text"`
	Description string `json:"description"`
	Important   bool   `json:"isImportant"`
	Completed   bool   `json:"completed"`
	ListID      string `json:"listId"`
}

// TaskPatch carries the fields of a partial update; nil fields are left untouched.
type TaskPatch struct {
	Text        *string `json:"text,omitempty"`
	Description *string `json:"description,omitempty"`
	Important   *bool   `json:"isImportant,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	ListID      *string `json:"listId,omitempty"`
}

func (p TaskPatch) Empty() bool {
	return p.Text == nil && p.Description == nil && p.Important == nil && p.Completed == nil && p.ListID == nil
}

// Apply returns t with the non-nil patch fields applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Important != nil {
		t.Important = *p.Important
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.ListID != nil {
		t.ListID = *p.ListID
	}
	return t
}

type TaskFilter struct {
	ListID *string
	// Date selects tasks created on that calendar day (UTC).
	Date *time.Time
}

// Stats counts tasks per display group.
type Stats struct {
	Important  int `json:"important" yaml:"important"`
	Regular    int `json:"regular" yaml:"regular"`
	Completed  int `json:"completed" yaml:"completed"`
	TotalTasks int `json:"total_tasks" yaml:"total_tasks"`
}
