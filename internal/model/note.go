package model

import "time"

type Note struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Content   string    `json:"content" yaml:"content,omitempty"`
	Important bool      `json:"isImportant" yaml:"important"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}

type NotePatch struct {
	Title     *string `json:"title,omitempty"`
	Content   *string `json:"content,omitempty"`
	Important *bool   `json:"isImportant,omitempty"`
}

type NoteFilter struct {
	Date *time.Time
}

type List struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// CalendarDay is the per-day aggregate shown in the month view.
type CalendarDay struct {
	Date      string `json:"date" yaml:"date"`
	TodoCount int    `json:"todoCount" yaml:"todos"`
	NoteCount int    `json:"noteCount" yaml:"notes"`
}

type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
