package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/BuzzLyutic/tasky/internal/model"
)

type listBody struct {
	Name string `json:"name"`
}

func (c *Client) CreateList(ctx context.Context, name string) (model.List, error) {
	var list model.List
	err := c.do(ctx, http.MethodPost, "/api/lists", listBody{Name: name}, nil, &list)
	return list, err
}

func (c *Client) RenameList(ctx context.Context, id, name string) (model.List, error) {
	var list model.List
	err := c.do(ctx, http.MethodPatch, "/api/lists/"+url.PathEscape(id), listBody{Name: name}, nil, &list)
	return list, err
}

// DeleteList removes a list; the server moves its tasks to the default list.
func (c *Client) DeleteList(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/lists/"+url.PathEscape(id), nil, nil, nil)
}

// NoteDraft is the body of a note create.
type NoteDraft struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Important bool   `json:"isImportant"`
}

// Notes returns all notes, or only those created on day when it is set.
func (c *Client) Notes(ctx context.Context, day *time.Time) ([]model.Note, error) {
	path := "/api/notes"
	if day != nil {
		path += "?" + url.Values{"date": {day.UTC().Format("2006-01-02")}}.Encode()
	}
	var notes []model.Note
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) CreateNote(ctx context.Context, draft NoteDraft) (model.Note, error) {
	var note model.Note
	err := c.do(ctx, http.MethodPost, "/api/notes", draft, nil, &note)
	return note, err
}

func (c *Client) UpdateNote(ctx context.Context, id string, patch model.NotePatch) (model.Note, error) {
	var note model.Note
	err := c.do(ctx, http.MethodPatch, "/api/notes/"+url.PathEscape(id), patch, nil, &note)
	return note, err
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, nil, nil)
}

// Calendar returns one entry per day of the month (1-12).
func (c *Client) Calendar(ctx context.Context, year int, month time.Month) ([]model.CalendarDay, error) {
	q := url.Values{
		"year":  {strconv.Itoa(year)},
		"month": {strconv.Itoa(int(month))},
	}
	var days []model.CalendarDay
	if err := c.do(ctx, http.MethodGet, "/api/calendar?"+q.Encode(), nil, nil, &days); err != nil {
		return nil, err
	}
	return days, nil
}
