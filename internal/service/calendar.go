package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/BuzzLyutic/tasky/internal/model"
)

type dayCounter interface {
	CountByDay(ctx context.Context, from, to time.Time) (map[string]int, error)
}

type CalendarService struct {
	tasks dayCounter
	notes dayCounter
}

func NewCalendarService(tasks, notes dayCounter) *CalendarService {
	return &CalendarService{tasks: tasks, notes: notes}
}

// Month returns one entry per day of month (1-12) in UTC.
func (s *CalendarService) Month(ctx context.Context, year, month int) ([]model.CalendarDay, error) {
	if month < 1 || month > 12 {
		return nil, invalid("month must be between 1 and 12, got %d", month)
	}
	if year < 1 || year > 9999 {
		return nil, invalid("year out of range: %d", year)
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var todos, notes map[string]int
	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		todos, err = s.tasks.CountByDay(ctx, from, to)
		if err != nil {
			return fmt.Errorf("count tasks: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		notes, err = s.notes.CountByDay(ctx, from, to)
		if err != nil {
			return fmt.Errorf("count notes: %w", err)
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	days := make([]model.CalendarDay, 0, 31)
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		days = append(days, model.CalendarDay{
			Date:      key,
			TodoCount: todos[key],
			NoteCount: notes[key],
		})
	}
	return days, nil
}
