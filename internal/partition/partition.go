// Package partition splits an ordered task list into the three display groups.
//
// Group membership is never stored: it is derived from the important and
// completed flags every time it is asked for.
package partition

import "github.com/BuzzLyutic/tasky/internal/model"

type Group int

const (
	Important Group = iota
	Regular
	Completed
)

func (g Group) String() string {
	switch g {
	case Important:
		return "important"
	case Regular:
		return "regular"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Of returns the group t belongs to. Completed wins over important.
func Of(t model.Task) Group {
	switch {
	case t.Completed:
		return Completed
	case t.Important:
		return Important
	default:
		return Regular
	}
}

// Same reports whether a and b are in the same effective group, i.e. whether
// one may be reordered relative to the other.
func Same(a, b model.Task) bool {
	return Of(a) == Of(b)
}

type Groups struct {
	Important []model.Task `json:"important" yaml:"important"`
	Regular   []model.Task `json:"regular" yaml:"regular"`
	Completed []model.Task `json:"completed" yaml:"completed"`
}

// Split is a stable filter: each group keeps the relative order of tasks in
// the input.
func Split(tasks []model.Task) Groups {
	var g Groups
	for _, t := range tasks {
		switch Of(t) {
		case Important:
			g.Important = append(g.Important, t)
		case Regular:
			g.Regular = append(g.Regular, t)
		case Completed:
			g.Completed = append(g.Completed, t)
		}
	}
	return g
}

// Merge concatenates the groups in display order.
func (g Groups) Merge() []model.Task {
	out := make([]model.Task, 0, g.Len())
	out = append(out, g.Important...)
	out = append(out, g.Regular...)
	out = append(out, g.Completed...)
	return out
}

func (g Groups) Len() int {
	return len(g.Important) + len(g.Regular) + len(g.Completed)
}

// Get returns the sub-list for group.
func (g Groups) Get(group Group) []model.Task {
	switch group {
	case Important:
		return g.Important
	case Regular:
		return g.Regular
	default:
		return g.Completed
	}
}

// With returns a copy of g where group is replaced by tasks.
func (g Groups) With(group Group, tasks []model.Task) Groups {
	switch group {
	case Important:
		g.Important = tasks
	case Regular:
		g.Regular = tasks
	default:
		g.Completed = tasks
	}
	return g
}
