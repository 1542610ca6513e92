package ordering

import (
	"sort"

	"github.com/BuzzLyutic/tasky/internal/model"
)

// Sort returns tasks in view order: positioned tasks first by position, then
// unpositioned tasks newest first. Equal positions fall back to creation time.
func Sort(tasks []model.Task) []model.Task {
	out := clone(tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

func less(a, b model.Task) bool {
	switch {
	case a.HasPosition() && b.HasPosition():
		if *a.Position != *b.Position {
			return *a.Position < *b.Position
		}
	case a.HasPosition():
		return true
	case b.HasPosition():
		return false
	}
	return a.CreatedAt.After(b.CreatedAt)
}
