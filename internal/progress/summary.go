package progress

import (
	"slices"
)

// Summary is the outcome of the most recent attempt of one exercise
type Summary struct {
	ExerciseName string
	Status       string
	CompletedAt  Timestamp
}

// Latest returns one summary per exercise, sorted by exercise name.
// The attempt with the highest completed_at wins; attempts without one rank last.
func Latest(l Log) []Summary {
	best := make(map[string]Entry)
	for _, e := range l {
		cur, ok := best[e.ExerciseName]
		if !ok || newer(e, cur) {
			best[e.ExerciseName] = e
		}
	}

	out := make([]Summary, 0, len(best))
	for name, e := range best {
		out = append(out, Summary{
			ExerciseName: name,
			Status:       e.Status(),
			CompletedAt:  e.CompletedAt(),
		})
	}
	slices.SortFunc(out, func(a, b Summary) int {
		switch {
		case a.ExerciseName < b.ExerciseName:
			return -1
		case a.ExerciseName > b.ExerciseName:
			return 1
		}
		return 0
	})
	return out
}

func newer(a, b Entry) bool {
	ac, bc := a.CompletedAt(), b.CompletedAt()
	switch {
	case ac.IsZero():
		return false
	case bc.IsZero():
		return true
	}
	return ac.Compare(bc) > 0
}

// Without returns a copy of the log with every attempt of exercise removed,
// along with how many entries were dropped.
func (l Log) Without(exercise string) (Log, int) {
	out := make(Log, 0, len(l))
	for _, e := range l {
		if e.ExerciseName == exercise {
			continue
		}
		out = append(out, e)
	}
	return out, len(l) - len(out)
}
