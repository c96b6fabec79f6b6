package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatest(t *testing.T) {
	log := Log{
		entry("b", "1", "completed_at", "100", "status", `"UNSUCCESSFUL"`),
		entry("a", "1", "completed_at", "50", "status", `"UNSUCCESSFUL"`),
		entry("b", "2", "completed_at", "200", "status", `"SUCCESSFUL"`),
		entry("a", "2", "completed_at", "null", "status", `"ERROR"`),
		entry("c", "1", "status", `"SUCCESSFUL"`),
	}

	got := Latest(log)

	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].ExerciseName, got[1].ExerciseName, got[2].ExerciseName})
	assert.Equal(t, "UNSUCCESSFUL", got[0].Status)
	assert.Equal(t, "SUCCESSFUL", got[1].Status)
	assert.Equal(t, "200", got[1].CompletedAt.String())
	assert.Equal(t, "SUCCESSFUL", got[2].Status)
	assert.True(t, got[2].CompletedAt.IsZero())
}

func TestLatest_Empty(t *testing.T) {
	assert.Empty(t, Latest(nil))
}

func TestLog_Without(t *testing.T) {
	log := Log{entry("a", "1"), entry("b", "1"), entry("a", "2")}

	out, removed := log.Without("a")
	assert.Equal(t, 2, removed)
	assert.Equal(t, Log{entry("b", "1")}, out)
	assert.Len(t, log, 3)

	out, removed = log.Without("zzz")
	assert.Equal(t, 0, removed)
	assert.Equal(t, log, out)
}
