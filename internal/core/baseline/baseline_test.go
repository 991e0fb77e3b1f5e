package baseline

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/riordanpawley/planboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProject() domain.Project {
	p := domain.NewProject("p-1", "Launch")
	p.Tasks = []domain.Task{
		{
			ID:               "t-1",
			Name:             "Design",
			Status:           "done",
			Priority:         domain.PriorityHigh,
			PlannedStartDate: domain.Day(2024, time.January, 1),
			PlannedEndDate:   domain.Day(2024, time.January, 5),
			PlannedHours:     16,
		},
		{
			ID:               "t-2",
			Name:             "Build",
			Status:           "todo",
			PlannedStartDate: domain.Day(2024, time.January, 6),
			PlannedEndDate:   domain.ParseDate("end of Q1"),
			Dependencies:     []string{"t-1"},
		},
	}
	return p
}

func TestSave(t *testing.T) {
	p := sampleProject()
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	saved := Save(p, now)

	require.NotNil(t, saved.BaselineSavedAt)
	assert.Equal(t, now, *saved.BaselineSavedAt)
	for i, task := range saved.Tasks {
		assert.True(t, task.BaselineStartDate.Equal(task.PlannedStartDate), "task %d start", i)
		assert.True(t, task.BaselineEndDate.Equal(task.PlannedEndDate), "task %d end", i)
	}

	assert.Nil(t, p.BaselineSavedAt, "input project is untouched")
	assert.True(t, p.Tasks[0].BaselineStartDate.IsZero())
	assert.True(t, Exists(saved))
	assert.False(t, Exists(p))
}

func TestSave_Overwrites(t *testing.T) {
	first := Save(sampleProject(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	first.Tasks[0].PlannedEndDate = domain.Day(2024, time.January, 9)

	second := Save(first, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, second.Tasks[0].BaselineEndDate.Equal(domain.Day(2024, time.January, 9)))
	assert.Equal(t, time.February, second.BaselineSavedAt.Month())
}

func TestSave_KeepsBaselinePaired(t *testing.T) {
	p := domain.NewProject("p", "Half dated")
	p.Tasks = []domain.Task{
		{ID: "open-ended", PlannedStartDate: domain.Day(2024, time.March, 1)},
		{ID: "no-start", PlannedEndDate: domain.Day(2024, time.March, 9)},
		// a stale pair from an earlier save is cleared, not left behind
		{
			ID:                "stale",
			PlannedStartDate:  domain.Day(2024, time.March, 1),
			BaselineStartDate: domain.Day(2024, time.February, 1),
			BaselineEndDate:   domain.Day(2024, time.February, 5),
		},
	}

	saved := Save(p, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))

	for _, task := range saved.Tasks {
		assert.True(t, task.BaselineStartDate.IsZero(), "%s start", task.ID)
		assert.True(t, task.BaselineEndDate.IsZero(), "%s end", task.ID)
	}
}

func TestSaveDelete_RoundTrip(t *testing.T) {
	p := sampleProject()
	before, err := json.Marshal(p)
	require.NoError(t, err)

	restored := Delete(Save(p, time.Now()))

	after, err := json.Marshal(restored)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestDelete_Idempotent(t *testing.T) {
	p := sampleProject()

	once := Delete(p)
	twice := Delete(once)

	assert.Equal(t, once, twice)
	assert.Nil(t, twice.BaselineSavedAt)
	for _, task := range twice.Tasks {
		assert.False(t, task.HasBaseline())
	}
}

func TestVariances(t *testing.T) {
	p := Save(sampleProject(), time.Now())
	p.Tasks[0].PlannedStartDate = domain.Day(2024, time.January, 3)
	p.Tasks[0].PlannedEndDate = domain.Day(2024, time.January, 4)

	got := Variances(p.Tasks)

	// t-2 has a malformed end and is skipped
	assert.Equal(t, []Variance{{TaskID: "t-1", StartDays: 2, EndDays: -1}}, got)
	assert.Empty(t, Variances(sampleProject().Tasks))
}
