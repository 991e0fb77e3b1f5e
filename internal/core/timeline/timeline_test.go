package timeline

import (
	"testing"
	"time"

	"github.com/riordanpawley/planboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) domain.Date {
	return domain.Day(y, m, d)
}

func planned(id string, start, end domain.Date) domain.Task {
	return domain.Task{ID: id, Name: id, PlannedStartDate: start, PlannedEndDate: end}
}

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

func TestBuild_DayZoom(t *testing.T) {
	tasks := []domain.Task{
		planned("a", day(2024, 3, 1), day(2024, 3, 3)),
		planned("b", day(2024, 3, 4), day(2024, 3, 5)),
	}

	tl := Build(tasks, ZoomDay, at(2024, 6, 1))

	require.False(t, tl.Empty)
	assert.Equal(t, 5, tl.Columns)
	require.Len(t, tl.Fine, 5)
	assert.Equal(t, []HeaderCell{{Label: "Mar 2024", Span: 5}}, tl.Coarse)
	assert.Equal(t, "1", tl.Fine[0].Label)
	assert.Equal(t, "Fri", tl.Fine[0].SubLabel)
	assert.Nil(t, tl.Today, "today outside the range has no marker")

	require.Len(t, tl.Rows, 2)
	assert.Equal(t, &Bar{Start: 0, Duration: 3}, tl.Rows[0].Planned)
	assert.Equal(t, &Bar{Start: 3, Duration: 2}, tl.Rows[1].Planned)
	assert.Nil(t, tl.Rows[0].Baseline)
}

func TestBuild_TodayMarker(t *testing.T) {
	tasks := []domain.Task{planned("a", day(2024, 3, 1), day(2024, 3, 5))}

	tests := []struct {
		name  string
		today time.Time
		want  *float64
	}{
		{name: "before range", today: at(2024, 2, 29)},
		{name: "after range", today: at(2024, 3, 6)},
		{name: "first day", today: at(2024, 3, 1), want: ptr(0)},
		{name: "middle", today: at(2024, 3, 3), want: ptr(2)},
		{name: "last day", today: at(2024, 3, 5), want: ptr(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := Build(tasks, ZoomDay, tt.today)
			assert.Equal(t, tt.want, tl.Today)
		})
	}
}

func TestBuild_WeekZoom(t *testing.T) {
	// 2024-03-01 is a Friday, so the chart anchors on Monday 2024-02-26
	tasks := []domain.Task{planned("a", day(2024, 3, 1), day(2024, 3, 5))}

	tl := Build(tasks, ZoomWeek, at(2024, 3, 4))

	assert.Equal(t, 2, tl.Columns)
	assert.Equal(t, []HeaderCell{{Label: "Feb 2024", Span: 1}, {Label: "Mar 2024", Span: 1}}, tl.Coarse)
	assert.Equal(t, "W09", tl.Fine[0].Label)
	assert.Equal(t, "Feb 26", tl.Fine[0].SubLabel)
	assert.True(t, tl.Fine[0].Date.Equal(day(2024, 2, 26)))

	bar := tl.Rows[0].Planned
	require.NotNil(t, bar)
	assert.InDelta(t, 4.0/7, bar.Start, 1e-9)
	assert.InDelta(t, 5.0/7, bar.Duration, 1e-9)

	require.NotNil(t, tl.Today)
	assert.InDelta(t, 1.0, *tl.Today, 1e-9)
}

func TestBuild_MonthZoom(t *testing.T) {
	tasks := []domain.Task{
		planned("a", day(2024, 11, 15), day(2024, 11, 30)),
		planned("b", day(2025, 1, 20), day(2025, 2, 10)),
	}

	tl := Build(tasks, ZoomMonth, at(2030, 1, 1))

	assert.Equal(t, 4, tl.Columns)
	assert.Equal(t, []HeaderCell{{Label: "2024", Span: 2}, {Label: "2025", Span: 2}}, tl.Coarse)
	assert.Equal(t, "Nov", tl.Fine[0].Label)
	assert.Equal(t, "2024", tl.Fine[0].SubLabel)

	assert.Equal(t, 0.0, tl.Rows[0].Planned.Start)
	assert.InDelta(t, 16/30.44, tl.Rows[0].Planned.Duration, 1e-9)
	assert.Equal(t, 2.0, tl.Rows[1].Planned.Start)
	assert.InDelta(t, 22/30.44, tl.Rows[1].Planned.Duration, 1e-9)
}

func TestBuild_BaselineSharesAnchor(t *testing.T) {
	task := planned("a", day(2024, 3, 3), day(2024, 3, 5))
	task.BaselineStartDate = day(2024, 3, 1)
	task.BaselineEndDate = day(2024, 3, 2)

	tl := Build([]domain.Task{task}, ZoomDay, at(2024, 3, 1))

	assert.True(t, tl.Start.Equal(day(2024, 3, 1)), "baseline dates widen the bounds")
	assert.Equal(t, 5, tl.Columns)
	assert.Equal(t, &Bar{Start: 2, Duration: 3}, tl.Rows[0].Planned)
	assert.Equal(t, &Bar{Start: 0, Duration: 2}, tl.Rows[0].Baseline)
}

func TestBuild_InvalidDatesAreIsolated(t *testing.T) {
	tasks := []domain.Task{
		planned("good", day(2024, 3, 1), day(2024, 3, 5)),
		planned("bad", domain.ParseDate("someday"), domain.ParseDate("never")),
		planned("half", domain.ParseDate("soon"), day(2030, 1, 1)),
		planned("blank", domain.Date{}, domain.Date{}),
	}

	tl := Build(tasks, ZoomDay, at(2024, 3, 2))

	assert.True(t, tl.Start.Equal(day(2024, 3, 1)))
	assert.True(t, tl.End.Equal(day(2030, 1, 1)), "the valid half of a task still counts")
	require.Len(t, tl.Rows, 4)
	assert.NotNil(t, tl.Rows[0].Planned)
	assert.Nil(t, tl.Rows[1].Planned)
	assert.Nil(t, tl.Rows[2].Planned, "a single valid date draws no bar")
	assert.Nil(t, tl.Rows[3].Planned)
}

func TestBuild_EndBeforeStartIsOneDay(t *testing.T) {
	tasks := []domain.Task{
		planned("a", day(2024, 3, 1), day(2024, 3, 5)),
		planned("b", day(2024, 3, 4), day(2024, 3, 2)),
	}

	tl := Build(tasks, ZoomDay, at(2024, 3, 1))

	assert.Equal(t, &Bar{Start: 3, Duration: 1}, tl.Rows[1].Planned)
}

func TestBuild_FallbackRange(t *testing.T) {
	tasks := []domain.Task{planned("a", domain.Date{}, domain.ParseDate("tbd"))}
	today := time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC)

	tl := Build(tasks, ZoomDay, today)

	require.False(t, tl.Empty)
	assert.True(t, tl.Start.Equal(day(2024, 5, 10)))
	assert.True(t, tl.End.Equal(day(2024, 6, 9)))
	assert.Equal(t, 31, tl.Columns)
	require.NotNil(t, tl.Today)
	assert.Equal(t, 0.0, *tl.Today)
}

func TestBuild_Empty(t *testing.T) {
	tl := Build(nil, ZoomWeek, at(2024, 1, 1))

	assert.True(t, tl.Empty)
	assert.Equal(t, 0, tl.Columns)
	assert.Empty(t, tl.Fine)
	assert.Empty(t, tl.Coarse)
	assert.Nil(t, tl.Today)
	assert.Equal(t, 0.0, tl.Percent(3))

	_, ok := tl.Position(day(2024, 1, 1))
	assert.False(t, ok)
}

func TestBuild_RowsFollowTree(t *testing.T) {
	child := planned("c", day(2024, 3, 2), day(2024, 3, 3))
	child.ParentID = domain.StringPtr("p")
	tasks := []domain.Task{
		child,
		planned("r", day(2024, 3, 1), day(2024, 3, 1)),
		planned("p", day(2024, 3, 1), day(2024, 3, 4)),
	}

	tl := Build(tasks, ZoomDay, at(2024, 3, 1))

	var ids []string
	for _, r := range tl.Rows {
		ids = append(ids, r.TaskID)
	}
	assert.Equal(t, []string{"r", "p", "c"}, ids)
	assert.Equal(t, 1, tl.Rows[2].Depth)
}

func TestBuild_UnknownZoomFallsBackToDay(t *testing.T) {
	tl := Build([]domain.Task{planned("a", day(2024, 3, 1), day(2024, 3, 2))}, Zoom("fortnight"), at(2024, 3, 1))

	assert.Equal(t, ZoomDay, tl.Zoom)
	assert.Equal(t, 2, tl.Columns)
}

func TestBuild_ExtremeSpanIsCapped(t *testing.T) {
	far := []domain.Task{planned("a", day(1, 1, 1), day(9999, 12, 31))}

	tests := []struct {
		zoom    Zoom
		columns int
	}{
		{ZoomDay, 3660},
		{ZoomWeek, 1044},
		{ZoomMonth, 1200},
	}
	for _, tt := range tests {
		t.Run(string(tt.zoom), func(t *testing.T) {
			tl := Build(far, tt.zoom, at(2024, 6, 1))

			assert.True(t, tl.Clamped)
			assert.Equal(t, tt.columns, tl.Columns)
			assert.Len(t, tl.Fine, tt.columns)
			assert.Nil(t, tl.Today, "today is past the cut")
			require.Len(t, tl.Rows, 1)
			assert.Equal(t, 0.0, tl.Rows[0].Planned.Start)
		})
	}

	normal := Build([]domain.Task{planned("a", day(2024, 3, 1), day(2024, 3, 3))}, ZoomDay, at(2024, 3, 2))
	assert.False(t, normal.Clamped)
}

func TestTimeline_Percent(t *testing.T) {
	tl := Build([]domain.Task{planned("a", day(2024, 3, 1), day(2024, 3, 4))}, ZoomDay, at(2024, 3, 1))

	assert.Equal(t, 25.0, tl.Percent(1))
	assert.Equal(t, 100.0, tl.Percent(tl.Rows[0].Planned.End()))
}

func TestParseZoom(t *testing.T) {
	tests := []struct {
		in      string
		want    Zoom
		wantErr bool
	}{
		{in: "day", want: ZoomDay},
		{in: "Week", want: ZoomWeek},
		{in: " month ", want: ZoomMonth},
		{in: "year", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseZoom(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownZoom)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func ptr(v float64) *float64 {
	return &v
}
