package commands

import (
	"testing"

	"github.com/riordanpawley/planboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Command
	}{
		{
			name: "change status",
			in:   `{"type":"change_status","payload":{"taskId":"A","status":"done"}}`,
			want: ChangeStatus{TaskID: "A", Status: "done"},
		},
		{
			name: "bulk move",
			in:   `{"type":"bulk_move","payload":{"taskIds":["A","B"],"status":"blocked"}}`,
			want: BulkMove{TaskIDs: []string{"A", "B"}, Status: "blocked"},
		},
		{
			name: "delete",
			in:   `{"type":"delete_task","payload":{"taskId":"A"}}`,
			want: DeleteTask{TaskID: "A"},
		},
		{
			name: "save baseline without payload",
			in:   `{"type":"save_baseline"}`,
			want: SaveBaseline{},
		},
		{
			name: "delete baseline ignores payload",
			in:   `{"type":"delete_baseline","payload":{"anything":1}}`,
			want: DeleteBaseline{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_EditTaskCarriesDates(t *testing.T) {
	in := `{"type":"edit_task","payload":{
		"justification":"moved",
		"task":{"id":"A","name":"Build","status":"todo","priority":"High",
			"plannedStartDate":"2024-01-05","plannedEndDate":"2024-01-07T00:00:00Z",
			"plannedHours":8,"actualHours":0,"isMilestone":false,"isCritical":false}}}`

	cmd, err := Decode([]byte(in))
	require.NoError(t, err)

	edit, ok := cmd.(EditTask)
	require.True(t, ok)
	assert.Equal(t, "moved", edit.Justification)
	assert.Equal(t, domain.PriorityHigh, edit.Task.Priority)
	assert.True(t, edit.Task.PlannedStartDate.Equal(jan(5)))
	assert.True(t, edit.Task.PlannedEndDate.Equal(jan(7)))
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "not json", in: `{`},
		{name: "unknown type", in: `{"type":"archive_task","payload":{}}`},
		{name: "missing payload", in: `{"type":"delete_task"}`},
		{name: "payload of wrong shape", in: `{"type":"bulk_delete","payload":{"taskIds":"A"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.in))
			assert.ErrorIs(t, err, domain.ErrInvalidCommand)
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	cmds := []Command{
		ChangeStatus{TaskID: "A", Status: "done"},
		BulkDuplicate{TaskIDs: []string{"A"}},
		ImportTasks{Mode: ImportReplace, Tasks: []domain.Task{{ID: "x", Name: "X", Priority: domain.PriorityLow}}},
		SaveBaseline{},
	}

	for _, cmd := range cmds {
		t.Run(string(cmd.Type()), func(t *testing.T) {
			data, err := Encode(cmd)
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, cmd, got)
		})
	}
}
