package overlay

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// answerOf runs the dialog's command and returns the answer it carries
func answerOf(t *testing.T, cmd tea.Cmd) SelectionMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected command, got nil")
	}
	msg, ok := cmd().(SelectionMsg)
	if !ok {
		t.Fatalf("expected SelectionMsg, got %T", cmd())
	}
	return msg
}

func TestConfirmDialog_Keys(t *testing.T) {
	tests := []struct {
		name  string
		keys  []tea.KeyMsg
		want  string
		value bool
	}{
		{"y", []tea.KeyMsg{runes("y")}, KeyYes, true},
		{"Y", []tea.KeyMsg{runes("Y")}, KeyYes, true},
		{"n", []tea.KeyMsg{runes("n")}, KeyNo, false},
		{"esc", []tea.KeyMsg{{Type: tea.KeyEscape}}, KeyNo, false},
		{"enter defaults to no", []tea.KeyMsg{{Type: tea.KeyEnter}}, KeyNo, false},
		{"h then enter", []tea.KeyMsg{runes("h"), {Type: tea.KeyEnter}}, KeyYes, true},
		{"h l enter", []tea.KeyMsg{runes("h"), runes("l"), {Type: tea.KeyEnter}}, KeyNo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialog := NewConfirmDialog("Title", "Message")

			var cmd tea.Cmd
			for _, k := range tt.keys {
				_, cmd = dialog.Update(k)
			}

			msg := answerOf(t, cmd)
			if msg.Key != tt.want {
				t.Errorf("expected key %q, got %q", tt.want, msg.Key)
			}
			if msg.Value != tt.value {
				t.Errorf("expected value %v, got %v", tt.value, msg.Value)
			}
		})
	}
}

func TestConfirmDialog_IgnoresOtherKeys(t *testing.T) {
	dialog := NewConfirmDialog("Title", "Message")

	if _, cmd := dialog.Update(runes("z")); cmd != nil {
		t.Error("expected no command for an unbound key")
	}
	if _, cmd := dialog.Update(tea.WindowSizeMsg{}); cmd != nil {
		t.Error("expected no command for a non-key message")
	}
}

func TestConfirmDialog_View(t *testing.T) {
	dialog := NewConfirmDialog("Delete", `Delete "Build" and its subtasks?`)
	view := dialog.View()

	for _, want := range []string{`Delete "Build" and its subtasks?`, "[Y] Yes", "[N] No"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q:\n%s", want, view)
		}
	}
	if dialog.Title() != "Delete" {
		t.Errorf("unexpected title %q", dialog.Title())
	}
	if w, h := dialog.Size(); w <= 0 || h < 7 {
		t.Errorf("unexpected size %dx%d", w, h)
	}
}
