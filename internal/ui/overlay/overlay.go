// Package overlay holds the modal dialogs drawn over the dashboard body.
package overlay

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Overlay represents a modal overlay component
type Overlay interface {
	tea.Model
	Title() string
	Size() (width, height int)
}

// CloseOverlayMsg signals that the overlay should be closed
type CloseOverlayMsg struct{}

// SelectionMsg is sent when a dialog finishes with an answer
type SelectionMsg struct {
	Key   string
	Value any
}

// Stack manages nested overlays; only the top one receives keys
type Stack struct {
	overlays []Overlay
}

// NewStack creates an empty stack
func NewStack() *Stack {
	return &Stack{}
}

// Push opens o on top of the stack
func (s *Stack) Push(o Overlay) tea.Cmd {
	s.overlays = append(s.overlays, o)
	return o.Init()
}

// Pop closes the top overlay. Returns nil on an empty stack.
func (s *Stack) Pop() Overlay {
	if len(s.overlays) == 0 {
		return nil
	}
	top := s.overlays[len(s.overlays)-1]
	s.overlays = s.overlays[:len(s.overlays)-1]
	return top
}

// Current returns the top overlay, or nil
func (s *Stack) Current() Overlay {
	if len(s.overlays) == 0 {
		return nil
	}
	return s.overlays[len(s.overlays)-1]
}

// IsEmpty reports whether no overlay is open
func (s *Stack) IsEmpty() bool {
	return len(s.overlays) == 0
}

// Clear closes every overlay
func (s *Stack) Clear() {
	s.overlays = nil
}

// Update pops on CloseOverlayMsg and SelectionMsg, otherwise forwards msg
// to the top overlay
func (s *Stack) Update(msg tea.Msg) tea.Cmd {
	if s.IsEmpty() {
		return nil
	}
	switch msg.(type) {
	case CloseOverlayMsg, SelectionMsg:
		s.Pop()
		return nil
	}

	next, cmd := s.Current().Update(msg)
	if o, ok := next.(Overlay); ok {
		s.overlays[len(s.overlays)-1] = o
	}
	return cmd
}

// Render frames the top overlay with its title and centers it in a
// width x height area
func (s *Stack) Render(st *Styles, width, height int) string {
	o := s.Current()
	if o == nil {
		return ""
	}
	w, _ := o.Size()
	// border (2) and padding (4) sit outside the content width
	w = max(min(w, width-6), 10)

	content := lipgloss.JoinVertical(lipgloss.Left, st.Title.Render(o.Title()), o.View())
	box := st.Overlay.Width(w).Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
