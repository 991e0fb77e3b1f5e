package statusbar

import "github.com/riordanpawley/planboard/internal/types"

// GetHints returns the keybinding hints for the given mode and tab
func GetHints(mode types.Mode, view types.View) string {
	switch mode {
	case types.ModeSearch:
		return "Type to filter  Enter: confirm  Esc: clear"
	case types.ModeConfirm:
		return "y: confirm  n/Esc: cancel"
	case types.ModeMenu:
		return "Esc: close"
	case types.ModeNormal:
	default:
		return ""
	}

	switch view {
	case types.ViewTable:
		return "j/k: tasks  s: sort  /: search  f: filter  x: delete  ?: help  tab: view  q: quit"
	case types.ViewGantt:
		return "j/k: scroll  d/w/m: zoom  b/B: baseline  ?: help  tab: view  q: quit"
	case types.ViewBoard:
		return "h/l: columns  j/k: tasks  H/L: move task  f: filter  ?: help  tab: view  q: quit"
	default:
		return "b: save baseline  B: clear baseline  r: reload  ?: help  tab: view  q: quit"
	}
}
