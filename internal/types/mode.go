// Package types contains shared types used across the application.
package types

// Mode represents how key presses are interpreted
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeConfirm
	ModeMenu
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeSearch:
		return "SEARCH"
	case ModeConfirm:
		return "CONFIRM"
	case ModeMenu:
		return "MENU"
	default:
		return "UNKNOWN"
	}
}

// View is one tab of the dashboard
type View int

const (
	ViewDashboard View = iota
	ViewTable
	ViewGantt
	ViewBoard
)

// Views lists the tabs in display order
var Views = []View{ViewDashboard, ViewTable, ViewGantt, ViewBoard}

// String returns the tab title
func (v View) String() string {
	switch v {
	case ViewDashboard:
		return "Dashboard"
	case ViewTable:
		return "Tasks"
	case ViewGantt:
		return "Gantt"
	case ViewBoard:
		return "Board"
	default:
		return "Unknown"
	}
}

// Next cycles to the following tab
func (v View) Next() View {
	return Views[(int(v)+1)%len(Views)]
}

// Prev cycles to the preceding tab
func (v View) Prev() View {
	return Views[(int(v)+len(Views)-1)%len(Views)]
}
