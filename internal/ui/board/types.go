package board

import "github.com/riordanpawley/planboard/internal/domain"

// unknownStatusID groups tasks whose status is not configured
const unknownStatusID = ""

// Column represents a kanban column for one configured status
type Column struct {
	Status domain.StatusDefinition
	Tasks  []domain.Task
}

// Title is the header text of the column
func (c Column) Title() string {
	if c.Status.Name != "" {
		return c.Status.Name
	}
	if c.Status.ID == unknownStatusID {
		return "Unknown status"
	}
	return c.Status.ID
}

// Cursor represents the current cursor position
type Cursor struct {
	Column int // Column index
	Task   int // Task index within column
}

// BuildColumns groups tasks into one column per configured status, in
// configuration order. Tasks carrying a status that is not configured land
// in a trailing column that only exists when such tasks do.
func BuildColumns(tasks []domain.Task, cfg domain.Configuration) []Column {
	columns := make([]Column, 0, len(cfg.Statuses)+1)
	index := make(map[string]int, len(cfg.Statuses))
	for _, def := range cfg.Statuses {
		if _, dup := index[def.ID]; dup {
			continue
		}
		index[def.ID] = len(columns)
		columns = append(columns, Column{Status: def})
	}

	var unknown []domain.Task
	for _, t := range tasks {
		if i, ok := index[t.Status]; ok {
			columns[i].Tasks = append(columns[i].Tasks, t)
			continue
		}
		unknown = append(unknown, t)
	}
	if len(unknown) > 0 {
		columns = append(columns, Column{Status: domain.StatusDefinition{ID: unknownStatusID}, Tasks: unknown})
	}
	return columns
}

// Clamp keeps the cursor inside the columns
func (c Cursor) Clamp(columns []Column) Cursor {
	if len(columns) == 0 {
		return Cursor{}
	}
	c.Column = max(0, min(c.Column, len(columns)-1))
	n := len(columns[c.Column].Tasks)
	if n == 0 {
		c.Task = 0
	} else {
		c.Task = max(0, min(c.Task, n-1))
	}
	return c
}

// Selected returns the task under the cursor
func (c Cursor) Selected(columns []Column) (domain.Task, bool) {
	c = c.Clamp(columns)
	if len(columns) == 0 || len(columns[c.Column].Tasks) == 0 {
		return domain.Task{}, false
	}
	return columns[c.Column].Tasks[c.Task], true
}

// Neighbor returns the configured status next to the cursor's column, in
// direction dir (-1 left, +1 right). The unknown-status column is never a
// move target.
func Neighbor(columns []Column, col, dir int) (domain.StatusDefinition, bool) {
	target := col + dir
	if target < 0 || target >= len(columns) {
		return domain.StatusDefinition{}, false
	}
	def := columns[target].Status
	if def.ID == unknownStatusID {
		return domain.StatusDefinition{}, false
	}
	return def, true
}
