package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/riordanpawley/planboard/internal/domain"
)

// Tracked field names as they appear in ChangeLog.Field
const (
	FieldName             = "name"
	FieldAssignee         = "assignee"
	FieldStatus           = "status"
	FieldPriority         = "priority"
	FieldPlannedStartDate = "plannedStartDate"
	FieldPlannedEndDate   = "plannedEndDate"
	FieldActualStartDate  = "actualStartDate"
	FieldActualEndDate    = "actualEndDate"
	FieldPlannedHours     = "plannedHours"
	FieldActualHours      = "actualHours"
	FieldDependencies     = "dependencies"
	FieldParentID         = "parentId"
	FieldIsMilestone      = "isMilestone"
	FieldIsCritical       = "isCritical"
	FieldCustomFields     = "customFields"
)

// fieldDiff is one changed tracked field, rendered for the log
type fieldDiff struct {
	field    string
	oldValue string
	newValue string
}

// diffTracked compares every tracked field of two versions of a task.
// Custom fields are compared per key and logged as "customFields.<key>".
func diffTracked(before, after domain.Task) []fieldDiff {
	var out []fieldDiff
	add := func(field, o, n string) {
		if o != n {
			out = append(out, fieldDiff{field: field, oldValue: o, newValue: n})
		}
	}

	add(FieldName, before.Name, after.Name)
	add(FieldAssignee, before.Assignee, after.Assignee)
	add(FieldStatus, before.Status, after.Status)
	add(FieldPriority, before.Priority.String(), after.Priority.String())
	addDate(&out, FieldPlannedStartDate, before.PlannedStartDate, after.PlannedStartDate)
	addDate(&out, FieldPlannedEndDate, before.PlannedEndDate, after.PlannedEndDate)
	addDate(&out, FieldActualStartDate, before.ActualStartDate, after.ActualStartDate)
	addDate(&out, FieldActualEndDate, before.ActualEndDate, after.ActualEndDate)
	add(FieldPlannedHours, formatHours(before.PlannedHours), formatHours(after.PlannedHours))
	add(FieldActualHours, formatHours(before.ActualHours), formatHours(after.ActualHours))
	if !sameDependencies(before.Dependencies, after.Dependencies) {
		out = append(out, fieldDiff{
			field:    FieldDependencies,
			oldValue: strings.Join(before.Dependencies, ", "),
			newValue: strings.Join(after.Dependencies, ", "),
		})
	}
	add(FieldParentID, before.Parent(), after.Parent())
	add(FieldIsMilestone, strconv.FormatBool(before.IsMilestone), strconv.FormatBool(after.IsMilestone))
	add(FieldIsCritical, strconv.FormatBool(before.IsCritical), strconv.FormatBool(after.IsCritical))

	keys := make(map[string]bool, len(before.CustomFields)+len(after.CustomFields))
	for k := range before.CustomFields {
		keys[k] = true
	}
	for k := range after.CustomFields {
		keys[k] = true
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)
	for _, k := range sorted {
		add(FieldCustomFields+"."+k, formatScalar(before.CustomFields, k), formatScalar(after.CustomFields, k))
	}

	return out
}

// Dates compare by instant, so an equal date in another zone is not a change
func addDate(out *[]fieldDiff, field string, o, n domain.Date) {
	if o.Equal(n) {
		return
	}
	*out = append(*out, fieldDiff{field: field, oldValue: o.String(), newValue: n.String()})
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func formatScalar(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// sameDependencies compares dependency lists as sets
func sameDependencies(a, b []string) bool {
	in := func(ids []string) map[string]bool {
		m := make(map[string]bool, len(ids))
		for _, id := range ids {
			m[id] = true
		}
		return m
	}
	sa, sb := in(a), in(b)
	if len(sa) != len(sb) {
		return false
	}
	for id := range sa {
		if !sb[id] {
			return false
		}
	}
	return true
}
