// Package units converts effort between hours and the coarser units offered
// at the input boundary. Everything inside planboard stores hours.
package units

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Unit is an effort unit
type Unit string

const (
	Hours  Unit = "hours"
	Days   Unit = "days"
	Weeks  Unit = "weeks"
	Months Unit = "months"
)

// Working hours per unit
const (
	HoursPerDay   = 8
	HoursPerWeek  = 40
	HoursPerMonth = 160
)

// ErrUnknownUnit is returned for anything but hours/days/weeks/months
var ErrUnknownUnit = errors.New("unknown effort unit")

// All lists units from finest to coarsest
var All = []Unit{Hours, Days, Weeks, Months}

// ParseUnit accepts full names, singulars and the short forms h/d/w/m
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "hr", "hrs", "hour", "hours":
		return Hours, nil
	case "d", "day", "days":
		return Days, nil
	case "w", "wk", "week", "weeks":
		return Weeks, nil
	case "m", "mo", "month", "months":
		return Months, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

// Factor is the number of hours in one unit
func (u Unit) Factor() float64 {
	switch u {
	case Days:
		return HoursPerDay
	case Weeks:
		return HoursPerWeek
	case Months:
		return HoursPerMonth
	default:
		return 1
	}
}

// Short is the one-letter suffix used by Format
func (u Unit) Short() string {
	switch u {
	case Days:
		return "d"
	case Weeks:
		return "w"
	case Months:
		return "mo"
	default:
		return "h"
	}
}

// ToHours converts a value in u to hours
func ToHours(value float64, u Unit) float64 {
	return value * u.Factor()
}

// FromHours converts hours to a value in u
func FromHours(hours float64, u Unit) float64 {
	return hours / u.Factor()
}

var effortPattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*([a-zA-Z]*)\s*$`)

// Parse reads an effort such as "12", "3d", "1.5 weeks" or "2mo" into
// hours. A bare number is hours.
func Parse(s string) (float64, error) {
	m := effortPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid effort %q", s)
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid effort %q: %w", s, err)
	}
	unit := Hours
	if m[2] != "" {
		if unit, err = ParseUnit(m[2]); err != nil {
			return 0, err
		}
	}
	return ToHours(value, unit), nil
}

// Best picks the coarsest unit that expresses hours as a whole number,
// falling back to hours
func Best(hours float64) Unit {
	for i := len(All) - 1; i > 0; i-- {
		v := FromHours(hours, All[i])
		if v >= 1 && v == math.Trunc(v) {
			return All[i]
		}
	}
	return Hours
}

// Format renders hours in the unit chosen by Best, e.g. "3d" or "12.5h"
func Format(hours float64) string {
	u := Best(hours)
	return strconv.FormatFloat(FromHours(hours, u), 'f', -1, 64) + u.Short()
}
