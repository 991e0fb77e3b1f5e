package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"
)

// dateOnlyLayout is accepted on input alongside RFC 3339
const dateOnlyLayout = "2006-01-02"

// Date is a calendar instant that may be absent or malformed.
//
// A malformed value keeps its raw text so a project round-trips unchanged,
// but it reports Valid() == false and is skipped by every computation.
type Date struct {
	t     time.Time
	valid bool
	raw   string
}

// NewDate wraps a time as a valid Date
func NewDate(t time.Time) Date {
	return Date{t: t, valid: true}
}

// Day builds a valid Date at midnight UTC
func Day(year int, month time.Month, day int) Date {
	return NewDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses RFC 3339 or YYYY-MM-DD. Empty input yields an absent
// Date, anything unparseable yields an invalid Date carrying the raw text.
func ParseDate(s string) Date {
	if s == "" {
		return Date{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Date{t: t, valid: true}
	}
	if t, err := time.Parse(dateOnlyLayout, s); err == nil {
		return Date{t: t, valid: true}
	}
	return Date{raw: s}
}

// Time returns the wrapped time (zero when not valid)
func (d Date) Time() time.Time {
	return d.t
}

// Valid reports whether the date parsed to a finite instant
func (d Date) Valid() bool {
	return d.valid
}

// IsZero reports whether the date is absent (neither valid nor malformed)
func (d Date) IsZero() bool {
	return !d.valid && d.raw == ""
}

// Before reports whether both dates are valid and d is before o
func (d Date) Before(o Date) bool {
	return d.valid && o.valid && d.t.Before(o.t)
}

// After reports whether both dates are valid and d is after o
func (d Date) After(o Date) bool {
	return d.valid && o.valid && d.t.After(o.t)
}

// Equal compares validity, instant and raw text
func (d Date) Equal(o Date) bool {
	if d.valid != o.valid {
		return false
	}
	if d.valid {
		return d.t.Equal(o.t)
	}
	return d.raw == o.raw
}

// AddDays returns the date shifted by n calendar days
func (d Date) AddDays(n int) Date {
	if !d.valid {
		return d
	}
	return Date{t: d.t.AddDate(0, 0, n), valid: true}
}

// String renders the date as RFC 3339 with any fractional seconds, the raw
// text when malformed, or "".
func (d Date) String() string {
	if d.valid {
		return d.t.Format(time.RFC3339Nano)
	}
	return d.raw
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler. Non-string values are treated
// as malformed rather than failing the whole document.
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*d = Date{raw: string(data)}
		return nil
	}
	*d = ParseDate(s)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Date) MarshalYAML() (interface{}, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode || value.Tag == "!!null" {
		*d = Date{}
		return nil
	}
	*d = ParseDate(value.Value)
	return nil
}
