package queryir

import (
	"fmt"
	"time"
)

// FilterValue is a typed literal inside a Filter.
//
// This is a sealed interface - only types in this package implement it.
type FilterValue interface {
	filterValue()
	String() string
}

// StringValue is a text literal. Enum values are StringValues holding the
// canonical enum member.
type StringValue struct {
	Value string `json:"value"`
}

// NumberValue is an integer literal.
type NumberValue struct {
	Value int64 `json:"value"`
}

// PatternNumberValue is a digit pattern where '?' matches one digit and '*'
// matches any run of digits.
type PatternNumberValue struct {
	Pattern string `json:"pattern"`
}

// DateValue is a calendar date.
type DateValue struct {
	Value Date `json:"value"`
}

// SizeValue is a byte count.
type SizeValue struct {
	Bytes int64 `json:"bytes"`
}

func (StringValue) filterValue()        {}
func (NumberValue) filterValue()        {}
func (PatternNumberValue) filterValue() {}
func (DateValue) filterValue()          {}
func (SizeValue) filterValue()          {}

func (v StringValue) String() string        { return v.Value }
func (v NumberValue) String() string        { return fmt.Sprint(v.Value) }
func (v PatternNumberValue) String() string { return v.Pattern }
func (v DateValue) String() string          { return v.Value.String() }
func (v SizeValue) String() string          { return fmt.Sprintf("%dB", v.Bytes) }

func (v StringValue) MarshalJSON() ([]byte, error) {
	type alias StringValue
	return marshalTagged(struct {
		Type string `json:"type"`
		alias
	}{"string", alias(v)})
}

func (v NumberValue) MarshalJSON() ([]byte, error) {
	type alias NumberValue
	return marshalTagged(struct {
		Type string `json:"type"`
		alias
	}{"number", alias(v)})
}

func (v PatternNumberValue) MarshalJSON() ([]byte, error) {
	type alias PatternNumberValue
	return marshalTagged(struct {
		Type string `json:"type"`
		alias
	}{"pattern_number", alias(v)})
}

func (v DateValue) MarshalJSON() ([]byte, error) {
	type alias DateValue
	return marshalTagged(struct {
		Type string `json:"type"`
		alias
	}{"date", alias(v)})
}

func (v SizeValue) MarshalJSON() ([]byte, error) {
	type alias SizeValue
	return marshalTagged(struct {
		Type string `json:"type"`
		alias
	}{"size", alias(v)})
}

// Date is a civil date with no time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes the given components, so month 13 of 2021 is
// January 2022.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the civil date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse(time.DateOnly, string(b))
	if err != nil {
		return fmt.Errorf("queryir: invalid date %q: %w", b, err)
	}
	*d = DateOf(t)
	return nil
}
