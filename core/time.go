package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar date without a time component
// =============================================================================

// DateLayout is the only textual form a Date is read from or written to.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Date is a calendar day. Every Date is anchored to midnight UTC by DateOf,
// so date-only values and instants never get compared without normalizing.
type Date struct {
	t time.Time
}

// NewDate builds a Date from its calendar components.
func NewDate(year int, month time.Month, dayOfMonth int) Date {
	return Date{t: time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as observed in t's own location.
// This is the single normalization applied wherever dates are compared.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a bare "2006-01-02" date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Reason: fmt.Sprintf("unparseable date %q", s)}
	}
	return DateOf(t), nil
}

// MustDate is ParseDate for literals; it panics on malformed input.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(o Date) bool        { return d.t.Before(o.t) }
func (d Date) After(o Date) bool         { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool         { return d.t.Equal(o.t) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.t.After(o.t) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.t.Before(o.t) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) IsZero() bool      { return d.t.IsZero() }
func (d Date) Time() time.Time   { return d.t }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &ValidationError{Field: "date", Reason: "must be a string"}
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DatePtr is a convenience for nullable dates.
func DatePtr(d Date) *Date { return &d }

// =============================================================================
// DAY COUNTING
// =============================================================================

// DaysBetween returns the number of whole calendar days from one date to another.
// It counts day numbers rather than subtracting instants, so the span is
// exact for any pair of dates time.Time can represent.
func DaysBetween(from, to Date) int {
	return int(to.dayNumber() - from.dayNumber())
}

// dayNumber is the count of days since 1970-01-01. Dates sit at midnight
// UTC, so the division is exact.
func (d Date) dayNumber() int64 {
	return d.t.Unix() / secondsPerDay
}

// DaysLate returns how many days past due an item is on today.
//
// The due date expires at the end of its calendar day (23:59:59.999) and
// today is taken at its start, so an item due today is not yet late:
//
//	ceil((today_midnight - due_end_of_day) / 1 day)
//
// Results <= 0 mean "not late"; callers clamp them to zero before using the
// value as a multiplier.
//
// Both ends sit on day boundaries, so the ceiling is the whole-day distance
// between the dates.
func DaysLate(due, today Date) int {
	return DaysBetween(due, today)
}

// CycleKey identifies the billing period a due date belongs to, e.g. "2025-11".
func CycleKey(due Date) string {
	if due.IsZero() {
		return ""
	}
	return due.t.Format("2006-01")
}

// =============================================================================
// CLOCK - The only source of "now"
// =============================================================================

// Clock is injected wherever the current instant is needed.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant. Used by tests and replays.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// Today returns the calendar day the clock is currently in.
func Today(c Clock) Date {
	return DateOf(c.Now())
}
