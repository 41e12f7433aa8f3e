package core

import "time"

// =============================================================================
// PERIOD - Reporting window, inclusive on both ends
// =============================================================================

// Period is a calendar window [Start, End]. A date equal to either boundary
// belongs to the period.
//
// Examples:
//   - November 2025: Nov 1 - Nov 30
//   - Fiscal quarter: Jan 1 - Mar 31
type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains returns true if the date is within the period [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Validate rejects empty or inverted periods.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return &ValidationError{Field: "period", Reason: "start and end are required"}
	}
	if p.End.Before(p.Start) {
		return &ValidationError{Field: "period", Reason: ErrInvalidPeriod.Error()}
	}
	return nil
}

// Days returns the number of calendar days covered by the period.
func (p Period) Days() int {
	return DaysBetween(p.Start, p.End) + 1
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// MonthPeriod returns the calendar month containing year/month.
func MonthPeriod(year int, month time.Month) Period {
	start := NewDate(year, month, 1)
	return Period{Start: start, End: start.AddMonths(1).AddDays(-1)}
}

// PreviousPeriod returns the period of equal length ending the day before p.
func (p Period) PreviousPeriod() Period {
	end := p.Start.AddDays(-1)
	return Period{Start: end.AddDays(-(p.Days() - 1)), End: end}
}
