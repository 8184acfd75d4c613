package models

import (
	"fmt"
	"time"
)

// Period identifies one pay cycle: a calendar month, written "YYYY-MM".
// Farmer payments aggregate approved collections per (farmer, period).
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses a "YYYY-MM" identifier.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: expected YYYY-MM", s)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// String renders the canonical identifier stored on Payment rows.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start returns midnight UTC on the first day of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the exclusive upper bound: midnight on the first day of the
// next period.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start()) && t.Before(p.End())
}
