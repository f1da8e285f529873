package validation

import (
	"time"

	"intranet-cesfam/backend/internal/model"
)

// Dates are calendar days carried as UTC midnight.

// Today the current calendar day in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOnly drops the clock part of t, keeping its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD value, recording a field error on failure.
func ParseDate(errs *Errors, field, s string) time.Time {
	if s == "" {
		errs.Add(field, "date is required")
		return time.Time{}
	}
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		errs.Add(field, "date must be YYYY-MM-DD")
		return time.Time{}
	}
	return t
}

// CheckDateRange start must not be after end.
// Skipped when either side already failed to parse.
func CheckDateRange(errs *Errors, startField, endField string, start, end time.Time) {
	if errs.Has(startField) || errs.Has(endField) {
		return
	}
	if start.After(end) {
		errs.Add(endField, "end date must not be before start date")
	}
}

// CheckNotRetroactive start must not be before today.
func CheckNotRetroactive(errs *Errors, field string, start, today time.Time) {
	if errs.Has(field) {
		return
	}
	if start.Before(today) {
		errs.Add(field, "start date cannot be in the past")
	}
}
