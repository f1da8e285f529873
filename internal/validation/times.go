package validation

import (
	"strings"
	"time"
)

// clockLayouts accepted wall-clock formats
var clockLayouts = []string{"15:04:05", "15:04"}

// ParseClock parses "HH:MM" or "HH:MM:SS" and returns the offset from midnight.
func ParseClock(s string) (time.Duration, bool) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}

// FormatClock renders an offset from midnight as "HH:MM:SS".
func FormatClock(d time.Duration) string {
	return time.Time{}.Add(d).Format("15:04:05")
}

// CheckEventTimes validates an event's clock range.
// All-day events carry no times; others need both, with start before end.
// Returns the normalised times to persist.
func CheckEventTimes(errs *Errors, allDay bool, start, end *string) (*string, *string) {
	start, end = blankToNil(start), blankToNil(end)

	if allDay {
		if start != nil {
			errs.Add("start_time", "all-day events must not have a start time")
		}
		if end != nil {
			errs.Add("end_time", "all-day events must not have an end time")
		}
		return nil, nil
	}

	if start == nil {
		errs.Add("start_time", "start time is required unless the event lasts all day")
	}
	if end == nil {
		errs.Add("end_time", "end time is required unless the event lasts all day")
	}
	if start == nil || end == nil {
		return nil, nil
	}

	s, okS := ParseClock(*start)
	e, okE := ParseClock(*end)
	if !okS {
		errs.Add("start_time", "time must be HH:MM")
	}
	if !okE {
		errs.Add("end_time", "time must be HH:MM")
	}
	if !okS || !okE {
		return nil, nil
	}
	if s >= e {
		errs.Add("end_time", "end time must be after start time")
		return nil, nil
	}

	fs, fe := FormatClock(s), FormatClock(e)
	return &fs, &fe
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
