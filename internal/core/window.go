package core

import (
	"fmt"
	"time"
)

// TimeWindow is a half-open interval [Start, End). All windows are resolved
// in UTC; created timestamps are stored in UTC as well.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in [Start, End).
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WindowParams carries the raw time-filter query parameters. A nil field
// means the parameter was absent.
type WindowParams struct {
	Day   *time.Time // calendar date, time component ignored
	Week  *int       // ISO-8601 week number, Monday start; requires Year
	Month *int       // 1-12; requires Year
	Year  *int
}

// ResolveWindow maps day/week/month/year parameters to a canonical half-open
// range. At most one of day, week and month may be set; two or more fail with
// ErrAmbiguousFilter instead of silently picking a priority. A nil window with
// a nil error means no time filter was requested.
func ResolveWindow(p WindowParams) (*TimeWindow, error) {
	set := 0
	if p.Day != nil {
		set++
	}
	if p.Week != nil {
		set++
	}
	if p.Month != nil {
		set++
	}
	if set > 1 {
		return nil, ErrAmbiguousFilter
	}

	switch {
	case p.Day != nil:
		start := time.Date(p.Day.Year(), p.Day.Month(), p.Day.Day(), 0, 0, 0, 0, time.UTC)
		return &TimeWindow{Start: start, End: start.AddDate(0, 0, 1)}, nil

	case p.Week != nil:
		if p.Year == nil {
			return nil, ErrMissingYear
		}
		if *p.Week < 1 || *p.Week > 53 {
			return nil, fmt.Errorf("%w: week %d not in 1-53", ErrInvalidValue, *p.Week)
		}
		start := isoWeekStart(*p.Year, *p.Week)
		return &TimeWindow{Start: start, End: start.AddDate(0, 0, 7)}, nil

	case p.Month != nil:
		if p.Year == nil {
			return nil, ErrMissingYear
		}
		if *p.Month < 1 || *p.Month > 12 {
			return nil, fmt.Errorf("%w: month %d not in 1-12", ErrInvalidValue, *p.Month)
		}
		start := time.Date(*p.Year, time.Month(*p.Month), 1, 0, 0, 0, 0, time.UTC)
		return &TimeWindow{Start: start, End: start.AddDate(0, 1, 0)}, nil
	}

	return nil, nil
}

// isoWeekStart returns the Monday 00:00:00 UTC that opens the given ISO week.
// January 4 always falls in ISO week 1 of its year.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	wd := int(jan4.Weekday())
	if wd == 0 {
		wd = 7 // Sunday
	}
	week1Monday := jan4.AddDate(0, 0, -(wd - 1))
	return week1Monday.AddDate(0, 0, (week-1)*7)
}
