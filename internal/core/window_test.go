package core

import (
	"errors"
	"testing"
	"time"
)

func intp(v int) *int { return &v }

func datep(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestResolveWindowDay(t *testing.T) {
	w, err := ResolveWindow(WindowParams{Day: datep(2025, time.January, 15)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Start.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", w.Start)
	}
	if !w.End.Equal(time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %v", w.End)
	}

	// Half-open boundary: midnight of the day is in, next midnight is out.
	if !w.Contains(w.Start) {
		t.Fatal("start must be included")
	}
	if w.Contains(w.End) {
		t.Fatal("end must be excluded")
	}
	if !w.Contains(time.Date(2025, 1, 15, 23, 59, 59, 999999999, time.UTC)) {
		t.Fatal("last nanosecond of the day must be included")
	}
}

func TestResolveWindowMonth(t *testing.T) {
	cases := []struct {
		month, year int
		start, end  time.Time
	}{
		{1, 2025, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		{12, 2024, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{2, 2024, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}, // leap year
	}
	for _, tc := range cases {
		w, err := ResolveWindow(WindowParams{Month: intp(tc.month), Year: intp(tc.year)})
		if err != nil {
			t.Fatalf("month=%d year=%d: %v", tc.month, tc.year, err)
		}
		if !w.Start.Equal(tc.start) || !w.End.Equal(tc.end) {
			t.Fatalf("month=%d year=%d: got [%v, %v)", tc.month, tc.year, w.Start, w.End)
		}
	}
}

func TestResolveWindowISOWeek(t *testing.T) {
	cases := []struct {
		week, year int
		monday     time.Time
	}{
		// 2025-01-06 is the Monday of ISO week 2, 2025.
		{2, 2025, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)},
		// ISO week 1 of 2025 starts Monday 2024-12-30.
		{1, 2025, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)},
		// 2020 had 53 ISO weeks; week 53 starts Monday 2020-12-28.
		{53, 2020, time.Date(2020, 12, 28, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		w, err := ResolveWindow(WindowParams{Week: intp(tc.week), Year: intp(tc.year)})
		if err != nil {
			t.Fatalf("week=%d year=%d: %v", tc.week, tc.year, err)
		}
		if !w.Start.Equal(tc.monday) {
			t.Fatalf("week=%d year=%d: start = %v, want %v", tc.week, tc.year, w.Start, tc.monday)
		}
		if !w.End.Equal(tc.monday.AddDate(0, 0, 7)) {
			t.Fatalf("week=%d year=%d: end = %v", tc.week, tc.year, w.End)
		}
		if y, wk := w.Start.ISOWeek(); y != tc.year || wk != tc.week {
			t.Fatalf("week=%d year=%d: start resolves to ISO %d-W%d", tc.week, tc.year, y, wk)
		}
	}
}

func TestResolveWindowFailures(t *testing.T) {
	cases := []struct {
		name string
		p    WindowParams
		want error
	}{
		{"day and month", WindowParams{Day: datep(2025, 1, 1), Month: intp(1), Year: intp(2025)}, ErrAmbiguousFilter},
		{"week and month", WindowParams{Week: intp(2), Month: intp(1), Year: intp(2025)}, ErrAmbiguousFilter},
		{"all three", WindowParams{Day: datep(2025, 1, 1), Week: intp(2), Month: intp(1), Year: intp(2025)}, ErrAmbiguousFilter},
		{"week without year", WindowParams{Week: intp(2)}, ErrMissingYear},
		{"month without year", WindowParams{Month: intp(3)}, ErrMissingYear},
		{"month zero", WindowParams{Month: intp(0), Year: intp(2025)}, ErrInvalidValue},
		{"month thirteen", WindowParams{Month: intp(13), Year: intp(2025)}, ErrInvalidValue},
		{"week zero", WindowParams{Week: intp(0), Year: intp(2025)}, ErrInvalidValue},
		{"week 54", WindowParams{Week: intp(54), Year: intp(2025)}, ErrInvalidValue},
	}
	for _, tc := range cases {
		_, err := ResolveWindow(tc.p)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestResolveWindowNone(t *testing.T) {
	w, err := ResolveWindow(WindowParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != nil {
		t.Fatalf("expected no window, got %+v", w)
	}

	// A bare year is not a window on its own.
	w, err = ResolveWindow(WindowParams{Year: intp(2025)})
	if err != nil || w != nil {
		t.Fatalf("bare year: got %+v, %v", w, err)
	}
}
