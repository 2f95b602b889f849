package calendar

import (
	"testing"
	"time"
)

func TestServiceDatesAllSundays(t *testing.T) {
	dates, err := ServiceDates(2026, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range dates {
		if d.Weekday() != time.Sunday {
			t.Errorf("%s is not a Sunday", d.Format("2006-01-02"))
		}
		if d.Month() != time.January || d.Year() != 2026 {
			t.Errorf("%s falls outside January 2026", d.Format("2006-01-02"))
		}
	}
}

func TestServiceDatesFourAndFiveSundayMonths(t *testing.T) {
	// February 2026 has 4 Sundays (1, 8, 15, 22).
	four, err := ServiceDates(2026, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(four) != 4 {
		t.Fatalf("expected 4 Sundays in Feb 2026, got %d", len(four))
	}

	// January 2026 has only 4 Sundays (4, 11, 18, 25), so check a month
	// known to have 5: May 2026 starts on a Friday, giving Sundays on 3, 10,
	// 17, 24, 31.
	five, err := ServiceDates(2026, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(five) != 5 {
		t.Fatalf("expected 5 Sundays in May 2026, got %d", len(five))
	}
}

func TestServiceDatesInvalidMonth(t *testing.T) {
	if _, err := ServiceDates(2026, 0); err == nil {
		t.Error("expected error for month 0")
	}
	if _, err := ServiceDates(2026, 13); err == nil {
		t.Error("expected error for month 13")
	}
}

func TestPriorMonthWrapsYear(t *testing.T) {
	y, m := PriorMonth(2026, 1)
	if y != 2025 || m != 12 {
		t.Errorf("PriorMonth(2026, 1) = (%d, %d), want (2025, 12)", y, m)
	}
}

func TestNextMonthWrapsYear(t *testing.T) {
	y, m := NextMonth(2026, 12)
	if y != 2027 || m != 1 {
		t.Errorf("NextMonth(2026, 12) = (%d, %d), want (2027, 1)", y, m)
	}
}

func TestPrecedingSunday(t *testing.T) {
	// 2026-01-07 is a Wednesday; the preceding Sunday is 2026-01-04.
	d := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)
	got := PrecedingSunday(d)
	want := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("PrecedingSunday(%s) = %s, want %s", d, got, want)
	}

	// For a Sunday itself, it should return seven days earlier, not itself.
	sunday := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	got = PrecedingSunday(sunday)
	want = time.Date(2025, 12, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("PrecedingSunday(%s) = %s, want %s", sunday, got, want)
	}
}
