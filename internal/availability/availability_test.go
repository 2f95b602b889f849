package availability

import (
	"testing"
	"time"

	"github.com/parish/sacristy/internal/domain"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsEligibleOrderOfChecks(t *testing.T) {
	job := domain.Job{ID: "j1", Name: domain.JobNameMonaguillos}
	idx := New(nil)

	inactive := domain.Person{ID: "p1", Active: false}
	if got := IsEligible(inactive, job, date("2026-01-04"), idx); got != ReasonInactive {
		t.Errorf("got %v, want ReasonInactive", got)
	}

	notQualified := domain.Person{ID: "p2", Active: true, QualifiedJobIDs: map[string]bool{}}
	if got := IsEligible(notQualified, job, date("2026-01-04"), idx); got != ReasonNotQualified {
		t.Errorf("got %v, want ReasonNotQualified", got)
	}

	excluded := domain.Person{ID: "p3", Active: true, ExcludeMonaguillos: true, QualifiedJobIDs: map[string]bool{"j1": true}}
	if got := IsEligible(excluded, job, date("2026-01-04"), idx); got != ReasonExcluded {
		t.Errorf("got %v, want ReasonExcluded", got)
	}

	eligible := domain.Person{ID: "p4", Active: true, QualifiedJobIDs: map[string]bool{"j1": true}}
	if got := IsEligible(eligible, job, date("2026-01-04"), idx); got != Eligible {
		t.Errorf("got %v, want Eligible", got)
	}
}

func TestFixedUnavailabilityBlocksDate(t *testing.T) {
	idx := New(map[string][]domain.Unavailability{
		"p1": {
			{PersonID: "p1", StartDate: date("2026-01-01"), EndDate: date("2026-01-10")},
			{PersonID: "p1", StartDate: date("2026-03-01"), EndDate: date("2026-03-05")},
		},
	})

	if !idx.IsUnavailable("p1", date("2026-01-04")) {
		t.Error("expected 2026-01-04 to be blocked")
	}
	if idx.IsUnavailable("p1", date("2026-02-01")) {
		t.Error("expected 2026-02-01 to be free")
	}
	if !idx.IsUnavailable("p1", date("2026-03-03")) {
		t.Error("expected 2026-03-03 to be blocked by the second range")
	}
}

func TestRecurringUnavailabilityRollsOntoEveryYear(t *testing.T) {
	idx := New(map[string][]domain.Unavailability{
		"p1": {
			{PersonID: "p1", StartDate: date("2020-12-24"), EndDate: date("2020-12-26"), Recurring: true},
		},
	})

	if !idx.IsUnavailable("p1", date("2026-12-25")) {
		t.Error("expected Christmas to recur as blocked in 2026")
	}
	if idx.IsUnavailable("p1", date("2026-12-27")) {
		t.Error("expected 2026-12-27 to be free")
	}
}

func TestRecurringUnavailabilitySpanningYearBoundary(t *testing.T) {
	idx := New(map[string][]domain.Unavailability{
		"p1": {
			{PersonID: "p1", StartDate: date("2020-12-28"), EndDate: date("2021-01-03"), Recurring: true},
		},
	})

	if !idx.IsUnavailable("p1", date("2026-12-30")) {
		t.Error("expected 2026-12-30 blocked by the wrapping window")
	}
	if !idx.IsUnavailable("p1", date("2027-01-02")) {
		t.Error("expected 2027-01-02 blocked by the wrapping window")
	}
	if idx.IsUnavailable("p1", date("2027-01-15")) {
		t.Error("expected 2027-01-15 to be free")
	}
}

func TestIntervalTreeManyRanges(t *testing.T) {
	var records []domain.Unavailability
	base := date("2026-01-01")
	for i := 0; i < 50; i++ {
		start := base.AddDate(0, 0, i*10)
		end := start.AddDate(0, 0, 2)
		records = append(records, domain.Unavailability{PersonID: "p1", StartDate: start, EndDate: end})
	}
	idx := New(map[string][]domain.Unavailability{"p1": records})

	if !idx.IsUnavailable("p1", records[25].StartDate.AddDate(0, 0, 1)) {
		t.Error("expected a date inside one of the 50 ranges to be blocked")
	}
	if idx.IsUnavailable("p1", records[25].EndDate.AddDate(0, 0, 5)) {
		t.Error("expected a date between ranges to be free")
	}
}
