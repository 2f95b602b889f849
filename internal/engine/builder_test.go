package engine

import (
	"context"
	"testing"

	"github.com/parish/sacristy/internal/domain"
)

func TestGenerateFillsEverySlotWhenRosterSufficient(t *testing.T) {
	snap := fixtureSnapshot()
	preview, err := Generate(context.Background(), snap, GenerateRequest{Year: 2026, Month: 3})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(preview.Conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %+v", preview.Conflicts)
	}
	if !IsComplete(preview.Schedule) {
		t.Fatalf("expected complete schedule")
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	snap := fixtureSnapshot()
	a, err := Generate(context.Background(), snap, GenerateRequest{Year: 2026, Month: 3})
	if err != nil {
		t.Fatalf("Generate (a): %v", err)
	}
	b, err := Generate(context.Background(), snap, GenerateRequest{Year: 2026, Month: 3})
	if err != nil {
		t.Fatalf("Generate (b): %v", err)
	}
	if len(a.Schedule.ServiceDates) != len(b.Schedule.ServiceDates) {
		t.Fatalf("service date counts differ between runs")
	}
	for i := range a.Schedule.ServiceDates {
		sdA, sdB := a.Schedule.ServiceDates[i], b.Schedule.ServiceDates[i]
		if len(sdA.Assignments) != len(sdB.Assignments) {
			t.Fatalf("assignment counts differ on date %s", sdA.Date)
		}
		for j := range sdA.Assignments {
			if sdA.Assignments[j].PersonID != sdB.Assignments[j].PersonID {
				t.Fatalf("run a and run b disagree on slot %d/%d: %q vs %q",
					i, j, sdA.Assignments[j].PersonID, sdB.Assignments[j].PersonID)
			}
		}
	}
}

func TestGenerateNeverDoubleBooksAPersonOnOneDate(t *testing.T) {
	snap := fixtureSnapshot()
	preview, err := Generate(context.Background(), snap, GenerateRequest{Year: 2026, Month: 3})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, sd := range preview.Schedule.ServiceDates {
		seen := make(map[string]bool)
		for _, a := range sd.Assignments {
			if a.IsEmpty() {
				continue
			}
			if seen[a.PersonID] {
				t.Fatalf("person %s double-booked on %s", a.PersonID, sd.Date)
			}
			seen[a.PersonID] = true
		}
	}
}

func TestGenerateProducesConflictWhenRosterInsufficient(t *testing.T) {
	snap := fixtureSnapshot()
	// Shrink the roster to one person, who cannot fill two Lectores
	// positions on the same date.
	snap.People = map[string]domain.Person{
		"alice": snap.People["alice"],
	}
	preview, err := Generate(context.Background(), snap, GenerateRequest{Year: 2026, Month: 3})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(preview.Conflicts) == 0 {
		t.Fatalf("expected at least one conflict with a single-person roster")
	}
}

func TestGenerateRejectsOutOfRangeMonth(t *testing.T) {
	snap := fixtureSnapshot()
	if _, err := Generate(context.Background(), snap, GenerateRequest{Year: 2026, Month: 13}); err == nil {
		t.Fatalf("expected a ValidationError for month 13")
	}
}

func TestGenerateRespectsCancellation(t *testing.T) {
	snap := fixtureSnapshot()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, snap, GenerateRequest{Year: 2026, Month: 3})
	if err != ErrCancelled {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}
