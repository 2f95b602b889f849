package engine

import (
	"context"
	"testing"

	"github.com/parish/sacristy/internal/domain"
)

func TestPublishRejectsIncompleteSchedule(t *testing.T) {
	snap := fixtureSnapshot()
	original := generatedSchedule(t, snap)
	cleared, err := ApplyClear(original, firstSlot(original))
	if err != nil {
		t.Fatalf("ApplyClear: %v", err)
	}

	_, err = Publish(snap, cleared)
	if err == nil {
		t.Fatalf("expected Publish to reject an incomplete schedule")
	}
	stateErr, ok := err.(*StateError)
	if !ok {
		t.Fatalf("expected a *StateError, got %T", err)
	}
	if len(stateErr.EmptySlots) != 1 {
		t.Fatalf("expected exactly one empty slot named, got %d", len(stateErr.EmptySlots))
	}
}

func TestPublishThenArchiveTransitionsStatus(t *testing.T) {
	snap := fixtureSnapshot()
	original := generatedSchedule(t, snap)
	if len(Completeness(snap, original)) != 0 {
		t.Skip("fixture schedule was not complete; cannot exercise publish")
	}

	published, err := Publish(snap, original)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if published.Status != domain.StatusPublished {
		t.Fatalf("expected PUBLISHED, got %s", published.Status)
	}

	archived, err := Archive(published)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if archived.Status != domain.StatusArchived {
		t.Fatalf("expected ARCHIVED, got %s", archived.Status)
	}
}

func TestPublishRejectsAlreadyPublishedSchedule(t *testing.T) {
	snap := fixtureSnapshot()
	original := generatedSchedule(t, snap)
	if len(Completeness(snap, original)) != 0 {
		t.Skip("fixture schedule was not complete; cannot exercise publish")
	}
	published, err := Publish(snap, original)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if _, err := Publish(snap, published); err == nil {
		t.Fatalf("expected re-publishing an already-PUBLISHED schedule to fail")
	}
}

func TestArchiveRejectsDraftSchedule(t *testing.T) {
	snap := fixtureSnapshot()
	original := generatedSchedule(t, snap)
	if _, err := Archive(original); err == nil {
		t.Fatalf("expected Archive to reject a DRAFT schedule")
	}
}

func TestToHistoryFlattensOnlyFilledSlots(t *testing.T) {
	snap := fixtureSnapshot()
	original := generatedSchedule(t, snap)
	cleared, err := ApplyClear(original, firstSlot(original))
	if err != nil {
		t.Fatalf("ApplyClear: %v", err)
	}

	totalAssignments := 0
	for _, sd := range cleared.ServiceDates {
		for _, a := range sd.Assignments {
			if !a.IsEmpty() {
				totalAssignments++
			}
		}
	}

	records := ToHistory(cleared)
	if len(records) != totalAssignments {
		t.Fatalf("expected %d history records, got %d", totalAssignments, len(records))
	}
}

func TestGenerateThenCompletenessAgreesWithIsComplete(t *testing.T) {
	snap := fixtureSnapshot()
	preview, err := Generate(context.Background(), snap, GenerateRequest{Year: 2026, Month: 3})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	empties := Completeness(snap, preview.Schedule)
	if (len(empties) == 0) != IsComplete(preview.Schedule) {
		t.Fatalf("Completeness and IsComplete disagree: %d empties, IsComplete=%v", len(empties), IsComplete(preview.Schedule))
	}
}
