package engine

import (
	"fmt"

	"github.com/parish/sacristy/internal/domain"
)

// ValidationError is InputInvalid from spec §7: fatal, caller-facing,
// never recovered locally.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// StateError is StateConflict from spec §7: publish on an incomplete
// schedule, edit on a PUBLISHED schedule, or a duplicate publish.
type StateError struct {
	Reason     string
	EmptySlots []EmptySlot
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state conflict: %s", e.Reason)
}

// EmptySlot names one unfilled slot by human-readable coordinates (spec §6
// completeness(), §8 scenario 6).
type EmptySlot struct {
	Date     string
	JobName  string
	Position string
}

// ConstraintReason is the HardConstraintViolation subcategory from spec §7.
type ConstraintReason string

const (
	ReasonNotQualified              ConstraintReason = "NotQualified"
	ReasonUnavailable                ConstraintReason = "Unavailable"
	ReasonExcludedFromJob            ConstraintReason = "ExcludedFromJob"
	ReasonExceedsConsecutiveWeeks    ConstraintReason = "ExceedsConsecutiveWeeks"
	ReasonAlreadyAssignedThisMonth   ConstraintReason = "AlreadyAssignedThisMonth"
	ReasonConsecutiveMonthForbidden  ConstraintReason = "ConsecutiveMonthForbidden"
	ReasonDayExclusivityViolation    ConstraintReason = "DayExclusivityViolation"
	ReasonSiblingSeparateViolation   ConstraintReason = "SiblingSeparateViolation"
	ReasonDuplicatePersonOnSchedule  ConstraintReason = "DuplicatePersonOnSchedule"
	ReasonPersonInactive             ConstraintReason = "PersonInactive"
)

// ConstraintError is HardConstraintViolation from spec §7: carries the
// person, the slot coordinates, and the specific reason.
type ConstraintError struct {
	PersonID string
	Slot     domain.SlotKey
	Reason   ConstraintReason
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("person %s violates %s at slot %+v", e.PersonID, e.Reason, e.Slot)
}

// Conflict is InsufficientPeople from spec §7: recorded inline in the
// preview, generation continues, the slot is left empty.
type Conflict struct {
	Slot           domain.SlotKey
	JobName        string
	PositionName   string
	Date           string
	StrongestReason ConstraintReason
}

// Cancelled is returned when a generate() call is cancelled at the outer
// date-loop boundary (spec §5). No partial schedule is returned.
var ErrCancelled = fmt.Errorf("generation cancelled")
