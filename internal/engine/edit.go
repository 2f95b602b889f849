package engine

import (
	"fmt"

	"github.com/parish/sacristy/internal/domain"
)

// locate finds the (service-date index, assignment index) for a slot
// within a schedule.
func locate(schedule domain.Schedule, slot domain.SlotKey) (sdIdx, aIdx int, err error) {
	for i, sd := range schedule.ServiceDates {
		if sd.ID != slot.ServiceDateID {
			continue
		}
		for j, a := range sd.Assignments {
			if a.JobID == slot.JobID && a.Position == slot.Position {
				return i, j, nil
			}
		}
		return i, -1, fmt.Errorf("slot %+v: no such (job, position) on service date %s", slot, sd.ID)
	}
	return -1, -1, fmt.Errorf("slot %+v: no such service date", slot)
}

// cloneSchedule deep-copies a schedule so apply_edit never mutates its
// input (spec §6: "apply_edit ... returns a new schedule value; does not
// mutate").
func cloneSchedule(schedule domain.Schedule) domain.Schedule {
	out := schedule
	out.ServiceDates = make([]domain.ServiceDate, len(schedule.ServiceDates))
	for i, sd := range schedule.ServiceDates {
		out.ServiceDates[i] = sd
		out.ServiceDates[i].Assignments = make([]domain.Assignment, len(sd.Assignments))
		copy(out.ServiceDates[i].Assignments, sd.Assignments)
	}
	return out
}

// workingStateExcluding builds a workingState seeded from the snapshot's
// published history plus every non-empty assignment already in schedule,
// except the slots named in exclude — so validating a candidate against
// a slot doesn't see that slot's own current occupant.
func workingStateExcluding(snap domain.Snapshot, schedule domain.Schedule, exclude ...domain.SlotKey) *workingState {
	excluded := make(map[domain.SlotKey]bool, len(exclude))
	for _, s := range exclude {
		excluded[s] = true
	}

	ws := newWorkingState(snap)
	for _, sd := range schedule.ServiceDates {
		for _, a := range sd.Assignments {
			if a.IsEmpty() {
				continue
			}
			key := domain.SlotKey{ServiceDateID: sd.ID, JobID: a.JobID, Position: a.Position}
			if excluded[key] {
				continue
			}
			job, ok := snap.Jobs[a.JobID]
			if !ok {
				continue
			}
			person, ok := snap.People[a.PersonID]
			if !ok {
				continue
			}
			ws.commit(person, job, a.Position, sd.Date)
		}
	}
	return ws
}

// ValidateReplace checks whether newPersonID may be placed into slot,
// per the hard rules §4.6 "replace" enumerates: availability, consecutive
// cap, once-per-month, consecutive-month, day-exclusivity, and SEPARATE
// sibling conflicts. It does not mutate schedule.
func ValidateReplace(snap domain.Snapshot, schedule domain.Schedule, slot domain.SlotKey, newPersonID string) error {
	sdIdx, aIdx, err := locate(schedule, slot)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	if schedule.Status != domain.StatusDraft {
		return &StateError{Reason: "cannot edit a schedule that is not a DRAFT"}
	}

	job, ok := snap.Jobs[slot.JobID]
	if !ok {
		return &ValidationError{Reason: fmt.Sprintf("unknown job id %q", slot.JobID)}
	}
	person, ok := snap.People[newPersonID]
	if !ok {
		return &ValidationError{Reason: fmt.Sprintf("unknown person id %q", newPersonID)}
	}

	sd := schedule.ServiceDates[sdIdx]
	_ = aIdx

	ws := workingStateExcluding(snap, schedule, slot)
	if _, reason, ok := ws.checkHardConstraints(person, job, slot.Position, sd.Date, schedule.Year, schedule.Month); !ok {
		return &ConstraintError{PersonID: newPersonID, Slot: slot, Reason: reason}
	}
	return nil
}

// ApplyReplace validates then writes newPersonID into slot, marking
// manual_override=true (spec §4.6). Returns a new schedule; never
// mutates the input.
func ApplyReplace(snap domain.Snapshot, schedule domain.Schedule, slot domain.SlotKey, newPersonID string) (domain.Schedule, error) {
	if err := ValidateReplace(snap, schedule, slot, newPersonID); err != nil {
		return domain.Schedule{}, err
	}
	out := cloneSchedule(schedule)
	sdIdx, aIdx, _ := locate(out, slot)
	out.ServiceDates[sdIdx].Assignments[aIdx].PersonID = newPersonID
	out.ServiceDates[sdIdx].Assignments[aIdx].ManualOverride = true
	return out, nil
}

// ApplyClear sets slot's person_id to null. manual_override is left
// unchanged, per spec §4.6.
func ApplyClear(schedule domain.Schedule, slot domain.SlotKey) (domain.Schedule, error) {
	if schedule.Status != domain.StatusDraft {
		return domain.Schedule{}, &StateError{Reason: "cannot edit a schedule that is not a DRAFT"}
	}
	sdIdx, aIdx, err := locate(schedule, slot)
	if err != nil {
		return domain.Schedule{}, &ValidationError{Reason: err.Error()}
	}
	out := cloneSchedule(schedule)
	out.ServiceDates[sdIdx].Assignments[aIdx].PersonID = ""
	return out, nil
}

// ValidateSwap checks that each slot's current occupant would individually
// pass validation for the *other* slot (spec §4.6 "swap").
func ValidateSwap(snap domain.Snapshot, schedule domain.Schedule, slotA, slotB domain.SlotKey) error {
	if schedule.Status != domain.StatusDraft {
		return &StateError{Reason: "cannot edit a schedule that is not a DRAFT"}
	}

	aSdIdx, aAIdx, err := locate(schedule, slotA)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	bSdIdx, bAIdx, err := locate(schedule, slotB)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	personA := schedule.ServiceDates[aSdIdx].Assignments[aAIdx].PersonID
	personB := schedule.ServiceDates[bSdIdx].Assignments[bAIdx].PersonID

	ws := workingStateExcluding(snap, schedule, slotA, slotB)

	jobB, ok := snap.Jobs[slotB.JobID]
	if !ok {
		return &ValidationError{Reason: fmt.Sprintf("unknown job id %q", slotB.JobID)}
	}
	jobA, ok := snap.Jobs[slotA.JobID]
	if !ok {
		return &ValidationError{Reason: fmt.Sprintf("unknown job id %q", slotA.JobID)}
	}

	if personA != "" {
		p, ok := snap.People[personA]
		if !ok {
			return &ValidationError{Reason: fmt.Sprintf("unknown person id %q", personA)}
		}
		sdB := schedule.ServiceDates[bSdIdx]
		if _, reason, ok := ws.checkHardConstraints(p, jobB, slotB.Position, sdB.Date, schedule.Year, schedule.Month); !ok {
			return &ConstraintError{PersonID: personA, Slot: slotB, Reason: reason}
		}
	}
	if personB != "" {
		p, ok := snap.People[personB]
		if !ok {
			return &ValidationError{Reason: fmt.Sprintf("unknown person id %q", personB)}
		}
		sdA := schedule.ServiceDates[aSdIdx]
		if _, reason, ok := ws.checkHardConstraints(p, jobA, slotA.Position, sdA.Date, schedule.Year, schedule.Month); !ok {
			return &ConstraintError{PersonID: personB, Slot: slotA, Reason: reason}
		}
	}
	return nil
}

// ApplySwap exchanges the occupants of slotA and slotB, all-or-nothing:
// if either placement would violate a hard constraint, the error is
// returned with a zero Schedule and the input schedule is left untouched
// (spec §7: "edits fail atomically").
func ApplySwap(snap domain.Snapshot, schedule domain.Schedule, slotA, slotB domain.SlotKey) (domain.Schedule, error) {
	if err := ValidateSwap(snap, schedule, slotA, slotB); err != nil {
		return domain.Schedule{}, err
	}
	out := cloneSchedule(schedule)
	aSdIdx, aAIdx, _ := locate(out, slotA)
	bSdIdx, bAIdx, _ := locate(out, slotB)

	personA := out.ServiceDates[aSdIdx].Assignments[aAIdx].PersonID
	personB := out.ServiceDates[bSdIdx].Assignments[bAIdx].PersonID

	out.ServiceDates[aSdIdx].Assignments[aAIdx].PersonID = personB
	out.ServiceDates[aSdIdx].Assignments[aAIdx].ManualOverride = true
	out.ServiceDates[bSdIdx].Assignments[bAIdx].PersonID = personA
	out.ServiceDates[bSdIdx].Assignments[bAIdx].ManualOverride = true
	return out, nil
}

// ValidateMove checks that slotDst is empty and that slotSrc's occupant
// would pass validation for slotDst (spec §4.6 "move").
func ValidateMove(snap domain.Snapshot, schedule domain.Schedule, slotSrc, slotDst domain.SlotKey) error {
	_, dAIdx, err := locate(schedule, slotDst)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	dSdIdx, _, _ := locate(schedule, slotDst)
	if !schedule.ServiceDates[dSdIdx].Assignments[dAIdx].IsEmpty() {
		return &StateError{Reason: "move destination slot is not empty"}
	}

	_, sAIdx, err := locate(schedule, slotSrc)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	sSdIdx, _, _ := locate(schedule, slotSrc)
	personSrc := schedule.ServiceDates[sSdIdx].Assignments[sAIdx].PersonID
	if personSrc == "" {
		return &ValidationError{Reason: "move source slot is empty"}
	}

	return ValidateReplace(snap, schedule, slotDst, personSrc)
}

// ApplyMove is equivalent to replace(slotDst, slotSrc.person) +
// clear(slotSrc), applied atomically (spec §4.6).
func ApplyMove(snap domain.Snapshot, schedule domain.Schedule, slotSrc, slotDst domain.SlotKey) (domain.Schedule, error) {
	if err := ValidateMove(snap, schedule, slotSrc, slotDst); err != nil {
		return domain.Schedule{}, err
	}
	sSdIdx, sAIdx, _ := locate(schedule, slotSrc)
	personSrc := schedule.ServiceDates[sSdIdx].Assignments[sAIdx].PersonID

	out := cloneSchedule(schedule)
	dSdIdx, dAIdx, _ := locate(out, slotDst)
	out.ServiceDates[dSdIdx].Assignments[dAIdx].PersonID = personSrc
	out.ServiceDates[dSdIdx].Assignments[dAIdx].ManualOverride = true

	sSdIdx2, sAIdx2, _ := locate(out, slotSrc)
	out.ServiceDates[sSdIdx2].Assignments[sAIdx2].PersonID = ""
	return out, nil
}
