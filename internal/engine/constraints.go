package engine

import (
	"time"

	"github.com/parish/sacristy/internal/availability"
	"github.com/parish/sacristy/internal/domain"
	"github.com/parish/sacristy/internal/history"
	"github.com/parish/sacristy/internal/siblings"
)

// workingState is the mutable bookkeeping C6 carries across one
// generation or edit-validation call: the in-memory history index
// (updated as slots are committed, spec §4.6 Phase E) plus a per-date
// index of who is already assigned to what job, used for day-exclusivity
// and sibling checks (spec §4.6 Phase C.3, C.4).
type workingState struct {
	snapshot     domain.Snapshot
	avail        *availability.Index
	hist         *history.Index
	sib          *siblings.Resolver
	// assignedOnDate[dateKey][personID] = set of job ids the person
	// already holds on that date in the current working set. A set
	// rather than a single job id, so a person holding more than one
	// job on the same date is tracked correctly. Two different jobs
	// are exclusive on one date only when listed in DayExclusiveWith;
	// jobs with no entry there may be held by the same person on the
	// same date.
	assignedOnDate map[string]map[string]map[string]bool
}

func newWorkingState(snap domain.Snapshot) *workingState {
	return &workingState{
		snapshot:       snap,
		avail:          availability.New(snap.Unavailability),
		hist:           history.New(snap.History),
		sib:            siblings.New(snap.SiblingGroups),
		assignedOnDate: make(map[string]map[string]map[string]bool),
	}
}

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}

// personsAssignedOn returns the person-id -> job-ids map for a date,
// creating it on first use.
func (w *workingState) personsAssignedOn(d time.Time) map[string]map[string]bool {
	key := dateKey(d)
	m, ok := w.assignedOnDate[key]
	if !ok {
		m = make(map[string]map[string]bool)
		w.assignedOnDate[key] = m
	}
	return m
}

// assignedPersonIDSet returns the set of person ids already on date d,
// for sibling-conflict and sibling-bonus lookups.
func (w *workingState) assignedPersonIDSet(d time.Time) map[string]bool {
	m := w.personsAssignedOn(d)
	set := make(map[string]bool, len(m))
	for p := range m {
		set[p] = true
	}
	return set
}

// checkHardConstraints evaluates every hard rule from spec §4.2-§4.4 and
// §4.6 Phase C against one candidate (person, job, position, date), in
// the order the spec lists them, stopping at the first failure.
func (w *workingState) checkHardConstraints(
	person domain.Person,
	job domain.Job,
	position int,
	date time.Time,
	year, month int,
) (domain.Person, ConstraintReason, bool) {
	if reason := availability.IsEligible(person, job, date, w.avail); reason != availability.Eligible {
		return person, availabilityReason(reason), false
	}

	if w.hist.ConsecutiveWeeksEndingAt(person.ID, date) >= person.MaxConsecutiveWeeks {
		return person, ReasonExceedsConsecutiveWeeks, false
	}

	if w.hist.ServedInMonth(person.ID, job.ID, year, month) {
		return person, ReasonAlreadyAssignedThisMonth, false
	}

	if job.ConsecutiveMonthRestricted && w.hist.ServedInPriorMonth(person.ID, job.ID, year, month) {
		return person, ReasonConsecutiveMonthForbidden, false
	}

	assignedToday := w.personsAssignedOn(date)
	if existingJobIDs, already := assignedToday[person.ID]; already {
		if existingJobIDs[job.ID] {
			return person, ReasonDuplicatePersonOnSchedule, false
		}
		for existingJobID := range existingJobIDs {
			if job.DayExclusiveWith[existingJobID] {
				return person, ReasonDayExclusivityViolation, false
			}
		}
	}

	if w.sib.HasSeparateConflict(person.ID, w.assignedPersonIDSet(date)) {
		return person, ReasonSiblingSeparateViolation, false
	}

	return person, "", true
}

func availabilityReason(r availability.Reason) ConstraintReason {
	switch r {
	case availability.ReasonInactive:
		return ReasonPersonInactive
	case availability.ReasonNotQualified:
		return ReasonNotQualified
	case availability.ReasonExcluded:
		return ReasonExcludedFromJob
	case availability.ReasonUnavailable:
		return ReasonUnavailable
	default:
		return ""
	}
}

// commit records person into the working history and the per-date index
// so later slots in the same run observe it (spec §4.6 Phase E).
func (w *workingState) commit(person domain.Person, job domain.Job, position int, date time.Time) {
	w.hist.Record(domain.HistoryRecord{
		PersonID:    person.ID,
		JobID:       job.ID,
		ServiceDate: date,
		Position:    position,
	})
	today := w.personsAssignedOn(date)
	jobs, ok := today[person.ID]
	if !ok {
		jobs = make(map[string]bool)
		today[person.ID] = jobs
	}
	jobs[job.ID] = true
}
