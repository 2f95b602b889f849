package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/parish/sacristy/internal/availability"
	"github.com/parish/sacristy/internal/calendar"
	"github.com/parish/sacristy/internal/domain"
	"github.com/parish/sacristy/internal/fairness"
)

// GenerateRequest is the transport-agnostic input to generate() (spec §6).
type GenerateRequest struct {
	Year  int
	Month int
	Name  string // optional; "" lets the caller default it
}

// SchedulePreview is generate()'s output: a schedule plus any unresolved
// conflicts and the fairness report materialized over the final working
// history (spec §4.6 Phase F, §6).
type SchedulePreview struct {
	Schedule       domain.Schedule
	Conflicts      []Conflict
	FairnessScores []domain.FairnessScore
}

// Generate runs C6 end to end: Phase A (materialize slots), Phase B
// (ordering), Phase C (candidate construction), Phase D (selection),
// Phase E (commit), Phase F (emit). It is a pure function of its
// snapshot and request — no I/O, single-threaded, deterministic (spec §5).
func Generate(ctx context.Context, snap domain.Snapshot, req GenerateRequest) (*SchedulePreview, error) {
	if req.Month < 1 || req.Month > 12 {
		return nil, &ValidationError{Reason: fmt.Sprintf("month %d out of range [1, 12]", req.Month)}
	}
	if req.Year < 1 {
		return nil, &ValidationError{Reason: fmt.Sprintf("year %d out of range", req.Year)}
	}

	dates, err := calendar.ServiceDates(req.Year, req.Month)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%d-%02d", req.Year, req.Month)
	}

	schedule := domain.Schedule{
		ID:     uuid.NewString(),
		Year:   req.Year,
		Month:  req.Month,
		Name:   name,
		Status: domain.StatusDraft,
	}

	ws := newWorkingState(snap)
	var conflicts []Conflict

	for _, d := range dates {
		select {
		case <-ctx.Done():
			return nil, ErrCancelled
		default:
		}

		sd := domain.ServiceDate{
			ID:         uuid.NewString(),
			ScheduleID: schedule.ID,
			Date:       d,
		}

		for _, job := range scarcityOrderedJobs(snap, ws, d) {
			for _, position := range job.PositionNumbers() {
				assignment := domain.Assignment{
					ID:            uuid.NewString(),
					ServiceDateID: sd.ID,
					JobID:         job.ID,
					Position:      position,
				}

				winner, ok := fillSlot(ws, snap, job, position, d, req.Year, req.Month)
				if !ok {
					conflicts = append(conflicts, buildConflict(snap, ws, job, position, sd, d, req.Year, req.Month))
				} else {
					assignment.PersonID = winner.ID
					assignment.ManualOverride = false
					ws.commit(winner, job, position, d)
				}

				sd.Assignments = append(sd.Assignments, assignment)
			}
		}

		schedule.ServiceDates = append(schedule.ServiceDates, sd)
	}

	return &SchedulePreview{
		Schedule:       schedule,
		Conflicts:      conflicts,
		FairnessScores: Fairness(ws.hist.Export(), req.Year),
	}, nil
}

// fillSlot runs Phase C (candidate construction) and Phase D (selection)
// for one slot.
func fillSlot(ws *workingState, snap domain.Snapshot, job domain.Job, position int, date time.Time, year, month int) (domain.Person, bool) {
	var candidates []fairness.Candidate
	byID := make(map[string]domain.Person)

	for _, personID := range snap.ActivePersonIDsSorted() {
		person := snap.People[personID]
		if !person.IsQualifiedFor(job.ID) {
			continue
		}
		if _, _, ok := ws.checkHardConstraints(person, job, position, date, year, month); !ok {
			continue
		}
		c := fairness.Score(person, job, position, date, snap.Weights, ws.hist, ws.sib, ws.assignedPersonIDSet(date))
		candidates = append(candidates, c)
		byID[person.ID] = person
	}

	if len(candidates) == 0 {
		return domain.Person{}, false
	}

	winner := fairness.Best(candidates)
	return byID[winner.PersonID], true
}

// buildConflict records an InsufficientPeople conflict (spec §7), carrying
// the slot coordinates and the near-miss reason that eliminated the most
// otherwise-eligible persons (spec §4.6 Phase D).
func buildConflict(snap domain.Snapshot, ws *workingState, job domain.Job, position int, sd domain.ServiceDate, date time.Time, year, month int) Conflict {
	tally := make(map[ConstraintReason]int)
	for _, personID := range snap.ActivePersonIDsSorted() {
		person := snap.People[personID]
		if !person.IsQualifiedFor(job.ID) {
			continue
		}
		if _, reason, ok := ws.checkHardConstraints(person, job, position, date, year, month); !ok {
			tally[reason]++
		}
	}

	strongest := strongestReason(tally)
	return Conflict{
		Slot: domain.SlotKey{
			ServiceDateID: sd.ID,
			JobID:         job.ID,
			Position:      position,
		},
		JobName:         job.Name,
		PositionName:    job.PositionName(position),
		Date:            date.Format("2006-01-02"),
		StrongestReason: strongest,
	}
}

// reasonPriority is a deterministic tie-break order for the rare case of
// an exact tally tie between reasons.
var reasonPriority = []ConstraintReason{
	ReasonPersonInactive,
	ReasonNotQualified,
	ReasonExcludedFromJob,
	ReasonUnavailable,
	ReasonExceedsConsecutiveWeeks,
	ReasonAlreadyAssignedThisMonth,
	ReasonConsecutiveMonthForbidden,
	ReasonDayExclusivityViolation,
	ReasonDuplicatePersonOnSchedule,
	ReasonSiblingSeparateViolation,
}

func strongestReason(tally map[ConstraintReason]int) ConstraintReason {
	best := ConstraintReason("")
	bestCount := -1
	for _, r := range reasonPriority {
		if tally[r] > bestCount {
			best = r
			bestCount = tally[r]
		}
	}
	return best
}

// scarcityOrderedJobs implements spec §4.6 Phase B's middle loop: active
// jobs ordered by ascending count of globally eligible candidates for
// this date (ignoring day-specific exclusivity/sibling state, which is
// per-slot), ties broken by job id for determinism.
func scarcityOrderedJobs(snap domain.Snapshot, ws *workingState, date time.Time) []domain.Job {
	type scored struct {
		job   domain.Job
		count int
	}
	var jobs []scored
	for _, jobID := range snap.ActiveJobIDsSorted() {
		job := snap.Jobs[jobID]
		count := 0
		for _, personID := range snap.ActivePersonIDsSorted() {
			person := snap.People[personID]
			if availability.Eligible == availability.IsEligible(person, job, date, ws.avail) {
				count++
			}
		}
		jobs = append(jobs, scored{job: job, count: count})
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].count != jobs[j].count {
			return jobs[i].count < jobs[j].count
		}
		return jobs[i].job.ID < jobs[j].job.ID
	})
	out := make([]domain.Job, len(jobs))
	for i, s := range jobs {
		out[i] = s.job
	}
	return out
}
