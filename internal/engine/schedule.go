package engine

import "github.com/parish/sacristy/internal/domain"

// Completeness reports every empty slot in schedule, in service-date then
// job then position order (spec §6 completeness(), §8 scenario 6).
func Completeness(snap domain.Snapshot, schedule domain.Schedule) []EmptySlot {
	var empties []EmptySlot
	for _, sd := range schedule.ServiceDates {
		for _, a := range sd.Assignments {
			if !a.IsEmpty() {
				continue
			}
			job := snap.Jobs[a.JobID]
			empties = append(empties, EmptySlot{
				Date:     sd.Date.Format("2006-01-02"),
				JobName:  job.Name,
				Position: job.PositionName(a.Position),
			})
		}
	}
	return empties
}

// IsComplete reports whether schedule has no empty slots.
func IsComplete(schedule domain.Schedule) bool {
	for _, sd := range schedule.ServiceDates {
		for _, a := range sd.Assignments {
			if a.IsEmpty() {
				return false
			}
		}
	}
	return true
}

// Publish transitions a DRAFT schedule to PUBLISHED. Spec §4.6 / §7:
// publishing a schedule that isn't DRAFT is a StateConflict, and
// publishing an incomplete schedule is a StateConflict naming every
// empty slot.
func Publish(snap domain.Snapshot, schedule domain.Schedule) (domain.Schedule, error) {
	if schedule.Status != domain.StatusDraft {
		return domain.Schedule{}, &StateError{Reason: "only a DRAFT schedule may be published"}
	}
	if empties := Completeness(snap, schedule); len(empties) > 0 {
		return domain.Schedule{}, &StateError{
			Reason:     "schedule has unfilled slots",
			EmptySlots: empties,
		}
	}
	out := cloneSchedule(schedule)
	out.Status = domain.StatusPublished
	return out, nil
}

// Archive transitions a PUBLISHED schedule to ARCHIVED. Archiving a
// schedule that is not PUBLISHED is a StateConflict (spec §4.6).
func Archive(schedule domain.Schedule) (domain.Schedule, error) {
	if schedule.Status != domain.StatusPublished {
		return domain.Schedule{}, &StateError{Reason: "only a PUBLISHED schedule may be archived"}
	}
	out := cloneSchedule(schedule)
	out.Status = domain.StatusArchived
	return out, nil
}

// ToHistory flattens a PUBLISHED schedule's assignments into append-only
// AssignmentHistory records (spec §3), for the caller to persist once at
// publish time.
func ToHistory(schedule domain.Schedule) []domain.HistoryRecord {
	var out []domain.HistoryRecord
	for _, sd := range schedule.ServiceDates {
		for _, a := range sd.Assignments {
			if a.IsEmpty() {
				continue
			}
			out = append(out, domain.HistoryRecord{
				PersonID:    a.PersonID,
				JobID:       a.JobID,
				ServiceDate: sd.Date,
				Position:    a.Position,
			})
		}
	}
	return out
}
