// Package history implements C3, the History Index: built once per
// generation run from the AssignmentHistory log, then updated in place
// as the Schedule Builder commits tentative assignments, so later slots
// in the same run see earlier ones (spec §4.3, §4.6 Phase E).
package history

import (
	"sort"
	"time"

	"github.com/parish/sacristy/internal/calendar"
	"github.com/parish/sacristy/internal/domain"
)

// Index answers the per-person counters and rotation state C6 and C5 need.
type Index struct {
	byPerson map[string][]domain.HistoryRecord
}

// New builds an Index seeded from a persisted history log. The slice is
// not retained by reference into the caller's data — Record appends grow
// the Index's own copy.
func New(records []domain.HistoryRecord) *Index {
	idx := &Index{byPerson: make(map[string][]domain.HistoryRecord)}
	for _, r := range records {
		idx.byPerson[r.PersonID] = append(idx.byPerson[r.PersonID], r)
	}
	for p := range idx.byPerson {
		idx.sortPerson(p)
	}
	return idx
}

// Record appends a newly committed assignment to the working history so
// subsequent queries in the same generation run observe it.
func (idx *Index) Record(r domain.HistoryRecord) {
	idx.byPerson[r.PersonID] = append(idx.byPerson[r.PersonID], r)
	idx.sortPerson(r.PersonID)
}

func (idx *Index) sortPerson(personID string) {
	recs := idx.byPerson[personID]
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].ServiceDate.Before(recs[j].ServiceDate)
	})
}

// CountThisYear returns the number of assignments (any job) for person in
// the given year.
func (idx *Index) CountThisYear(personID string, year int) int {
	n := 0
	for _, r := range idx.byPerson[personID] {
		if r.ServiceDate.Year() == year {
			n++
		}
	}
	return n
}

// CountByJobThisYear returns the number of assignments for (person, job)
// in the given year.
func (idx *Index) CountByJobThisYear(personID, jobID string, year int) int {
	n := 0
	for _, r := range idx.byPerson[personID] {
		if r.ServiceDate.Year() == year && r.JobID == jobID {
			n++
		}
	}
	return n
}

// LastServiceDate returns the most recent assignment date for person
// (any job), or nil if they have never served.
func (idx *Index) LastServiceDate(personID string) *time.Time {
	recs := idx.byPerson[personID]
	if len(recs) == 0 {
		return nil
	}
	last := recs[len(recs)-1].ServiceDate
	return &last
}

// ConsecutiveWeeksEndingAt returns the longest unbroken run of weekly
// (any job) assignments for person ending on the Sunday strictly before
// date (spec §4.3).
func (idx *Index) ConsecutiveWeeksEndingAt(personID string, date time.Time) int {
	served := make(map[time.Time]bool)
	for _, r := range idx.byPerson[personID] {
		served[normalizeDate(r.ServiceDate)] = true
	}

	cursor := normalizeDate(calendar.PrecedingSunday(date))
	count := 0
	for served[cursor] {
		count++
		cursor = cursor.AddDate(0, 0, -7)
	}
	return count
}

// ServedInMonth reports whether person has any assignment for job in
// (year, month).
func (idx *Index) ServedInMonth(personID, jobID string, year, month int) bool {
	for _, r := range idx.byPerson[personID] {
		if r.JobID == jobID && r.ServiceDate.Year() == year && int(r.ServiceDate.Month()) == month {
			return true
		}
	}
	return false
}

// ServedInPriorMonth reports whether person has any assignment for job in
// the calendar month immediately preceding (year, month).
func (idx *Index) ServedInPriorMonth(personID, jobID string, year, month int) bool {
	py, pm := calendar.PriorMonth(year, month)
	return idx.ServedInMonth(personID, jobID, py, pm)
}

// RotationBag returns the positions of job the person has not yet
// performed in their current rotation cycle. It is derived lazily from
// history rather than persisted (spec §9): walking the person's history
// for this job in chronological order, positions served are removed from
// a working bag that starts full; once the bag empties, a new cycle
// begins and it is refilled to the full position set.
func (idx *Index) RotationBag(personID, jobID string, positionNumbers []int) map[int]bool {
	bag := fullSet(positionNumbers)
	if len(bag) == 0 {
		return bag
	}
	for _, r := range idx.byPerson[personID] {
		if r.JobID != jobID {
			continue
		}
		if _, ok := bag[r.Position]; ok {
			delete(bag, r.Position)
			if len(bag) == 0 {
				bag = fullSet(positionNumbers)
			}
		}
	}
	return bag
}

// Export flattens the working history back into a flat, chronologically
// sorted-per-person slice, e.g. for materializing a fairness report over
// the final state of a generation run (spec §4.6 Phase F).
func (idx *Index) Export() []domain.HistoryRecord {
	var out []domain.HistoryRecord
	for _, recs := range idx.byPerson {
		out = append(out, recs...)
	}
	return out
}

func fullSet(positionNumbers []int) map[int]bool {
	set := make(map[int]bool, len(positionNumbers))
	for _, n := range positionNumbers {
		set[n] = true
	}
	return set
}

func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
