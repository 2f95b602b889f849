// Package snapshot loads a domain.Snapshot from PocketBase collections.
// The paginated-scan shape here is the teacher's: walk a collection in
// LargePageSize pages via FindRecordsByFilter until a short page ends the
// scan (see base_sync.go's PaginateRecords/PreloadRecords).
package snapshot

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"github.com/parish/sacristy/internal/domain"
)

// LargePageSize mirrors the teacher's paging size for full-table scans.
const LargePageSize = 200

// forEachRecord pages through collection (optionally filtered), calling fn
// for each record, stopping at the first error or the first short page.
func forEachRecord(app core.App, collection, filter string, fn func(*core.Record) error) error {
	page := 1
	for {
		records, err := app.FindRecordsByFilter(collection, filter, "", LargePageSize, (page-1)*LargePageSize)
		if err != nil {
			return fmt.Errorf("querying %s: %w", collection, err)
		}
		for _, r := range records {
			if err := fn(r); err != nil {
				return err
			}
		}
		if len(records) < LargePageSize {
			return nil
		}
		page++
	}
}

// Load builds an immutable domain.Snapshot from the people, jobs,
// job_positions, person_jobs, sibling_groups, sibling_group_members,
// unavailability, and assignment_history collections.
func Load(app core.App, weights domain.Weights) (domain.Snapshot, error) {
	people, err := loadPeople(app)
	if err != nil {
		return domain.Snapshot{}, err
	}
	jobs, err := loadJobs(app)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := loadQualifications(app, people, jobs); err != nil {
		return domain.Snapshot{}, err
	}
	unavail, err := loadUnavailability(app)
	if err != nil {
		return domain.Snapshot{}, err
	}
	groups, err := loadSiblingGroups(app)
	if err != nil {
		return domain.Snapshot{}, err
	}
	history, err := loadHistory(app)
	if err != nil {
		return domain.Snapshot{}, err
	}

	peopleOut := make(map[string]domain.Person, len(people))
	for id, p := range people {
		peopleOut[id] = *p
	}
	jobsOut := make(map[string]domain.Job, len(jobs))
	for id, j := range jobs {
		jobsOut[id] = *j
	}

	return domain.Snapshot{
		People:         peopleOut,
		Jobs:           jobsOut,
		Unavailability: unavail,
		SiblingGroups:  groups,
		History:        history,
		Weights:        weights,
	}, nil
}

func loadPeople(app core.App) (map[string]*domain.Person, error) {
	out := make(map[string]*domain.Person)
	err := forEachRecord(app, "people", "", func(r *core.Record) error {
		out[r.Id] = &domain.Person{
			ID:                  r.Id,
			FirstName:           r.GetString("first_name"),
			LastName:            r.GetString("last_name"),
			Active:              r.GetBool("active"),
			PreferredFrequency:  domain.Frequency(r.GetString("preferred_frequency")),
			MaxConsecutiveWeeks: r.GetInt("max_consecutive_weeks"),
			PreferenceLevel:     r.GetInt("preference_level"),
			ExcludeMonaguillos:  r.GetBool("exclude_monaguillos"),
			ExcludeLectores:     r.GetBool("exclude_lectores"),
			QualifiedJobIDs:     make(map[string]bool),
		}
		return nil
	})
	return out, err
}

func loadJobs(app core.App) (map[string]*domain.Job, error) {
	out := make(map[string]*domain.Job)
	err := forEachRecord(app, "jobs", "", func(r *core.Record) error {
		out[r.Id] = &domain.Job{
			ID:                         r.Id,
			Name:                       r.GetString("name"),
			PeopleRequired:             r.GetInt("people_required"),
			Active:                     r.GetBool("active"),
			ConsecutiveMonthRestricted: r.GetBool("consecutive_month_restricted"),
			DayExclusiveWith:           make(map[string]bool),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = forEachRecord(app, "job_positions", "", func(r *core.Record) error {
		jobID := r.GetString("job")
		job, ok := out[jobID]
		if !ok {
			return nil
		}
		job.Positions = append(job.Positions, domain.Position{
			Number: r.GetInt("number"),
			Name:   r.GetString("name"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = forEachRecord(app, "job_exclusivity", "", func(r *core.Record) error {
		a, b := r.GetString("job_a"), r.GetString("job_b")
		if ja, ok := out[a]; ok {
			ja.DayExclusiveWith[b] = true
		}
		if jb, ok := out[b]; ok {
			jb.DayExclusiveWith[a] = true
		}
		return nil
	})
	return out, err
}

func loadQualifications(app core.App, people map[string]*domain.Person, jobs map[string]*domain.Job) error {
	return forEachRecord(app, "person_jobs", "", func(r *core.Record) error {
		personID, jobID := r.GetString("person"), r.GetString("job")
		if _, ok := jobs[jobID]; !ok {
			return nil
		}
		if p, ok := people[personID]; ok {
			p.QualifiedJobIDs[jobID] = true
		}
		return nil
	})
}

func loadUnavailability(app core.App) (map[string][]domain.Unavailability, error) {
	out := make(map[string][]domain.Unavailability)
	err := forEachRecord(app, "unavailability", "", func(r *core.Record) error {
		personID := r.GetString("person")
		out[personID] = append(out[personID], domain.Unavailability{
			ID:        r.Id,
			PersonID:  personID,
			StartDate: r.GetDateTime("start_date").Time(),
			EndDate:   r.GetDateTime("end_date").Time(),
			Reason:    r.GetString("reason"),
			Recurring: r.GetBool("recurring"),
		})
		return nil
	})
	return out, err
}

func loadSiblingGroups(app core.App) ([]domain.SiblingGroup, error) {
	groups := make(map[string]*domain.SiblingGroup)
	err := forEachRecord(app, "sibling_groups", "", func(r *core.Record) error {
		groups[r.Id] = &domain.SiblingGroup{
			ID:          r.Id,
			Name:        r.GetString("name"),
			PairingRule: domain.PairingRule(r.GetString("pairing_rule")),
			Members:     make(map[string]bool),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = forEachRecord(app, "sibling_group_members", "", func(r *core.Record) error {
		groupID := r.GetString("sibling_group")
		if g, ok := groups[groupID]; ok {
			g.Members[r.GetString("person")] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.SiblingGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	return out, nil
}

func loadHistory(app core.App) ([]domain.HistoryRecord, error) {
	var out []domain.HistoryRecord
	err := forEachRecord(app, "assignment_history", "", func(r *core.Record) error {
		out = append(out, domain.HistoryRecord{
			PersonID:    r.GetString("person"),
			JobID:       r.GetString("job"),
			ServiceDate: r.GetDateTime("service_date").Time(),
			Position:    r.GetInt("position"),
		})
		return nil
	})
	return out, err
}
