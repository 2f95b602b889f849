// Package migrations defines the PocketBase collections sacristy
// persists: roster, job catalog, sibling pairing, unavailability,
// schedules, and the append-only assignment history log. All six
// migrations live in this file; each is one reversible m.Register call
// with an up and a down function, expressed in Go rather than JS, per
// spec §3's collection list.
package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(upRoster, downRoster)
	m.Register(upJobs, downJobs)
	m.Register(upSiblings, downSiblings)
	m.Register(upUnavailability, downUnavailability)
	m.Register(upSchedules, downSchedules)
	m.Register(upHistory, downHistory)
}

func upRoster(app core.App) error {
	people := core.NewBaseCollection("people")
	people.Fields.Add(
		&core.TextField{Name: "first_name", Required: true},
		&core.TextField{Name: "last_name", Required: true},
		&core.BoolField{Name: "active"},
		&core.SelectField{
			Name:      "preferred_frequency",
			Values:    []string{"weekly", "bimonthly", "monthly"},
			MaxSelect: 1,
		},
		&core.NumberField{Name: "max_consecutive_weeks", Required: true},
		&core.NumberField{Name: "preference_level", Required: true, Min: floatPtr(1), Max: floatPtr(10)},
		&core.BoolField{Name: "exclude_monaguillos"},
		&core.BoolField{Name: "exclude_lectores"},
	)
	people.ListRule = strPtr("@request.auth.id != ''")
	people.ViewRule = strPtr("@request.auth.id != ''")
	return app.Save(people)
}

func downRoster(app core.App) error {
	return deleteCollection(app, "people")
}

func upJobs(app core.App) error {
	jobs := core.NewBaseCollection("jobs")
	jobs.Fields.Add(
		&core.TextField{Name: "name", Required: true},
		&core.NumberField{Name: "people_required", Required: true, Min: floatPtr(1)},
		&core.BoolField{Name: "active"},
		&core.BoolField{Name: "consecutive_month_restricted"},
	)
	jobs.AddIndex("idx_jobs_name", true, "name", "")
	if err := app.Save(jobs); err != nil {
		return err
	}

	positions := core.NewBaseCollection("job_positions")
	positions.Fields.Add(
		&core.RelationField{Name: "job", CollectionId: jobs.Id, Required: true, MaxSelect: 1},
		&core.NumberField{Name: "number", Required: true, Min: floatPtr(1)},
		&core.TextField{Name: "name", Required: true},
	)
	positions.AddIndex("idx_job_positions_unique", true, "job, number", "")
	if err := app.Save(positions); err != nil {
		return err
	}

	exclusivity := core.NewBaseCollection("job_exclusivity")
	exclusivity.Fields.Add(
		&core.RelationField{Name: "job_a", CollectionId: jobs.Id, Required: true, MaxSelect: 1},
		&core.RelationField{Name: "job_b", CollectionId: jobs.Id, Required: true, MaxSelect: 1},
	)
	exclusivity.AddIndex("idx_job_exclusivity_unique", true, "job_a, job_b", "")
	if err := app.Save(exclusivity); err != nil {
		return err
	}

	personJobs := core.NewBaseCollection("person_jobs")
	personJobs.Fields.Add(
		&core.RelationField{Name: "person", CollectionId: mustCollection(app, "people").Id, Required: true, MaxSelect: 1},
		&core.RelationField{Name: "job", CollectionId: jobs.Id, Required: true, MaxSelect: 1},
	)
	personJobs.AddIndex("idx_person_jobs_unique", true, "person, job", "")
	return app.Save(personJobs)
}

func downJobs(app core.App) error {
	for _, name := range []string{"person_jobs", "job_exclusivity", "job_positions", "jobs"} {
		if err := deleteCollection(app, name); err != nil {
			return err
		}
	}
	return nil
}

func upSiblings(app core.App) error {
	groups := core.NewBaseCollection("sibling_groups")
	groups.Fields.Add(
		&core.TextField{Name: "name", Required: true},
		&core.SelectField{Name: "pairing_rule", Values: []string{"TOGETHER", "SEPARATE"}, MaxSelect: 1, Required: true},
	)
	if err := app.Save(groups); err != nil {
		return err
	}

	members := core.NewBaseCollection("sibling_group_members")
	members.Fields.Add(
		&core.RelationField{Name: "sibling_group", CollectionId: groups.Id, Required: true, MaxSelect: 1},
		&core.RelationField{Name: "person", CollectionId: mustCollection(app, "people").Id, Required: true, MaxSelect: 1},
	)
	members.AddIndex("idx_sibling_group_members_unique", true, "sibling_group, person", "")
	return app.Save(members)
}

func downSiblings(app core.App) error {
	for _, name := range []string{"sibling_group_members", "sibling_groups"} {
		if err := deleteCollection(app, name); err != nil {
			return err
		}
	}
	return nil
}

func upUnavailability(app core.App) error {
	unavail := core.NewBaseCollection("unavailability")
	unavail.Fields.Add(
		&core.RelationField{Name: "person", CollectionId: mustCollection(app, "people").Id, Required: true, MaxSelect: 1},
		&core.DateField{Name: "start_date", Required: true},
		&core.DateField{Name: "end_date", Required: true},
		&core.TextField{Name: "reason"},
		&core.BoolField{Name: "recurring"},
	)
	return app.Save(unavail)
}

func downUnavailability(app core.App) error {
	return deleteCollection(app, "unavailability")
}

func upSchedules(app core.App) error {
	schedules := core.NewBaseCollection("schedules")
	schedules.Fields.Add(
		&core.NumberField{Name: "year", Required: true},
		&core.NumberField{Name: "month", Required: true, Min: floatPtr(1), Max: floatPtr(12)},
		&core.TextField{Name: "name", Required: true},
		&core.SelectField{Name: "status", Values: []string{"DRAFT", "PUBLISHED", "ARCHIVED"}, MaxSelect: 1, Required: true},
	)
	schedules.AddIndex("idx_schedules_unique_month", true, "year, month", "")
	if err := app.Save(schedules); err != nil {
		return err
	}

	serviceDates := core.NewBaseCollection("service_dates")
	serviceDates.Fields.Add(
		&core.RelationField{Name: "schedule", CollectionId: schedules.Id, Required: true, MaxSelect: 1},
		&core.DateField{Name: "date", Required: true},
	)
	serviceDates.AddIndex("idx_service_dates_unique", true, "schedule, date", "")
	if err := app.Save(serviceDates); err != nil {
		return err
	}

	assignments := core.NewBaseCollection("assignments")
	assignments.Fields.Add(
		&core.RelationField{Name: "service_date", CollectionId: serviceDates.Id, Required: true, MaxSelect: 1},
		&core.RelationField{Name: "job", CollectionId: mustCollection(app, "jobs").Id, Required: true, MaxSelect: 1},
		&core.NumberField{Name: "position", Required: true, Min: floatPtr(1)},
		&core.RelationField{Name: "person", CollectionId: mustCollection(app, "people").Id, MaxSelect: 1},
		&core.BoolField{Name: "manual_override"},
	)
	assignments.AddIndex("idx_assignments_unique_slot", true, "service_date, job, position", "")
	return app.Save(assignments)
}

func downSchedules(app core.App) error {
	for _, name := range []string{"assignments", "service_dates", "schedules"} {
		if err := deleteCollection(app, name); err != nil {
			return err
		}
	}
	return nil
}

func upHistory(app core.App) error {
	history := core.NewBaseCollection("assignment_history")
	history.Fields.Add(
		&core.RelationField{Name: "person", CollectionId: mustCollection(app, "people").Id, Required: true, MaxSelect: 1},
		&core.RelationField{Name: "job", CollectionId: mustCollection(app, "jobs").Id, Required: true, MaxSelect: 1},
		&core.DateField{Name: "service_date", Required: true},
		&core.NumberField{Name: "position", Required: true, Min: floatPtr(1)},
	)
	history.AddIndex("idx_assignment_history_lookup", false, "person, service_date", "")
	return app.Save(history)
}

func downHistory(app core.App) error {
	return deleteCollection(app, "assignment_history")
}

func mustCollection(app core.App, name string) *core.Collection {
	col, err := app.FindCollectionByNameOrId(name)
	if err != nil {
		panic(err)
	}
	return col
}

func deleteCollection(app core.App, name string) error {
	col, err := app.FindCollectionByNameOrId(name)
	if err != nil {
		return err
	}
	return app.Delete(col)
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }
