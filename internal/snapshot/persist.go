package snapshot

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"github.com/parish/sacristy/internal/domain"
)

// SaveSchedule persists schedule and all of its service dates and
// assignments, following the teacher's create-or-update-by-id pattern
// (ProcessSimpleRecord in base_sync.go). It is called once per generate(),
// apply_edit() or publish call; schedule.ID/ServiceDate.ID/Assignment.ID are
// pre-populated by the engine, so this is a straight upsert by id.
func SaveSchedule(app core.App, schedule domain.Schedule) error {
	schedulesCol, err := app.FindCollectionByNameOrId("schedules")
	if err != nil {
		return fmt.Errorf("finding schedules collection: %w", err)
	}
	if err := upsertByID(app, schedulesCol, schedule.ID, map[string]any{
		"year":   schedule.Year,
		"month":  schedule.Month,
		"name":   schedule.Name,
		"status": string(schedule.Status),
	}); err != nil {
		return fmt.Errorf("saving schedule %s: %w", schedule.ID, err)
	}

	sdCol, err := app.FindCollectionByNameOrId("service_dates")
	if err != nil {
		return fmt.Errorf("finding service_dates collection: %w", err)
	}
	assignCol, err := app.FindCollectionByNameOrId("assignments")
	if err != nil {
		return fmt.Errorf("finding assignments collection: %w", err)
	}

	for _, sd := range schedule.ServiceDates {
		if err := upsertByID(app, sdCol, sd.ID, map[string]any{
			"schedule": sd.ScheduleID,
			"date":     sd.Date.Format("2006-01-02"),
		}); err != nil {
			return fmt.Errorf("saving service date %s: %w", sd.ID, err)
		}

		for _, a := range sd.Assignments {
			if err := upsertByID(app, assignCol, a.ID, map[string]any{
				"service_date":    a.ServiceDateID,
				"job":             a.JobID,
				"position":        a.Position,
				"person":          a.PersonID,
				"manual_override": a.ManualOverride,
			}); err != nil {
				return fmt.Errorf("saving assignment %s: %w", a.ID, err)
			}
		}
	}
	return nil
}

// AppendHistory writes records to the assignment_history collection,
// called once at publish time (spec §4.6, §3: AssignmentHistory is
// append-only).
func AppendHistory(app core.App, records []domain.HistoryRecord) error {
	col, err := app.FindCollectionByNameOrId("assignment_history")
	if err != nil {
		return fmt.Errorf("finding assignment_history collection: %w", err)
	}
	for _, r := range records {
		record := core.NewRecord(col)
		record.Set("person", r.PersonID)
		record.Set("job", r.JobID)
		record.Set("service_date", r.ServiceDate.Format("2006-01-02"))
		record.Set("position", r.Position)
		if err := app.Save(record); err != nil {
			return fmt.Errorf("appending history record: %w", err)
		}
	}
	return nil
}

func upsertByID(app core.App, col *core.Collection, id string, fields map[string]any) error {
	record, err := app.FindRecordById(col.Id, id)
	if err != nil {
		record = core.NewRecord(col)
		record.Id = id
	}
	for field, value := range fields {
		record.Set(field, value)
	}
	return app.Save(record)
}
