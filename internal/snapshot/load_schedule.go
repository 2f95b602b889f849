package snapshot

import (
	"fmt"
	"sort"

	"github.com/pocketbase/pocketbase/core"

	"github.com/parish/sacristy/internal/domain"
)

// LoadSchedule reads one schedule, its service dates, and its
// assignments back out of PocketBase, in date then job then position
// order, for validate_edit/apply_edit/completeness to operate on.
func LoadSchedule(app core.App, scheduleID string) (domain.Schedule, error) {
	record, err := app.FindRecordById("schedules", scheduleID)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("finding schedule %s: %w", scheduleID, err)
	}

	schedule := domain.Schedule{
		ID:     record.Id,
		Year:   record.GetInt("year"),
		Month:  record.GetInt("month"),
		Name:   record.GetString("name"),
		Status: domain.ScheduleStatus(record.GetString("status")),
	}

	sdRecords, err := app.FindRecordsByFilter("service_dates", "schedule = {:id}", "date", 0, 0, map[string]any{"id": scheduleID})
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("finding service dates for schedule %s: %w", scheduleID, err)
	}

	for _, sdr := range sdRecords {
		sd := domain.ServiceDate{
			ID:         sdr.Id,
			ScheduleID: scheduleID,
			Date:       sdr.GetDateTime("date").Time(),
		}

		aRecords, err := app.FindRecordsByFilter("assignments", "service_date = {:id}", "", 0, 0, map[string]any{"id": sdr.Id})
		if err != nil {
			return domain.Schedule{}, fmt.Errorf("finding assignments for service date %s: %w", sdr.Id, err)
		}
		for _, ar := range aRecords {
			sd.Assignments = append(sd.Assignments, domain.Assignment{
				ID:             ar.Id,
				ServiceDateID:  sdr.Id,
				JobID:          ar.GetString("job"),
				Position:       ar.GetInt("position"),
				PersonID:       ar.GetString("person"),
				ManualOverride: ar.GetBool("manual_override"),
			})
		}
		sort.Slice(sd.Assignments, func(i, j int) bool {
			if sd.Assignments[i].JobID != sd.Assignments[j].JobID {
				return sd.Assignments[i].JobID < sd.Assignments[j].JobID
			}
			return sd.Assignments[i].Position < sd.Assignments[j].Position
		})

		schedule.ServiceDates = append(schedule.ServiceDates, sd)
	}

	return schedule, nil
}
