package engine

import (
	"sort"

	"github.com/parish/sacristy/internal/domain"
	"github.com/parish/sacristy/internal/history"
)

// Fairness implements the fairness(history, year) external interface from
// spec §6: a per-(person, job) report of this year's counts and last
// service date, for the caller to render. The rows are sorted by person
// id then job id for a deterministic, diffable report.
func Fairness(records []domain.HistoryRecord, year int) []domain.FairnessScore {
	idx := history.New(records)

	type key struct{ personID, jobID string }
	seen := make(map[key]bool)
	for _, r := range records {
		seen[key{r.PersonID, r.JobID}] = true
	}

	rows := make([]domain.FairnessScore, 0, len(seen))
	for k := range seen {
		rows = append(rows, domain.FairnessScore{
			PersonID:        k.personID,
			JobID:           k.jobID,
			CountThisYear:   idx.CountByJobThisYear(k.personID, k.jobID, year),
			LastServiceDate: idx.LastServiceDate(k.personID),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PersonID != rows[j].PersonID {
			return rows[i].PersonID < rows[j].PersonID
		}
		return rows[i].JobID < rows[j].JobID
	})
	return rows
}
