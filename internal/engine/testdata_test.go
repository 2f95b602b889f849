package engine

import (
	"time"

	"github.com/parish/sacristy/internal/domain"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// fixtureSnapshot builds a small, deterministic two-job roster: Lectores
// (2 positions) and Monaguillos (1 position), ten active persons, no
// history, no unavailability, no sibling groups. Ten is the fewest that
// can fill all ten Lectores slots of a five-Sunday month, since nobody
// may serve the same job twice in one month. Individual tests mutate the
// returned snapshot as needed.
func fixtureSnapshot() domain.Snapshot {
	lectores := domain.Job{
		ID:             "job-lectores",
		Name:           domain.JobNameLectores,
		PeopleRequired: 2,
		Active:         true,
		Positions: []domain.Position{
			{Number: 1, Name: "First Reading"},
			{Number: 2, Name: "Second Reading"},
		},
	}
	monaguillos := domain.Job{
		ID:                         "job-monaguillos",
		Name:                       domain.JobNameMonaguillos,
		PeopleRequired:             1,
		Active:                     true,
		ConsecutiveMonthRestricted: true,
		Positions: []domain.Position{
			{Number: 1, Name: "Altar Server"},
		},
	}

	people := make(map[string]domain.Person)
	for _, id := range []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi", "ivan", "judy"} {
		people[id] = domain.Person{
			ID:                  id,
			FirstName:           id,
			Active:              true,
			PreferredFrequency:  domain.FrequencyMonthly,
			MaxConsecutiveWeeks: 2,
			PreferenceLevel:     5,
			QualifiedJobIDs: map[string]bool{
				"job-lectores":    true,
				"job-monaguillos": true,
			},
		}
	}

	return domain.Snapshot{
		People: people,
		Jobs: map[string]domain.Job{
			"job-lectores":    lectores,
			"job-monaguillos": monaguillos,
		},
		Unavailability: map[string][]domain.Unavailability{},
		SiblingGroups:  nil,
		History:        nil,
		Weights:        domain.DefaultWeights(),
	}
}
