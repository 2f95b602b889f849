// Package fairness implements C5, the Fairness Scorer: it turns the
// indices of C2-C4 into a single scalar priority per (person, date, job,
// position) candidate, per spec §4.5.
package fairness

import (
	"time"

	"github.com/parish/sacristy/internal/domain"
	"github.com/parish/sacristy/internal/history"
	"github.com/parish/sacristy/internal/siblings"
)

// Candidate is one scored (person, date, job, position) tuple, carrying
// the raw fields the tie-break rules of spec §4.5 need alongside the score.
type Candidate struct {
	PersonID        string
	Score           float64
	CountThisYear   int
	LastServiceDate *time.Time // nil = never served
}

// Score computes the §4.5 formula for one candidate.
func Score(
	person domain.Person,
	job domain.Job,
	position int,
	date time.Time,
	weights domain.Weights,
	hist *history.Index,
	sib *siblings.Resolver,
	assignedOnDate map[string]bool,
) Candidate {
	year := date.Year()
	countThisYear := hist.CountThisYear(person.ID, year)
	last := hist.LastServiceDate(person.ID)
	bag := hist.RotationBag(person.ID, job.ID, job.PositionNumbers())

	fairnessTerm := 1.0 / float64(countThisYear+1)

	var recencyTerm, frequencyTerm float64
	if last != nil {
		gapWeeks := gapInWeeks(*last, date)
		recencyTerm = clamp01(float64(gapWeeks-1) / 12.0)
		frequencyTerm = frequencyTermFor(person.PreferredFrequency, gapWeeks)
	}

	prefTerm := float64(person.PreferenceLevel) / 10.0

	var siblingBonus float64
	if sib.HasTogetherSibling(person.ID, assignedOnDate) {
		siblingBonus = 1.0
	}

	var bagTerm float64
	if bag[position] {
		bagTerm = 1.0
	}

	score := weights.Fairness*fairnessTerm +
		weights.Recency*recencyTerm +
		weights.Pref*prefTerm +
		weights.Freq*frequencyTerm +
		weights.Sibling*siblingBonus +
		weights.Bag*bagTerm

	return Candidate{
		PersonID:        person.ID,
		Score:           score,
		CountThisYear:   countThisYear,
		LastServiceDate: last,
	}
}

// gapInWeeks is the whole number of weeks between a past service date and
// the candidate date being scored. Service dates are always Sundays, so
// this is exact.
func gapInWeeks(last, date time.Time) int {
	days := int(date.Sub(last).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days / 7
}

// frequencyTermFor is 1 when gapWeeks matches the person's preferred
// cadence and decays linearly to 0 at twice that target (spec §4.5).
func frequencyTermFor(freq domain.Frequency, gapWeeks int) float64 {
	target := freq.TargetGapWeeks()
	diff := gapWeeks - target
	if diff < 0 {
		diff = -diff
	}
	return clamp01(1.0 - float64(diff)/float64(target))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Best picks the winning candidate per spec §4.5: highest score, ties
// broken by (1) smaller count_this_year, (2) earlier last_service_date
// (never-served sorts earliest), (3) lexicographic person id.
func Best(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if isBetter(c, best) {
			best = c
		}
	}
	return best
}

func isBetter(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.CountThisYear != b.CountThisYear {
		return a.CountThisYear < b.CountThisYear
	}
	aNever, bNever := a.LastServiceDate == nil, b.LastServiceDate == nil
	if aNever != bNever {
		return aNever // never-served sorts earliest, i.e. wins
	}
	if !aNever && !a.LastServiceDate.Equal(*b.LastServiceDate) {
		return a.LastServiceDate.Before(*b.LastServiceDate)
	}
	return a.PersonID < b.PersonID
}
