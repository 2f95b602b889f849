package fairness

import (
	"testing"
	"time"

	"github.com/parish/sacristy/internal/domain"
	"github.com/parish/sacristy/internal/history"
	"github.com/parish/sacristy/internal/siblings"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func baseJob() domain.Job {
	return domain.Job{
		ID:             "monaguillos",
		Name:           domain.JobNameMonaguillos,
		PeopleRequired: 4,
		Positions: []domain.Position{
			{Number: 1, Name: "Monaguillo 1"},
			{Number: 2, Name: "Monaguillo 2"},
			{Number: 3, Name: "Monaguillo 3"},
			{Number: 4, Name: "Monaguillo 4"},
		},
	}
}

func TestScoreNeverServedGetsZeroRecencyAndFrequency(t *testing.T) {
	hist := history.New(nil)
	sib := siblings.New(nil)
	p := domain.Person{ID: "p1", PreferenceLevel: 5, PreferredFrequency: domain.FrequencyWeekly}

	c := Score(p, baseJob(), 1, date("2026-01-04"), domain.DefaultWeights(), hist, sib, nil)
	if c.LastServiceDate != nil {
		t.Error("expected nil last service date for never-served person")
	}
	// bag_term=1 (never served -> full bag), fairness_term=1, pref=0.5
	// score = 0.70*1 + 0.20*0 + 0.10*0.5 + 0.10*0 + 0.15*0 + 0.30*1
	want := 0.70 + 0.10*0.5 + 0.30
	if diff := c.Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("score = %f, want %f", c.Score, want)
	}
}

func TestBestPrefersHigherScore(t *testing.T) {
	low := Candidate{PersonID: "p2", Score: 0.5}
	high := Candidate{PersonID: "p1", Score: 0.9}
	best := Best([]Candidate{low, high})
	if best.PersonID != "p1" {
		t.Errorf("Best = %s, want p1", best.PersonID)
	}
}

func TestBestTieBreaksByCountThenRecencyThenID(t *testing.T) {
	a := Candidate{PersonID: "p9", Score: 0.5, CountThisYear: 2}
	b := Candidate{PersonID: "p1", Score: 0.5, CountThisYear: 1}
	if best := Best([]Candidate{a, b}); best.PersonID != "p1" {
		t.Errorf("expected smaller count_this_year to win, got %s", best.PersonID)
	}

	earlier := date("2026-01-04")
	later := date("2026-01-11")
	c := Candidate{PersonID: "p9", Score: 0.5, CountThisYear: 1, LastServiceDate: &later}
	d := Candidate{PersonID: "p1", Score: 0.5, CountThisYear: 1, LastServiceDate: &earlier}
	if best := Best([]Candidate{c, d}); best.PersonID != "p1" {
		t.Errorf("expected earlier last_service_date to win, got %s", best.PersonID)
	}

	neverServed := Candidate{PersonID: "p9", Score: 0.5, CountThisYear: 1}
	servedOnce := Candidate{PersonID: "p1", Score: 0.5, CountThisYear: 1, LastServiceDate: &earlier}
	if best := Best([]Candidate{neverServed, servedOnce}); best.PersonID != "p9" {
		t.Errorf("expected never-served to sort earliest and win, got %s", best.PersonID)
	}

	e := Candidate{PersonID: "p9", Score: 0.5}
	f := Candidate{PersonID: "p1", Score: 0.5}
	if best := Best([]Candidate{e, f}); best.PersonID != "p1" {
		t.Errorf("expected lexicographically smaller id to win an exact tie, got %s", best.PersonID)
	}
}

func TestFrequencyTermPeaksAtTargetAndDecaysToZero(t *testing.T) {
	if got := frequencyTermFor(domain.FrequencyWeekly, 1); got != 1.0 {
		t.Errorf("frequencyTermFor(weekly, 1) = %f, want 1.0", got)
	}
	if got := frequencyTermFor(domain.FrequencyWeekly, 2); got != 0.0 {
		t.Errorf("frequencyTermFor(weekly, 2) = %f, want 0.0 (twice target)", got)
	}
	if got := frequencyTermFor(domain.FrequencyMonthly, 4); got != 1.0 {
		t.Errorf("frequencyTermFor(monthly, 4) = %f, want 1.0", got)
	}
	if got := frequencyTermFor(domain.FrequencyMonthly, 8); got != 0.0 {
		t.Errorf("frequencyTermFor(monthly, 8) = %f, want 0.0", got)
	}
}

func TestSiblingBonusAppliesWhenSiblingAlreadyAssigned(t *testing.T) {
	hist := history.New(nil)
	sib := siblings.New([]domain.SiblingGroup{
		{ID: "g1", PairingRule: domain.PairingTogether, Members: map[string]bool{"p3": true, "p4": true}},
	})
	p4 := domain.Person{ID: "p4", PreferenceLevel: 0, PreferredFrequency: domain.FrequencyWeekly}
	withSibling := Score(p4, baseJob(), 2, date("2026-01-04"), domain.DefaultWeights(), hist, sib, map[string]bool{"p3": true})
	withoutSibling := Score(p4, baseJob(), 2, date("2026-01-04"), domain.DefaultWeights(), hist, sib, nil)
	if withSibling.Score <= withoutSibling.Score {
		t.Errorf("expected sibling bonus to increase score: with=%f without=%f", withSibling.Score, withoutSibling.Score)
	}
}
