package siblings

import (
	"testing"

	"github.com/parish/sacristy/internal/domain"
)

func TestPairingIntentSeparateBeatsTogether(t *testing.T) {
	groups := []domain.SiblingGroup{
		{ID: "g1", PairingRule: domain.PairingTogether, Members: map[string]bool{"p1": true, "p2": true}},
		{ID: "g2", PairingRule: domain.PairingSeparate, Members: map[string]bool{"p1": true, "p2": true}},
	}
	r := New(groups)
	if got := r.PairingIntent("p1", "p2"); got != SeparateForbidden {
		t.Errorf("PairingIntent = %v, want SeparateForbidden", got)
	}
}

func TestPairingIntentTogether(t *testing.T) {
	groups := []domain.SiblingGroup{
		{ID: "g1", PairingRule: domain.PairingTogether, Members: map[string]bool{"p3": true, "p4": true}},
	}
	r := New(groups)
	if got := r.PairingIntent("p3", "p4"); got != TogetherPreferred {
		t.Errorf("PairingIntent = %v, want TogetherPreferred", got)
	}
}

func TestPairingIntentNeutralForUnrelated(t *testing.T) {
	groups := []domain.SiblingGroup{
		{ID: "g1", PairingRule: domain.PairingTogether, Members: map[string]bool{"p3": true, "p4": true}},
	}
	r := New(groups)
	if got := r.PairingIntent("p3", "p5"); got != Neutral {
		t.Errorf("PairingIntent = %v, want Neutral", got)
	}
}

func TestHasSeparateConflict(t *testing.T) {
	groups := []domain.SiblingGroup{
		{ID: "g1", PairingRule: domain.PairingSeparate, Members: map[string]bool{"p1": true, "p2": true}},
	}
	r := New(groups)
	assigned := map[string]bool{"p2": true, "p9": true}
	if !r.HasSeparateConflict("p1", assigned) {
		t.Error("expected a SEPARATE conflict with p2 already assigned")
	}
	if r.HasSeparateConflict("p3", assigned) {
		t.Error("expected no conflict for an unrelated person")
	}
}

func TestSiblingsOfUnionsAcrossGroups(t *testing.T) {
	groups := []domain.SiblingGroup{
		{ID: "g1", PairingRule: domain.PairingTogether, Members: map[string]bool{"p1": true, "p2": true}},
		{ID: "g2", PairingRule: domain.PairingSeparate, Members: map[string]bool{"p1": true, "p3": true}},
	}
	r := New(groups)
	got := r.SiblingsOf("p1")
	if len(got) != 2 || !got["p2"] || !got["p3"] {
		t.Errorf("SiblingsOf(p1) = %v, want {p2, p3}", got)
	}
}
