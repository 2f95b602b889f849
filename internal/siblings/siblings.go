// Package siblings implements C4, the Sibling Resolver: it maps each
// person to the sibling groups they belong to and classifies pairwise
// intent as TOGETHER (soft preference), SEPARATE (hard constraint), or
// Neutral (spec §4.4).
package siblings

import "github.com/parish/sacristy/internal/domain"

// Intent is the result of a pairing query between two persons.
type Intent int

const (
	Neutral Intent = iota
	TogetherPreferred
	SeparateForbidden
)

// Resolver answers sibling queries for one snapshot's groups.
type Resolver struct {
	groupsOf map[string][]domain.SiblingGroup // person id -> groups containing them
}

// New builds a Resolver from a snapshot's sibling groups.
func New(groups []domain.SiblingGroup) *Resolver {
	r := &Resolver{groupsOf: make(map[string][]domain.SiblingGroup)}
	for _, g := range groups {
		for personID := range g.Members {
			r.groupsOf[personID] = append(r.groupsOf[personID], g)
		}
	}
	return r
}

// SiblingsOf returns the set of person ids co-membered with person across
// all groups that contain them (excluding person itself).
func (r *Resolver) SiblingsOf(personID string) map[string]bool {
	out := make(map[string]bool)
	for _, g := range r.groupsOf[personID] {
		for member := range g.Members {
			if member != personID {
				out[member] = true
			}
		}
	}
	return out
}

// PairingIntent classifies the relationship between a and b: if any shared
// group marks SEPARATE the result is SeparateForbidden (hard), else if any
// shared group marks TOGETHER the result is TogetherPreferred (soft), else
// Neutral.
func (r *Resolver) PairingIntent(a, b string) Intent {
	if a == b {
		return Neutral
	}
	sawTogether := false
	for _, g := range r.groupsOf[a] {
		if !g.Members[b] {
			continue
		}
		if g.PairingRule == domain.PairingSeparate {
			return SeparateForbidden
		}
		if g.PairingRule == domain.PairingTogether {
			sawTogether = true
		}
	}
	if sawTogether {
		return TogetherPreferred
	}
	return Neutral
}

// HasSeparateConflict reports whether personID has any SEPARATE-linked
// sibling already present in assignedPersonIDs (spec §4.6 Phase C.4).
func (r *Resolver) HasSeparateConflict(personID string, assignedPersonIDs map[string]bool) bool {
	for other := range assignedPersonIDs {
		if r.PairingIntent(personID, other) == SeparateForbidden {
			return true
		}
	}
	return false
}

// HasTogetherSibling reports whether personID has any TOGETHER-linked
// sibling already present in assignedPersonIDs (spec §4.5 sibling_bonus).
func (r *Resolver) HasTogetherSibling(personID string, assignedPersonIDs map[string]bool) bool {
	for other := range assignedPersonIDs {
		if r.PairingIntent(personID, other) == TogetherPreferred {
			return true
		}
	}
	return false
}
