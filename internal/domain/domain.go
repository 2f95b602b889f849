// Package domain defines the entities the scheduling engine operates on.
//
// These types are plain data: the engine never mutates a Person, Job,
// SiblingGroup, or Unavailability record it is handed — the caller owns
// those and the engine treats them as a read-only snapshot for the
// duration of one generate/edit call.
package domain

import (
	"sort"
	"time"
)

// Frequency is a person's preferred serving cadence.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBimonthly Frequency = "bimonthly"
	FrequencyMonthly   Frequency = "monthly"
)

// TargetGapWeeks returns the number of weeks between services that
// this frequency targets, used by the fairness scorer's frequency term.
func (f Frequency) TargetGapWeeks() int {
	switch f {
	case FrequencyBimonthly:
		return 2
	case FrequencyMonthly:
		return 4
	default:
		return 1
	}
}

// ScheduleStatus is the lifecycle state of a Schedule (spec §4.6).
type ScheduleStatus string

const (
	StatusDraft     ScheduleStatus = "DRAFT"
	StatusPublished ScheduleStatus = "PUBLISHED"
	StatusArchived  ScheduleStatus = "ARCHIVED"
)

// JobName identifiers with hard-coded semantic meaning (spec §4.2 rule 3,
// §4.3 consecutive-month set). Jobs are otherwise opaque, data-driven
// values — these two names are the only ones the engine treats specially,
// and only because the spec ties exclusion flags to them by name.
const (
	JobNameMonaguillos = "Monaguillos"
	JobNameLectores    = "Lectores"
)

// Person is a roster member.
type Person struct {
	ID                  string
	FirstName           string
	LastName            string
	Active              bool
	PreferredFrequency  Frequency
	MaxConsecutiveWeeks int
	PreferenceLevel     int // 1..10
	ExcludeMonaguillos  bool
	ExcludeLectores     bool
	QualifiedJobIDs     map[string]bool
}

// IsQualifiedFor reports whether the person may serve the given job id.
func (p Person) IsQualifiedFor(jobID string) bool {
	return p.QualifiedJobIDs[jobID]
}

// Position is a numbered sub-role within a Job.
type Position struct {
	Number int
	Name   string
}

// Job is a role category filled by PeopleRequired persons across an
// ordered list of Positions (one per person).
type Job struct {
	ID                        string
	Name                      string
	PeopleRequired            int
	Active                    bool
	Positions                 []Position
	ConsecutiveMonthRestricted bool
	DayExclusiveWith          map[string]bool // job IDs mutually exclusive with this one on the same date
}

// PositionNumbers returns the set {1..PeopleRequired} as a sorted slice.
func (j Job) PositionNumbers() []int {
	nums := make([]int, len(j.Positions))
	for i, p := range j.Positions {
		nums[i] = p.Number
	}
	sort.Ints(nums)
	return nums
}

// PositionName returns the display name for a position number, or ""
// if the job has no such position.
func (j Job) PositionName(number int) string {
	for _, p := range j.Positions {
		if p.Number == number {
			return p.Name
		}
	}
	return ""
}

// Unavailability blocks a person from serving on a date range, optionally
// recurring on the (month, day) window every year (spec §3).
type Unavailability struct {
	ID        string
	PersonID  string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	Recurring bool
}

// PairingRule is how a SiblingGroup constrains its members (spec §4.4).
type PairingRule string

const (
	PairingTogether PairingRule = "TOGETHER"
	PairingSeparate PairingRule = "SEPARATE"
)

// SiblingGroup is a named set of persons with a pairing rule.
type SiblingGroup struct {
	ID          string
	Name        string
	PairingRule PairingRule
	Members     map[string]bool // person id set
}

// Schedule is one month's proposed or published roster.
type Schedule struct {
	ID           string
	Year         int
	Month        int
	Name         string
	Status       ScheduleStatus
	ServiceDates []ServiceDate
}

// ServiceDate is one calendar date a schedule serves, with its assignments.
type ServiceDate struct {
	ID          string
	ScheduleID  string
	Date        time.Time
	Assignments []Assignment
}

// Assignment is a single (date, job, position) slot, possibly empty.
type Assignment struct {
	ID             string
	ServiceDateID  string
	JobID          string
	Position       int
	PersonID       string // "" denotes an empty slot
	ManualOverride bool
}

// IsEmpty reports whether the slot has no person assigned.
func (a Assignment) IsEmpty() bool {
	return a.PersonID == ""
}

// HistoryRecord is one append-only AssignmentHistory entry (spec §3).
type HistoryRecord struct {
	PersonID    string
	JobID       string
	ServiceDate time.Time
	Position    int
}

// SlotKey uniquely identifies a slot within one generation run.
type SlotKey struct {
	ServiceDateID string
	JobID         string
	Position      int
}

// FairnessScore is one (person, job) row of the fairness report (spec §6).
type FairnessScore struct {
	PersonID        string
	JobID           string
	CountThisYear   int
	LastServiceDate *time.Time
}
