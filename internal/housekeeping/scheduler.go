// Package housekeeping runs the periodic jobs that keep published
// schedules and fairness visibility current outside of any single
// generate()/apply_edit() call: the archive sweep and the fairness
// digest (SPEC_FULL.md's supplemented features), following the
// teacher's cron-based Scheduler shape (pocketbase/sync/scheduler.go).
package housekeeping

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/robfig/cron/v3"

	"github.com/parish/sacristy/internal/domain"
	"github.com/parish/sacristy/internal/engine"
	"github.com/parish/sacristy/internal/metrics"
	"github.com/parish/sacristy/internal/notify"
	"github.com/parish/sacristy/internal/snapshot"
)

// Scheduler manages cron-based housekeeping for sacristy.
type Scheduler struct {
	app                core.App
	cron               *cron.Cron
	notifier           *notify.Throttled
	archiveAfterMonths int
	coordinatorEmail   string

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a Scheduler. archiveAfterMonths is how many
// calendar months after a schedule's (year, month) a PUBLISHED schedule
// is swept into ARCHIVED. coordinatorEmail, when non-empty, receives the
// monthly fairness digest by email alongside the Slack post.
func NewScheduler(app core.App, notifier *notify.Throttled, archiveAfterMonths int, coordinatorEmail string) *Scheduler {
	return &Scheduler{
		app:                app,
		cron:               cron.New(),
		notifier:           notifier,
		archiveAfterMonths: archiveAfterMonths,
		coordinatorEmail:   coordinatorEmail,
	}
}

// Start registers and starts the cron jobs: a nightly archive sweep and a
// monthly fairness digest.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("housekeeping scheduler already running")
	}

	if _, err := s.cron.AddFunc("0 3 * * *", func() {
		slog.Info("starting scheduled archive sweep")
		s.runArchiveSweep()
	}); err != nil {
		return fmt.Errorf("adding archive sweep schedule: %w", err)
	}

	if _, err := s.cron.AddFunc("0 6 1 * *", func() {
		slog.Info("starting scheduled fairness digest")
		s.runFairnessDigest()
	}); err != nil {
		return fmt.Errorf("adding fairness digest schedule: %w", err)
	}

	s.cron.Start()
	s.running = true
	slog.Info("housekeeping scheduler started")
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	slog.Info("housekeeping scheduler stopped")
}

// runArchiveSweep moves every PUBLISHED schedule older than
// archiveAfterMonths to ARCHIVED.
func (s *Scheduler) runArchiveSweep() {
	start := time.Now()
	defer func() {
		metrics.ArchiveSweepDuration.Observe(time.Since(start).Seconds())
	}()

	cutoff := time.Now().AddDate(0, -s.archiveAfterMonths, 0)

	records, err := s.app.FindRecordsByFilter("schedules", "status = 'PUBLISHED'", "", 0, 0)
	if err != nil {
		slog.Error("archive sweep: querying published schedules", "error", err)
		return
	}

	for _, r := range records {
		year, month := r.GetInt("year"), r.GetInt("month")
		scheduleDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		if !scheduleDate.Before(cutoff) {
			continue
		}
		r.Set("status", string(domain.StatusArchived))
		if err := s.app.Save(r); err != nil {
			slog.Error("archive sweep: saving schedule", "schedule", r.Id, "error", err)
			continue
		}
		metrics.ArchiveSweptTotal.Inc()
	}
}

// runFairnessDigest posts a monthly fairness summary to Slack.
func (s *Scheduler) runFairnessDigest() {
	ctx := context.Background()
	year := time.Now().Year()

	weights := domain.DefaultWeights()
	snap, err := snapshot.Load(s.app, weights)
	if err != nil {
		slog.Error("fairness digest: loading snapshot", "error", err)
		return
	}

	scores := engine.Fairness(snap.History, year)
	summary := summarizeFairness(scores)

	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyFairnessDigest(ctx, year, summary); err != nil {
		slog.Error("fairness digest: posting to slack", "error", err)
	}
	if s.coordinatorEmail != "" {
		subject := fmt.Sprintf("Fairness digest %d", year)
		if err := s.notifier.SendEmail(ctx, s.coordinatorEmail, subject, summary); err != nil {
			slog.Error("fairness digest: sending email", "error", err)
		}
	}
}

func summarizeFairness(scores []domain.FairnessScore) string {
	if len(scores) == 0 {
		return "no assignments recorded yet this year."
	}

	totals := make(map[string]int)
	for _, row := range scores {
		totals[row.PersonID] += row.CountThisYear
	}

	served := 0
	var minID, maxID string
	minCount, maxCount := -1, -1
	for id, count := range totals {
		if count > 0 {
			served++
		}
		if minCount == -1 || count < minCount || (count == minCount && id < minID) {
			minCount, minID = count, id
		}
		if maxCount == -1 || count > maxCount || (count == maxCount && id < maxID) {
			maxCount, maxID = count, id
		}
	}

	return fmt.Sprintf("%d people served this year. Most: %s (%d). Least: %s (%d).",
		served, maxID, maxCount, minID, minCount)
}
