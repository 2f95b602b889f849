// Package api exposes the engine's five external-interface operations
// (spec §6) as PocketBase HTTP routes: generate, validate_edit,
// apply_edit, completeness, fairness, plus a publish route for the
// DRAFT→PUBLISHED transition. Routing and auth follow the teacher's
// sync/api.go requireAuth + e.Router pattern.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"github.com/parish/sacristy/internal/domain"
	"github.com/parish/sacristy/internal/engine"
	"github.com/parish/sacristy/internal/lock"
	"github.com/parish/sacristy/internal/metrics"
	"github.com/parish/sacristy/internal/notify"
	"github.com/parish/sacristy/internal/snapshot"
)

// Deps bundles the collaborators route handlers need.
type Deps struct {
	App              core.App
	Locker           lock.Locker
	Notifier         *notify.Throttled
	Weights          domain.Weights
	CoordinatorEmail string
}

// requireAuth mirrors the teacher's sync API guard: every route here
// requires an authenticated PocketBase user.
func requireAuth(handler func(*core.RequestEvent) error) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if e.Auth == nil {
			return apis.NewUnauthorizedError("Authentication required", nil)
		}
		return handler(e)
	}
}

// Register wires the five operations and the publish route onto e's router.
func Register(e *core.ServeEvent, deps Deps) {
	e.Router.POST("/api/custom/sacristy/generate", requireAuth(func(re *core.RequestEvent) error {
		return handleGenerate(re, deps)
	}))
	e.Router.POST("/api/custom/sacristy/validate-edit", requireAuth(func(re *core.RequestEvent) error {
		return handleValidateEdit(re, deps)
	}))
	e.Router.POST("/api/custom/sacristy/apply-edit", requireAuth(func(re *core.RequestEvent) error {
		return handleApplyEdit(re, deps)
	}))
	e.Router.GET("/api/custom/sacristy/completeness/{scheduleId}", requireAuth(func(re *core.RequestEvent) error {
		return handleCompleteness(re, deps)
	}))
	e.Router.GET("/api/custom/sacristy/fairness", requireAuth(func(re *core.RequestEvent) error {
		return handleFairness(re, deps)
	}))
	e.Router.POST("/api/custom/sacristy/publish/{scheduleId}", requireAuth(func(re *core.RequestEvent) error {
		return handlePublish(re, deps)
	}))
}

type generateRequestBody struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Name  string `json:"name"`
}

func handleGenerate(e *core.RequestEvent, deps Deps) error {
	var body generateRequestBody
	if err := e.BindBody(&body); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(e.Request.Context(), 2*time.Minute)
	defer cancel()

	unlock, err := deps.Locker.Lock(ctx, body.Year, body.Month)
	if err != nil {
		return e.JSON(http.StatusConflict, map[string]any{"error": "generation already in progress for this month"})
	}
	defer unlock()

	snap, err := snapshot.Load(deps.App, deps.Weights)
	if err != nil {
		return e.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}

	start := time.Now()
	preview, err := engine.Generate(ctx, snap, engine.GenerateRequest{Year: body.Year, Month: body.Month, Name: body.Name})
	metrics.GenerateDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.GenerateRunsTotal.WithLabelValues("error").Inc()
		return writeEngineError(e, err)
	}
	metrics.GenerateRunsTotal.WithLabelValues("ok").Inc()
	metrics.GenerateConflictsTotal.Add(float64(len(preview.Conflicts)))

	if err := snapshot.SaveSchedule(deps.App, preview.Schedule); err != nil {
		return e.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}

	if deps.Notifier != nil && len(preview.Conflicts) > 0 {
		lines := make([]string, 0, len(preview.Conflicts))
		for _, c := range preview.Conflicts {
			lines = append(lines, c.Date+" "+c.JobName+" "+c.PositionName+": "+string(c.StrongestReason))
		}
		go func() {
			bg := context.Background()
			_ = deps.Notifier.NotifyConflicts(bg, preview.Schedule.Name, lines)
			if deps.CoordinatorEmail != "" {
				subject := fmt.Sprintf("%s has %d unfilled slot(s)", preview.Schedule.Name, len(preview.Conflicts))
				body := strings.Join(lines, "\n")
				_ = deps.Notifier.SendEmail(bg, deps.CoordinatorEmail, subject, body)
			}
		}()
	}

	return e.JSON(http.StatusOK, preview)
}

type slotBody struct {
	ServiceDateID string `json:"service_date_id"`
	JobID         string `json:"job_id"`
	Position      int    `json:"position"`
}

func (s slotBody) toSlotKey() domain.SlotKey {
	return domain.SlotKey{ServiceDateID: s.ServiceDateID, JobID: s.JobID, Position: s.Position}
}

type editRequestBody struct {
	ScheduleID string   `json:"schedule_id"`
	Kind       string   `json:"kind"` // replace | clear | swap | move
	Slot       slotBody `json:"slot"`
	SlotB      slotBody `json:"slot_b"`
	PersonID   string   `json:"person_id"`
}

func handleValidateEdit(e *core.RequestEvent, deps Deps) error {
	var body editRequestBody
	if err := e.BindBody(&body); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	schedule, snap, err := loadScheduleAndSnapshot(deps, body.ScheduleID)
	if err != nil {
		return e.JSON(http.StatusNotFound, map[string]any{"error": err.Error()})
	}

	if err := validateEditBody(snap, schedule, body); err != nil {
		return writeEngineError(e, err)
	}
	return e.JSON(http.StatusOK, map[string]any{"valid": true})
}

func handleApplyEdit(e *core.RequestEvent, deps Deps) error {
	var body editRequestBody
	if err := e.BindBody(&body); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	schedule, snap, err := loadScheduleAndSnapshot(deps, body.ScheduleID)
	if err != nil {
		return e.JSON(http.StatusNotFound, map[string]any{"error": err.Error()})
	}

	updated, err := applyEditBody(snap, schedule, body)
	if err != nil {
		metrics.EditsAppliedTotal.WithLabelValues(body.Kind, "error").Inc()
		return writeEngineError(e, err)
	}
	metrics.EditsAppliedTotal.WithLabelValues(body.Kind, "ok").Inc()

	if err := snapshot.SaveSchedule(deps.App, updated); err != nil {
		return e.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
	return e.JSON(http.StatusOK, updated)
}

func validateEditBody(snap domain.Snapshot, schedule domain.Schedule, body editRequestBody) error {
	switch body.Kind {
	case "replace":
		return engine.ValidateReplace(snap, schedule, body.Slot.toSlotKey(), body.PersonID)
	case "swap":
		return engine.ValidateSwap(snap, schedule, body.Slot.toSlotKey(), body.SlotB.toSlotKey())
	case "move":
		return engine.ValidateMove(snap, schedule, body.Slot.toSlotKey(), body.SlotB.toSlotKey())
	case "clear":
		return nil
	default:
		return &engine.ValidationError{Reason: "unknown edit kind " + body.Kind}
	}
}

func applyEditBody(snap domain.Snapshot, schedule domain.Schedule, body editRequestBody) (domain.Schedule, error) {
	switch body.Kind {
	case "replace":
		return engine.ApplyReplace(snap, schedule, body.Slot.toSlotKey(), body.PersonID)
	case "clear":
		return engine.ApplyClear(schedule, body.Slot.toSlotKey())
	case "swap":
		return engine.ApplySwap(snap, schedule, body.Slot.toSlotKey(), body.SlotB.toSlotKey())
	case "move":
		return engine.ApplyMove(snap, schedule, body.Slot.toSlotKey(), body.SlotB.toSlotKey())
	default:
		return domain.Schedule{}, &engine.ValidationError{Reason: "unknown edit kind " + body.Kind}
	}
}

func handleCompleteness(e *core.RequestEvent, deps Deps) error {
	scheduleID := e.Request.PathValue("scheduleId")
	schedule, snap, err := loadScheduleAndSnapshot(deps, scheduleID)
	if err != nil {
		return e.JSON(http.StatusNotFound, map[string]any{"error": err.Error()})
	}
	empties := engine.Completeness(snap, schedule)
	return e.JSON(http.StatusOK, map[string]any{
		"complete":    len(empties) == 0,
		"empty_slots": empties,
	})
}

// handlePublish transitions a DRAFT schedule to PUBLISHED (spec §4.6): it
// rejects an incomplete schedule, then persists the new status, appends
// the schedule's assignments to the assignment_history log exactly once,
// and records the transition in metrics.
func handlePublish(e *core.RequestEvent, deps Deps) error {
	scheduleID := e.Request.PathValue("scheduleId")
	schedule, snap, err := loadScheduleAndSnapshot(deps, scheduleID)
	if err != nil {
		return e.JSON(http.StatusNotFound, map[string]any{"error": err.Error()})
	}

	published, err := engine.Publish(snap, schedule)
	if err != nil {
		return writeEngineError(e, err)
	}

	if err := snapshot.SaveSchedule(deps.App, published); err != nil {
		return e.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
	if err := snapshot.AppendHistory(deps.App, engine.ToHistory(published)); err != nil {
		return e.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
	metrics.SchedulesPublishedTotal.Inc()

	return e.JSON(http.StatusOK, published)
}

func handleFairness(e *core.RequestEvent, deps Deps) error {
	yearStr := e.Request.URL.Query().Get("year")
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		year = time.Now().Year()
	}

	snap, err := snapshot.Load(deps.App, deps.Weights)
	if err != nil {
		return e.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}

	return e.JSON(http.StatusOK, engine.Fairness(snap.History, year))
}

func loadScheduleAndSnapshot(deps Deps, scheduleID string) (domain.Schedule, domain.Snapshot, error) {
	snap, err := snapshot.Load(deps.App, deps.Weights)
	if err != nil {
		return domain.Schedule{}, domain.Snapshot{}, err
	}
	schedule, err := snapshot.LoadSchedule(deps.App, scheduleID)
	if err != nil {
		return domain.Schedule{}, domain.Snapshot{}, err
	}
	return schedule, snap, nil
}

func writeEngineError(e *core.RequestEvent, err error) error {
	switch err.(type) {
	case *engine.ValidationError:
		return e.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	case *engine.StateError:
		return e.JSON(http.StatusConflict, map[string]any{"error": err.Error()})
	case *engine.ConstraintError:
		return e.JSON(http.StatusUnprocessableEntity, map[string]any{"error": err.Error()})
	default:
		if err == engine.ErrCancelled {
			return e.JSON(http.StatusServiceUnavailable, map[string]any{"error": err.Error()})
		}
		return e.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
}
