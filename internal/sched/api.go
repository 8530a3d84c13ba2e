package sched

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AddRequest carries the fields of an add operation. Exactly one of
// EverySeconds, CronExpr, InSeconds, or At must be set; the first two belong
// to recurring modes (reminder, task), the last two to one_time.
type AddRequest struct {
	Mode         string `json:"mode"`
	Message      string `json:"message"`
	EverySeconds int64  `json:"every_seconds,omitempty"`
	CronExpr     string `json:"cron_expr,omitempty"`
	TZ           string `json:"tz,omitempty"`
	InSeconds    int64  `json:"in_seconds,omitempty"`
	At           string `json:"at,omitempty"` // RFC3339, or local wall time without offset
}

// atLayouts are the accepted absolute timestamp forms, tried in order.
var atLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

// NewJob validates an add request and builds the job record, including its
// initial fire time. Nothing is persisted here; a returned error is always a
// ValidationError and leaves no trace.
func NewJob(req AddRequest, now time.Time) (Job, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Job{}, validationErr("message", "is required")
	}

	oneShot := req.InSeconds != 0 || req.At != ""
	mode, err := resolveMode(req.Mode, oneShot)
	if err != nil {
		return Job{}, err
	}

	set := 0
	for _, present := range []bool{
		req.EverySeconds != 0,
		req.CronExpr != "",
		req.InSeconds != 0,
		req.At != "",
	} {
		if present {
			set++
		}
	}
	if set != 1 {
		return Job{}, validationErr("",
			"specify exactly one of every_seconds, cron_expr, in_seconds, or at")
	}
	if req.TZ != "" && req.CronExpr == "" {
		return Job{}, validationErr("tz", "only valid with cron_expr")
	}

	var (
		schedule Schedule
		next     time.Time
	)
	switch {
	case req.EverySeconds != 0:
		schedule = Schedule{Kind: KindEvery, EverySec: req.EverySeconds}
		if err := validateSchedule(schedule); err != nil {
			return Job{}, err
		}
		next = now.Add(time.Duration(req.EverySeconds) * time.Second)

	case req.CronExpr != "":
		schedule = Schedule{Kind: KindCron, Expr: req.CronExpr, TZ: req.TZ}
		if err := validateSchedule(schedule); err != nil {
			return Job{}, err
		}
		n, err := nextFire(schedule, now)
		if err != nil {
			return Job{}, validationErr("cron_expr", "%v", err)
		}
		if n.IsZero() {
			return Job{}, validationErr("cron_expr", "expression never matches")
		}
		next = n

	case req.InSeconds != 0:
		if req.InSeconds < 0 {
			return Job{}, validationErr("in_seconds", "must be > 0, got %d", req.InSeconds)
		}
		at := now.Add(time.Duration(req.InSeconds) * time.Second)
		schedule = Schedule{Kind: KindAt, At: at}
		next = at

	case req.At != "":
		at, err := parseAt(req.At)
		if err != nil {
			return Job{}, err
		}
		schedule = Schedule{Kind: KindAt, At: at}
		// A past instant fires once immediately rather than being
		// silently dropped.
		next = at
		if !at.After(now) {
			next = now
		}
	}

	return Job{
		ID:         newJobID(),
		Mode:       mode,
		Message:    req.Message,
		Schedule:   schedule,
		Status:     StatusScheduled,
		NextFireAt: &next,
		CreatedAt:  now,
	}, nil
}

// Add validates the request, persists the job, and interrupts the loop's
// wait so an earlier fire time takes effect immediately.
func (s *Scheduler) Add(req AddRequest) (Job, error) {
	job, err := NewJob(req, s.now())
	if err != nil {
		return Job{}, err
	}
	created, err := s.store.Create(job)
	if err != nil {
		return Job{}, err
	}
	s.updateGauge()
	s.poke()
	return created, nil
}

// Remove marks the job removed and guarantees it never fires again; an
// in-flight dispatch is allowed to complete but the job is not re-armed.
// Removing an already-removed job succeeds.
func (s *Scheduler) Remove(id string) error {
	if err := s.store.Remove(id); err != nil {
		return err
	}
	s.updateGauge()
	s.poke()
	return nil
}

// List returns all non-removed jobs in creation order.
func (s *Scheduler) List() []Job {
	return s.store.List()
}

// Get returns a job by ID. Removed jobs report ErrJobNotFound.
func (s *Scheduler) Get(id string) (Job, error) {
	j, ok := s.store.Get(id)
	if !ok || j.Status == StatusRemoved {
		return Job{}, fmt.Errorf("get %s: %w", id, ErrJobNotFound)
	}
	return j, nil
}

// resolveMode maps the requested mode onto the schedule class. An empty mode
// is inferred: one-shot fields imply one_time, otherwise reminder.
func resolveMode(raw string, oneShot bool) (Mode, error) {
	switch Mode(strings.TrimSpace(raw)) {
	case "":
		if oneShot {
			return ModeOneTime, nil
		}
		return ModeReminder, nil
	case ModeReminder:
		if oneShot {
			return "", validationErr("mode",
				"reminder jobs take every_seconds or cron_expr; use one_time for in_seconds/at")
		}
		return ModeReminder, nil
	case ModeTask:
		if oneShot {
			return "", validationErr("mode",
				"task jobs take every_seconds or cron_expr; use one_time for in_seconds/at")
		}
		return ModeTask, nil
	case ModeOneTime:
		if !oneShot {
			return "", validationErr("mode", "one_time jobs take in_seconds or at")
		}
		return ModeOneTime, nil
	default:
		return "", validationErr("mode", "must be reminder, task, or one_time, got %q", raw)
	}
}

func parseAt(raw string) (time.Time, error) {
	var errs []error
	for _, layout := range atLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339 {
			t, err = time.Parse(layout, raw)
		} else {
			t, err = time.ParseInLocation(layout, raw, time.Local)
		}
		if err == nil {
			return t, nil
		}
		errs = append(errs, err)
	}
	return time.Time{}, validationErr("at",
		"must be an ISO timestamp like 2026-02-11T09:00:00: %v", errors.Join(errs...))
}

// newJobID returns a short opaque identifier. Store creation rejects the
// (vanishingly rare) collision, so callers simply retry the add.
func newJobID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
