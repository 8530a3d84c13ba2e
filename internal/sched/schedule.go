package sched

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser is a standard 5-field cron expression parser
// (minute hour dom month dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextFire computes the next fire instant for a schedule strictly after from.
// A zero time with nil error means the schedule is exhausted (a one-shot
// whose instant has already elapsed).
//
// Calendar evaluation interprets from in the schedule's timezone. A wall
// time skipped by a spring-forward transition resolves to the first valid
// instant after the gap, and a wall time repeated by a fall-back transition
// matches its first occurrence only.
func nextFire(s Schedule, from time.Time) (time.Time, error) {
	switch s.Kind {
	case KindEvery:
		if s.EverySec <= 0 {
			return time.Time{}, fmt.Errorf("interval must be positive, got %d", s.EverySec)
		}
		return from.Add(time.Duration(s.EverySec) * time.Second), nil

	case KindCron:
		spec, err := cronParser.Parse(s.Expr)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse cron expression %q: %w", s.Expr, err)
		}
		loc, err := loadLocation(s.TZ)
		if err != nil {
			return time.Time{}, err
		}
		return nextCron(spec, from.In(loc)), nil

	case KindAt:
		if s.At.After(from) {
			return s.At, nil
		}
		return time.Time{}, nil

	default:
		return time.Time{}, fmt.Errorf("unknown schedule kind: %s", s.Kind)
	}
}

// nextCron evaluates a cron schedule strictly after from, correcting the
// library's raw wall-clock stepping around daylight-saving transitions. The
// library walks calendar fields over absolute time, so on its own it drops
// an occurrence whose wall time falls in a spring-forward gap and delivers
// a fall-back wall time once per repeat.
func nextCron(spec cron.Schedule, from time.Time) time.Time {
	next := spec.Next(from)
	if next.IsZero() {
		return next
	}

	// Fall-back repeat: next lands inside the stretch of wall times the
	// clocks replay after going back. If the same wall time already
	// occurred at or before from, this match is the duplicate.
	if start, _ := next.ZoneBounds(); !start.IsZero() {
		_, cur := next.Zone()
		_, prev := start.Add(-time.Second).Zone()
		if d := time.Duration(prev-cur) * time.Second; d > 0 && next.Sub(start) < d {
			if first := next.Add(-d); !first.After(from) {
				next = spec.Next(next)
			}
		}
	}

	// Spring-forward gap: re-evaluate under from's offset held fixed, so
	// the wall times the transition removed are still visible. A match
	// that does not survive mapping back into the real location was
	// swallowed by the gap and fires at the gap's end instead.
	_, off := from.Zone()
	cand := spec.Next(from.In(time.FixedZone("", off)))
	if cand.IsZero() {
		return next
	}
	y, mo, d := cand.Date()
	h, mi, sec := cand.Clock()
	mapped := time.Date(y, mo, d, h, mi, sec, 0, from.Location())
	if mapped.Day() != d || mapped.Hour() != h || mapped.Minute() != mi {
		_, mappedOff := mapped.Zone()
		var gapEnd time.Time
		if mappedOff == off {
			_, gapEnd = mapped.ZoneBounds()
		} else {
			gapEnd, _ = mapped.ZoneBounds()
		}
		if gapEnd.After(from) && gapEnd.Before(next) {
			next = gapEnd
		}
	}
	return next
}

// loadLocation resolves an IANA timezone name, defaulting to the host
// timezone for an empty name.
func loadLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return loc, nil
}

// validateSchedule rejects schedules the evaluator could later fail on, so
// that a persisted job always evaluates cleanly.
func validateSchedule(s Schedule) error {
	switch s.Kind {
	case KindEvery:
		if s.EverySec <= 0 {
			return validationErr("every_seconds", "must be > 0, got %d", s.EverySec)
		}
	case KindCron:
		if _, err := cronParser.Parse(s.Expr); err != nil {
			return validationErr("cron_expr", "%v", err)
		}
		if _, err := loadLocation(s.TZ); err != nil {
			return validationErr("tz", "%v", err)
		}
	case KindAt:
		if s.At.IsZero() {
			return validationErr("at", "timestamp is required")
		}
	default:
		return validationErr("", "unknown schedule kind %q", s.Kind)
	}
	return nil
}
