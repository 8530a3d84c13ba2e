package sched

import (
	"fmt"
	"strings"
	"time"
)

// ScheduleSummary renders a schedule as a short human-readable phrase for
// listings.
func ScheduleSummary(s Schedule) string {
	switch s.Kind {
	case KindEvery:
		return fmt.Sprintf("every %s", (time.Duration(s.EverySec) * time.Second).String())
	case KindCron:
		if s.TZ != "" {
			return fmt.Sprintf("cron %q (%s)", s.Expr, s.TZ)
		}
		return fmt.Sprintf("cron %q", s.Expr)
	case KindAt:
		return fmt.Sprintf("once at %s", s.At.Format(time.RFC3339))
	default:
		return string(s.Kind)
	}
}

// FormatJobList renders jobs as a plain-text table for the CLI.
func FormatJobList(jobs []Job) string {
	if len(jobs) == 0 {
		return "No scheduled jobs.\n"
	}

	var b strings.Builder
	for _, j := range jobs {
		fmt.Fprintf(&b, "- %s  [%s, %s]  %s\n", j.ID, j.Mode, j.Status, truncate(j.Message, 60))
		fmt.Fprintf(&b, "    schedule: %s\n", ScheduleSummary(j.Schedule))
		if j.NextFireAt != nil {
			fmt.Fprintf(&b, "    next: %s\n", j.NextFireAt.Format(time.RFC3339))
		}
		if j.LastFiredAt != nil {
			fmt.Fprintf(&b, "    last: %s\n", j.LastFiredAt.Format(time.RFC3339))
		}
	}
	fmt.Fprintf(&b, "%d job(s)\n", len(jobs))
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
