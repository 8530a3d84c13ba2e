package sched

import "time"

// Mode determines a job's delivery target and recurrence class.
type Mode string

const (
	// ModeReminder delivers the message verbatim to the notification collaborator.
	ModeReminder Mode = "reminder"
	// ModeTask hands the message to the agent's execution collaborator.
	ModeTask Mode = "task"
	// ModeOneTime fires once, delivers the message, then completes.
	ModeOneTime Mode = "one_time"
)

// ScheduleKind selects which Schedule field is authoritative.
type ScheduleKind string

const (
	// KindEvery fires at a fixed interval in seconds.
	KindEvery ScheduleKind = "every"
	// KindCron fires per a standard 5-field cron expression in a timezone.
	KindCron ScheduleKind = "cron"
	// KindAt fires once at an absolute instant.
	KindAt ScheduleKind = "at"
)

// Schedule is the tagged schedule variant. Exactly one value field is
// populated, selected by Kind.
type Schedule struct {
	Kind ScheduleKind `json:"kind"`

	EverySec int64     `json:"every_sec,omitempty"` // KindEvery
	Expr     string    `json:"expr,omitempty"`      // KindCron
	TZ       string    `json:"tz,omitempty"`        // KindCron, "" = host local
	At       time.Time `json:"at,omitempty"`        // KindAt
}

// Status is a job's lifecycle state.
type Status string

const (
	// StatusScheduled means the job has a future fire time armed.
	StatusScheduled Status = "scheduled"
	// StatusFiring means the job is currently being dispatched.
	StatusFiring Status = "firing"
	// StatusCompleted is terminal; only one_time jobs reach it.
	StatusCompleted Status = "completed"
	// StatusRemoved is terminal for any mode. Removed records are retained
	// for audit and their IDs are never reused.
	StatusRemoved Status = "removed"
)

// Job is a persisted schedulable unit of work.
type Job struct {
	ID       string   `json:"id"`
	Seq      int64    `json:"seq"` // assigned by the store, creation order
	Mode     Mode     `json:"mode"`
	Message  string   `json:"message"`
	Schedule Schedule `json:"schedule"`
	Status   Status   `json:"status"`

	NextFireAt  *time.Time `json:"next_fire_at,omitempty"`
	LastFiredAt *time.Time `json:"last_fired_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Recurring reports whether the job re-arms after firing.
func (j *Job) Recurring() bool {
	return j.Mode != ModeOneTime
}

// Terminal reports whether the job can never fire again.
func (j *Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusRemoved
}
