package sched

import (
	"context"
	"fmt"
	"time"
)

// Notifier delivers a reminder message to the end user through whatever
// channel the surrounding agent uses.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Executor hands a task description to the agent's execution loop. It
// returns once the task has been accepted and run; the task's own output is
// delivered through the executor's channel, not through the scheduler.
type Executor interface {
	Execute(ctx context.Context, description string) error
}

// Dispatcher routes a due job's payload to its collaborator. A failed
// delivery is an outcome, not a scheduling event: the job is still re-armed
// or completed, and no retry happens before the next occurrence.
type Dispatcher struct {
	notifier Notifier
	executor Executor
	timeout  time.Duration
}

// NewDispatcher creates a dispatcher with the given per-dispatch timeout.
// Pass timeout <= 0 to disable the deadline.
func NewDispatcher(notifier Notifier, executor Executor, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		executor: executor,
		timeout:  timeout,
	}
}

// Dispatch delivers one job occurrence and returns the delivery outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) error {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	switch job.Mode {
	case ModeReminder, ModeOneTime:
		if d.notifier == nil {
			return fmt.Errorf("no notifier configured")
		}
		return d.notifier.Notify(ctx, job.Message)

	case ModeTask:
		if d.executor == nil {
			return fmt.Errorf("no executor configured")
		}
		return d.executor.Execute(ctx, job.Message)

	default:
		return fmt.Errorf("unknown job mode: %s", job.Mode)
	}
}
