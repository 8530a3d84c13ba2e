// Package sched implements a durable single-writer job scheduler: jobs with
// interval, cron, or one-shot schedules are persisted to a JSON store and
// dispatched to notification/execution collaborators when due.
package sched

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tgifai/chrono/internal/pkg/logs"
	"github.com/tgifai/chrono/internal/pkg/metrics"
)

// persistRetryInterval bounds how often the loop re-attempts jobs it could
// not mark firing because the store write failed.
const persistRetryInterval = 5 * time.Second

// Config holds scheduler runtime settings.
type Config struct {
	// MaxConcurrentDispatch bounds in-flight dispatches. <= 0 means 1.
	MaxConcurrentDispatch int
	// Heartbeat enables the built-in heartbeat job when its workspace
	// contains work.
	Heartbeat         bool
	HeartbeatInterval time.Duration
	Workspace         string
}

// Scheduler owns the wait/fire cycle. It keeps the store as its single
// source of truth, sleeps until the soonest fire time, and hands due jobs to
// the dispatcher without waiting for delivery. Add and Remove interrupt the
// wait so an earlier job is never missed until the next natural wake.
type Scheduler struct {
	store      *Store
	dispatcher *Dispatcher
	cfg        Config

	// now is the clock; replaced in tests.
	now func() time.Time

	wake       chan struct{}
	concurrent chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler over the given store and dispatcher.
func New(cfg Config, store *Store, dispatcher *Dispatcher) *Scheduler {
	maxConcurrent := cfg.MaxConcurrentDispatch
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Scheduler{
		store:      store,
		dispatcher: dispatcher,
		cfg:        cfg,
		now:        time.Now,
		wake:       make(chan struct{}, 1),
		concurrent: make(chan struct{}, maxConcurrent),
	}
}

// Start loads persisted jobs and begins the wait/fire loop. Overdue jobs
// fire exactly once immediately (catch-up policy), then recurring ones
// resume cadence from the current instant.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	if err := s.store.Load(); err != nil {
		return err
	}

	if s.cfg.Heartbeat {
		if err := s.registerHeartbeat(); err != nil {
			logs.CtxWarn(ctx, "[sched] register heartbeat: %v", err)
		}
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()

	s.updateGauge()
	logs.CtxInfo(ctx, "[sched] scheduler started (max_concurrent=%d, jobs=%d)",
		cap(s.concurrent), len(s.store.List()))
	return nil
}

// Stop cancels the loop and waits for in-flight dispatches, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logs.CtxWarn(ctx, "[sched] stop timed out waiting for in-flight dispatches")
	}
	logs.CtxInfo(ctx, "[sched] scheduler stopped")
}

// loop is the single suspension point: it waits until the soonest fire time
// or a wake poke, then fires everything due.
func (s *Scheduler) loop(ctx context.Context) {
	for {
		s.fireDue(ctx)
		if ctx.Err() != nil {
			return
		}

		var delay time.Duration
		soonest, ok := s.store.Soonest()
		switch {
		case !ok:
			// Nothing scheduled; wait for a mutation.
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
			}
			continue
		case !soonest.NextFireAt.After(s.now()):
			// Still due after a fire pass means marking it firing
			// failed (store write error). Back off before retrying.
			delay = persistRetryInterval
		default:
			delay = soonest.NextFireAt.Sub(s.now())
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// fireDue marks every due job firing and hands it to the dispatcher. Jobs
// due at the same instant go out in creation order.
func (s *Scheduler) fireDue(ctx context.Context) {
	for _, job := range s.store.Due(s.now()) {
		select {
		case s.concurrent <- struct{}{}:
		case <-ctx.Done():
			return
		}

		fired := s.now()
		marked, err := s.store.Update(job.ID, func(j *Job) {
			j.Status = StatusFiring
		})
		if err != nil {
			<-s.concurrent
			if errors.Is(err, ErrJobNotFound) {
				continue // removed between listing and firing
			}
			logs.CtxWarn(ctx, "[sched] mark firing %s: %v", job.ID, err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() { <-s.concurrent }()
			s.runDispatch(ctx, marked, fired)
		}()
	}
}

func (s *Scheduler) runDispatch(ctx context.Context, job Job, fired time.Time) {
	if IsHeartbeatJob(job.ID) {
		prompt, hasWork := BuildHeartbeatPrompt(s.cfg.Workspace)
		if !hasWork {
			logs.CtxDebug(ctx, "[sched] heartbeat: no work, skipping")
			s.finish(ctx, job, fired)
			return
		}
		job.Message = prompt
	}

	err := s.dispatcher.Dispatch(ctx, job)
	if err != nil {
		logs.CtxWarn(ctx, "[sched] dispatch %s (%s) failed: %v", job.ID, job.Mode, err)
		metrics.DispatchFailures.WithLabelValues(string(job.Mode)).Inc()
	} else {
		logs.CtxInfo(ctx, "[sched] fired job %s (%s)", job.ID, job.Mode)
		metrics.JobsFired.WithLabelValues(string(job.Mode)).Inc()
	}

	s.finish(ctx, job, fired)
}

// finish records the occurrence and advances job state: recurring jobs
// re-arm from the current instant, one-shots complete. A failed delivery
// advances state the same way; the next occurrence is the retry. A job
// removed while firing is left alone.
func (s *Scheduler) finish(ctx context.Context, job Job, fired time.Time) {
	var next time.Time
	parked := false
	if job.Recurring() {
		n, err := nextFire(job.Schedule, s.now())
		if err != nil {
			// Schedules are validated at creation, so this only
			// happens to a record edited behind the store's back.
			// Park it unarmed; completed is reserved for one-shots.
			logs.CtxError(ctx, "[sched] reschedule %s: %v", job.ID, err)
			parked = true
		} else {
			next = n
		}
	}

	_, err := s.store.Update(job.ID, func(j *Job) {
		j.LastFiredAt = &fired
		if parked {
			j.Status = StatusScheduled
			j.NextFireAt = nil
			return
		}
		if next.IsZero() {
			j.Status = StatusCompleted
			j.NextFireAt = nil
			return
		}
		j.Status = StatusScheduled
		j.NextFireAt = &next
	})
	switch {
	case err == nil && next.IsZero() && job.Mode == ModeOneTime:
		metrics.JobsCompleted.Inc()
	case err != nil && !errors.Is(err, ErrJobNotFound):
		logs.CtxWarn(ctx, "[sched] persist outcome %s: %v", job.ID, err)
	}

	s.updateGauge()
	s.poke()
}

// poke interrupts the loop's wait without blocking.
func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) updateGauge() {
	n := 0
	for _, j := range s.store.List() {
		if j.Status == StatusScheduled {
			n++
		}
	}
	metrics.ScheduledJobs.Set(float64(n))
}

func (s *Scheduler) registerHeartbeat() error {
	job := NewHeartbeatJob(s.cfg.Workspace, s.cfg.HeartbeatInterval, s.now())
	if _, ok := s.store.Get(job.ID); ok {
		return nil
	}
	_, err := s.store.Create(job)
	return err
}
