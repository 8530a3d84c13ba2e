package sched

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// Store is the durable job store: a thread-safe map of jobs persisted to a
// single JSON file. Every successful mutation is written to disk before the
// call returns; on a write failure the in-memory state is rolled back so the
// caller never believes a lost mutation succeeded.
type Store struct {
	path string

	mu      sync.RWMutex
	jobs    map[string]Job
	nextSeq int64
}

// NewStore creates a Store backed by the given file path. The file is
// created on the first mutation.
func NewStore(path string) *Store {
	return &Store{
		path:    path,
		jobs:    make(map[string]Job),
		nextSeq: 1,
	}
}

// Load reads persisted jobs from disk. Safe to call on a missing file.
// Jobs left in firing state by a crash are re-armed as scheduled so the
// startup catch-up pass fires them once.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // first run
		}
		return fmt.Errorf("read store file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var jobs []Job
	if err := sonic.Unmarshal(data, &jobs); err != nil {
		return fmt.Errorf("unmarshal store: %w", err)
	}

	s.jobs = make(map[string]Job, len(jobs))
	for _, j := range jobs {
		// Heartbeat jobs are re-registered with fresh state on every
		// startup; discard any that slipped into the file.
		if IsHeartbeatJob(j.ID) {
			continue
		}
		if j.Status == StatusFiring {
			j.Status = StatusScheduled
		}
		if j.Seq >= s.nextSeq {
			s.nextSeq = j.Seq + 1
		}
		s.jobs[j.ID] = j
	}
	return nil
}

// Create assigns a sequence number, inserts the job, and persists. The ID
// must be unique across all records, removed ones included.
func (s *Store) Create(job Job) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return Job{}, fmt.Errorf("job already exists: %s", job.ID)
	}

	job.Seq = s.nextSeq
	s.nextSeq++
	s.jobs[job.ID] = job

	if err := s.saveLocked(); err != nil {
		delete(s.jobs, job.ID)
		s.nextSeq--
		return Job{}, fmt.Errorf("persist create: %w", err)
	}
	return job, nil
}

// Get returns a job by ID, removed records included.
func (s *Store) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	return j, ok
}

// Update applies mutate to the job under the store lock and persists the
// result. Returns ErrJobNotFound for unknown or removed IDs.
func (s *Store) Update(id string, mutate func(*Job)) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.jobs[id]
	if !ok || prev.Status == StatusRemoved {
		return Job{}, fmt.Errorf("update %s: %w", id, ErrJobNotFound)
	}

	next := prev
	mutate(&next)
	next.ID, next.Seq = prev.ID, prev.Seq // immutable fields
	s.jobs[id] = next

	if err := s.saveLocked(); err != nil {
		s.jobs[id] = prev
		return Job{}, fmt.Errorf("persist update %s: %w", id, err)
	}
	return next, nil
}

// Remove marks the job removed and persists. The record is retained for
// audit. Removing an already-removed job succeeds; an unknown ID returns
// ErrJobNotFound.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrJobNotFound)
	}
	if prev.Status == StatusRemoved {
		return nil
	}

	next := prev
	next.Status = StatusRemoved
	next.NextFireAt = nil
	s.jobs[id] = next

	if err := s.saveLocked(); err != nil {
		s.jobs[id] = prev
		return fmt.Errorf("persist remove %s: %w", id, err)
	}
	return nil
}

// List returns all non-removed jobs in creation order.
func (s *Store) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if j.Status == StatusRemoved {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Seq < out[k].Seq })
	return out
}

// Due returns scheduled jobs whose fire time is at or before now, ordered by
// fire time then creation order so same-instant jobs dispatch
// deterministically.
func (s *Store) Due(now time.Time) []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []Job
	for _, j := range s.jobs {
		if j.Status != StatusScheduled || j.NextFireAt == nil {
			continue
		}
		if !j.NextFireAt.After(now) {
			due = append(due, j)
		}
	}
	sort.Slice(due, func(i, k int) bool {
		if !due[i].NextFireAt.Equal(*due[k].NextFireAt) {
			return due[i].NextFireAt.Before(*due[k].NextFireAt)
		}
		return due[i].Seq < due[k].Seq
	})
	return due
}

// Soonest returns the scheduled job with the earliest fire time, if any.
func (s *Store) Soonest() (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best Job
	found := false
	for _, j := range s.jobs {
		if j.Status != StatusScheduled || j.NextFireAt == nil {
			continue
		}
		if !found ||
			j.NextFireAt.Before(*best.NextFireAt) ||
			(j.NextFireAt.Equal(*best.NextFireAt) && j.Seq < best.Seq) {
			best = j
			found = true
		}
	}
	return best, found
}

// saveLocked writes all records to disk atomically (tmp + rename). Caller
// must hold the write lock.
func (s *Store) saveLocked() error {
	jobs := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].Seq < jobs[k].Seq })

	data, err := sonic.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tmp store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename store: %w", err)
	}
	return nil
}
