package sched

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewHeartbeatJob(t *testing.T) {
	job := NewHeartbeatJob("/tmp/ws", 10*time.Minute, t0)

	if !IsHeartbeatJob(job.ID) {
		t.Errorf("ID %q not recognized as heartbeat", job.ID)
	}
	if job.Mode != ModeTask || job.Schedule.Kind != KindEvery {
		t.Errorf("job = %+v", job)
	}
	if job.Schedule.EverySec != 600 {
		t.Errorf("interval = %d, want 600", job.Schedule.EverySec)
	}

	// First fire lands inside [interval, interval+jitter].
	if job.NextFireAt == nil {
		t.Fatal("heartbeat not armed")
	}
	min := t0.Add(10 * time.Minute)
	max := min.Add(heartbeatMaxJitter)
	if job.NextFireAt.Before(min) || job.NextFireAt.After(max) {
		t.Errorf("first fire %v outside [%v, %v]", job.NextFireAt, min, max)
	}
}

func TestBuildHeartbeatPrompt(t *testing.T) {
	ws := t.TempDir()

	// Missing file means nothing to do.
	if _, ok := BuildHeartbeatPrompt(ws); ok {
		t.Error("expected no work for missing file")
	}
	if _, ok := BuildHeartbeatPrompt(""); ok {
		t.Error("expected no work for empty workspace")
	}

	// Comments and blank lines do not count as work.
	path := filepath.Join(ws, heartbeatFile)
	if err := os.WriteFile(path, []byte("# Heartbeat\n\n<!-- nothing yet -->\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := BuildHeartbeatPrompt(ws); ok {
		t.Error("expected no work for comment-only file")
	}

	// Real content is returned verbatim.
	content := "# Heartbeat\n- check the queue\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	prompt, ok := BuildHeartbeatPrompt(ws)
	if !ok || prompt != content {
		t.Errorf("prompt = %q, ok=%v", prompt, ok)
	}
}

func TestStore_LoadDiscardsHeartbeat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")

	s1 := NewStore(path)
	_, _ = s1.Create(NewHeartbeatJob("/tmp/ws", time.Minute, t0))
	_, _ = s1.Create(testJob("keep", ModeReminder))

	s2 := NewStore(path)
	if err := s2.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := s2.Get(HeartbeatJobID); ok {
		t.Error("stale heartbeat survived reload")
	}
	if _, ok := s2.Get("keep"); !ok {
		t.Error("regular job lost on reload")
	}
}
