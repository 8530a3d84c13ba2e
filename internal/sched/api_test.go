package sched

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var t0 = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func TestNewJob_IntervalReminder(t *testing.T) {
	job, err := NewJob(AddRequest{Mode: "reminder", Message: "water the plants", EverySeconds: 1200}, t0)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if job.Mode != ModeReminder || job.Schedule.Kind != KindEvery {
		t.Errorf("job = %+v", job)
	}
	if job.Status != StatusScheduled || job.NextFireAt == nil {
		t.Fatalf("job not armed: %+v", job)
	}
	if want := t0.Add(1200 * time.Second); !job.NextFireAt.Equal(want) {
		t.Errorf("next fire = %v, want %v", job.NextFireAt, want)
	}
	if job.ID == "" {
		t.Error("missing job ID")
	}
}

func TestNewJob_CronTask(t *testing.T) {
	job, err := NewJob(AddRequest{Mode: "task", Message: "daily review", CronExpr: "0 9 * * *", TZ: "UTC"}, t0)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	want := time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)
	if !job.NextFireAt.Equal(want) {
		t.Errorf("next fire = %v, want %v", job.NextFireAt, want)
	}
}

func TestNewJob_OneTimeRelative(t *testing.T) {
	job, err := NewJob(AddRequest{Message: "ping me", InSeconds: 90}, t0)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if job.Mode != ModeOneTime {
		t.Errorf("inferred mode = %s, want %s", job.Mode, ModeOneTime)
	}
	if want := t0.Add(90 * time.Second); !job.NextFireAt.Equal(want) {
		t.Errorf("next fire = %v, want %v", job.NextFireAt, want)
	}
}

func TestNewJob_OneTimeAbsolutePastFiresNow(t *testing.T) {
	at := t0.Add(-5 * time.Minute).Format(time.RFC3339)
	job, err := NewJob(AddRequest{Mode: "one_time", Message: "late", At: at}, t0)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	// A past instant queues an immediate single firing.
	if !job.NextFireAt.Equal(t0) {
		t.Errorf("next fire = %v, want %v", job.NextFireAt, t0)
	}
}

func TestNewJob_ModeInference(t *testing.T) {
	job, err := NewJob(AddRequest{Message: "m", EverySeconds: 60}, t0)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if job.Mode != ModeReminder {
		t.Errorf("mode = %s, want %s", job.Mode, ModeReminder)
	}
}

func TestNewJob_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  AddRequest
	}{
		{"no message", AddRequest{EverySeconds: 60}},
		{"no schedule", AddRequest{Message: "m"}},
		{"conflicting fields", AddRequest{Message: "m", EverySeconds: 60, CronExpr: "0 9 * * *"}},
		{"interval and one-shot", AddRequest{Message: "m", EverySeconds: 60, InSeconds: 30}},
		{"negative interval", AddRequest{Message: "m", EverySeconds: -10}},
		{"negative in_seconds", AddRequest{Message: "m", InSeconds: -1}},
		{"malformed cron", AddRequest{Message: "m", CronExpr: "every tuesday"}},
		{"bad tz", AddRequest{Message: "m", CronExpr: "0 9 * * *", TZ: "Nowhere/Else"}},
		{"tz without cron", AddRequest{Message: "m", EverySeconds: 60, TZ: "UTC"}},
		{"bad at", AddRequest{Message: "m", At: "next thursday"}},
		{"bad mode", AddRequest{Mode: "weekly", Message: "m", EverySeconds: 60}},
		{"reminder with at", AddRequest{Mode: "reminder", Message: "m", At: "2026-03-01T09:00:00Z"}},
		{"one_time with every", AddRequest{Mode: "one_time", Message: "m", EverySeconds: 60}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJob(tt.req, t0)
			if err == nil {
				t.Fatal("expected rejection")
			}
			if !IsValidation(err) {
				t.Errorf("expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}

func TestAdd_RejectionLeavesNoRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	s := New(Config{}, NewStore(path), NewDispatcher(nil, nil, 0))

	_, err := s.Add(AddRequest{Message: "m", EverySeconds: 60, CronExpr: "0 9 * * *"})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(s.List()) != 0 {
		t.Error("rejected add left a record")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("rejected add wrote the store file")
	}
}
