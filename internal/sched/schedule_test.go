package sched

import (
	"testing"
	"time"
)

func TestNextFire_Every(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	s := Schedule{Kind: KindEvery, EverySec: 300}

	next, err := nextFire(s, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := now.Add(5 * time.Minute)
	if !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}
}

func TestNextFire_Every_Invalid(t *testing.T) {
	s := Schedule{Kind: KindEvery, EverySec: 0}
	if _, err := nextFire(s, time.Now()); err == nil {
		t.Fatal("expected error for non-positive interval")
	}
}

func TestNextFire_Cron(t *testing.T) {
	// "0 9 * * *" = daily at 09:00
	now := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	s := Schedule{Kind: KindCron, Expr: "0 9 * * *", TZ: "UTC"}

	next, err := nextFire(s, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}
}

func TestNextFire_Cron_Timezone(t *testing.T) {
	// 09:00 in Tokyo is 00:00 UTC.
	now := time.Date(2026, 1, 14, 22, 0, 0, 0, time.UTC)
	s := Schedule{Kind: KindCron, Expr: "0 9 * * *", TZ: "Asia/Tokyo"}

	next, err := nextFire(s, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want.In(next.Location())) {
		t.Errorf("got %v, want %v", next, want)
	}
}

func TestNextFire_Cron_NeverAtOrBeforeReference(t *testing.T) {
	// Walk a daily schedule across both US DST transitions of 2026 and
	// check the strictly-after property plus a sane daily cadence.
	s := Schedule{Kind: KindCron, Expr: "30 2 * * *", TZ: "America/New_York"}

	refs := []time.Time{
		time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC),   // day before spring-forward
		time.Date(2026, 10, 31, 12, 0, 0, 0, time.UTC), // day before fall-back
	}
	for _, ref := range refs {
		prev := ref
		for i := 0; i < 4; i++ {
			next, err := nextFire(s, prev)
			if err != nil {
				t.Fatalf("nextFire(%v): %v", prev, err)
			}
			if !next.After(prev) {
				t.Fatalf("nextFire(%v) = %v, not strictly after", prev, next)
			}
			if gap := next.Sub(prev); gap > 49*time.Hour {
				t.Fatalf("gap %v after %v too large", gap, prev)
			}
			prev = next
		}
	}
}

func TestNextFire_Cron_SpringForwardGap(t *testing.T) {
	// On 2026-03-08 in New York the clocks jump from 02:00 EST to
	// 03:00 EDT, so 02:30 does not exist. The occurrence fires at the
	// first instant after the gap instead of being dropped.
	s := Schedule{Kind: KindCron, Expr: "30 2 * * *", TZ: "America/New_York"}

	ref := time.Date(2026, 3, 8, 6, 0, 0, 0, time.UTC) // 01:00 EST
	next, err := nextFire(s, ref)
	if err != nil {
		t.Fatalf("nextFire: %v", err)
	}
	want := time.Date(2026, 3, 8, 7, 0, 0, 0, time.UTC) // 03:00 EDT
	if !next.Equal(want) {
		t.Fatalf("gap day: got %v, want %v", next, want)
	}

	// The day after, the schedule is back on its configured wall time.
	next, err = nextFire(s, next)
	if err != nil {
		t.Fatalf("nextFire: %v", err)
	}
	want = time.Date(2026, 3, 9, 6, 30, 0, 0, time.UTC) // 02:30 EDT
	if !next.Equal(want) {
		t.Fatalf("day after gap: got %v, want %v", next, want)
	}
}

func TestNextFire_Cron_FallBackFiresFirstOccurrenceOnly(t *testing.T) {
	// On 2026-11-01 in New York the clocks fall back from 02:00 EDT to
	// 01:00 EST, so 01:30 occurs twice. Only the first occurrence fires.
	s := Schedule{Kind: KindCron, Expr: "30 1 * * *", TZ: "America/New_York"}

	ref := time.Date(2026, 11, 1, 4, 0, 0, 0, time.UTC) // 00:00 EDT
	first, err := nextFire(s, ref)
	if err != nil {
		t.Fatalf("nextFire: %v", err)
	}
	want := time.Date(2026, 11, 1, 5, 30, 0, 0, time.UTC) // 01:30 EDT
	if !first.Equal(want) {
		t.Fatalf("first occurrence: got %v, want %v", first, want)
	}

	// Re-arming from the first occurrence skips the replayed 01:30 EST
	// an hour later and lands on the next day.
	next, err := nextFire(s, first)
	if err != nil {
		t.Fatalf("nextFire: %v", err)
	}
	want = time.Date(2026, 11, 2, 6, 30, 0, 0, time.UTC) // 01:30 EST
	if !next.Equal(want) {
		t.Fatalf("after first occurrence: got %v, want %v", next, want)
	}

	// Same from anywhere inside the replayed hour.
	next, err = nextFire(s, time.Date(2026, 11, 1, 6, 0, 0, 0, time.UTC)) // 01:00 EST
	if err != nil {
		t.Fatalf("nextFire: %v", err)
	}
	if !next.Equal(want) {
		t.Fatalf("inside replayed hour: got %v, want %v", next, want)
	}
}

func TestNextFire_At(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	future := Schedule{Kind: KindAt, At: now.Add(time.Hour)}
	next, err := nextFire(future, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.Equal(now.Add(time.Hour)) {
		t.Errorf("got %v, want %v", next, now.Add(time.Hour))
	}

	past := Schedule{Kind: KindAt, At: now.Add(-time.Hour)}
	next, err = nextFire(past, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.IsZero() {
		t.Errorf("expected zero time for elapsed one-shot, got %v", next)
	}
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name    string
		s       Schedule
		wantErr bool
	}{
		{"valid every", Schedule{Kind: KindEvery, EverySec: 60}, false},
		{"zero every", Schedule{Kind: KindEvery, EverySec: 0}, true},
		{"negative every", Schedule{Kind: KindEvery, EverySec: -5}, true},
		{"valid cron", Schedule{Kind: KindCron, Expr: "*/5 * * * *"}, false},
		{"cron with tz", Schedule{Kind: KindCron, Expr: "0 9 * * 1-5", TZ: "Europe/Berlin"}, false},
		{"malformed cron", Schedule{Kind: KindCron, Expr: "not a cron"}, true},
		{"six fields", Schedule{Kind: KindCron, Expr: "0 0 9 * * *"}, true},
		{"bad tz", Schedule{Kind: KindCron, Expr: "0 9 * * *", TZ: "Mars/Olympus"}, true},
		{"valid at", Schedule{Kind: KindAt, At: time.Now()}, false},
		{"zero at", Schedule{Kind: KindAt}, true},
		{"unknown kind", Schedule{Kind: "hourly"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSchedule(tt.s)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateSchedule(%+v) error = %v, wantErr %v", tt.s, err, tt.wantErr)
			}
			if err != nil && !IsValidation(err) {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}
}
