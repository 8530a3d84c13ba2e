package sched

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// HeartbeatJobID is the reserved ID of the built-in heartbeat job.
	HeartbeatJobID = "__heartbeat__"
	// defaultHeartbeatInterval is the heartbeat period when none is configured.
	defaultHeartbeatInterval = 30 * time.Minute
	// heartbeatMaxJitter delays the first fire by a random amount so several
	// schedulers sharing a host do not wake together.
	heartbeatMaxJitter = 60 * time.Second
	// heartbeatFile is the workspace-relative prompt source.
	heartbeatFile = "HEARTBEAT.md"
)

// NewHeartbeatJob builds the built-in heartbeat task job. It is registered
// fresh on every startup and never survives in the store across restarts.
// Pass interval <= 0 for the default.
func NewHeartbeatJob(workspace string, interval time.Duration, now time.Time) Job {
	if interval <= 0 {
		interval = defaultHeartbeatInterval
	}
	jitter := time.Duration(rand.Int64N(int64(heartbeatMaxJitter)))
	next := now.Add(interval).Add(jitter)
	return Job{
		ID:         HeartbeatJobID,
		Mode:       ModeTask,
		Message:    "", // built from the workspace at dispatch time
		Schedule:   Schedule{Kind: KindEvery, EverySec: int64(interval / time.Second)},
		Status:     StatusScheduled,
		NextFireAt: &next,
		CreatedAt:  now,
	}
}

// IsHeartbeatJob reports whether the ID belongs to the built-in heartbeat.
func IsHeartbeatJob(jobID string) bool {
	return strings.HasPrefix(jobID, HeartbeatJobID)
}

// BuildHeartbeatPrompt reads the workspace HEARTBEAT.md and reports whether
// it contains actionable content. Comment lines and blanks do not count.
func BuildHeartbeatPrompt(workspace string) (string, bool) {
	if workspace == "" {
		return "", false
	}
	raw, err := os.ReadFile(filepath.Join(workspace, heartbeatFile))
	if err != nil {
		return "", false
	}

	hasWork := false
	for _, line := range strings.Split(string(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "<!--") {
			continue
		}
		hasWork = true
		break
	}
	if !hasWork {
		return "", false
	}
	return string(raw), true
}
