// Package tool exposes the scheduler to an agent runtime as a single tool
// with add/list/remove actions and loosely-typed arguments.
package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/gg/gconv"

	"github.com/tgifai/chrono/internal/pkg/logs"
	"github.com/tgifai/chrono/internal/sched"
)

type SchedTool struct {
	scheduler *sched.Scheduler
}

func New(scheduler *sched.Scheduler) *SchedTool {
	return &SchedTool{scheduler: scheduler}
}

func (t *SchedTool) Name() string {
	return "sched"
}

func (t *SchedTool) Description() string {
	return "Schedule one-time or recurring reminders and tasks. Actions: add, list, remove."
}

// Execute runs one tool action with loosely-typed arguments, mirroring how
// agent runtimes pass tool calls.
func (t *SchedTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if t.scheduler == nil {
		return nil, fmt.Errorf("scheduler is not initialized")
	}

	action := strings.ToLower(strings.TrimSpace(gconv.To[string](args["action"])))
	switch action {
	case "add":
		return t.add(ctx, args)
	case "list":
		return t.list(ctx)
	case "remove":
		return t.remove(ctx, args)
	default:
		return nil, fmt.Errorf("unknown action %q, must be one of: add, list, remove", action)
	}
}

func (t *SchedTool) add(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	req := sched.AddRequest{
		Mode:         gconv.To[string](args["mode"]),
		Message:      gconv.To[string](args["message"]),
		EverySeconds: gconv.To[int64](args["every_seconds"]),
		CronExpr:     gconv.To[string](args["cron_expr"]),
		TZ:           gconv.To[string](args["tz"]),
		InSeconds:    gconv.To[int64](args["in_seconds"]),
		At:           gconv.To[string](args["at"]),
	}

	job, err := t.scheduler.Add(req)
	if err != nil {
		return nil, err
	}

	logs.CtxInfo(ctx, "[tool:sched] created job %s (%s) %s",
		job.ID, job.Mode, sched.ScheduleSummary(job.Schedule))

	return map[string]interface{}{
		"success":  true,
		"job_id":   job.ID,
		"mode":     string(job.Mode),
		"schedule": sched.ScheduleSummary(job.Schedule),
		"message":  fmt.Sprintf("Job %s created", job.ID),
	}, nil
}

func (t *SchedTool) list(_ context.Context) (interface{}, error) {
	jobs := t.scheduler.List()
	result := make([]map[string]interface{}, 0, len(jobs))
	for _, j := range jobs {
		entry := map[string]interface{}{
			"job_id":   j.ID,
			"mode":     string(j.Mode),
			"status":   string(j.Status),
			"schedule": sched.ScheduleSummary(j.Schedule),
			"message":  truncate(j.Message, 120),
		}
		if j.NextFireAt != nil {
			entry["next_fire_at"] = j.NextFireAt.Format(time.RFC3339)
		}
		result = append(result, entry)
	}
	return map[string]interface{}{
		"jobs":  result,
		"count": len(result),
	}, nil
}

func (t *SchedTool) remove(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	jobID := gconv.To[string](args["job_id"])
	if jobID == "" {
		return nil, fmt.Errorf("job_id is required for remove")
	}
	if sched.IsHeartbeatJob(jobID) {
		return nil, fmt.Errorf("cannot remove built-in heartbeat job")
	}

	if err := t.scheduler.Remove(jobID); err != nil {
		if errors.Is(err, sched.ErrJobNotFound) {
			return nil, fmt.Errorf("job %q not found", jobID)
		}
		return nil, fmt.Errorf("remove job: %w", err)
	}

	logs.CtxInfo(ctx, "[tool:sched] removed job %s", jobID)
	return map[string]interface{}{
		"success": true,
		"job_id":  jobID,
		"message": fmt.Sprintf("Job %s removed", jobID),
	}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
