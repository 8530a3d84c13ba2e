package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tgifai/chrono/internal/config"
	"github.com/tgifai/chrono/internal/consts"
	"github.com/tgifai/chrono/internal/sched"
)

var jobHwd = &JobRunner{}

// JobRunner edits the job store directly. The store is single-writer, so
// add/remove here are for use while the daemon is stopped; list is
// read-only and always safe.
type JobRunner struct{}

func (r *JobRunner) cmd() *cli.Command {
	configFlag := &cli.StringFlag{
		Name:  "config",
		Usage: "Path to the config file",
		Value: consts.DefaultConfigPath(),
	}

	return &cli.Command{
		Name:  "job",
		Usage: "Inspect and edit the persisted job store",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all persisted jobs",
				Flags:  []cli.Flag{configFlag},
				Action: r.list,
			},
			{
				Name:  "add",
				Usage: "Add a job (daemon must be stopped)",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "mode", Usage: "reminder, task, or one_time"},
					&cli.StringFlag{Name: "message", Usage: "Payload message", Required: true},
					&cli.IntFlag{Name: "every", Usage: "Interval in seconds"},
					&cli.StringFlag{Name: "cron", Usage: "5-field cron expression"},
					&cli.StringFlag{Name: "tz", Usage: "IANA timezone for --cron"},
					&cli.IntFlag{Name: "in", Usage: "Fire once after N seconds"},
					&cli.StringFlag{Name: "at", Usage: "Fire once at an ISO timestamp"},
				},
				Action: r.add,
			},
			{
				Name:      "remove",
				Usage:     "Remove a job by ID (daemon must be stopped)",
				Flags:     []cli.Flag{configFlag},
				ArgsUsage: "<job_id>",
				Action:    r.remove,
			},
		},
	}
}

func (r *JobRunner) openStore(c *cli.Command) (*sched.Store, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	store := sched.NewStore(cfg.Scheduler.Store)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("load job store: %w", err)
	}
	return store, nil
}

func (r *JobRunner) list(_ context.Context, c *cli.Command) error {
	store, err := r.openStore(c)
	if err != nil {
		return err
	}
	fmt.Print(sched.FormatJobList(store.List()))
	return nil
}

func (r *JobRunner) add(_ context.Context, c *cli.Command) error {
	store, err := r.openStore(c)
	if err != nil {
		return err
	}

	job, err := sched.NewJob(sched.AddRequest{
		Mode:         c.String("mode"),
		Message:      c.String("message"),
		EverySeconds: int64(c.Int("every")),
		CronExpr:     c.String("cron"),
		TZ:           c.String("tz"),
		InSeconds:    int64(c.Int("in")),
		At:           c.String("at"),
	}, time.Now())
	if err != nil {
		return err
	}

	created, err := store.Create(job)
	if err != nil {
		return err
	}
	fmt.Printf("Created job %s (%s), %s\n",
		created.ID, created.Mode, sched.ScheduleSummary(created.Schedule))
	return nil
}

func (r *JobRunner) remove(_ context.Context, c *cli.Command) error {
	jobID := c.Args().First()
	if jobID == "" {
		return fmt.Errorf("job_id argument is required")
	}
	if sched.IsHeartbeatJob(jobID) {
		return fmt.Errorf("cannot remove built-in heartbeat job")
	}

	store, err := r.openStore(c)
	if err != nil {
		return err
	}
	if err := store.Remove(jobID); err != nil {
		return err
	}
	fmt.Printf("Removed job %s\n", jobID)
	return nil
}
