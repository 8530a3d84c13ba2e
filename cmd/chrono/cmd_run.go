package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tgifai/chrono/internal/config"
	"github.com/tgifai/chrono/internal/consts"
	"github.com/tgifai/chrono/internal/notify"
	"github.com/tgifai/chrono/internal/pkg/logs"
	"github.com/tgifai/chrono/internal/pkg/metrics"
	"github.com/tgifai/chrono/internal/sched"
)

var runHwd = &RunRunner{}

type RunRunner struct{}

func (r *RunRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the scheduler daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the config file",
				Value: consts.DefaultConfigPath(),
			},
		},
		Action: r.run,
	}
}

func (r *RunRunner) run(ctx context.Context, c *cli.Command) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	if err = logs.Init(logs.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		File:       cfg.Logging.File,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	}); err != nil {
		return err
	}

	logs.CtxInfo(ctx, "booting chrono, store: %s", cfg.Scheduler.Store)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		notifier sched.Notifier = notify.LogNotifier{}
		executor sched.Executor = notify.LogExecutor{}
	)
	if cfg.Scheduler.Outbox != "" {
		outbox := notify.NewOutbox(cfg.Scheduler.Outbox)
		notifier, executor = outbox, outbox
	}

	dispatcher := sched.NewDispatcher(notifier, executor,
		time.Duration(cfg.Scheduler.DispatchTimeoutSec)*time.Second)
	store := sched.NewStore(cfg.Scheduler.Store)
	scheduler := sched.New(sched.Config{
		MaxConcurrentDispatch: cfg.Scheduler.MaxConcurrentDispatch,
		Heartbeat:             cfg.Scheduler.Heartbeat.Enabled,
		HeartbeatInterval:     cfg.HeartbeatInterval(),
		Workspace:             cfg.Scheduler.Heartbeat.Workspace,
	}, store, dispatcher)

	if err = scheduler.Start(ctx); err != nil {
		return err
	}

	var metricsSrv *http.Server
	if cfg.Scheduler.MetricsBind != "" {
		metricsSrv = r.serveMetrics(ctx, cfg.Scheduler.MetricsBind)
	}

	logs.CtxInfo(ctx, "chrono is running. Press Ctrl+C to stop.")

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	select {
	case sig := <-signalCh:
		logs.CtxInfo(ctx, "Received shutdown signal (%s). Stopping...", sig.String())
	case <-ctx.Done():
		logs.CtxInfo(ctx, "Context canceled. Stopping...")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	scheduler.Stop(stopCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(stopCtx)
	}

	logs.CtxInfo(ctx, "all stopped, good bye!")
	return nil
}

func (r *RunRunner) serveMetrics(ctx context.Context, bind string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: bind, Handler: mux}

	go func() {
		logs.CtxInfo(ctx, "metrics listening on %s", bind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logs.CtxError(ctx, "metrics server: %v", err)
		}
	}()
	return srv
}
