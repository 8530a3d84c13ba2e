package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/tgifai/chrono/internal/pkg/logs"
)

func main() {
	cmd := &cli.Command{
		Name:  "chrono",
		Usage: "Durable job scheduler for agent reminders and tasks",
		Commands: []*cli.Command{
			runHwd.cmd(),
			jobHwd.cmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logs.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}
