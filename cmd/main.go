package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/northis/ym-api-organizer/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadDotEnv(); err != nil {
		logger.Warn("ignoring .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := NewRunner(RunnerOpts{Logger: logger})
	app := &cli.Command{
		Name:     "ymsync",
		Usage:    "Mirror a Yandex Music playlist into a directory of numbered, tagged tracks",
		Version:  "0.1.0",
		Flags:    rootFlags(),
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		stop()
		logger.Fatal(err)
	}
}
