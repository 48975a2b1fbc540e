package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := loadDotEnv(".env"); err != nil {
		slog.Warn("failed to load .env", slog.Any("error", err))
	}

	app := &cli.Command{
		Name:  "autoresearch",
		Usage: "Autonomous research agent: plan, search, reflect and write a report",
		Commands: []*cli.Command{
			serveCommand(),
			runCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
