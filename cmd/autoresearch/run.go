package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/autoresearch/store"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	var (
		cfg       config
		topic     string
		noHistory bool
	)

	flags := append(cfg.flags(),
		&cli.StringFlag{
			Name:        "topic",
			Aliases:     []string{"t"},
			Required:    true,
			Usage:       "Research topic",
			Destination: &topic,
		},
		&cli.BoolFlag{
			Name:        "no-history",
			Usage:       "Do not store the report in the history database",
			Destination: &noHistory,
		},
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Research a topic once and print events as JSON lines",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := cfg.validate(); err != nil {
				return err
			}

			logger := cfg.newLogger(os.Stderr)
			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)

			options := []autoresearch.Option{autoresearch.WithLogger(logger)}
			if !noHistory {
				db, err := store.Open(ctx, cfg.dbPath)
				if err != nil {
					return goerr.Wrap(err, "failed to open history store")
				}
				defer func() {
					if err := db.Close(); err != nil {
						logger.Warn("failed to close history store", slog.Any("error", err))
					}
				}()
				options = append(options, autoresearch.WithArchiver(db))
			}

			agent, err := cfg.newAgent(ctx, options...)
			if err != nil {
				return err
			}

			_, err = runResearch(ctx, agent, topic, os.Stdout)
			return err
		},
	}
}

// runResearch writes each event to w as one JSON line.
func runResearch(ctx context.Context, r researcher, topic string, w io.Writer) (*autoresearch.Outcome, error) {
	enc := json.NewEncoder(w)
	outcome, err := r.Run(ctx, topic, func(ctx context.Context, ev autoresearch.Event) error {
		if err := enc.Encode(ev); err != nil {
			return goerr.Wrap(err, "failed to write event")
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "research failed", goerr.V("topic", topic))
	}
	return outcome, nil
}
