package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/autoresearch/store"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg       config
		addr      string
		staticDir string
	)

	flags := append(cfg.flags(),
		&cli.StringFlag{
			Name:        "addr",
			Aliases:     []string{"a"},
			Value:       ":8000",
			Sources:     cli.EnvVars("AUTORESEARCH_ADDR"),
			Usage:       "Listen address",
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "static-dir",
			Value:       "static",
			Sources:     cli.EnvVars("AUTORESEARCH_STATIC_DIR"),
			Usage:       "Directory of the built web frontend. Skipped when missing",
			Destination: &staticDir,
		},
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start the research API server",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := cfg.validate(); err != nil {
				return err
			}

			logger := cfg.newLogger(os.Stderr)
			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)

			db, err := store.Open(ctx, cfg.dbPath)
			if err != nil {
				return goerr.Wrap(err, "failed to open history store")
			}
			defer func() {
				if err := db.Close(); err != nil {
					logger.Warn("failed to close history store", slog.Any("error", err))
				}
			}()

			agent, err := cfg.newAgent(ctx, autoresearch.WithArchiver(db), autoresearch.WithLogger(logger))
			if err != nil {
				return err
			}

			srv := newServer(
				withAddr(addr),
				withResearcher(agent),
				withHistory(db),
				withStaticDir(staticDir),
			)
			return srv.start(ctx)
		},
	}
}
