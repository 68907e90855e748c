package main

import (
	"context"
	"fmt"

	"github.com/dukex/n8ngen/pkg/cmd"
	"github.com/dukex/n8ngen/pkg/log"
	"github.com/dukex/n8ngen/pkg/retention"
	"github.com/urfave/cli/v3"
)

func NewPruneCommand() *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "Delete archived generations older than --older-than",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "archive-url",
				Usage:   "Archive URL (file://, postgres://, redis://)",
				Sources: cli.EnvVars("ARCHIVE_URL"),
			},
			&cli.DurationFlag{
				Name:     "older-than",
				Usage:    "Age of the oldest record to keep",
				Required: true,
			},
		},
		Action: runPrune,
	}
}

func runPrune(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("n8ngen")

	archive, err := cmd.NewArchive(ctx, logger, command.String("archive-url"), 0)
	if err != nil {
		return err
	}

	if archive == nil {
		return ErrArchiveRequired
	}

	defer func() {
		if err := archive.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close archive", "error", err)
		}
	}()

	job, err := retention.New(archive, retention.DefaultSchedule, command.Duration("older-than"), logger)
	if err != nil {
		return err
	}

	removed, err := job.RunOnce(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(stdout(command), "removed %d records\n", removed)

	return err
}
