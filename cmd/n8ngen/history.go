package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dukex/n8ngen/pkg/cmd"
	"github.com/dukex/n8ngen/pkg/log"
	"github.com/dukex/n8ngen/pkg/persistence"
	"github.com/urfave/cli/v3"
)

var ErrArchiveRequired = errors.New("--archive-url is required")

func NewHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent generations recorded in an archive",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "archive-url",
				Usage:   "Archive URL (file://, postgres://, redis://)",
				Sources: cli.EnvVars("ARCHIVE_URL"),
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of records to list",
				Value:   persistence.DefaultListLimit,
			},
		},
		Action: runHistory,
	}
}

func runHistory(ctx context.Context, command *cli.Command) error {
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

	records, err := archive.Recent(ctx, persistence.NormalizeLimit(command.Int("limit")))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(stdout(command), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tSTATUS\tWORKFLOW\tPROMPT")

	for _, record := range records {
		name := ""
		if record.Workflow != nil {
			name = record.Workflow.Name
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			record.ID, record.CreatedAt.Format(time.RFC3339), record.Status, name, truncate(record.Prompt, 40))
	}

	return w.Flush()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit-3]) + "..."
}
