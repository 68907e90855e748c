// Package main provides the n8ngen command line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

var (
	ErrNoInput          = errors.New("no input given")
	ErrGenerationFailed = errors.New("workflow generation failed")
	ErrRepairFailed     = errors.New("workflow could not be repaired")
	ErrInvalidWorkflow  = errors.New("workflow is invalid")
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "n8ngen",
		Usage:                 "Generate, repair and validate n8n workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Commands: []*cli.Command{
			NewGenerateCommand(),
			NewRepairCommand(),
			NewValidateCommand(),
			NewHistoryCommand(),
			NewPruneCommand(),
			NewWatchCommand(),
		},
	}
}

// readInput returns the named file, or stdin when path is "" or "-".
func readInput(command *cli.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		reader := command.Root().Reader
		if reader == nil {
			reader = os.Stdin
		}

		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}

		if len(data) == 0 {
			return nil, ErrNoInput
		}

		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return data, nil
}

func stdout(command *cli.Command) io.Writer {
	if w := command.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

func stderr(command *cli.Command) io.Writer {
	if w := command.Root().ErrWriter; w != nil {
		return w
	}

	return os.Stderr
}
