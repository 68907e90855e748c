package main

import (
	"context"
	"fmt"

	"github.com/dukex/n8ngen/pkg/export"
	"github.com/dukex/n8ngen/pkg/log"
	"github.com/dukex/n8ngen/pkg/models"
	"github.com/dukex/n8ngen/pkg/repair"
	"github.com/urfave/cli/v3"
)

func NewRepairCommand() *cli.Command {
	return &cli.Command{
		Name:      "repair",
		Aliases:   []string{"r"},
		Usage:     "Repair a workflow document so n8n can import it",
		ArgsUsage: "[file | - for stdin]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Do not list the repairs on stderr",
			},
		},
		Action: runRepair,
	}
}

func runRepair(_ context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"), command.String("log-format"))

	data, err := readInput(command, command.Args().First())
	if err != nil {
		return err
	}

	raw, err := repair.Decode(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRepairFailed, err)
	}

	result := repair.New(repair.WithLogger(log.WithModule("repair"))).Repair(raw)

	if err := printWorkflow(command, result.Workflow); err != nil {
		return err
	}

	// unsalvageable input still yields the synthetic document; the cause is only reported
	if result.Err != nil {
		fmt.Fprintf(stderr(command), "replaced: %s\n", result.Err)
	}

	if !command.Bool("quiet") {
		for _, issue := range result.Issues {
			fmt.Fprintf(stderr(command), "repaired: %s\n", issue)
		}
	}

	return nil
}

func printWorkflow(command *cli.Command, doc *models.Workflow) error {
	content, err := export.ToString(doc)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout(command), content)

	return err
}
