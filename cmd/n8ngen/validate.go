package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dukex/n8ngen/pkg/models"
	"github.com/dukex/n8ngen/pkg/schema"
	"github.com/urfave/cli/v3"
)

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Check a workflow document against the schema and the node invariants",
		ArgsUsage: "[file | - for stdin]",
		Action: func(_ context.Context, command *cli.Command) error {
			data, err := readInput(command, command.Args().First())
			if err != nil {
				return err
			}

			if err := validateWorkflow(data); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidWorkflow, err)
			}

			_, err = fmt.Fprintln(stdout(command), "workflow is valid")

			return err
		},
	}
}

func validateWorkflow(data []byte) error {
	schemaErr := schema.ValidateJSON(data)

	var doc models.Workflow
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Join(schemaErr, err)
	}

	return errors.Join(schemaErr, doc.Check())
}
