// Package schema validates workflow documents against the embedded JSON Schema.
//
// The schema covers field presence and types. Cross-field rules such as unique
// node names and connection targets are checked by models.Workflow.Check.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed workflow.schema.json
var workflowSchema []byte

// ErrInvalid wraps every schema violation reported by Validate.
var ErrInvalid = errors.New("workflow does not match schema")

var compiled = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(workflowSchema))
})

// Document returns the raw JSON Schema.
func Document() []byte {
	return workflowSchema
}

// Validate checks doc, any value that marshals to JSON, against the workflow schema.
func Validate(doc any) error {
	return validate(gojsonschema.NewGoLoader(doc))
}

// ValidateJSON checks a serialized document against the workflow schema.
func ValidateJSON(data []byte) error {
	return validate(gojsonschema.NewBytesLoader(data))
}

func validate(document gojsonschema.JSONLoader) error {
	s, err := compiled()
	if err != nil {
		return fmt.Errorf("failed to compile workflow schema: %w", err)
	}

	result, err := s.Validate(document)
	if err != nil {
		return fmt.Errorf("failed to validate workflow: %w", err)
	}

	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}

		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}

	return nil
}
