package generator

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed generation.
type ErrorKind string

const (
	KindCredentialMissing ErrorKind = "credential_missing"
	KindProvider          ErrorKind = "provider"
	KindDecode            ErrorKind = "decode"
	KindValidation        ErrorKind = "validation"
	KindUnexpected        ErrorKind = "unexpected"
)

var (
	ErrCredentialMissing = errors.New("llm api key is missing")
	ErrEmptyResponse     = errors.New("llm returned an empty response")
	ErrNotObject         = errors.New("llm response is not a JSON object")
)

// GenerationError is the structured failure carried alongside the synthetic document.
type GenerationError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is matches another *GenerationError of the same kind.
func (e *GenerationError) Is(target error) bool {
	var t *GenerationError
	if !errors.As(target, &t) {
		return false
	}

	return t.Kind == e.Kind
}

// IsClientFault reports whether the failure stems from what the model produced
// rather than from configuration or the provider.
func (k ErrorKind) IsClientFault() bool {
	return k == KindDecode || k == KindValidation
}
