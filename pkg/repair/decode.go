package repair

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// ErrTrailingData is returned by Decode when more than one JSON value is present.
var ErrTrailingData = errors.New("unexpected data after JSON value")

// Decode parses a single JSON value, keeping numbers as json.Number so integer
// fields survive without float rounding.
func Decode(data []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}

	return value, nil
}
