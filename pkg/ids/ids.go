// Package ids generates and validates the identifiers and timestamps carried by workflow documents.
package ids

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the format used for freshly generated timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// accepted ISO-8601 layouts, tried in order. A trailing "Z" is covered by the
// Z07:00 layouts; naive date-times are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// NewID returns a random version 4 UUID.
func NewID() string {
	return uuid.New().String()
}

// IsID reports whether s parses as a UUID.
func IsID(s string) bool {
	_, err := uuid.Parse(s)

	return err == nil
}

// Canonical parses s as a UUID in any form uuid.Parse accepts (braced, urn:uuid:,
// bare hex, upper case) and returns it in the hyphenated lower-case form.
func Canonical(s string) (string, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}

	return id.String(), true
}

// Now returns the current UTC time as an ISO-8601 string ending in Z.
func Now() string {
	return Format(time.Now())
}

// Format renders t in UTC using TimestampLayout.
func Format(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses an ISO-8601 timestamp.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// IsTimestamp reports whether s is a parsable ISO-8601 timestamp.
func IsTimestamp(s string) bool {
	_, ok := ParseTimestamp(s)

	return ok
}
