package storage

import (
	"errors"
	"fmt"
	"time"
)

// ErrNilRecord is returned when a nil record is appended.
var ErrNilRecord = errors.New("cannot store nil record")

// legacyTimestampLayout matches naive ISO-8601 timestamps without a zone,
// as written by older history databases.
const legacyTimestampLayout = "2006-01-02T15:04:05.999999"

// ParseTimestamp parses a stored timestamp in either the current or the
// legacy layout.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(legacyTimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
