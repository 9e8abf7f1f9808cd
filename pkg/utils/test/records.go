package testutils

import (
	"time"

	"github.com/papercomputeco/dispatch/pkg/storage"
)

// NewTestRecord creates a log record for testing with a fixed timestamp.
func NewTestRecord(query, response string) *storage.LogRecord {
	return &storage.LogRecord{
		Query:        query,
		Response:     response,
		AgentName:    "test-model",
		ResponseTime: 0.5,
		Timestamp:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}
