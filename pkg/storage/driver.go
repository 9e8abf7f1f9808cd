// Package storage defines the append-only exchange log and its drivers.
package storage

import (
	"context"
	"time"
)

// TableName is the log table every SQL driver writes to.
const TableName = "chat_history"

// TimestampLayout is the ISO-8601 layout used for LogRecord.Timestamp.
const TimestampLayout = time.RFC3339Nano

// LogRecord is one persisted exchange.
type LogRecord struct {
	ID       int64
	Query    string
	Response string

	// AgentName is the model name of the backend that answered.
	AgentName string

	// ResponseTime is the elapsed time in seconds; 0 for failed invocations.
	ResponseTime float64

	Timestamp time.Time
}

// Driver persists log records. Records are only ever appended.
type Driver interface {
	// Append stores the record, assigning its ID. A zero Timestamp is set to
	// the current time.
	Append(ctx context.Context, record *LogRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]*LogRecord, error)

	// Close closes the store and releases any resources.
	Close() error
}
