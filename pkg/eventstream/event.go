package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeExchangeRecorded is emitted after an exchange is recorded.
	EventTypeExchangeRecorded = "dispatch.exchange.recorded"
)

// ExchangeRecordedEvent is a transport-neutral event payload for one routed
// exchange.
type ExchangeRecordedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	SessionID     string    `json:"session_id"`

	Route    RouteMeta    `json:"route"`
	Exchange ExchangeMeta `json:"exchange"`
}

// RouteMeta describes how the query was routed.
type RouteMeta struct {
	Backend    string `json:"backend"`
	Rule       string `json:"rule"`
	Attachment bool   `json:"attachment"`
	Model      string `json:"model"`
}

// ExchangeMeta carries the query, response and invocation outcome.
type ExchangeMeta struct {
	LogID          int64   `json:"log_id,omitempty"`
	Query          string  `json:"query"`
	Response       string  `json:"response"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Failed         bool    `json:"failed"`
	Error          string  `json:"error,omitempty"`
}

// NewExchangeRecordedEvent stamps a new event with a fresh ID and the
// current time.
func NewExchangeRecordedEvent(sessionID string, route RouteMeta, exchange ExchangeMeta) *ExchangeRecordedEvent {
	return &ExchangeRecordedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeExchangeRecorded,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		SessionID:     sessionID,
		Route:         route,
		Exchange:      exchange,
	}
}
