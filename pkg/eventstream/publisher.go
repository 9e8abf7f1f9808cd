package eventstream

import "context"

// Supported publisher providers
const (
	ProviderNone  = "none"
	ProviderKafka = "kafka"
)

// Publisher publishes exchange events to an event stream backend.
type Publisher interface {
	PublishExchange(ctx context.Context, event *ExchangeRecordedEvent) error
	Close() error
}
