package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/dispatch/pkg/eventstream"
)

// MockPublisher records published events and can be told to fail.
type MockPublisher struct {
	mu sync.Mutex

	Events []*eventstream.ExchangeRecordedEvent

	// FailPublish causes PublishExchange to return an error.
	FailPublish bool

	Closed bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (p *MockPublisher) PublishExchange(_ context.Context, event *eventstream.ExchangeRecordedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if p.FailPublish {
		return errors.New("mock publish failure")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

func (p *MockPublisher) Close() error {
	p.Closed = true
	return nil
}
