// Package kafka publishes exchange events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/dispatch/pkg/eventstream"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

const writerBatchTimeout = 10 * time.Millisecond

// Config holds the Kafka connection settings.
type Config struct {
	Brokers []string
	Topic   string
}

// Publisher writes one message per event, keyed by session ID so a session's
// exchanges stay ordered within a partition.
type Publisher struct {
	writer MessageWriter
}

// NewPublisher creates a Publisher backed by a kafka-go Writer.
func NewPublisher(c Config) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}
	if c.Topic == "" {
		return nil, errors.New("kafka publisher requires a topic")
	}

	return NewPublisherWithWriter(NewWriter(c)), nil
}

// NewWriter builds the kafka-go Writer for c. Every exchange is published
// synchronously, so batches hold a single message and flush immediately
// instead of waiting out the default one second batch timeout.
func NewWriter(c Config) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(c.Brokers...),
		Topic:                  c.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchSize:              1,
		BatchTimeout:           writerBatchTimeout,
		AllowAutoTopicCreation: true,
	}
}

// NewPublisherWithWriter creates a Publisher on an existing writer.
func NewPublisherWithWriter(w MessageWriter) *Publisher {
	return &Publisher{writer: w}
}

func (p *Publisher) PublishExchange(ctx context.Context, event *eventstream.ExchangeRecordedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.SessionID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing event to kafka: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
