package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/dispatch/pkg/eventstream"
	"github.com/papercomputeco/dispatch/pkg/eventstream/kafka"
)

type recordingWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

var _ = Describe("Publisher", func() {
	var (
		w   *recordingWriter
		p   *kafka.Publisher
		ctx context.Context
	)

	BeforeEach(func() {
		w = &recordingWriter{}
		p = kafka.NewPublisherWithWriter(w)
		ctx = context.Background()
	})

	It("validates its configuration", func() {
		_, err := kafka.NewPublisher(kafka.Config{Topic: "t"})
		Expect(err).To(MatchError(ContainSubstring("broker")))

		_, err = kafka.NewPublisher(kafka.Config{Brokers: []string{"localhost:9092"}})
		Expect(err).To(MatchError(ContainSubstring("topic")))

		pub, err := kafka.NewPublisher(kafka.Config{Brokers: []string{"localhost:9092"}, Topic: "t"})
		Expect(err).NotTo(HaveOccurred())
		Expect(pub.Close()).To(Succeed())
	})

	It("flushes every message without waiting for a batch", func() {
		writer := kafka.NewWriter(kafka.Config{Brokers: []string{"localhost:9092"}, Topic: "t"})
		DeferCleanup(writer.Close)

		Expect(writer.Topic).To(Equal("t"))
		Expect(writer.BatchSize).To(Equal(1))
		Expect(writer.BatchTimeout).To(BeNumerically(">", 0))
		Expect(writer.BatchTimeout).To(BeNumerically("<", 100*time.Millisecond))
	})

	It("writes the event keyed by session id", func() {
		event := eventstream.NewExchangeRecordedEvent("session-42",
			eventstream.RouteMeta{Backend: "math", Rule: "math", Model: "mathstral"},
			eventstream.ExchangeMeta{Query: "solve x", Response: "x = 1"},
		)
		Expect(p.PublishExchange(ctx, event)).To(Succeed())

		Expect(w.messages).To(HaveLen(1))
		msg := w.messages[0]
		Expect(string(msg.Key)).To(Equal("session-42"))
		Expect(msg.Headers).To(ContainElement(kafkago.Header{Key: "event_type", Value: []byte(eventstream.EventTypeExchangeRecorded)}))

		var decoded eventstream.ExchangeRecordedEvent
		Expect(json.Unmarshal(msg.Value, &decoded)).To(Succeed())
		Expect(decoded.EventID).To(Equal(event.EventID))
		Expect(decoded.Route.Model).To(Equal("mathstral"))
	})

	It("rejects nil events", func() {
		Expect(p.PublishExchange(ctx, nil)).To(MatchError(eventstream.ErrNilEvent))
		Expect(w.messages).To(BeEmpty())
	})

	It("wraps writer failures", func() {
		w.err = errors.New("leader not available")
		err := p.PublishExchange(ctx, &eventstream.ExchangeRecordedEvent{SessionID: "s"})
		Expect(err).To(MatchError(ContainSubstring("leader not available")))
	})

	It("closes the writer", func() {
		Expect(p.Close()).To(Succeed())
		Expect(w.closed).To(BeTrue())
	})
})
