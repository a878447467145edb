// Package kafka emits finished assistant messages as events on a Kafka
// topic, keyed by message id.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/uistream"
	uijson "github.com/fwojciec/uistream/json"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

var _ uistream.Sink = (*Sink)(nil)

// Writer is the subset of *kafka.Writer used by [Sink].
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewWriter returns a writer producing to topic on brokers.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

// Sink publishes message events through a [Writer].
type Sink struct {
	writer Writer
	now    func() time.Time
	newID  func() string
}

// Option configures a [Sink].
type Option func(*Sink)

// WithClock sets the time source for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Sink) { s.now = now }
}

// WithIDGenerator sets the event id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Sink) { s.newID = fn }
}

// NewSink creates a [Sink] on w.
func NewSink(w Writer, opts ...Option) *Sink {
	s := &Sink{writer: w, now: time.Now, newID: uuid.NewString}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Write publishes one event for msg.
func (s *Sink) Write(ctx context.Context, msg uistream.Message) error {
	eventID := s.newID()
	payload, err := uijson.MarshalMessageEvent(uijson.MessageEvent{
		EventID:   eventID,
		EmittedAt: s.now().UTC(),
		Message:   msg,
	})
	if err != nil {
		return fmt.Errorf("kafka: encoding event: %w", err)
	}
	err = s.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(msg.ID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(uijson.EventTypeMessageFinished)},
			{Key: "event_id", Value: []byte(eventID)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka: writing message %s: %w", msg.ID, err)
	}
	return nil
}

// Close closes the underlying writer.
func (s *Sink) Close() error {
	return s.writer.Close()
}
