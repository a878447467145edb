// Package redis mirrors finished assistant messages into Redis: each message
// is stored under a key and announced on a pub/sub channel.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/uistream"
	uijson "github.com/fwojciec/uistream/json"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

var _ uistream.Sink = (*Sink)(nil)

// Sink writes finished messages to Redis.
type Sink struct {
	client    goredis.Cmdable
	keyPrefix string
	channel   string
	ttl       time.Duration
	now       func() time.Time
	newID     func() string
}

// Option configures a [Sink].
type Option func(*Sink)

// WithKeyPrefix sets the prefix of message keys.
func WithKeyPrefix(prefix string) Option {
	return func(s *Sink) { s.keyPrefix = prefix }
}

// WithChannel sets the pub/sub channel. An empty channel disables
// publishing.
func WithChannel(channel string) Option {
	return func(s *Sink) { s.channel = channel }
}

// WithTTL sets the expiry of stored messages. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Sink) { s.ttl = ttl }
}

// WithClock sets the time source for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Sink) { s.now = now }
}

// WithIDGenerator sets the event id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Sink) { s.newID = fn }
}

// NewSink creates a [Sink] on client.
func NewSink(client goredis.Cmdable, opts ...Option) *Sink {
	s := &Sink{
		client:    client,
		keyPrefix: "uistream:message:",
		channel:   "uistream:messages",
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewClient connects to the Redis server at addr.
func NewClient(addr string) *goredis.Client {
	return goredis.NewClient(&goredis.Options{Addr: addr})
}

// Key returns the key msg is stored under.
func (s *Sink) Key(msg uistream.Message) string {
	return s.keyPrefix + msg.ID
}

// Write stores msg and publishes a message event.
func (s *Sink) Write(ctx context.Context, msg uistream.Message) error {
	data, err := uijson.MarshalMessage(msg)
	if err != nil {
		return fmt.Errorf("redis: encoding message: %w", err)
	}
	if err := s.client.Set(ctx, s.Key(msg), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: storing message %s: %w", msg.ID, err)
	}

	if s.channel == "" {
		return nil
	}
	event, err := uijson.MarshalMessageEvent(uijson.MessageEvent{
		EventID:   s.newID(),
		EmittedAt: s.now().UTC(),
		Message:   msg,
	})
	if err != nil {
		return fmt.Errorf("redis: encoding event: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, event).Err(); err != nil {
		return fmt.Errorf("redis: publishing message %s: %w", msg.ID, err)
	}
	return nil
}
