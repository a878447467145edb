// Package chat is a minimal chat host: it sends the conversation to an
// endpoint, interprets the streamed response and keeps the resulting
// messages in an observable [Store].
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fwojciec/uistream"
	"github.com/fwojciec/uistream/httpstream"
	"github.com/fwojciec/uistream/interpreter"
	uijson "github.com/fwojciec/uistream/json"
	"github.com/fwojciec/uistream/metrics"
	"github.com/google/uuid"
)

// DefaultFinishReason is reported when a stream ends without one.
const DefaultFinishReason = "stop"

// ErrBusy is returned when a request is started while another is in flight.
var ErrBusy = errors.New("chat: request already in flight")

// Request is the outgoing request, open to rewriting by a [PrepareFunc].
type Request struct {
	Target string
	Header http.Header
	Body   []byte
}

// PrepareFunc rewrites a request before it is sent.
type PrepareFunc func(ctx context.Context, req *Request) error

// Chat sends turns and tracks their messages.
type Chat struct {
	store     *Store
	api       string
	header    http.Header
	body      map[string]any
	prepare   PrepareFunc
	client    *httpstream.Client
	interpOpt []interpreter.Option
	sinks     []uistream.Sink
	onFinish  func(uistream.Message, string)
	logger    *slog.Logger
	recorder  *metrics.Recorder
	newID     func() string

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Option configures a [Chat].
type Option func(*Chat)

// WithAPI sets the endpoint URL.
func WithAPI(api string) Option {
	return func(c *Chat) { c.api = api }
}

// WithHeader sets headers sent with every request.
func WithHeader(h http.Header) Option {
	return func(c *Chat) { c.header = h }
}

// WithBody sets extra fields merged into every request body.
func WithBody(body map[string]any) Option {
	return func(c *Chat) { c.body = body }
}

// WithPrepare sets a hook that may rewrite each request before it is sent.
func WithPrepare(fn PrepareFunc) Option {
	return func(c *Chat) { c.prepare = fn }
}

// WithClient sets the streaming HTTP client.
func WithClient(client *httpstream.Client) Option {
	return func(c *Chat) { c.client = client }
}

// WithInterpreterOptions passes options to the interpreter of every turn.
func WithInterpreterOptions(opts ...interpreter.Option) Option {
	return func(c *Chat) { c.interpOpt = append(c.interpOpt, opts...) }
}

// WithSinks sets destinations for finished assistant messages.
func WithSinks(sinks ...uistream.Sink) Option {
	return func(c *Chat) { c.sinks = append(c.sinks, sinks...) }
}

// WithOnFinish sets a callback run after every successful turn.
func WithOnFinish(fn func(msg uistream.Message, finishReason string)) Option {
	return func(c *Chat) { c.onFinish = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Chat) { c.logger = l }
}

// WithMetrics records chunk, publication and turn metrics.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Chat) { c.recorder = r }
}

// WithMessages seeds the conversation.
func WithMessages(msgs []uistream.Message) Option {
	return func(c *Chat) { c.store = NewStore(msgs) }
}

// WithIDGenerator overrides the message id generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *Chat) { c.newID = fn }
}

// New creates a [Chat] with the given options.
func New(opts ...Option) *Chat {
	c := &Chat{
		store:  NewStore(nil),
		header: http.Header{},
		logger: slog.New(slog.DiscardHandler),
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	if c.client == nil {
		c.client = httpstream.New(httpstream.WithLogger(c.logger))
	}
	return c
}

// Store returns the observable chat state.
func (c *Chat) Store() *Store {
	return c.store
}

// Send appends a user message with text and streams the assistant's reply.
func (c *Chat) Send(ctx context.Context, text string) error {
	ctx, end, err := c.begin(ctx)
	if err != nil {
		return err
	}
	defer end()
	c.store.Append(uistream.NewUserMessage(c.newID(), text))
	return c.turn(ctx, nil)
}

// Resume streams a new response that continues the last assistant message.
// Without one it behaves like a fresh turn.
func (c *Chat) Resume(ctx context.Context) error {
	ctx, end, err := c.begin(ctx)
	if err != nil {
		return err
	}
	defer end()
	var previous *uistream.Message
	if last, ok := c.store.LastMessage(); ok && last.Role == uistream.RoleAssistant {
		previous = &last
	}
	return c.turn(ctx, previous)
}

// Stop cancels the in-flight request, if any. The partial message stays in
// the store.
func (c *Chat) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// Reload removes the trailing assistant message. It does not resend.
func (c *Chat) Reload() bool {
	return c.store.RemoveLastAssistant()
}

// begin claims the in-flight slot. The returned func releases it.
func (c *Chat) begin(ctx context.Context) (context.Context, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return nil, nil, ErrBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	return ctx, func() {
		c.mu.Lock()
		c.cancel = nil
		c.mu.Unlock()
		cancel()
	}, nil
}

func (c *Chat) turn(ctx context.Context, previous *uistream.Message) error {
	start := time.Now()
	c.store.SetStatus(StatusSubmitted)

	stream, err := c.open(ctx)
	if err != nil {
		return c.fail(err)
	}
	defer stream.Close()

	c.store.SetStatus(StatusStreaming)

	replacing := previous != nil
	deliver := func(msg uistream.Message) {
		if replacing {
			c.store.ReplaceLast(msg)
			return
		}
		c.store.Append(msg)
		replacing = true
	}

	state := interpreter.NewState(previous, c.newID())
	state, err = interpreter.New(c.interpreterOptions()...).Interpret(ctx, stream, state, deliver)
	if err != nil {
		return c.fail(err)
	}

	final := state.Snapshot()
	deliver(final)

	reason := state.FinishReason
	if reason == "" {
		reason = DefaultFinishReason
	}
	if c.recorder != nil {
		c.recorder.ObserveTurn(time.Since(start), reason)
	}
	c.store.SetStatus(StatusReady)
	c.logger.Debug("turn finished", "message", final.ID, "parts", len(final.Parts), "finish_reason", reason)

	for _, s := range c.sinks {
		if err := s.Write(ctx, final); err != nil {
			c.logger.Error("sink write failed", "message", final.ID, "error", err)
		}
	}
	if c.onFinish != nil {
		c.onFinish(final, reason)
	}
	return nil
}

func (c *Chat) open(ctx context.Context) (*httpstream.Stream, error) {
	msgs := c.store.Messages()
	for i, m := range msgs {
		if err := uistream.ValidateMessage(m); err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
	}
	body, err := uijson.MarshalRequestBody(msgs, c.body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req := Request{Target: c.api, Header: c.header.Clone(), Body: body}
	if c.prepare != nil {
		if err := c.prepare(ctx, &req); err != nil {
			return nil, fmt.Errorf("preparing request: %w", err)
		}
	}
	return c.client.Stream(ctx, req.Target, httpstream.Request{Header: req.Header, Body: req.Body})
}

func (c *Chat) interpreterOptions() []interpreter.Option {
	opts := []interpreter.Option{interpreter.WithLogger(c.logger)}
	if c.recorder != nil {
		opts = append(opts, interpreter.WithObserver(c.recorder))
	}
	return append(opts, c.interpOpt...)
}

// fail records err unless the turn was stopped.
func (c *Chat) fail(err error) error {
	if errors.Is(err, context.Canceled) {
		c.logger.Debug("turn stopped")
		c.store.SetStatus(StatusReady)
		return nil
	}
	c.logger.Error("turn failed", "error", err)
	c.store.Fail(err)
	return err
}
