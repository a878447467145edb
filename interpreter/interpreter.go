// Package interpreter assembles a UI message from a stream of chunks and
// publishes snapshots of it as it changes.
package interpreter

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/fwojciec/uistream"
)

// ToolCallHandler is called for client-executed tool calls once their input
// is available. The next chunk is not processed until it returns.
type ToolCallHandler func(ctx context.Context, call uistream.ToolInputAvailable) error

// Observer is notified about chunk processing. Implementations must be safe
// for use by one interpreter goroutine.
type Observer interface {
	ChunkProcessed(chunkType string, err error)
	Published()
}

// Interpreter applies chunks to a State.
type Interpreter struct {
	onToolCall     ToolCallHandler
	onData         func(uistream.DataChunk)
	onChunk        func(uistream.Chunk)
	schemas        map[string]uistream.Schema
	metadataSchema uistream.Schema
	sink           func(error) error
	logger         *slog.Logger
	observer       Observer
}

// Option configures an [Interpreter].
type Option func(*Interpreter)

// WithToolCallHandler sets the callback invoked for tool calls the provider
// did not execute.
func WithToolCallHandler(h ToolCallHandler) Option {
	return func(i *Interpreter) { i.onToolCall = h }
}

// WithDataHandler sets the observer for data chunks, transient or not.
func WithDataHandler(h func(uistream.DataChunk)) Option {
	return func(i *Interpreter) { i.onData = h }
}

// WithChunkHandler sets the downstream observer of raw chunks. Every chunk is
// forwarded unmodified, including chunks whose transition failed.
func WithChunkHandler(h func(uistream.Chunk)) Option {
	return func(i *Interpreter) { i.onChunk = h }
}

// WithSchemas registers payload schemas by data chunk type.
func WithSchemas(schemas map[string]uistream.Schema) Option {
	return func(i *Interpreter) { i.schemas = schemas }
}

// WithMessageMetadataSchema registers a schema for incoming message metadata.
func WithMessageMetadataSchema(s uistream.Schema) Option {
	return func(i *Interpreter) { i.metadataSchema = s }
}

// WithErrorSink sets the handler for per-chunk errors. Returning nil
// continues with the next chunk; returning an error stops the run with it.
// The default sink stops on the first error.
func WithErrorSink(sink func(error) error) Option {
	return func(i *Interpreter) { i.sink = sink }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

// WithObserver sets an observer of processed chunks and publications.
func WithObserver(o Observer) Option {
	return func(i *Interpreter) { i.observer = o }
}

// New creates an [Interpreter] with the given options.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		sink:   func(err error) error { return err },
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Interpret drains src into state using the standard job runner and returns
// the final state. deliver receives every published snapshot.
func (i *Interpreter) Interpret(ctx context.Context, src uistream.ChunkSource, state *State, deliver func(uistream.Message)) (*State, error) {
	if err := i.Run(ctx, src, NewJobRunner(state, deliver)); err != nil {
		return state, err
	}
	return state, nil
}

// Run processes chunks from src one at a time until the source is exhausted.
// The context is checked before each chunk is requested, so a cancelled run
// lets the in-flight transition finish and requests nothing further. A
// source error is terminal.
func (i *Interpreter) Run(ctx context.Context, src uistream.ChunkSource, runner JobRunner) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := i.Process(ctx, chunk, runner); err != nil {
			return err
		}
	}
}

// Process applies a single chunk through runner. A transition error is
// passed to the error sink, whose result is returned. The chunk is forwarded
// to the chunk handler whether or not its transition succeeded.
func (i *Interpreter) Process(ctx context.Context, chunk uistream.Chunk, runner JobRunner) error {
	err := runner(ctx, func(ctx context.Context, state *State, publish func()) error {
		return i.apply(ctx, state, chunk, i.observedPublish(publish))
	})

	if i.onChunk != nil {
		i.onChunk(chunk)
	}
	if i.observer != nil {
		i.observer.ChunkProcessed(chunk.ChunkType(), err)
	}
	if err != nil {
		i.logger.Warn("chunk rejected", "type", chunk.ChunkType(), "error", err)
		return i.sink(err)
	}
	return nil
}

func (i *Interpreter) observedPublish(publish func()) func() {
	if i.observer == nil {
		return publish
	}
	return func() {
		publish()
		i.observer.Published()
	}
}
