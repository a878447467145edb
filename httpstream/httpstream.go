// Package httpstream performs a single HTTP request and exposes its
// Server-Sent Events body as a pull-based chunk source.
package httpstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/fwojciec/uistream"
	uijson "github.com/fwojciec/uistream/json"
	"github.com/fwojciec/uistream/sse"
)

// FrameDecoder maps one SSE frame to a chunk. A nil chunk with a nil error
// skips the frame.
type FrameDecoder func(sse.Frame) (uistream.Chunk, error)

// Request describes the one request a Stream is built from.
type Request struct {
	Method string // defaults to POST
	Header http.Header
	Body   []byte
	Decode FrameDecoder // defaults to json.DecodeChunk
}

// Client performs streaming requests.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a [Client] with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch performs req against target with a default [Client].
func Fetch(ctx context.Context, target string, req Request) (*Stream, error) {
	return New().Stream(ctx, target, req)
}

// Stream performs exactly one request. It fails with
// [uistream.TransportError] on a non-2xx status and with
// [uistream.EmptyBodyError] when the response carries no body. Cancelling
// ctx aborts the underlying read.
func (c *Client) Stream(ctx context.Context, target string, req Request) (*Stream, error) {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("httpstream: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	c.logger.Debug("stream request", "method", method, "target", target)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("httpstream: %w", err)
	}

	c.logger.Debug("stream response", "target", target, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &uistream.TransportError{StatusCode: resp.StatusCode, Status: statusText(resp)}
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, &uistream.EmptyBodyError{}
	}

	return newStream(ctx, resp.Body, req.Decode, c.logger.With("target", target)), nil
}

// Read wraps an already-open SSE body, such as a recorded stream file, as a
// [Stream]. A nil decode uses json.DecodeChunk.
func Read(ctx context.Context, body io.ReadCloser, decode FrameDecoder) *Stream {
	return newStream(ctx, body, decode, slog.New(slog.DiscardHandler))
}

func newStream(ctx context.Context, body io.ReadCloser, decode FrameDecoder, logger *slog.Logger) *Stream {
	if decode == nil {
		decode = uijson.DecodeChunk
	}
	return &Stream{
		ctx:    ctx,
		body:   body,
		reader: sse.NewReader(body),
		decode: decode,
		logger: logger,
	}
}

// statusText returns the reason phrase of resp, e.g. "Not Found".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// Interface compliance check.
var _ uistream.ChunkSource = (*Stream)(nil)

// Stream is a single-pass, non-restartable chunk source over a response
// body. It must have exactly one consumer calling Next sequentially.
type Stream struct {
	ctx    context.Context
	body   io.ReadCloser
	reader *sse.Reader
	decode FrameDecoder
	logger *slog.Logger

	frames int
	err    error // terminal error, if any

	closeOnce sync.Once
	closed    bool
	mu        sync.Mutex
}

// Next returns the next decoded chunk. It returns io.EOF when the body ends
// and the context's error once the context is cancelled. A read or decode
// failure is terminal: every later call returns the same error.
func (s *Stream) Next() (uistream.Chunk, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, uistream.ErrStreamClosed
	}
	if s.err != nil {
		return nil, s.err
	}

	for {
		if err := s.ctx.Err(); err != nil {
			return nil, s.terminate(err)
		}

		frame, err := s.reader.Next()
		if err == io.EOF {
			s.logger.Debug("stream complete", "frames", s.frames)
			return nil, s.terminate(io.EOF)
		}
		if err != nil {
			if ctxErr := s.ctx.Err(); ctxErr != nil {
				return nil, s.terminate(ctxErr)
			}
			return nil, s.terminate(fmt.Errorf("httpstream: read: %w", err))
		}
		s.frames++

		chunk, err := s.decode(frame)
		if err != nil {
			return nil, s.terminate(fmt.Errorf("httpstream: frame %d: %w", s.frames, err))
		}
		if chunk == nil {
			continue
		}
		return chunk, nil
	}
}

// Close releases the response body. It is safe to call more than once and
// from a goroutine other than the consumer.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		err = s.body.Close()
	})
	return err
}

func (s *Stream) terminate(err error) error {
	s.err = err
	if err != io.EOF {
		s.logger.Debug("stream terminated", "frames", s.frames, "error", err)
	}
	return err
}
