// Package sse splits a Server-Sent Events byte stream into frames.
package sse

import (
	"bufio"
	"io"
	"strings"
)

// MaxLineSize is the longest line the Reader accepts.
const MaxLineSize = 1024 * 1024

// Frame is one dispatched event: the fields accumulated up to a blank line.
type Frame struct {
	Event string
	Data  string
	ID    string
}

// Reader parses frames from an io.Reader. It is not safe for concurrent use.
type Reader struct {
	scanner *bufio.Scanner

	current Frame
	hasData bool
}

// NewReader returns a Reader that parses frames from r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), MaxLineSize)
	return &Reader{scanner: scanner}
}

// Next returns the next frame. It blocks until a blank line terminates a
// frame carrying data, or the source ends. A final frame without a trailing
// blank line is still returned. Next returns io.EOF when the source is
// exhausted.
func (r *Reader) Next() (Frame, error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()

		if line == "" {
			if r.hasData {
				return r.dispatch(), nil
			}
			// Frame without data (keep-alive, id-only): discard.
			r.current = Frame{}
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		r.parseLine(line)
	}

	if err := r.scanner.Err(); err != nil {
		return Frame{}, err
	}

	if r.hasData {
		return r.dispatch(), nil
	}
	return Frame{}, io.EOF
}

// parseLine accumulates a single "field:value" line into the current frame.
// One leading space after the colon is stripped.
func (r *Reader) parseLine(line string) {
	field, value, ok := strings.Cut(line, ":")
	if ok {
		value = strings.TrimPrefix(value, " ")
	}

	switch field {
	case "data":
		if r.hasData {
			r.current.Data += "\n"
		}
		r.current.Data += value
		r.hasData = true
	case "event":
		r.current.Event = value
	case "id":
		r.current.ID = value
	default:
		// "retry" and unknown fields are ignored.
	}
}

func (r *Reader) dispatch() Frame {
	f := r.current
	r.current = Frame{}
	r.hasData = false
	return f
}
