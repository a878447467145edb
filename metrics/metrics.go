// Package metrics records interpreter activity as Prometheus metrics.
package metrics

import (
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/uistream"
	"github.com/fwojciec/uistream/interpreter"
	"github.com/prometheus/client_golang/prometheus"
)

// Interface compliance check.
var _ interpreter.Observer = (*Recorder)(nil)

// protocolTypes are the chunk types recorded under their own label. Data
// chunk types are collapsed to "data" and anything else to "other" to keep
// label cardinality bounded.
var protocolTypes = map[string]bool{
	uistream.ChunkTextStart:           true,
	uistream.ChunkTextDelta:           true,
	uistream.ChunkTextEnd:             true,
	uistream.ChunkReasoningStart:      true,
	uistream.ChunkReasoningDelta:      true,
	uistream.ChunkReasoningEnd:        true,
	uistream.ChunkToolInputStart:      true,
	uistream.ChunkToolInputDelta:      true,
	uistream.ChunkToolInputAvailable:  true,
	uistream.ChunkToolInputError:      true,
	uistream.ChunkToolApprovalRequest: true,
	uistream.ChunkToolOutputDenied:    true,
	uistream.ChunkToolOutputAvailable: true,
	uistream.ChunkToolOutputError:     true,
	uistream.ChunkStartStep:           true,
	uistream.ChunkFinishStep:          true,
	uistream.ChunkStart:               true,
	uistream.ChunkFinish:              true,
	uistream.ChunkMessageMetadata:     true,
}

// Recorder collects chunk, error, publication and turn metrics.
type Recorder struct {
	chunksTotal    *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	publishesTotal prometheus.Counter
	turnDuration   *prometheus.HistogramVec
}

// New creates a Recorder and registers its collectors with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		chunksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uistream_chunks_total",
				Help: "Total number of chunks processed by the interpreter",
			},
			[]string{"type"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uistream_chunk_errors_total",
				Help: "Total number of chunks whose transition failed",
			},
			[]string{"kind"},
		),
		publishesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "uistream_snapshots_published_total",
				Help: "Total number of message snapshots published",
			},
		),
		turnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "uistream_turn_duration_seconds",
				Help:    "Duration of streamed assistant turns",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"finish_reason"},
		),
	}
	reg.MustRegister(r.chunksTotal, r.errorsTotal, r.publishesTotal, r.turnDuration)
	return r
}

// ChunkProcessed counts a processed chunk and, when err is non-nil, its
// error kind.
func (r *Recorder) ChunkProcessed(chunkType string, err error) {
	r.chunksTotal.WithLabelValues(typeLabel(chunkType)).Inc()
	if err != nil {
		r.errorsTotal.WithLabelValues(ErrorKind(err)).Inc()
	}
}

// Published counts a published snapshot.
func (r *Recorder) Published() {
	r.publishesTotal.Inc()
}

// ObserveTurn records the duration of a finished turn.
func (r *Recorder) ObserveTurn(d time.Duration, finishReason string) {
	if finishReason == "" {
		finishReason = "unknown"
	}
	r.turnDuration.WithLabelValues(finishReason).Observe(d.Seconds())
}

// ErrorKind classifies a per-chunk error for labelling.
func ErrorKind(err error) string {
	var (
		utc *uistream.UnknownToolCallError
		sve *uistream.SchemaValidationError
		uce *uistream.UnknownChunkError
	)
	switch {
	case errors.As(err, &utc):
		return "unknown_tool_call"
	case errors.As(err, &sve):
		return "schema_validation"
	case errors.As(err, &uce):
		return "unknown_chunk"
	default:
		return "other"
	}
}

func typeLabel(chunkType string) string {
	switch {
	case protocolTypes[chunkType]:
		return chunkType
	case strings.HasPrefix(chunkType, "data-"):
		return "data"
	default:
		return "other"
	}
}
