// Package metrics writes CloudWatch Embedded Metric Format (EMF) documents.
// Each flush is one JSON line; in Lambda, stdout lines are picked up by
// CloudWatch Logs and turned into metrics without any API calls.
//
// See: https://docs.aws.amazon.com/AmazonCloudWatch/latest/monitoring/CloudWatch_Embedded_Metric_Format_Specification.html
package metrics

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Namespace is the CloudWatch namespace for generation runs.
const Namespace = "BrainrotStudio"

// Standard CloudWatch metric units.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
	UnitNone         = "None"
)

// Metric names emitted by a run.
const (
	IdeaLatencyMs       = "IdeaLatencyMs"
	IdeasAccepted       = "IdeasAccepted"
	IdeasFailed         = "IdeasFailed"
	CandidatesGenerated = "CandidatesGenerated"
	CandidatesFailed    = "CandidatesFailed"
	SelectionFallback   = "SelectionFallback"
	VideoLatencyMs      = "VideoLatencyMs"
	IdeasAbandoned      = "IdeasAbandoned"
	VideosProduced      = "VideosProduced"
)

type metricDef struct {
	Name string `json:"Name"`
	Unit string `json:"Unit"`
}

type emfDirective struct {
	Timestamp         int64      `json:"Timestamp"`
	CloudWatchMetrics []cwMetric `json:"CloudWatchMetrics"`
}

type cwMetric struct {
	Namespace  string      `json:"Namespace"`
	Dimensions [][]string  `json:"Dimensions"`
	Metrics    []metricDef `json:"Metrics"`
}

// Emitter creates recorders that share one output. The zero value discards
// everything.
type Emitter struct {
	namespace string
	mu        sync.Mutex
	out       io.Writer
}

// NewEmitter returns an Emitter writing to out. A nil out discards output.
func NewEmitter(namespace string, out io.Writer) *Emitter {
	if out == nil {
		out = io.Discard
	}
	return &Emitter{namespace: namespace, out: out}
}

// Stdout returns an Emitter writing to stdout when enabled and discarding
// otherwise.
func Stdout(enabled bool) *Emitter {
	if !enabled {
		return NewEmitter(Namespace, io.Discard)
	}
	return NewEmitter(Namespace, os.Stdout)
}

// New starts a recorder. The Lambda function name, when present, is added
// as a FunctionName dimension.
func (e *Emitter) New() *Recorder {
	r := &Recorder{
		emitter:    e,
		dimensions: make(map[string]string),
		metrics:    make(map[string]metricDef),
		values:     make(map[string]any),
		properties: make(map[string]any),
	}
	if fn := os.Getenv("AWS_LAMBDA_FUNCTION_NAME"); fn != "" {
		r.dimensions["FunctionName"] = fn
	}
	return r
}

func (e *Emitter) write(line []byte) {
	if e == nil || e.out == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	line = append(line, '\n')
	if _, err := e.out.Write(line); err != nil {
		log.Warn().Err(err).Msg("Failed to write EMF metrics")
	}
}

// Recorder accumulates one EMF document. It is not safe for concurrent use;
// create one per operation and flush it from the goroutine that owns it.
type Recorder struct {
	emitter    *Emitter
	dimensions map[string]string
	metrics    map[string]metricDef
	values     map[string]any
	properties map[string]any
}

// Dimension adds an indexed dimension.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Metric records a value with a CloudWatch unit.
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.metrics[name] = metricDef{Name: name, Unit: unit}
	r.values[name] = value
	return r
}

// Count records a count metric.
func (r *Recorder) Count(name string, n int) *Recorder {
	return r.Metric(name, float64(n), UnitCount)
}

// Duration records d as a millisecond metric.
func (r *Recorder) Duration(name string, d time.Duration) *Recorder {
	return r.Metric(name, float64(d.Milliseconds()), UnitMilliseconds)
}

// Property adds a searchable field that does not create a metric.
func (r *Recorder) Property(key string, value any) *Recorder {
	r.properties[key] = value
	return r
}

// Flush writes the document as a single line. A recorder with no metrics
// writes nothing. The recorder must not be reused afterwards.
func (r *Recorder) Flush() {
	if len(r.metrics) == 0 {
		return
	}

	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	defs := make([]metricDef, 0, len(names))
	for _, name := range names {
		defs = append(defs, r.metrics[name])
	}

	dimKeys := make([]string, 0, len(r.dimensions))
	for k := range r.dimensions {
		dimKeys = append(dimKeys, k)
	}
	sort.Strings(dimKeys)

	doc := make(map[string]any, len(r.dimensions)+len(r.values)+len(r.properties)+1)
	for k, v := range r.properties {
		doc[k] = v
	}
	for k, v := range r.dimensions {
		doc[k] = v
	}
	for k, v := range r.values {
		doc[k] = v
	}

	namespace := Namespace
	if r.emitter != nil && r.emitter.namespace != "" {
		namespace = r.emitter.namespace
	}
	doc["_aws"] = emfDirective{
		Timestamp: time.Now().UnixMilli(),
		CloudWatchMetrics: []cwMetric{{
			Namespace:  namespace,
			Dimensions: [][]string{dimKeys},
			Metrics:    defs,
		}},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal EMF metrics")
		return
	}
	r.emitter.write(data)
}
