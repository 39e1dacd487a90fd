// Package prommetrics exposes tink operation metrics through a Prometheus
// registerer. Metric names emitted by core ("tink.credentials_get.total")
// become "tink_credentials_get_total".
package prommetrics

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/goliatone/go-tink/core"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultLabels are the tags core attaches to operation metrics. Tags outside
// the label set are dropped; missing ones are exported as "".
var DefaultLabels = []string{"operation", "status", "provider_id", "status_class", "error_text_code"}

// DefaultBuckets are millisecond buckets for *_duration_ms histograms.
var DefaultBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

type Recorder struct {
	mu         sync.Mutex
	registerer prometheus.Registerer
	labels     []string
	buckets    []float64
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

type Option func(*Recorder)

func WithLabels(labels ...string) Option {
	return func(r *Recorder) {
		if len(labels) > 0 {
			r.labels = append([]string(nil), labels...)
		}
	}
}

func WithBuckets(buckets ...float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.buckets = append([]float64(nil), buckets...)
		}
	}
}

// New builds a recorder on registerer, or on the default registerer when nil.
func New(registerer prometheus.Registerer, opts ...Option) *Recorder {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		registerer: registerer,
		labels:     append([]string(nil), DefaultLabels...),
		buckets:    append([]float64(nil), DefaultBuckets...),
		counters:   map[string]*prometheus.CounterVec{},
		histograms: map[string]*prometheus.HistogramVec{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Recorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || value < 0 {
		return
	}
	vec, err := r.counter(name)
	if err != nil {
		return
	}
	vec.WithLabelValues(r.labelValues(tags)...).Add(float64(value))
}

func (r *Recorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil {
		return
	}
	vec, err := r.histogram(name)
	if err != nil {
		return
	}
	vec.WithLabelValues(r.labelValues(tags)...).Observe(value)
}

func (r *Recorder) counter(name string) (*prometheus.CounterVec, error) {
	metric := MetricName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if vec, ok := r.counters[metric]; ok {
		return vec, nil
	}
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metric,
		Help: "tink operation counter " + name,
	}, r.labels)
	if err := r.registerer.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		vec = existing
	}
	r.counters[metric] = vec
	return vec, nil
}

func (r *Recorder) histogram(name string) (*prometheus.HistogramVec, error) {
	metric := MetricName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if vec, ok := r.histograms[metric]; ok {
		return vec, nil
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metric,
		Help:    "tink operation histogram " + name,
		Buckets: r.buckets,
	}, r.labels)
	if err := r.registerer.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		existing, ok := already.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, err
		}
		vec = existing
	}
	r.histograms[metric] = vec
	return vec, nil
}

func (r *Recorder) labelValues(tags map[string]string) []string {
	values := make([]string, len(r.labels))
	for index, label := range r.labels {
		values[index] = tags[label]
	}
	return values
}

// MetricName maps a dotted metric name onto the Prometheus charset.
func MetricName(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	b.Grow(len(name))
	for index, ch := range name {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch == '_', ch == ':':
			b.WriteRune(ch)
		case ch >= '0' && ch <= '9':
			if index == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(ch)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

var _ core.MetricsRecorder = (*Recorder)(nil)
