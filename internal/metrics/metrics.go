// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts extraction activity in a private Prometheus
// registry. The CLI writes the registry as a node-exporter textfile after a
// run; nothing here serves HTTP.
//
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/semex/pkg/types"
)

const namespace = "semex"

// Document outcomes.
const (
	StatusExtracted = "extracted"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Metrics holds the extraction collectors.
type Metrics struct {
	registry *prometheus.Registry

	documents  *prometheus.CounterVec
	sentences  prometheus.Counter
	objects    *prometheus.CounterVec
	duration   prometheus.Histogram
	cache      *prometheus.CounterVec
	vocabulary *prometheus.GaugeVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed, by outcome.",
		}, []string{"status"}),
		sentences: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentences_total",
			Help:      "Sentences segmented.",
		}),
		objects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_total",
			Help:      "Semantic objects extracted, by role and certainty.",
		}, []string{"role", "certainty"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extract_duration_seconds",
			Help:      "Time spent extracting one document.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Extraction cache lookups, by result.",
		}, []string{"result"}),
		vocabulary: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vocabulary_terms",
			Help:      "Registered dictionary terms, by role.",
		}, []string{"role"}),
	}

	m.registry.MustRegister(m.documents, m.sentences, m.objects, m.duration, m.cache, m.vocabulary)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Document records the outcome of one document.
func (m *Metrics) Document(status string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(status).Inc()
}

// Sentences adds n segmented sentences.
func (m *Metrics) Sentences(n int) {
	if m == nil {
		return
	}
	m.sentences.Add(float64(n))
}

// Object records one extracted object.
func (m *Metrics) Object(role types.Role, certainty types.Certainty) {
	if m == nil {
		return
	}
	m.objects.WithLabelValues(string(role), string(certainty)).Inc()
}

// Duration records the time one extraction took.
func (m *Metrics) Duration(d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}

// CacheLookup records a cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}

// Vocabulary sets the per-role term gauges. Roles absent from counts are
// set to zero.
func (m *Metrics) Vocabulary(counts map[types.Role]int) {
	if m == nil {
		return
	}
	for _, role := range types.AllRoles {
		m.vocabulary.WithLabelValues(string(role)).Set(float64(counts[role]))
	}
}

// WriteTextfile writes every collected metric to path in the Prometheus text
// format, atomically replacing any existing file.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
