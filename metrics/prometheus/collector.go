// Package prometheus exports texdedup metrics through
// github.com/prometheus/client_golang.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements texdedup.MetricsCollector with Prometheus metrics.
type Collector struct {
	hashes      *prometheus.CounterVec
	hashLatency prometheus.Histogram
	queries     prometheus.Histogram
	queryHits   prometheus.Histogram
	passes      *prometheus.CounterVec
	passLatency prometheus.Histogram
	oversized   prometheus.Counter
	skips       prometheus.Counter
}

// New creates the metrics and registers them with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(namespace string, reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "texdedup"
	}

	c := &Collector{
		hashes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fingerprints_total",
			Help:      "Fingerprint attempts by outcome.",
		}, []string{"status"}),
		hashLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fingerprint_duration_seconds",
			Help:      "Time to fingerprint and index one image.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		queries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Latency of similarity queries.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		queryHits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_candidates",
			Help:      "Candidates returned per similarity query.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Completed refinement passes by pass number.",
		}, []string{"pass"}),
		passLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of refinement passes.",
			Buckets:   prometheus.DefBuckets,
		}),
		oversized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oversized_classes_total",
			Help:      "Classes that exceeded the size ceiling.",
		}),
		skips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_files_total",
			Help:      "Files skipped because they failed to load.",
		}),
	}

	for _, m := range []prometheus.Collector{
		c.hashes, c.hashLatency, c.queries, c.queryHits,
		c.passes, c.passLatency, c.oversized, c.skips,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordHash implements texdedup.MetricsCollector.
func (c *Collector) RecordHash(duration time.Duration, ok bool) {
	status := "ok"
	if !ok {
		status = "unsupported"
	}
	c.hashes.WithLabelValues(status).Inc()
	c.hashLatency.Observe(duration.Seconds())
}

// RecordQuery implements texdedup.MetricsCollector.
func (c *Collector) RecordQuery(candidates int, duration time.Duration) {
	c.queries.Observe(duration.Seconds())
	c.queryHits.Observe(float64(candidates))
}

// RecordPass implements texdedup.MetricsCollector.
func (c *Collector) RecordPass(pass, _, _, oversized int, duration time.Duration) {
	c.passes.WithLabelValues(passLabel(pass)).Inc()
	c.passLatency.Observe(duration.Seconds())
	c.oversized.Add(float64(oversized))
}

// RecordSkip implements texdedup.MetricsCollector.
func (c *Collector) RecordSkip(error) {
	c.skips.Inc()
}

func passLabel(pass int) string {
	if pass >= 1 && pass <= 9 {
		return string(rune('0' + pass))
	}
	return "10+"
}
