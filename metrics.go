package texdedup

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see
// package metrics/prometheus for a ready-made collector.
type MetricsCollector interface {
	// RecordHash is called once per attempted fingerprint insertion.
	// ok is false when the image could not be fingerprinted.
	RecordHash(duration time.Duration, ok bool)

	// RecordQuery is called after each similarity query with the number of
	// candidates returned.
	RecordQuery(candidates int, duration time.Duration)

	// RecordPass is called after every refinement pass.
	RecordPass(pass, candidates, classes, oversized int, duration time.Duration)

	// RecordSkip is called when a file is skipped because it failed to load.
	RecordSkip(err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordHash(time.Duration, bool)               {}
func (NoopMetricsCollector) RecordQuery(int, time.Duration)               {}
func (NoopMetricsCollector) RecordPass(int, int, int, int, time.Duration) {}
func (NoopMetricsCollector) RecordSkip(error)                             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	HashCount       atomic.Int64
	HashRejected    atomic.Int64
	HashTotalNanos  atomic.Int64
	QueryCount      atomic.Int64
	QueryCandidates atomic.Int64
	QueryTotalNanos atomic.Int64
	PassCount       atomic.Int64
	PassOversized   atomic.Int64
	PassTotalNanos  atomic.Int64
	SkipCount       atomic.Int64
}

// RecordHash implements MetricsCollector.
func (b *BasicMetricsCollector) RecordHash(duration time.Duration, ok bool) {
	b.HashCount.Add(1)
	b.HashTotalNanos.Add(duration.Nanoseconds())
	if !ok {
		b.HashRejected.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(candidates int, duration time.Duration) {
	b.QueryCount.Add(1)
	b.QueryCandidates.Add(int64(candidates))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
}

// RecordPass implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPass(_, _, _, oversized int, duration time.Duration) {
	b.PassCount.Add(1)
	b.PassOversized.Add(int64(oversized))
	b.PassTotalNanos.Add(duration.Nanoseconds())
}

// RecordSkip implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSkip(error) {
	b.SkipCount.Add(1)
}

// BasicMetricsStats is a point-in-time snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	HashCount          int64
	HashRejected       int64
	AvgHashNanos       int64
	QueryCount         int64
	AvgQueryCandidates float64
	AvgQueryNanos      int64
	PassCount          int64
	PassOversized      int64
	SkipCount          int64
}

// GetStats returns current statistics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		HashCount:     b.HashCount.Load(),
		HashRejected:  b.HashRejected.Load(),
		QueryCount:    b.QueryCount.Load(),
		PassCount:     b.PassCount.Load(),
		PassOversized: b.PassOversized.Load(),
		SkipCount:     b.SkipCount.Load(),
	}
	if s.HashCount > 0 {
		s.AvgHashNanos = b.HashTotalNanos.Load() / s.HashCount
	}
	if s.QueryCount > 0 {
		s.AvgQueryNanos = b.QueryTotalNanos.Load() / s.QueryCount
		s.AvgQueryCandidates = float64(b.QueryCandidates.Load()) / float64(s.QueryCount)
	}
	return s
}
