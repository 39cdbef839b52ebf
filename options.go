package texdedup

import (
	"log/slog"

	"github.com/hupe1980/texdedup/codec"
	"github.com/hupe1980/texdedup/refine"
	"github.com/hupe1980/texdedup/selector"
)

type options struct {
	codec            codec.Codec
	compressionLevel int
	metricsCollector MetricsCollector
	logger           *Logger
	maxPasses        int
	maxEqClassSize   int
	concurrency      int
	spread           int
	selector         *selector.Context
	indexSnapshots   bool
	strictReview     bool
}

// Option configures a Deduper.
type Option func(*options)

// WithCodec configures the JSON codec used for ledger documents.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression stores ledger documents zstd-compressed at the given level
// (1-22). Existing uncompressed documents are still read and are replaced on
// the next save. A level of 0 disables compression.
func WithCompression(level int) Option {
	return func(o *options) {
		o.compressionLevel = level
	}
}

// WithMetrics configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &texdedup.BasicMetricsCollector{}
//	d := texdedup.New(store, src, texdedup.WithMetrics(metrics))
//	// ... run refinement ...
//	stats := metrics.GetStats()
//	fmt.Printf("Hashed: %d, skipped: %d\n", stats.HashCount, stats.SkipCount)
func WithMetrics(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := texdedup.NewJSONLogger(slog.LevelInfo)
//	d := texdedup.New(store, src, texdedup.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMaxPasses bounds the number of refinement passes (default 4).
func WithMaxPasses(n int) Option {
	return func(o *options) {
		o.maxPasses = n
	}
}

// WithMaxEqClassSize sets the largest number of distinct certain
// representatives a class may hold before it is refined further
// (default 15).
func WithMaxEqClassSize(n int) Option {
	return func(o *options) {
		o.maxEqClassSize = n
	}
}

// WithConcurrency bounds the number of files processed in parallel
// (default GOMAXPROCS).
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithSpread overrides the per-byte query tolerance for every dimension.
// By default each dimension uses its fingerprint kind's spread.
func WithSpread(spread int) Option {
	return func(o *options) {
		o.spread = spread
	}
}

// WithSelectorContext sets the format scores and usage data consulted when
// picking representatives. Defaults to selector.DefaultContext().
func WithSelectorContext(ctx *selector.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.selector = ctx
		}
	}
}

// WithIndexSnapshots stores the index of every refinement pass as
// <dimension>/index/pass<N>.lz4 next to the ledger.
func WithIndexSnapshots(enabled bool) Option {
	return func(o *options) {
		o.indexSnapshots = enabled
	}
}

// WithStrictReview makes AcceptCertain fail with *ErrInconsistentClass
// instead of merging when a reviewed class joins two certain classes.
func WithStrictReview(enabled bool) Option {
	return func(o *options) {
		o.strictReview = enabled
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		maxPasses:        refine.DefaultMaxPasses,
		maxEqClassSize:   refine.DefaultMaxEqClassSize,
		spread:           refine.DefaultSpread,
		selector:         selector.DefaultContext(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
