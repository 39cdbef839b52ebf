package refine

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/hupe1980/texdedup/fingerprint"
	"github.com/hupe1980/texdedup/index"
)

// Defaults.
const (
	DefaultMaxPasses      = 4
	DefaultMaxEqClassSize = 15
	// DefaultSpread selects the kind's own default spread.
	DefaultSpread = -1
)

// Recorder receives workflow measurements.
type Recorder interface {
	index.Recorder
	// RecordPass is called after every completed pass.
	RecordPass(pass, candidates, classes, oversized int, duration time.Duration)
}

// Config controls a Workflow. Zero fields other than Spread take their
// defaults; use DefaultConfig to start from the kind's default spread.
type Config struct {
	Kind fingerprint.Kind
	// MaxPasses bounds the number of refinement passes.
	MaxPasses int
	// MaxEqClassSize is the largest accepted number of distinct certain
	// representatives in one class.
	MaxEqClassSize int
	// Spread is the per-byte query tolerance. Negative selects
	// Kind.DefaultSpread; zero means exact matches only.
	Spread int
	// Concurrency bounds parallel file work. Defaults to GOMAXPROCS.
	Concurrency int
	// ProgressInterval throttles progress logs. Defaults to 5s.
	ProgressInterval time.Duration
	// KeepIndexes returns every pass's index in Result.Indexes.
	KeepIndexes bool

	Logger   *slog.Logger
	Recorder Recorder
}

// DefaultConfig returns the defaults for kind.
func DefaultConfig(kind fingerprint.Kind) Config {
	return Config{
		Kind:             kind,
		MaxPasses:        DefaultMaxPasses,
		MaxEqClassSize:   DefaultMaxEqClassSize,
		Spread:           DefaultSpread,
		Concurrency:      runtime.GOMAXPROCS(0),
		ProgressInterval: 5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxPasses <= 0 {
		c.MaxPasses = DefaultMaxPasses
	}
	if c.MaxEqClassSize <= 0 {
		c.MaxEqClassSize = DefaultMaxEqClassSize
	}
	if c.Spread < 0 {
		c.Spread = c.Kind.DefaultSpread()
	}
	if c.Concurrency <= 0 {
		c.Concurrency = runtime.GOMAXPROCS(0)
	}
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Recorder == nil {
		c.Recorder = noopRecorder{}
	}
	return c
}

type noopRecorder struct{}

func (noopRecorder) RecordHash(time.Duration, bool)               {}
func (noopRecorder) RecordQuery(int, time.Duration)               {}
func (noopRecorder) RecordSkip(error)                             {}
func (noopRecorder) RecordPass(int, int, int, int, time.Duration) {}
