package index

import "time"

// Recorder receives index-level measurements. The root package's metrics
// collectors satisfy it.
type Recorder interface {
	// RecordHash is called once per attempted insertion. ok is false when no
	// fingerprint could be computed.
	RecordHash(duration time.Duration, ok bool)
	// RecordQuery is called after each similarity query.
	RecordQuery(candidates int, duration time.Duration)
	// RecordSkip is called when a file is skipped because it failed to load.
	RecordSkip(err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordHash(time.Duration, bool) {}
func (noopRecorder) RecordQuery(int, time.Duration) {}
func (noopRecorder) RecordSkip(error)               {}
