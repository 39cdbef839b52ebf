package ledger

import "fmt"

// ErrCorrupt is returned when a stored document cannot be decoded.
type ErrCorrupt struct {
	Dimension Dimension
	Document  string
	Err       error
}

func (e *ErrCorrupt) Error() string {
	return fmt.Sprintf("ledger %s: corrupt %s: %v", e.Dimension, e.Document, e.Err)
}

func (e *ErrCorrupt) Unwrap() error { return e.Err }
