package texdedup

import (
	"errors"

	"github.com/hupe1980/texdedup/equivalence"
	"github.com/hupe1980/texdedup/ledger"
)

var (
	// ErrUnknownDimension is returned for a dimension name that has no
	// fingerprint kind.
	ErrUnknownDimension = errors.New("unknown dimension")

	// ErrClosed is returned by operations on a closed Deduper.
	ErrClosed = errors.New("deduper closed")
)

// ErrInconsistentClass is returned when reviewed classes would join items
// that the certain ledger keeps apart.
type ErrInconsistentClass = equivalence.ErrInconsistentClass

// ErrLedgerCorrupt is returned when a stored ledger document cannot be
// decoded.
type ErrLedgerCorrupt = ledger.ErrCorrupt
