package ledger

import (
	"github.com/hupe1980/texdedup/equivalence"
)

// Ledger is the classification state of one dimension.
type Ledger struct {
	Certain   *equivalence.Collection[string]
	Uncertain *equivalence.Collection[string]
	Rejected  *equivalence.PairSet[string]
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		Certain:   equivalence.NewOrdered[string](),
		Uncertain: equivalence.NewOrdered[string](),
		Rejected:  equivalence.NewPairSet[string](),
	}
}

// Conflicts returns the rejected pairs that are also certain. A consistent
// ledger has none.
func (l *Ledger) Conflicts() [][2]string {
	var out [][2]string
	for _, p := range l.Rejected.Pairs() {
		if l.Certain.AreEqual(p[0], p[1]) {
			out = append(out, p)
		}
	}
	return out
}
