package refine

import (
	"github.com/hupe1980/texdedup/equivalence"
)

// Reconcile records every pair that shares a class in previous but is not
// certain-equal as rejected, then drops rejected pairs that are now certain.
// It returns the number of pairs added to and removed from rejected.
func Reconcile(previous, certain *equivalence.Collection[string], rejected *equivalence.PairSet[string]) (added, dropped int) {
	for _, p := range previous.Pairs() {
		if certain.AreEqual(p[0], p[1]) || rejected.Contains(p[0], p[1]) {
			continue
		}
		rejected.Add(p[0], p[1])
		added++
	}
	dropped = rejected.DeleteFunc(certain.AreEqual)
	return added, dropped
}

// Touched returns the classes of uncertain that share a member with any of
// classes.
func Touched(uncertain *equivalence.Collection[string], classes [][]string) *equivalence.Collection[string] {
	out := equivalence.NewOrdered[string]()
	for _, class := range classes {
		for _, id := range class {
			if members := uncertain.Get(id); len(members) > 1 && !out.Contains(id) {
				out.SetClass(members...)
			}
		}
	}
	return out
}

// Pending returns the classes of uncertain that still contain a pair which
// is neither certain-equal nor rejected. Fully decided classes are left out.
func Pending(uncertain, certain *equivalence.Collection[string], rejected *equivalence.PairSet[string]) *equivalence.Collection[string] {
	out := equivalence.NewOrdered[string]()
	for _, class := range uncertain.Classes() {
		if undecided(class, certain, rejected) {
			out.SetClass(class...)
		}
	}
	return out
}

func undecided(class []string, certain *equivalence.Collection[string], rejected *equivalence.PairSet[string]) bool {
	for i := range class {
		for j := i + 1; j < len(class); j++ {
			if !certain.AreEqual(class[i], class[j]) && !rejected.Contains(class[i], class[j]) {
				return true
			}
		}
	}
	return false
}
