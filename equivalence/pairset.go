package equivalence

import (
	"cmp"
	"slices"
	"sync"

	"github.com/goccy/go-json"
)

// PairSet is a set of unordered pairs of distinct items.
//
// PairSet is safe for concurrent use. The zero value is empty.
type PairSet[T cmp.Ordered] struct {
	mu    sync.RWMutex
	pairs map[[2]T]struct{}
}

// NewPairSet returns an empty set.
func NewPairSet[T cmp.Ordered]() *PairSet[T] {
	return &PairSet[T]{pairs: make(map[[2]T]struct{})}
}

func key[T cmp.Ordered](a, b T) [2]T {
	if b < a {
		a, b = b, a
	}
	return [2]T{a, b}
}

// Add records the pair {a, b}. A pair of equal items is ignored.
func (p *PairSet[T]) Add(a, b T) {
	if a == b {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pairs == nil {
		p.pairs = make(map[[2]T]struct{})
	}
	p.pairs[key(a, b)] = struct{}{}
}

// Remove deletes the pair {a, b}.
func (p *PairSet[T]) Remove(a, b T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pairs, key(a, b))
}

// Contains reports whether {a, b} is in the set.
func (p *PairSet[T]) Contains(a, b T) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.pairs[key(a, b)]
	return ok
}

// Len returns the number of pairs.
func (p *PairSet[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.pairs)
}

// DeleteFunc removes every pair for which del returns true and reports how
// many were removed.
func (p *PairSet[T]) DeleteFunc(del func(a, b T) bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for k := range p.pairs {
		if del(k[0], k[1]) {
			delete(p.pairs, k)
			n++
		}
	}
	return n
}

// Pairs returns all pairs sorted, each with its smaller item first.
func (p *PairSet[T]) Pairs() [][2]T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([][2]T, 0, len(p.pairs))
	for k := range p.pairs {
		out = append(out, k)
	}
	slices.SortFunc(out, func(x, y [2]T) int {
		if c := cmp.Compare(x[0], y[0]); c != 0 {
			return c
		}
		return cmp.Compare(x[1], y[1])
	})
	return out
}

// MarshalJSON encodes the set as a sorted array of two-element arrays.
func (p *PairSet[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Pairs())
}

// UnmarshalJSON replaces the contents with the decoded pairs.
func (p *PairSet[T]) UnmarshalJSON(data []byte) error {
	var pairs [][2]T
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	fresh := make(map[[2]T]struct{}, len(pairs))
	for _, k := range pairs {
		if k[0] != k[1] {
			fresh[key(k[0], k[1])] = struct{}{}
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pairs = fresh
	return nil
}
