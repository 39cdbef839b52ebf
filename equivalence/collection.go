package equivalence

import (
	"cmp"
	"slices"
	"sync"

	"github.com/goccy/go-json"
)

type classRecord[T comparable] struct {
	members []T
	live    bool
}

// Collection holds disjoint equivalence classes keyed by item identity.
//
// Classes live in an arena of records; each known item maps to the index of
// its record. Merging moves the smaller class into the larger and recycles
// the emptied slot. The zero value is an empty, unordered collection.
//
// Collection is safe for concurrent use.
type Collection[T comparable] struct {
	mu      sync.RWMutex
	classes []classRecord[T]
	free    []int
	slot    map[T]int
	compare func(a, b T) int
}

// New returns an empty collection. Classes are reported in creation order.
func New[T comparable]() *Collection[T] {
	return &Collection[T]{slot: make(map[T]int)}
}

// NewOrdered returns an empty collection whose classes are reported sorted:
// members ascending, classes by their smallest member.
func NewOrdered[T cmp.Ordered]() *Collection[T] {
	return &Collection[T]{slot: make(map[T]int), compare: cmp.Compare[T]}
}

// Set records that a and b are equal.
func (c *Collection[T]) Set(a, b T) {
	c.SetClass(a, b)
}

// SetClass records that all items are equal, merging any classes they
// already belong to.
func (c *Collection[T]) SetClass(items ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setClass(items)
}

// Add is like Set but fails if a and b already belong to different classes.
func (c *Collection[T]) Add(a, b T) error {
	return c.AddClass(a, b)
}

// AddClass is like SetClass but returns *ErrInconsistentClass, leaving the
// collection unchanged, if the items already belong to more than one class.
func (c *Collection[T]) AddClass(items ...T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	owner := -1
	var first T
	for _, item := range items {
		s, ok := c.slot[item]
		if !ok {
			continue
		}
		if owner == -1 {
			owner, first = s, item
			continue
		}
		if s != owner {
			return &ErrInconsistentClass{Item: first, Conflict: item}
		}
	}
	c.setClass(items)
	return nil
}

func (c *Collection[T]) setClass(items []T) {
	if c.slot == nil {
		c.slot = make(map[T]int)
	}

	target := -1
	for _, item := range items {
		s, ok := c.slot[item]
		if !ok {
			continue
		}
		switch {
		case target == -1:
			target = s
		case s != target:
			target = c.merge(target, s)
		}
	}

	if target == -1 {
		if countDistinct(items) < 2 {
			return
		}
		target = c.alloc()
	}

	rec := &c.classes[target]
	for _, item := range items {
		if _, ok := c.slot[item]; ok {
			continue
		}
		c.slot[item] = target
		rec.members = append(rec.members, item)
	}
}

// merge moves the smaller class into the larger and returns the survivor.
func (c *Collection[T]) merge(x, y int) int {
	if len(c.classes[x].members) < len(c.classes[y].members) {
		x, y = y, x
	}
	for _, item := range c.classes[y].members {
		c.slot[item] = x
	}
	c.classes[x].members = append(c.classes[x].members, c.classes[y].members...)
	c.classes[y] = classRecord[T]{}
	c.free = append(c.free, y)
	return x
}

func (c *Collection[T]) alloc() int {
	if n := len(c.free); n > 0 {
		s := c.free[n-1]
		c.free = c.free[:n-1]
		c.classes[s].live = true
		return s
	}
	c.classes = append(c.classes, classRecord[T]{live: true})
	return len(c.classes) - 1
}

func countDistinct[T comparable](items []T) int {
	if len(items) < 2 {
		return len(items)
	}
	for _, item := range items[1:] {
		if item != items[0] {
			return 2
		}
	}
	return 1
}

// AreEqual reports whether a and b are in the same class. Every item is
// equal to itself.
func (c *Collection[T]) AreEqual(a, b T) bool {
	if a == b {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	sa, ok := c.slot[a]
	if !ok {
		return false
	}
	sb, ok := c.slot[b]
	return ok && sa == sb
}

// Contains reports whether item belongs to a non-singleton class.
func (c *Collection[T]) Contains(item T) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.slot[item]
	return ok
}

// Get returns a copy of item's class, or a singleton if item is unknown.
func (c *Collection[T]) Get(item T) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.slot[item]
	if !ok {
		return []T{item}
	}
	return c.sortedMembers(s)
}

// Representative returns the smallest member of item's class for ordered
// collections and the first inserted member otherwise. Unknown items
// represent themselves.
func (c *Collection[T]) Representative(item T) T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.slot[item]
	if !ok {
		return item
	}
	members := c.classes[s].members
	if c.compare == nil {
		return members[0]
	}
	return slices.MinFunc(members, c.compare)
}

// Len returns the number of non-singleton classes.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.classes) - len(c.free)
}

// Classes returns a copy of every non-singleton class.
func (c *Collection[T]) Classes() [][]T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([][]T, 0, len(c.classes)-len(c.free))
	for s := range c.classes {
		if c.classes[s].live {
			out = append(out, c.sortedMembers(s))
		}
	}
	if c.compare != nil {
		slices.SortFunc(out, func(a, b []T) int { return c.compare(a[0], b[0]) })
	}
	return out
}

// Pairs returns every unordered pair of distinct items that share a class.
func (c *Collection[T]) Pairs() [][2]T {
	var pairs [][2]T
	for _, class := range c.Classes() {
		for i := range class {
			for j := i + 1; j < len(class); j++ {
				pairs = append(pairs, [2]T{class[i], class[j]})
			}
		}
	}
	return pairs
}

// Clone returns a deep copy.
func (c *Collection[T]) Clone() *Collection[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := &Collection[T]{
		classes: make([]classRecord[T], len(c.classes)),
		free:    slices.Clone(c.free),
		slot:    make(map[T]int, len(c.slot)),
		compare: c.compare,
	}
	for s, rec := range c.classes {
		out.classes[s] = classRecord[T]{members: slices.Clone(rec.members), live: rec.live}
	}
	for item, s := range c.slot {
		out.slot[item] = s
	}
	return out
}

func (c *Collection[T]) sortedMembers(s int) []T {
	members := slices.Clone(c.classes[s].members)
	if c.compare != nil {
		slices.SortFunc(members, c.compare)
	}
	return members
}

// MarshalJSON encodes the collection as an array of classes.
func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Classes())
}

// UnmarshalJSON replaces the contents with the decoded classes. A class that
// would join two earlier classes is reported as *ErrInconsistentClass and
// leaves the collection untouched.
func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	var classes [][]T
	if err := json.Unmarshal(data, &classes); err != nil {
		return err
	}

	fresh := &Collection[T]{slot: make(map[T]int), compare: c.compare}
	for _, class := range classes {
		if err := fresh.AddClass(class...); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.classes, c.free, c.slot = fresh.classes, fresh.free, fresh.slot
	return nil
}
