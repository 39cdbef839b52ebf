package equivalence

// Sets is a union-find over the integers 0..n-1.
//
// Every element points at an element with an equal or smaller index, so a
// single forward pass is enough to label classes.
type Sets struct {
	parent []int
}

// NewSets returns n singleton classes.
func NewSets(n int) *Sets {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &Sets{parent: parent}
}

// Len returns the number of elements.
func (s *Sets) Len() int { return len(s.parent) }

// MakeEqual unions the classes of a and b.
//
// The walk repeatedly compares the current parents of both sides and
// redirects the larger one to the smaller, then continues from the element
// that lost its parent, until both sides share a parent.
func (s *Sets) MakeEqual(a, b int) {
	for a != b {
		pa, pb := s.parent[a], s.parent[b]
		if pa == pb {
			return
		}
		if pa > pb {
			s.parent[a] = pb
			a = pa
		} else {
			s.parent[b] = pa
			b = pb
		}
	}
}

// Find returns the root of x and compresses the path behind it.
func (s *Sets) Find(x int) int {
	root := x
	for s.parent[root] != root {
		root = s.parent[root]
	}
	for s.parent[x] != root {
		next := s.parent[x]
		s.parent[x] = root
		x = next
	}
	return root
}

// Classes labels every element with a dense class index. Class indices are
// assigned in order of each class's smallest element.
func (s *Sets) Classes() (count int, classOf []int) {
	classOf = make([]int, len(s.parent))
	for i, p := range s.parent {
		if p == i {
			classOf[i] = count
			count++
			continue
		}
		// p < i, so its label is already final.
		classOf[i] = classOf[p]
	}
	return count, classOf
}

// MergeOverlapping unions the members of every observation with at least two
// members and returns the resulting classes over 0..n-1.
func MergeOverlapping(observations [][]int, n int) (int, []int) {
	s := NewSets(n)
	for _, obs := range observations {
		if len(obs) < 2 {
			continue
		}
		for _, other := range obs[1:] {
			s.MakeEqual(obs[0], other)
		}
	}
	return s.Classes()
}

// Group turns a class labelling into member lists, dropping singletons.
// Members keep ascending order and groups are ordered by their first member.
func Group(count int, classOf []int) [][]int {
	buckets := make([][]int, count)
	for i, c := range classOf {
		buckets[c] = append(buckets[c], i)
	}
	groups := buckets[:0]
	for _, b := range buckets {
		if len(b) > 1 {
			groups = append(groups, b)
		}
	}
	return groups
}
