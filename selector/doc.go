// Package selector picks the canonical representative of an equivalence
// class.
//
// Items are ordered by width (wider first), storage-format quality (higher
// first, unknown formats tie), usage (referenced items first) and finally by
// ID descending, which makes the order strict. Pick folds the class with the
// comparator, so the result does not depend on input order.
package selector
