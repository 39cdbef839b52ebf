// Package equivalence merges "observed similar" relations into disjoint
// equivalence classes.
//
// Sets is an index-based union-find over 0..n-1 used for bulk merges.
// Collection keys classes by arbitrary comparable identifiers, supports
// incremental merge-on-insert and serialises as a JSON array of classes.
// PairSet records unordered pairs, such as reviewer-rejected duplicates.
//
// Items that belong to no class are implicit singletons and are never
// stored.
package equivalence
