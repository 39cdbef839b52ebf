// Package refine turns noisy similarity data into a reviewable
// classification.
//
// A Workflow indexes the candidate files, merges similar files into
// classes and scores every class by the number of distinct certain
// representatives it contains. Classes at or below the ceiling are accepted
// as uncertain suggestions; larger classes are re-examined in the next pass
// with a finer fingerprint. At the pass limit any remaining oversized class
// is accepted as a best-effort result.
//
// Reconcile feeds reviewer decisions back into the ledger: pairs suggested
// earlier that were not confirmed become rejected.
package refine
