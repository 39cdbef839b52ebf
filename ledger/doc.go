// Package ledger persists the tri-state classification of every similarity
// dimension.
//
// Each dimension keeps three documents under its own prefix in a blobstore:
//
//	general/certain.json          reviewer-confirmed classes
//	general/uncertain.json        suggested classes pending review
//	general/rejected.json         pairs a reviewer denied
//	general/representatives.json  derived item → representative map
//	general/manifest.json         codec, counts and the last run id
//
// With compression enabled documents are written zstd-compressed with a
// .json.zst suffix. Either form is read back transparently. Every document
// is replaced with an atomic Put.
package ledger
