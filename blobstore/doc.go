// Package blobstore provides the storage abstraction used for texture
// sources, ledger documents and index snapshots.
//
// Implementations must be safe for concurrent use. Put must be atomic: a
// reader observes either the previous blob or the complete new one, never a
// partial write. The ledger relies on this to keep cancelled or failed runs
// from corrupting persisted state.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, mmap reads, temp-file + rename writes
//   - MemoryStore: in-memory, for tests
//   - minio.Store: MinIO and other S3-compatible services
//   - s3.Store: Amazon S3
package blobstore
