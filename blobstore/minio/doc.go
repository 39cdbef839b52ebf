// Package minio provides a blobstore.BlobStore backed by MinIO or any other
// S3-compatible service reachable through minio-go.
package minio
