// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
//	store, err := s3.New(ctx, "asset-ledger",
//	    s3.WithPrefix("textures/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
// Reads use ranged GETs. Writes go through the transfer manager, which
// switches to multipart uploads for large index snapshots.
package s3
