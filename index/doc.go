// Package index provides the approximate-candidate index over perceptual
// fingerprints.
//
// # Same-Ratio Index
//
// SameRatio stores fingerprints of images that share one aspect ratio in an
// inverted grid of ByteCount×256 roaring bitmaps, one per (byte position,
// byte value). A query ORs the buckets within ±spread of every query byte
// and ANDs the per-position unions, so only candidates close in every
// position survive.
//
// # Copy Index
//
// Copy routes images to the SameRatio index for their aspect ratio, creating
// indexes on demand, and turns corpus-wide queries into equivalence classes:
//
//	idx := index.NewCopy(fingerprint.KindWeightedRGBA, 1)
//	idx.AddAll(ctx, src, ids)
//	classes, err := idx.GetEquivalenceClasses(ctx, src, ids, 4)
//
// Images of different aspect ratios are never compared.
//
// # Snapshots
//
// SameRatio implements io.WriterTo and io.ReaderFrom; SaveSnapshot and
// LoadSnapshot persist a Copy index through a blobstore as an lz4 frame
// whose content ends with a CRC32C checksum.
package index
