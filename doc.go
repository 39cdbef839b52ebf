// Package texdedup finds near-duplicate textures in large asset corpora and
// groups them into reviewable equivalence classes.
//
// Every image is reduced to a small perceptual fingerprint, indexed by
// aspect ratio, and merged with its look-alikes. Classes that are too large
// to be useful are re-examined with finer fingerprints. The result is kept
// in a tri-state ledger per similarity dimension: certain classes confirmed
// by a reviewer, uncertain suggestions, and rejected pairs.
//
// # Quick Start
//
//	ctx := context.Background()
//	store := blobstore.NewLocalStore("./ledger")
//	src := pixel.NewBlobSource(blobstore.NewLocalStore("./textures"))
//
//	d := texdedup.New(store, src, texdedup.WithLogger(texdedup.NewTextLogger(slog.LevelInfo)))
//	res, _ := d.Refine(ctx, "general", ids)
//
// # Review Cycle
//
// A reviewer inspects the uncertain classes and hands back the ones that are
// real duplicates:
//
//	classes, _ := d.UncertainClasses(ctx, "general")
//	// ... human review ...
//	d.AcceptCertain(ctx, "general", confirmed)
//
// Within every suggestion the batch touches, pairs that were not confirmed
// are recorded as rejected and are not suggested again. Suggestions outside
// the batch stay pending until a later batch or the next Refine.
//
// # Dimensions
//
// Dimensions are tracked independently, each with its own fingerprint:
//
//   - general: luminance-weighted RGBA
//   - alpha: transparency mask
//   - normal: tangent-space normal X/Y
//   - gloss: blue channel
//   - brightness: lighting-normalised greyscale
//
// # Representatives
//
// Representatives picks one canonical item per certain class (widest, best
// format, referenced, then highest ID) and stores the mapping of every
// other member to it.
//
// # Loading Limits
//
// Large corpora decode many textures concurrently. BlobSource can bound the
// decode memory and read throughput, and CachedSource keeps decoded images
// between passes:
//
//	src := pixel.NewCachedSource(
//		pixel.NewBlobSource(textures, pixel.WithMemoryLimit(1<<30), pixel.WithIOLimit(100<<20)),
//		512<<20,
//	)
package texdedup
