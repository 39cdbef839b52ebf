// Package testutil provides synthetic textures and sources for tests.
//
// This package is intended for use in tests and benchmarks only.
//
//	rng := testutil.NewRNG(4711)
//	base := rng.Texture(64, 64)          // random blocky texture
//	dup := rng.Jitter(base, 2)           // recompression-like noise
//	small := testutil.Downscale(base, 2) // re-exported at half size
//
//	src := testutil.NewMemorySource()
//	src.Put("rock.png", base)
package testutil
