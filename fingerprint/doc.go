// Package fingerprint reduces textures to short fixed-length byte
// fingerprints for approximate comparison.
//
// A Hasher is bound to one Kind (channel-selection strategy), one
// AspectRatio and one refinement pass. It block-averages the image down to
// the smallest power-of-two-scaled grid of that ratio that holds at least the
// kind's pixel budget, then encodes every grid cell into one or more bytes:
//
//	KindWeightedRGBA  4 bytes/cell  R·¼ G·½ B·¼ A·¼   budget 256
//	KindAlpha         1 byte/cell   A>>2              budget 512
//	KindNormal        2 bytes/cell  X>>1 Y>>1         budget 256
//	KindGloss         1 byte/cell   B>>1              budget 512
//	KindBrightness    1 byte/cell   z-scored luma     budget 512
//
// Pass p multiplies the budget by 4^(p-1), so every later pass averages each
// cell over a quarter of the source pixels of the previous one.
//
// Hashing is a pure function of the pixels.
package fingerprint
