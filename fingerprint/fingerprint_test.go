package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/texdedup/pixel"
	"github.com/hupe1980/texdedup/testutil"
)

func TestRatioOf(t *testing.T) {
	tests := []struct {
		w, h int
		want AspectRatio
	}{
		{64, 64, AspectRatio{1, 1}},
		{128, 64, AspectRatio{2, 1}},
		{32, 256, AspectRatio{1, 8}},
		{0, 64, AspectRatio{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RatioOf(tt.w, tt.h), "%dx%d", tt.w, tt.h)
	}
	assert.True(t, RatioOf(0, 1).IsZero())
	assert.Equal(t, "2:1", AspectRatio{2, 1}.String())
}

func TestIsPowerOfTwo(t *testing.T) {
	assert.True(t, IsPowerOfTwo(1))
	assert.True(t, IsPowerOfTwo(256))
	assert.False(t, IsPowerOfTwo(0))
	assert.False(t, IsPowerOfTwo(96))
	assert.False(t, IsPowerOfTwo(-4))
}

func TestParseKind(t *testing.T) {
	for k := KindWeightedRGBA; k <= KindBrightness; k++ {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("specular")
	assert.Error(t, err)
}

func TestByteCount(t *testing.T) {
	square := AspectRatio{1, 1}

	tests := []struct {
		kind Kind
		pass int
		want int
	}{
		{KindWeightedRGBA, 1, 16 * 16 * 4},
		{KindWeightedRGBA, 2, 32 * 32 * 4},
		{KindNormal, 1, 16 * 16 * 2},
		{KindAlpha, 1, 32 * 32},
		{KindGloss, 2, 64 * 64},
		{KindBrightness, 1, 32 * 32},
	}
	for _, tt := range tests {
		h := New(tt.kind, square, tt.pass)
		assert.Equal(t, tt.want, h.ByteCount(), "%s pass %d", tt.kind, tt.pass)
	}

	// 2:1 at pass 1 needs at least 256 cells: 32x16.
	wide := New(KindWeightedRGBA, AspectRatio{2, 1}, 1).(*hasher)
	w, hgt := wide.Grid()
	assert.Equal(t, 32, w)
	assert.Equal(t, 16, hgt)
}

func TestTryGetBytes_Deterministic(t *testing.T) {
	img := testutil.NewRNG(1).Texture(64, 64)
	for k := KindWeightedRGBA; k <= KindBrightness; k++ {
		a, ok := Compute(k, img, 1)
		require.True(t, ok, k.String())
		b, ok := Compute(k, img, 1)
		require.True(t, ok)
		assert.Equal(t, a, b)
		assert.Len(t, a, New(k, AspectRatio{1, 1}, 1).ByteCount())
	}
}

func TestTryGetBytes_Rejects(t *testing.T) {
	rng := testutil.NewRNG(2)
	h := New(KindWeightedRGBA, AspectRatio{1, 1}, 1)

	_, ok := h.TryGetBytes(rng.Texture(128, 64))
	assert.False(t, ok, "ratio mismatch")

	_, ok = h.TryGetBytes(rng.Texture(96, 96))
	assert.False(t, ok, "non-power-of-two")

	_, ok = h.TryGetBytes(rng.Texture(8, 8))
	assert.False(t, ok, "smaller than grid")

	_, ok = h.TryGetBytes(&pixel.Image{Width: 16, Height: 16, Pix: make([]byte, 3)})
	assert.False(t, ok, "truncated buffer")

	_, ok = h.TryGetBytes(nil)
	assert.False(t, ok)
}

func TestTryGetBytes_ResizedCopyMatches(t *testing.T) {
	big := testutil.NewRNG(3).Texture(128, 128)
	small := testutil.Downscale(big, 2)

	a, ok := Compute(KindWeightedRGBA, big, 1)
	require.True(t, ok)
	b, ok := Compute(KindWeightedRGBA, small, 1)
	require.True(t, ok)
	assert.Equal(t, a, b)
}

func TestTryGetBytes_Encodings(t *testing.T) {
	img := testutil.Solid(32, 32, 200, 100, 40, 128)

	rgba, ok := Compute(KindWeightedRGBA, img, 1)
	require.True(t, ok)
	assert.Equal(t, []byte{50, 50, 10, 32}, rgba[:4])

	alpha, ok := Compute(KindAlpha, img, 1)
	require.True(t, ok)
	assert.Equal(t, byte(32), alpha[0])

	normal, ok := Compute(KindNormal, img, 1)
	require.True(t, ok)
	assert.Equal(t, []byte{100, 50}, normal[:2])

	gloss, ok := Compute(KindGloss, img, 1)
	require.True(t, ok)
	assert.Equal(t, byte(20), gloss[0])

	// A flat image has no variance and maps to the target mean.
	bright, ok := Compute(KindBrightness, img, 1)
	require.True(t, ok)
	assert.Equal(t, byte(128), bright[0])
}

func TestBrightness_InvariantToUniformShift(t *testing.T) {
	base := testutil.NewRNG(4).Texture(64, 64)
	lit := testutil.Brighten(base, 40)

	a, ok := Compute(KindBrightness, base, 1)
	require.True(t, ok)
	b, ok := Compute(KindBrightness, lit, 1)
	require.True(t, ok)

	for i := range a {
		assert.InDelta(t, int(a[i]), int(b[i]), 1, "cell %d", i)
	}

	w1, _ := Compute(KindWeightedRGBA, base, 1)
	w2, _ := Compute(KindWeightedRGBA, lit, 1)
	assert.NotEqual(t, w1, w2)
}

func TestFinerPassSeesDetail(t *testing.T) {
	base := testutil.NewRNG(5).Texture(64, 64)
	// Pass-1 grid is 16x16, so 4x4 pixel blocks; quadrants are 2x2.
	patterned := testutil.QuadrantPattern(base, 4, [4]int{40, -40, 40, -40})

	a1, _ := Compute(KindWeightedRGBA, base, 1)
	b1, _ := Compute(KindWeightedRGBA, patterned, 1)
	assert.Equal(t, a1, b1)

	a2, _ := Compute(KindWeightedRGBA, base, 2)
	b2, _ := Compute(KindWeightedRGBA, patterned, 2)
	assert.NotEqual(t, a2, b2)
}
