package index

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/texdedup/fingerprint"
	"github.com/hupe1980/texdedup/testutil"
)

func ids(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.ID
	}
	return out
}

func TestSameRatio_AddAndQuery(t *testing.T) {
	rng := testutil.NewRNG(1)
	base := rng.Texture(64, 64)
	other := rng.Texture(64, 64)

	idx := NewSameRatio(fingerprint.KindWeightedRGBA, fingerprint.AspectRatio{W: 1, H: 1}, 1)
	require.True(t, idx.Add(base, "base"))
	require.True(t, idx.Add(rng.Jitter(base, 2), "noisy"))
	require.True(t, idx.Add(testutil.Downscale(base, 2), "small"))
	require.True(t, idx.Add(other, "other"))
	assert.Equal(t, 4, idx.Len())

	res, ok := idx.GetSimilar(base, 4)
	require.True(t, ok)
	assert.Equal(t, []string{"base", "noisy", "small"}, ids(res))
	assert.Equal(t, 32, res[2].Width)

	res, ok = idx.GetSimilar(other, 4)
	require.True(t, ok)
	assert.Equal(t, []string{"other"}, ids(res))
}

func TestSameRatio_RejectsUncomputable(t *testing.T) {
	rng := testutil.NewRNG(2)
	idx := NewSameRatio(fingerprint.KindWeightedRGBA, fingerprint.AspectRatio{W: 1, H: 1}, 1)

	assert.False(t, idx.Add(rng.Texture(128, 64), "wide"))
	assert.False(t, idx.Add(rng.Texture(8, 8), "tiny"))
	assert.Equal(t, 0, idx.Len())

	res, ok := idx.GetSimilar(rng.Texture(8, 8), 4)
	assert.False(t, ok)
	assert.Nil(t, res)
}

func TestSameRatio_EmptyIndex(t *testing.T) {
	idx := NewSameRatio(fingerprint.KindAlpha, fingerprint.AspectRatio{W: 1, H: 1}, 1)
	res, ok := idx.GetSimilar(testutil.NewRNG(3).Texture(64, 64), 2)
	require.True(t, ok)
	assert.Empty(t, res)
	assert.NotNil(t, res)
}

func TestSameRatio_SpreadMonotonic(t *testing.T) {
	rng := testutil.NewRNG(4)
	idx := NewSameRatio(fingerprint.KindWeightedRGBA, fingerprint.AspectRatio{W: 1, H: 1}, 1)

	base := rng.Texture(64, 64)
	for i := 0; i < 30; i++ {
		img := base
		switch i % 3 {
		case 0:
			img = rng.Jitter(base, 2+i)
		case 1:
			img = testutil.Brighten(base, i)
		default:
			img = rng.Texture(64, 64)
		}
		require.True(t, idx.Add(img, string(rune('A'+i))))
	}

	var prev []string
	for spread := 0; spread <= 24; spread += 2 {
		res, ok := idx.GetSimilar(base, spread)
		require.True(t, ok)
		cur := ids(res)
		assert.Subset(t, cur, prev, "spread %d", spread)
		prev = cur
	}
	assert.NotEmpty(t, prev)
}

func TestSameRatio_QueryDoesNotMutateBuckets(t *testing.T) {
	rng := testutil.NewRNG(5)
	a, b := rng.Texture(64, 64), rng.Texture(64, 64)

	idx := NewSameRatio(fingerprint.KindWeightedRGBA, fingerprint.AspectRatio{W: 1, H: 1}, 1)
	require.True(t, idx.Add(a, "a"))
	require.True(t, idx.Add(b, "b"))

	_, _ = idx.GetSimilar(a, 0)
	res, _ := idx.GetSimilar(b, 0)
	assert.Equal(t, []string{"b"}, ids(res))
}

func TestSameRatio_WriteReadRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(6)
	ratio := fingerprint.AspectRatio{W: 2, H: 1}
	idx := NewSameRatio(fingerprint.KindNormal, ratio, 1)
	base := rng.Texture(64, 32)
	require.True(t, idx.Add(base, "n1"))
	require.True(t, idx.Add(rng.Jitter(base, 1), "n2"))
	require.True(t, idx.Add(rng.Texture(64, 32), "n3"))

	var buf bytes.Buffer
	n, err := idx.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	back := NewSameRatio(fingerprint.KindNormal, ratio, 1)
	_, err = back.ReadFrom(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, back.Len())

	want, _ := idx.GetSimilar(base, 3)
	got, _ := back.GetSimilar(base, 3)
	assert.Equal(t, want, got)

	var again bytes.Buffer
	_, err = idx.WriteTo(&again)
	require.NoError(t, err)
	mismatch := NewSameRatio(fingerprint.KindNormal, ratio, 2)
	_, err = mismatch.ReadFrom(&again)
	assert.ErrorIs(t, err, ErrBadSnapshot)
}
