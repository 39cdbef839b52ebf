package main

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/texdedup"
	"github.com/hupe1980/texdedup/blobstore"
	"github.com/hupe1980/texdedup/codec"
	"github.com/hupe1980/texdedup/pixel"
	"github.com/hupe1980/texdedup/selector"
	"github.com/hupe1980/texdedup/testutil"
)

func writePNG(t *testing.T, dir, name string, img *pixel.Image) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img.ToNRGBA()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o600))
}

// corpus writes a.png and its half-size copy b.png plus an unrelated c.png.
func corpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	rng := testutil.NewRNG(7)
	a := rng.Texture(64, 64)
	writePNG(t, dir, "a.png", a)
	writePNG(t, dir, "b.png", testutil.Downscale(a, 2))
	writePNG(t, dir, "c.png", rng.Texture(64, 64))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))
	return dir
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--store", "local:" + dir,
		"--env-file", filepath.Join(dir, ".env"),
		"--log-format", "json",
	}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReviewCycle(t *testing.T) {
	dir := corpus(t)

	out, err := run(t, dir, "refine", "--dim", "general")
	require.NoError(t, err)
	assert.Contains(t, out, "1 classes await review")

	out, err = run(t, dir, "classes", "--json")
	require.NoError(t, err)
	var classes [][]string
	require.NoError(t, codec.Default.Unmarshal([]byte(out), &classes))
	assert.Equal(t, [][]string{{"a.png", "b.png"}}, classes)

	review := filepath.Join(t.TempDir(), "review.json")
	require.NoError(t, os.WriteFile(review, []byte(out), 0o600))
	out, err = run(t, dir, "accept", "--file", review)
	require.NoError(t, err)
	assert.Contains(t, out, "Accepted 1 classes")

	out, err = run(t, dir, "classes", "--certain")
	require.NoError(t, err)
	assert.Contains(t, out, "general: 1 certain, 0 uncertain, 0 rejected pairs")
	assert.Contains(t, out, "a.png")
	assert.Contains(t, out, "b.png")

	out, err = run(t, dir, "representatives")
	require.NoError(t, err)
	assert.Contains(t, out, "b.png -> a.png")
	assert.Contains(t, out, "1 textures mapped")

	out, err = run(t, dir, "representatives", "--show")
	require.NoError(t, err)
	assert.Contains(t, out, "b.png -> a.png")

	out, err = run(t, dir, "refine")
	require.NoError(t, err)
	assert.Contains(t, out, "0 classes await review")
}

func TestRepresentatives_Items(t *testing.T) {
	dir := corpus(t)
	_, err := run(t, dir, "refine")
	require.NoError(t, err)

	review := filepath.Join(t.TempDir(), "review.json")
	require.NoError(t, os.WriteFile(review, []byte(`[["a.png","b.png"]]`), 0o600))
	_, err = run(t, dir, "accept", "--file", review)
	require.NoError(t, err)

	items := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(items, []byte(
		`[{"id":"a.png","width":64,"format":"bc1"},{"id":"b.png","width":64,"format":"png"}]`), 0o600))
	out, err := run(t, dir, "representatives", "--items", items)
	require.NoError(t, err)
	assert.Contains(t, out, "a.png -> b.png")
}

func TestSimilar(t *testing.T) {
	dir := corpus(t)
	t.Setenv("TEXDEDUP_INDEX_SNAPSHOTS", "true")

	_, err := run(t, dir, "refine")
	require.NoError(t, err)

	out, err := run(t, dir, "similar", "a.png", "missing.png")
	require.NoError(t, err)
	assert.Contains(t, out, "b.png (32x32)")
	assert.NotContains(t, out, "c.png")
	assert.Contains(t, out, "missing.png is not indexed")
}

func TestErrors(t *testing.T) {
	dir := corpus(t)

	_, err := run(t, dir, "refine", "--dim", "specular")
	assert.Error(t, err)

	_, err = run(t, dir, "accept")
	assert.Error(t, err, "--file is required")

	_, err = run(t, dir, "--log-format", "xml", "classes")
	assert.Error(t, err)

	_, err = run(t, dir, "--config", filepath.Join(dir, "missing.yaml"), "classes")
	assert.Error(t, err)

	_, err = run(t, dir, "similar", "a.png")
	assert.Error(t, err, "no snapshot stored")
}

func TestConfigFile(t *testing.T) {
	dir := corpus(t)
	cfg := filepath.Join(t.TempDir(), "texdedup.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
refine:
  max_passes: 2
ledger:
  compression: 3
loader:
  memory_limit: 16MiB
  cache_size: 64MiB
`), 0o600))

	out, err := run(t, dir, "--config", cfg, "refine")
	require.NoError(t, err)
	assert.Contains(t, out, "1 classes await review")
	assert.FileExists(t, filepath.Join(dir, "general", "uncertain.json.zst"))
}

func TestDescribe_LogsUndecodable(t *testing.T) {
	dir := corpus(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0o600))

	var logs bytes.Buffer
	logger := texdedup.NewLogger(slog.NewJSONHandler(&logs, nil))
	items, err := describe(context.Background(), logger, blobstore.NewLocalStore(dir),
		[][]string{{"a.png", "b.png", "broken.png"}})
	require.NoError(t, err)

	assert.Equal(t, []selector.Item{
		{ID: "a.png", Width: 64, Format: "png"},
		{ID: "b.png", Width: 32, Format: "png"},
	}, items)
	assert.Contains(t, logs.String(), "skipping texture")
	assert.Contains(t, logs.String(), "broken.png")
}
