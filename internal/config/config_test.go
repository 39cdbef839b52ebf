package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "local:.", cfg.TextureLocation())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "texdedup.yaml", `
store: minio://ledger/textures
textures: local:/assets
log:
  format: json
  level: debug
refine:
  max_passes: 2
  max_eq_class_size: 8
  spread: 0
  index_snapshots: true
ledger:
  compression: 3
loader:
  memory_limit: 512MiB
  cache_size: 1GiB
minio:
  endpoint: minio:9000
  secure: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "minio://ledger/textures", cfg.Store)
	assert.Equal(t, "local:/assets", cfg.TextureLocation())
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 2, cfg.Refine.MaxPasses)
	assert.Equal(t, 8, cfg.Refine.MaxEqClassSize)
	assert.Equal(t, 0, cfg.Refine.Spread)
	assert.True(t, cfg.Refine.IndexSnapshots)
	assert.Equal(t, 3, cfg.Ledger.Compression)
	assert.Equal(t, "go-json", cfg.Ledger.Codec, "unset keys keep defaults")
	assert.True(t, cfg.MinIO.Secure)

	mem, io, cacheSize, err := cfg.Loader.Limits()
	require.NoError(t, err)
	assert.Equal(t, int64(512<<20), mem)
	assert.Zero(t, io)
	assert.Equal(t, int64(1<<30), cacheSize)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "texdedup.yaml", "refine:\n  max_passes: 2\n")
	t.Setenv("TEXDEDUP_MAX_PASSES", "6")
	t.Setenv("TEXDEDUP_STORE", "s3://bucket")
	t.Setenv("TEXDEDUP_STRICT_REVIEW", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Refine.MaxPasses)
	assert.Equal(t, "s3://bucket", cfg.Store)
	assert.True(t, cfg.Refine.StrictReview)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "store: [unterminated"))
	assert.ErrorContains(t, err, "parsing YAML")

	_, err = Load(writeFile(t, "bad.yaml", "log:\n  format: xml\n"))
	assert.ErrorContains(t, err, "log format")

	t.Setenv("TEXDEDUP_CONCURRENCY", "many")
	_, err = Load("")
	assert.ErrorContains(t, err, "TEXDEDUP_CONCURRENCY")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Refine.MaxPasses = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Store = "ftp://host"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Refine.Concurrency = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Ledger.Codec = "msgpack"
	assert.ErrorContains(t, cfg.Validate(), "go-json, json")

	cfg = Default()
	cfg.Loader.IOLimit = "fast"
	assert.ErrorContains(t, cfg.Validate(), "io_limit")
}

func TestLoaderLimits_Env(t *testing.T) {
	t.Setenv("TEXDEDUP_IO_LIMIT", "64 MB")
	cfg, err := Load("")
	require.NoError(t, err)

	_, io, _, err := cfg.Loader.Limits()
	require.NoError(t, err)
	assert.Equal(t, int64(64_000_000), io)
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), ".env")))

	t.Setenv("TEXDEDUP_LOG_LEVEL", "")
	os.Unsetenv("TEXDEDUP_LOG_LEVEL")
	path := writeFile(t, ".env", "TEXDEDUP_LOG_LEVEL=warn\n")
	require.NoError(t, LoadEnvFile(path))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in   string
		want Location
	}{
		{"local:/data", Location{Scheme: SchemeLocal, Dir: "/data"}},
		{"minio://bucket", Location{Scheme: SchemeMinIO, Bucket: "bucket"}},
		{"minio://bucket/a/b/", Location{Scheme: SchemeMinIO, Bucket: "bucket", Prefix: "a/b"}},
		{"s3://bucket/p", Location{Scheme: SchemeS3, Bucket: "bucket", Prefix: "p"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocation(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "local:", "s3://", "minio:///x", "/plain/path"} {
		_, err := ParseLocation(bad)
		assert.Error(t, err, bad)
	}

	loc, err := ParseLocation("minio://bucket/a/b/")
	require.NoError(t, err)
	assert.Equal(t, "minio://bucket/a/b", loc.String())
}
