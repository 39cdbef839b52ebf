// Package config loads the texdedup command line configuration from YAML,
// an optional .env file and TEXDEDUP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/texdedup/codec"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TEXDEDUP_"

// Config is the CLI configuration.
type Config struct {
	// Store holds the ledger: local:<dir>, minio://bucket/prefix or s3://bucket/prefix.
	Store string `yaml:"store"`
	// Textures holds the images. Empty means Store.
	Textures string `yaml:"textures,omitempty"`

	Log    LogConfig    `yaml:"log"`
	Refine RefineConfig `yaml:"refine"`
	Ledger LedgerConfig `yaml:"ledger"`
	Loader LoaderConfig `yaml:"loader"`
	MinIO  MinIOConfig  `yaml:"minio"`
	S3     S3Config     `yaml:"s3"`

	// MetricsAddr serves Prometheus metrics while a command runs.
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Format string `yaml:"format"` // "text" or "json"
	Level  string `yaml:"level"`
}

// RefineConfig tunes the refinement workflow.
type RefineConfig struct {
	MaxPasses      int  `yaml:"max_passes"`
	MaxEqClassSize int  `yaml:"max_eq_class_size"`
	Spread         int  `yaml:"spread"` // negative: per-kind default
	Concurrency    int  `yaml:"concurrency"`
	IndexSnapshots bool `yaml:"index_snapshots"`
	StrictReview   bool `yaml:"strict_review"`
}

// LedgerConfig controls ledger encoding.
type LedgerConfig struct {
	Codec string `yaml:"codec"`
	// Compression is a zstd level; 0 stores plain JSON.
	Compression int `yaml:"compression"`
}

// LoaderConfig limits texture loading. Sizes are human readable
// ("512MiB", "64 MB"); empty means unlimited.
type LoaderConfig struct {
	MemoryLimit string `yaml:"memory_limit,omitempty"`
	// IOLimit is a per-second read budget.
	IOLimit string `yaml:"io_limit,omitempty"`
	// CacheSize keeps decoded textures between refinement passes.
	CacheSize string `yaml:"cache_size,omitempty"`
}

// Limits returns the parsed sizes in bytes.
func (l LoaderConfig) Limits() (memory, io, cacheSize int64, err error) {
	if memory, err = parseSize(l.MemoryLimit); err != nil {
		return 0, 0, 0, fmt.Errorf("memory_limit: %w", err)
	}
	if io, err = parseSize(l.IOLimit); err != nil {
		return 0, 0, 0, fmt.Errorf("io_limit: %w", err)
	}
	if cacheSize, err = parseSize(l.CacheSize); err != nil {
		return 0, 0, 0, fmt.Errorf("cache_size: %w", err)
	}
	return memory, io, cacheSize, nil
}

func parseSize(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("%q is too large", s)
	}
	return int64(n), nil
}

// MinIOConfig configures minio:// stores.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// S3Config configures s3:// stores.
type S3Config struct {
	Region  string `yaml:"region,omitempty"`
	Profile string `yaml:"profile,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: "local:.",
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
		Refine: RefineConfig{
			MaxPasses:      4,
			MaxEqClassSize: 15,
			Spread:         -1,
		},
		Ledger: LedgerConfig{
			Codec: "go-json",
		},
		MinIO: MinIOConfig{
			Endpoint: "localhost:9000",
		},
	}
}

// Load returns Default overlaid with the YAML file at path (if path is not
// empty) and then with TEXDEDUP_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads a .env file into the process environment. A missing
// file is not an error. Variables already set are left alone.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}
	flag := func(key string, dst *bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str("STORE", &c.Store)
	str("TEXTURES", &c.Textures)
	str("LOG_FORMAT", &c.Log.Format)
	str("LOG_LEVEL", &c.Log.Level)
	str("LEDGER_CODEC", &c.Ledger.Codec)
	str("MINIO_ENDPOINT", &c.MinIO.Endpoint)
	str("MINIO_ACCESS_KEY", &c.MinIO.AccessKey)
	str("MINIO_SECRET_KEY", &c.MinIO.SecretKey)
	str("MEMORY_LIMIT", &c.Loader.MemoryLimit)
	str("IO_LIMIT", &c.Loader.IOLimit)
	str("CACHE_SIZE", &c.Loader.CacheSize)
	str("S3_REGION", &c.S3.Region)
	str("S3_PROFILE", &c.S3.Profile)
	str("METRICS_ADDR", &c.MetricsAddr)

	return errors.Join(
		num("MAX_PASSES", &c.Refine.MaxPasses),
		num("MAX_EQ_CLASS_SIZE", &c.Refine.MaxEqClassSize),
		num("SPREAD", &c.Refine.Spread),
		num("CONCURRENCY", &c.Refine.Concurrency),
		num("LEDGER_COMPRESSION", &c.Ledger.Compression),
		flag("INDEX_SNAPSHOTS", &c.Refine.IndexSnapshots),
		flag("STRICT_REVIEW", &c.Refine.StrictReview),
		flag("MINIO_SECURE", &c.MinIO.Secure),
	)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := ParseLocation(c.Store); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if c.Textures != "" {
		if _, err := ParseLocation(c.Textures); err != nil {
			return fmt.Errorf("textures: %w", err)
		}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format %q: want text or json", c.Log.Format)
	}
	if c.Refine.MaxPasses < 1 {
		return fmt.Errorf("max_passes must be positive, got %d", c.Refine.MaxPasses)
	}
	if c.Refine.MaxEqClassSize < 1 {
		return fmt.Errorf("max_eq_class_size must be positive, got %d", c.Refine.MaxEqClassSize)
	}
	if _, ok := codec.ByName(c.Ledger.Codec); !ok {
		return fmt.Errorf("ledger codec %q: want one of %s", c.Ledger.Codec, strings.Join(codec.Names(), ", "))
	}
	if _, _, _, err := c.Loader.Limits(); err != nil {
		return err
	}
	if c.Refine.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Refine.Concurrency)
	}
	return nil
}

// TextureLocation returns Textures, or Store when it is empty.
func (c *Config) TextureLocation() string {
	if c.Textures != "" {
		return c.Textures
	}
	return c.Store
}
