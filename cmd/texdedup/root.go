package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/hupe1980/texdedup"
	"github.com/hupe1980/texdedup/blobstore"
	"github.com/hupe1980/texdedup/codec"
	"github.com/hupe1980/texdedup/internal/config"
	promcollector "github.com/hupe1980/texdedup/metrics/prometheus"
	"github.com/hupe1980/texdedup/pixel"
	"github.com/hupe1980/texdedup/selector"
)

// app holds state shared by all subcommands.
type app struct {
	cfgPath   string
	envFile   string
	store     string
	textures  string
	logFormat string
	verbose   bool

	cfg     *config.Config
	logger  *texdedup.Logger
	metrics texdedup.MetricsCollector
	server  *http.Server
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "texdedup",
		Short: "Group near-duplicate textures into reviewed equivalence classes",
		Long: `texdedup fingerprints textures, suggests classes of near-duplicates and
keeps a per-dimension ledger of certain, uncertain and rejected pairs.

Typical review cycle:
  texdedup refine --dim general
  texdedup classes --dim general --json > review.json
  # edit review.json, keep only real duplicates
  texdedup accept --dim general --file review.json
  texdedup representatives --dim general`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.shutdown(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "YAML configuration file")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the configuration")
	flags.StringVar(&a.store, "store", "", "ledger store (local:<dir>, minio://bucket/prefix, s3://bucket/prefix)")
	flags.StringVar(&a.textures, "textures", "", "texture store, defaults to --store")
	flags.StringVar(&a.logFormat, "log-format", "", "log format (text or json)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newRefineCmd(a),
		newClassesCmd(a),
		newAcceptCmd(a),
		newRepresentativesCmd(a),
		newSimilarCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadEnvFile(a.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.store != "" {
		cfg.Store = a.store
	}
	if a.textures != "" {
		cfg.Textures = a.textures
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log level %q: %w", cfg.Log.Level, err)
	}
	if cfg.Log.Format == "json" {
		a.logger = texdedup.NewJSONLogger(level)
	} else {
		a.logger = texdedup.NewTextLogger(level)
	}

	if cfg.MetricsAddr == "" {
		a.metrics = &texdedup.BasicMetricsCollector{}
		return nil
	}
	return a.serveMetrics(cmd.Context())
}

func (a *app) serveMetrics(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	c, err := promcollector.New("texdedup", reg)
	if err != nil {
		return err
	}
	a.metrics = c

	lis, err := (&net.ListenConfig{}).Listen(ctx, "tcp", a.cfg.MetricsAddr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	a.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := a.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", lis.Addr().String())
	return nil
}

func (a *app) shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return a.server.Shutdown(ctx)
}

// open returns a Deduper over the configured stores and the texture store.
func (a *app) open(ctx context.Context, sel *selector.Context) (*texdedup.Deduper, blobstore.BlobStore, error) {
	memLimit, ioLimit, cacheSize, err := a.cfg.Loader.Limits()
	if err != nil {
		return nil, nil, err
	}
	ledgerStore, err := openStore(ctx, a.cfg, a.cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	textureStore := ledgerStore
	if loc := a.cfg.TextureLocation(); loc != a.cfg.Store {
		if textureStore, err = openStore(ctx, a.cfg, loc); err != nil {
			return nil, nil, err
		}
	}

	c, ok := codec.ByName(a.cfg.Ledger.Codec)
	if !ok {
		return nil, nil, fmt.Errorf("unknown ledger codec %q", a.cfg.Ledger.Codec)
	}

	r := a.cfg.Refine
	var src pixel.Source = pixel.NewBlobSource(textureStore, pixel.WithMemoryLimit(memLimit), pixel.WithIOLimit(ioLimit))
	if cacheSize > 0 {
		src = pixel.NewCachedSource(src, cacheSize)
	}
	d := texdedup.New(ledgerStore, src,
		texdedup.WithLogger(a.logger),
		texdedup.WithMetrics(a.metrics),
		texdedup.WithCodec(c),
		texdedup.WithCompression(a.cfg.Ledger.Compression),
		texdedup.WithMaxPasses(r.MaxPasses),
		texdedup.WithMaxEqClassSize(r.MaxEqClassSize),
		texdedup.WithSpread(r.Spread),
		texdedup.WithConcurrency(r.Concurrency),
		texdedup.WithIndexSnapshots(r.IndexSnapshots),
		texdedup.WithStrictReview(r.StrictReview),
		texdedup.WithSelectorContext(sel),
	)
	return d, textureStore, nil
}
