package texdedup

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/texdedup/blobstore"
	"github.com/hupe1980/texdedup/equivalence"
	"github.com/hupe1980/texdedup/index"
	"github.com/hupe1980/texdedup/ledger"
	"github.com/hupe1980/texdedup/pixel"
	"github.com/hupe1980/texdedup/refine"
	"github.com/hupe1980/texdedup/selector"
)

// Deduper drives refinement and review for every dimension of one ledger.
//
// Ledger updates are read-modify-write and are serialised within a
// Deduper. Running two Dedupers against the same store concurrently is not
// supported.
type Deduper struct {
	blobs  blobstore.BlobStore
	store  *ledger.Store
	src    pixel.Source
	opts   options
	mu     sync.Mutex
	closed atomic.Bool
}

// New returns a Deduper that keeps its ledger in blobs and loads images
// from src.
func New(blobs blobstore.BlobStore, src pixel.Source, optFns ...Option) *Deduper {
	o := applyOptions(optFns)
	return &Deduper{
		blobs: blobs,
		store: ledger.NewStore(blobs,
			ledger.WithCodec(o.codec),
			ledger.WithCompression(o.compressionLevel),
		),
		src:  src,
		opts: o,
	}
}

func (d *Deduper) dimension(name string) (ledger.Dimension, error) {
	if d.closed.Load() {
		return "", ErrClosed
	}
	dim, err := ledger.ParseDimension(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownDimension, name)
	}
	return dim, nil
}

// Ledger returns a copy of the stored ledger of dim.
func (d *Deduper) Ledger(ctx context.Context, dim string) (*ledger.Ledger, error) {
	dm, err := d.dimension(dim)
	if err != nil {
		return nil, err
	}
	return d.store.Load(ctx, dm)
}

// Manifest returns the summary of the last save of dim. It wraps
// blobstore.ErrNotFound when dim was never saved.
func (d *Deduper) Manifest(ctx context.Context, dim string) (*ledger.Manifest, error) {
	dm, err := d.dimension(dim)
	if err != nil {
		return nil, err
	}
	return d.store.LoadManifest(ctx, dm)
}

// Refine reconciles the previous suggestions of dim with the certain
// ledger, classifies files and stores the new suggestions. Starting a run
// closes the previous review: suggested pairs that were never accepted
// become rejected. Suggestions whose
// pairs are all already certain or rejected are left out. Nothing is stored
// when the run fails or is cancelled.
func (d *Deduper) Refine(ctx context.Context, dim string, files []string) (*refine.Result, error) {
	dm, err := d.dimension(dim)
	if err != nil {
		return nil, err
	}
	kind, _ := dm.Kind()

	d.mu.Lock()
	defer d.mu.Unlock()

	logger := d.opts.logger.WithDimension(dm.String())

	l, err := d.store.Load(ctx, dm)
	if err != nil {
		return nil, err
	}
	added, dropped := refine.Reconcile(l.Uncertain, l.Certain, l.Rejected)
	logger.LogReconcile(ctx, added, dropped)

	cfg := refine.DefaultConfig(kind)
	cfg.MaxPasses = d.opts.maxPasses
	cfg.MaxEqClassSize = d.opts.maxEqClassSize
	cfg.Spread = d.opts.spread
	cfg.Concurrency = d.opts.concurrency
	cfg.Logger = logger.Logger
	cfg.Recorder = d.opts.metricsCollector
	cfg.KeepIndexes = d.opts.indexSnapshots

	res, err := refine.New(cfg).Run(ctx, d.src, files, l.Certain)
	if err != nil {
		logger.LogRefine(ctx, len(files), 0, 0, 0, err)
		return nil, err
	}
	logger = logger.WithRun(res.RunID)

	l.Uncertain = refine.Pending(res.Uncertain, l.Certain, l.Rejected)
	if err := d.store.Save(ctx, dm, l, res.RunID); err != nil {
		logger.LogSave(ctx, "ledger", err)
		return nil, err
	}
	logger.LogSave(ctx, "ledger", nil)

	for _, idx := range res.Indexes {
		name := snapshotName(dm, idx.Pass())
		err := index.SaveSnapshot(ctx, d.blobs, name, idx)
		logger.LogSave(ctx, name, err)
		if err != nil {
			return nil, err
		}
	}

	logger.LogRefine(ctx, len(files), l.Uncertain.Len(), res.BestEffort, len(res.Skipped), nil)
	return res, nil
}

func snapshotName(dim ledger.Dimension, pass int) string {
	return fmt.Sprintf("%s/index/pass%d.lz4", dim, pass)
}

// Snapshot loads the index a previous Refine stored for dim and pass. It
// requires WithIndexSnapshots.
func (d *Deduper) Snapshot(ctx context.Context, dim string, pass int) (*index.Copy, error) {
	dm, err := d.dimension(dim)
	if err != nil {
		return nil, err
	}
	return index.LoadSnapshot(ctx, d.blobs, snapshotName(dm, pass),
		index.WithLogger(d.opts.logger.Logger),
		index.WithConcurrency(d.opts.concurrency),
		index.WithRecorder(d.opts.metricsCollector),
	)
}

// UncertainClasses returns the suggestions of dim that await review.
func (d *Deduper) UncertainClasses(ctx context.Context, dim string) ([][]string, error) {
	dm, err := d.dimension(dim)
	if err != nil {
		return nil, err
	}
	l, err := d.store.Load(ctx, dm)
	if err != nil {
		return nil, err
	}
	return l.Uncertain.Classes(), nil
}

// AcceptCertain merges reviewed classes into the certain ledger of dim and
// reconciles the suggestions they touch: a suggestion sharing a member with
// an accepted class is decided, so its pairs that are not certain afterwards
// become rejected. Suggestions outside the batch stay pending, which lets a
// review proceed in several batches.
func (d *Deduper) AcceptCertain(ctx context.Context, dim string, classes [][]string) error {
	dm, err := d.dimension(dim)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	logger := d.opts.logger.WithDimension(dm.String())

	l, err := d.store.Load(ctx, dm)
	if err != nil {
		return err
	}
	if err := mergeCertain(l.Certain, classes, d.opts.strictReview); err != nil {
		return err
	}

	reviewed := refine.Touched(l.Uncertain, classes)
	added, dropped := refine.Reconcile(reviewed, l.Certain, l.Rejected)
	logger.LogReconcile(ctx, added, dropped)
	l.Uncertain = refine.Pending(l.Uncertain, l.Certain, l.Rejected)

	err = d.store.Save(ctx, dm, l, "")
	logger.LogSave(ctx, "ledger", err)
	return err
}

func mergeCertain(certain *equivalence.Collection[string], classes [][]string, strict bool) error {
	if !strict {
		for _, class := range classes {
			certain.SetClass(class...)
		}
		return nil
	}
	// Validate against a copy so that a failure leaves nothing half-merged.
	trial := certain.Clone()
	for _, class := range classes {
		if err := trial.AddClass(class...); err != nil {
			return err
		}
	}
	for _, class := range classes {
		certain.SetClass(class...)
	}
	return nil
}

// Representatives picks a representative for every certain class of dim,
// stores the mapping and returns it. items supplies widths and formats;
// unknown IDs rank lowest.
func (d *Deduper) Representatives(ctx context.Context, dim string, items []selector.Item) (map[string]string, error) {
	dm, err := d.dimension(dim)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	l, err := d.store.Load(ctx, dm)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]selector.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	reps := selector.Representatives(d.opts.selector, l.Certain.Classes(), func(id string) (selector.Item, bool) {
		it, ok := byID[id]
		return it, ok
	})

	err = d.store.SaveRepresentatives(ctx, dm, reps)
	d.opts.logger.WithDimension(dm.String()).LogSave(ctx, "representatives", err)
	if err != nil {
		return nil, err
	}
	return reps, nil
}

// StoredRepresentatives returns the mapping the last Representatives call
// stored for dim. It is empty when none was stored.
func (d *Deduper) StoredRepresentatives(ctx context.Context, dim string) (map[string]string, error) {
	dm, err := d.dimension(dim)
	if err != nil {
		return nil, err
	}
	return d.store.LoadRepresentatives(ctx, dm)
}

// Close marks the Deduper closed. Later calls return ErrClosed.
func (d *Deduper) Close() error {
	if d == nil {
		return nil
	}
	d.closed.Store(true)
	return nil
}
