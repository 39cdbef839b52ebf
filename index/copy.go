package index

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/texdedup/equivalence"
	"github.com/hupe1980/texdedup/fingerprint"
	"github.com/hupe1980/texdedup/pixel"
)

// Option configures a Copy index.
type Option func(*Copy)

// WithLogger sets the logger used for skipped files.
func WithLogger(l *slog.Logger) Option {
	return func(c *Copy) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithConcurrency bounds the number of files processed in parallel.
func WithConcurrency(n int) Option {
	return func(c *Copy) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Copy) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithProgress sets a callback invoked after each file of AddAll and
// GetEquivalenceClasses. It may be called concurrently.
func WithProgress(fn func(done, total int)) Option {
	return func(c *Copy) {
		c.progress = fn
	}
}

type location struct {
	index *SameRatio
	ord   uint32
}

// Copy routes images to per-aspect-ratio SameRatio indexes.
//
// Copy is safe for concurrent use.
type Copy struct {
	kind fingerprint.Kind
	pass int

	logger      *slog.Logger
	concurrency int
	recorder    Recorder
	progress    func(done, total int)

	mu      sync.Mutex
	byRatio map[fingerprint.AspectRatio]*SameRatio
	byID    map[string]location
}

// NewCopy returns an empty index for kind at the given refinement pass.
func NewCopy(kind fingerprint.Kind, pass int, opts ...Option) *Copy {
	c := &Copy{
		kind:        kind,
		pass:        pass,
		logger:      slog.New(slog.DiscardHandler),
		concurrency: runtime.GOMAXPROCS(0),
		recorder:    noopRecorder{},
		byRatio:     make(map[fingerprint.AspectRatio]*SameRatio),
		byID:        make(map[string]location),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kind returns the fingerprint kind.
func (c *Copy) Kind() fingerprint.Kind { return c.kind }

// Pass returns the refinement pass the index hashes for.
func (c *Copy) Pass() int { return c.pass }

func (c *Copy) getOrCreate(ratio fingerprint.AspectRatio) *SameRatio {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, ok := c.byRatio[ratio]
	if !ok {
		idx = NewSameRatio(c.kind, ratio, c.pass)
		c.byRatio[ratio] = idx
	}
	return idx
}

func (c *Copy) lookup(ratio fingerprint.AspectRatio) *SameRatio {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byRatio[ratio]
}

// AddImage inserts img under id. It returns false if the dimensions are not
// powers of two, if no fingerprint can be computed, or if id was already
// added.
func (c *Copy) AddImage(img *pixel.Image, id string) bool {
	start := time.Now()
	ok := c.addImage(img, id)
	c.recorder.RecordHash(time.Since(start), ok)
	return ok
}

func (c *Copy) addImage(img *pixel.Image, id string) bool {
	if img == nil || !fingerprint.IsPowerOfTwo(img.Width) || !fingerprint.IsPowerOfTwo(img.Height) {
		return false
	}
	idx := c.getOrCreate(fingerprint.RatioOf(img.Width, img.Height))

	fp, ok := idx.hasher.TryGetBytes(img)
	if !ok {
		return false
	}

	// Reserve the id before inserting so concurrent adds of the same id
	// cannot both succeed.
	c.mu.Lock()
	if _, dup := c.byID[id]; dup {
		c.mu.Unlock()
		return false
	}
	c.byID[id] = location{}
	c.mu.Unlock()

	ord := idx.insert(Candidate{ID: id, Width: img.Width, Height: img.Height}, fp)

	c.mu.Lock()
	c.byID[id] = location{index: idx, ord: ord}
	c.mu.Unlock()
	return true
}

// GetSimilar returns the candidates similar to img. A negative spread
// selects the kind's default. It returns an empty
// slice when no image of img's aspect ratio was added, and nil when img
// cannot be fingerprinted.
func (c *Copy) GetSimilar(img *pixel.Image, spread int) []Candidate {
	if img == nil {
		return nil
	}
	idx := c.lookup(fingerprint.RatioOf(img.Width, img.Height))
	if idx == nil {
		return []Candidate{}
	}
	start := time.Now()
	res, ok := idx.GetSimilar(img, spread)
	if !ok {
		return nil
	}
	c.recorder.RecordQuery(len(res), time.Since(start))
	return res
}

// GetSimilarByID queries with the fingerprint stored for an added id. It
// returns false if id was never added.
func (c *Copy) GetSimilarByID(id string, spread int) ([]Candidate, bool) {
	c.mu.Lock()
	loc, ok := c.byID[id]
	c.mu.Unlock()
	if !ok || loc.index == nil {
		return nil, false
	}
	start := time.Now()
	res := loc.index.Query(loc.index.fingerprintOf(loc.ord), spread)
	c.recorder.RecordQuery(len(res), time.Since(start))
	return res, true
}

// Contains reports whether id was added.
func (c *Copy) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	loc, ok := c.byID[id]
	return ok && loc.index != nil
}

// Len returns the number of added images.
func (c *Copy) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byID)
}

// Ratios returns the aspect ratios that have an index, sorted by W then H.
func (c *Copy) Ratios() []fingerprint.AspectRatio {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]fingerprint.AspectRatio, 0, len(c.byRatio))
	for r := range c.byRatio {
		out = append(out, r)
	}
	slices.SortFunc(out, compareRatio)
	return out
}

func compareRatio(a, b fingerprint.AspectRatio) int {
	if a.W != b.W {
		return a.W - b.W
	}
	return a.H - b.H
}

// AddAll loads every id from src and adds it, in parallel. Files that fail
// to load are logged and returned in skipped; files that cannot be
// fingerprinted are returned in rejected. The only error is ctx.Err().
func (c *Copy) AddAll(ctx context.Context, src pixel.Source, ids []string) (skipped, rejected []string, err error) {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	tick := c.ticker(len(ids))

	for _, id := range ids {
		g.Go(func() error {
			defer tick()
			img, ok, err := c.load(gctx, src, id)
			if err != nil {
				return err
			}
			if !ok {
				mu.Lock()
				skipped = append(skipped, id)
				mu.Unlock()
				return nil
			}
			if !c.AddImage(img, id) {
				mu.Lock()
				rejected = append(rejected, id)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	slices.Sort(skipped)
	slices.Sort(rejected)
	return skipped, rejected, nil
}

func (c *Copy) ticker(total int) func() {
	if c.progress == nil {
		return func() {}
	}
	var done atomic.Int64
	return func() {
		c.progress(int(done.Add(1)), total)
	}
}

// load returns ok == false for a per-file failure, which is logged, and an
// error only when the context is done.
func (c *Copy) load(ctx context.Context, src pixel.Source, id string) (*pixel.Image, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	img, err := src.LoadImage(ctx, id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		c.logger.Warn("skipping file", slog.String("id", id), slog.Any("error", err))
		c.recorder.RecordSkip(err)
		return nil, false, nil
	}
	return img, true, nil
}

// GetEquivalenceClasses queries every id and merges each result with at
// least two members into global classes over ids. Ids that were added to
// the index are queried with their stored fingerprint; others are loaded
// from src. Only classes with two or more members are returned; members are
// sorted and classes are ordered by their first member.
func (c *Copy) GetEquivalenceClasses(ctx context.Context, src pixel.Source, ids []string, spread int) ([][]string, error) {
	position := make(map[string]int, len(ids))
	for i, id := range ids {
		position[id] = i
	}

	observations := make([][]int, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	tick := c.ticker(len(ids))

	for i, id := range ids {
		g.Go(func() error {
			defer tick()
			if err := gctx.Err(); err != nil {
				return err
			}
			res, ok := c.GetSimilarByID(id, spread)
			if !ok {
				img, loaded, err := c.load(gctx, src, id)
				if err != nil {
					return err
				}
				if !loaded {
					return nil
				}
				res = c.GetSimilar(img, spread)
			}
			if len(res) < 2 {
				return nil
			}
			obs := make([]int, 0, len(res)+1)
			obs = append(obs, i)
			for _, cand := range res {
				if p, ok := position[cand.ID]; ok && p != i {
					obs = append(obs, p)
				}
			}
			observations[i] = obs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	count, classOf := equivalence.MergeOverlapping(observations, len(ids))
	groups := equivalence.Group(count, classOf)

	classes := make([][]string, 0, len(groups))
	for _, group := range groups {
		class := make([]string, len(group))
		for j, p := range group {
			class[j] = ids[p]
		}
		slices.Sort(class)
		classes = append(classes, class)
	}
	slices.SortFunc(classes, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return classes, nil
}
