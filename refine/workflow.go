package refine

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hupe1980/texdedup/equivalence"
	"github.com/hupe1980/texdedup/index"
	"github.com/hupe1980/texdedup/pixel"
)

// PassStats describes one refinement pass.
type PassStats struct {
	Pass int `json:"pass"`
	// Candidates is the number of files the pass started with.
	Candidates int `json:"candidates"`
	// Indexed is the number of files that produced a fingerprint.
	Indexed int `json:"indexed"`
	// Skipped is the number of files that failed to load.
	Skipped int `json:"skipped"`
	// Unsupported is the number of files that could not be fingerprinted.
	Unsupported int `json:"unsupported"`
	Classes     int `json:"classes"`
	Accepted    int `json:"accepted"`
	Oversized   int `json:"oversized"`
	// Carried is the number of files that were too small for this pass and
	// kept the grouping of the previous one.
	Carried int `json:"carried"`

	Duration time.Duration `json:"duration"`
}

// Result is the outcome of a Run.
type Result struct {
	RunID string
	// Uncertain holds the accepted classes of every pass.
	Uncertain *equivalence.Collection[string]
	Passes    []PassStats
	// BestEffort counts oversized classes accepted at the pass limit.
	BestEffort int
	// Skipped lists files that failed to load, sorted.
	Skipped []string
	// Indexes holds the index of every pass when Config.KeepIndexes is set.
	Indexes []*index.Copy
}

// Workflow runs multi-pass refinement.
type Workflow struct {
	cfg Config
}

// New returns a Workflow for cfg.
func New(cfg Config) *Workflow {
	return &Workflow{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (w *Workflow) Config() Config { return w.cfg }

// Run classifies files. certain supplies the reviewer-confirmed classes used
// to score class size and may be nil. Per-file failures are logged and
// skipped; the only error returned is the context's.
func (w *Workflow) Run(ctx context.Context, src pixel.Source, files []string, certain *equivalence.Collection[string]) (*Result, error) {
	if certain == nil {
		certain = equivalence.New[string]()
	}

	res := &Result{
		RunID:     uuid.NewString(),
		Uncertain: equivalence.NewOrdered[string](),
	}
	logger := w.cfg.Logger.With(
		slog.String("run", res.RunID),
		slog.String("kind", w.cfg.Kind.String()),
	)

	candidates := slices.Clone(files)
	slices.Sort(candidates)
	candidates = slices.Compact(candidates)

	skipped := map[string]bool{}
	var groups [][]string
	if len(candidates) > 0 {
		groups = [][]string{candidates}
	}
	for pass := 1; len(groups) > 0; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stats, next, err := w.runPass(ctx, logger, src, pass, groups, certain, res)
		if err != nil {
			return nil, err
		}
		for _, id := range stats.skippedIDs {
			skipped[id] = true
		}
		res.Passes = append(res.Passes, stats.PassStats)
		w.cfg.Recorder.RecordPass(pass, stats.Candidates, stats.Classes, stats.Oversized, stats.Duration)

		logger.Info("pass complete",
			slog.Int("pass", pass),
			slog.Int("candidates", stats.Candidates),
			slog.Int("classes", stats.Classes),
			slog.Int("accepted", stats.Accepted),
			slog.Int("oversized", stats.Oversized),
			slog.Int("skipped", stats.Skipped),
			slog.Int("carried", stats.Carried),
			slog.Duration("duration", stats.Duration),
		)
		groups = next
	}

	for id := range skipped {
		res.Skipped = append(res.Skipped, id)
	}
	slices.Sort(res.Skipped)
	return res, nil
}

type passOutcome struct {
	PassStats
	skippedIDs []string
}

func (w *Workflow) runPass(
	ctx context.Context,
	logger *slog.Logger,
	src pixel.Source,
	pass int,
	groups [][]string,
	certain *equivalence.Collection[string],
	res *Result,
) (passOutcome, [][]string, error) {
	start := time.Now()
	var candidates []string
	for _, g := range groups {
		candidates = append(candidates, g...)
	}
	slices.Sort(candidates)
	out := passOutcome{PassStats: PassStats{Pass: pass, Candidates: len(candidates)}}

	progress := &rate.Sometimes{Interval: w.cfg.ProgressInterval}
	idx := index.NewCopy(w.cfg.Kind, pass,
		index.WithLogger(logger),
		index.WithConcurrency(w.cfg.Concurrency),
		index.WithRecorder(w.cfg.Recorder),
		index.WithProgress(func(done, total int) {
			progress.Do(func() {
				logger.Info("progress", slog.Int("pass", pass), slog.Int("done", done), slog.Int("total", total))
			})
		}),
	)

	skipped, unsupported, err := idx.AddAll(ctx, src, candidates)
	if err != nil {
		return out, nil, err
	}
	out.skippedIDs = skipped
	out.Skipped = len(skipped)
	out.Unsupported = len(unsupported)

	indexed := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if idx.Contains(id) {
			indexed = append(indexed, id)
		}
	}
	out.Indexed = len(indexed)

	classes, err := idx.GetEquivalenceClasses(ctx, src, indexed, w.cfg.Spread)
	if err != nil {
		return out, nil, err
	}

	// Fold into a fresh collection so that classes stay disjoint however
	// the index grouped them.
	found := equivalence.NewOrdered[string]()
	for _, class := range classes {
		found.SetClass(class...)
	}

	// Past pass 1 every group is a class the previous pass agreed on.
	if pass > 1 && len(unsupported) > 0 {
		w.carry(logger, pass, groups, unsupported, idx, found, certain, res, &out)
	}

	var next [][]string
	oversized := 0
	for _, class := range found.Classes() {
		out.Classes++
		score := DistinctRepresentatives(certain, class)
		switch {
		case score <= w.cfg.MaxEqClassSize:
			res.Uncertain.SetClass(class...)
			out.Accepted++
		case pass >= w.cfg.MaxPasses:
			res.Uncertain.SetClass(class...)
			res.BestEffort++
			oversized++
			logger.Warn("accepting oversized class at pass limit",
				slog.Int("pass", pass),
				slog.Int("size", len(class)),
				slog.Int("representatives", score),
				slog.String("first", class[0]),
			)
		default:
			next = append(next, class)
			oversized++
		}
	}
	out.Oversized = oversized
	out.Duration = time.Since(start)
	if w.cfg.KeepIndexes {
		res.Indexes = append(res.Indexes, idx)
	}

	return out, next, nil
}

// carry keeps the previous grouping of files the finer grid cannot
// fingerprint. Two or more such files of one group become a class of their
// own; a single one joins the class of its group's first indexed member.
func (w *Workflow) carry(
	logger *slog.Logger,
	pass int,
	groups [][]string,
	unsupported []string,
	idx *index.Copy,
	found *equivalence.Collection[string],
	certain *equivalence.Collection[string],
	res *Result,
	out *passOutcome,
) {
	small := make(map[string]bool, len(unsupported))
	for _, id := range unsupported {
		small[id] = true
	}

	for _, group := range groups {
		var rest []string
		anchor := ""
		for _, id := range group {
			switch {
			case small[id]:
				rest = append(rest, id)
			case anchor == "" && idx.Contains(id):
				anchor = id
			}
		}
		if len(rest) == 0 {
			continue
		}
		out.Carried += len(rest)

		switch {
		case len(rest) >= 2:
			res.Uncertain.SetClass(rest...)
			out.Accepted++
			if score := DistinctRepresentatives(certain, rest); score > w.cfg.MaxEqClassSize {
				res.BestEffort++
			}
			logger.Warn("keeping previous grouping of files too small to refine",
				slog.Int("pass", pass),
				slog.Any("ids", rest),
			)
		case anchor != "":
			found.Set(anchor, rest[0])
			logger.Warn("attaching file too small to refine to its previous class",
				slog.Int("pass", pass),
				slog.String("id", rest[0]),
				slog.String("class", anchor),
			)
		}
	}
}

// DistinctRepresentatives returns the number of distinct certain classes
// among members, counting unknown members as their own class.
func DistinctRepresentatives(certain *equivalence.Collection[string], members []string) int {
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		seen[certain.Representative(m)] = struct{}{}
	}
	return len(seen)
}
