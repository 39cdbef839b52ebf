package selector

import (
	"math"
	"slices"
	"strings"
)

// Item describes a class member.
type Item struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Format string `json:"format"`
}

// Context is the read-only lookup data consulted while comparing items.
type Context struct {
	// Used holds the IDs referenced elsewhere in the corpus.
	Used map[string]bool
	// Quality maps a lower-case storage format to a score. Higher is better.
	Quality map[string]int
}

// DefaultQuality returns the built-in coarse format scores: lossless
// formats score 2 and every block-compressed format scores 1.
func DefaultQuality() map[string]int {
	return map[string]int{
		"png":      2,
		"tga":      2,
		"bmp":      2,
		"dds-rgba": 2,
		"bc1":      1,
		"bc2":      1,
		"bc3":      1,
		"bc4":      1,
		"bc5":      1,
		"bc7":      1,
		"dxt1":     1,
		"dxt3":     1,
		"dxt5":     1,
	}
}

// DefaultContext returns a Context with DefaultQuality and no used items.
func DefaultContext() *Context {
	return &Context{Used: map[string]bool{}, Quality: DefaultQuality()}
}

// quality scores format. Unknown formats rank below every known score and
// tie only with each other.
func (c *Context) quality(format string) int {
	if c == nil || c.Quality == nil {
		return math.MinInt
	}
	q, ok := c.Quality[strings.ToLower(format)]
	if !ok {
		return math.MinInt
	}
	return q
}

func (c *Context) used(id string) bool {
	return c != nil && c.Used[id]
}

// Compare returns a negative number when a should be preferred over b, a
// positive number when b should be preferred, and zero only when the IDs are
// equal.
func Compare(ctx *Context, a, b Item) int {
	if a.Width != b.Width {
		if a.Width > b.Width {
			return -1
		}
		return 1
	}

	if qa, qb := ctx.quality(a.Format), ctx.quality(b.Format); qa != qb {
		if qa > qb {
			return -1
		}
		return 1
	}

	if ua, ub := ctx.used(a.ID), ctx.used(b.ID); ua != ub {
		if ua {
			return -1
		}
		return 1
	}

	return strings.Compare(b.ID, a.ID)
}

// Pick returns the preferred item. It panics on an empty slice.
func Pick(ctx *Context, items []Item) Item {
	if len(items) == 0 {
		panic("selector: Pick on empty class")
	}
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, func(a, b Item) int { return strings.Compare(a.ID, b.ID) })

	best := sorted[0]
	for _, it := range sorted[1:] {
		if Compare(ctx, it, best) < 0 {
			best = it
		}
	}
	return best
}

// Representatives maps every class member that is not its class's
// representative to the representative. lookup resolves IDs to items; IDs
// it does not know are treated as width 0 with an unknown format.
func Representatives(ctx *Context, classes [][]string, lookup func(id string) (Item, bool)) map[string]string {
	out := make(map[string]string)
	for _, class := range classes {
		if len(class) < 2 {
			continue
		}
		items := make([]Item, len(class))
		for i, id := range class {
			it, ok := lookup(id)
			if !ok {
				it = Item{ID: id}
			}
			it.ID = id
			items[i] = it
		}
		rep := Pick(ctx, items).ID
		for _, id := range class {
			if id != rep {
				out[id] = rep
			}
		}
	}
	return out
}
