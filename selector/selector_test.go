package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/texdedup/testutil"
)

func TestPick_Scenario(t *testing.T) {
	ctx := DefaultContext()
	ctx.Used["a"] = true

	a := Item{ID: "a", Width: 512, Format: "BC1"}
	b := Item{ID: "b", Width: 256, Format: "BC1"}
	c := Item{ID: "c", Width: 512, Format: "BC3"}

	assert.Equal(t, "a", Pick(ctx, []Item{a, b, c}).ID)
	assert.Equal(t, "a", Pick(ctx, []Item{c, b, a}).ID)
	assert.Equal(t, "a", Pick(ctx, []Item{b, c, a}).ID)

	items := map[string]Item{"a": a, "b": b, "c": c}
	reps := Representatives(ctx, [][]string{{"a", "b", "c"}}, func(id string) (Item, bool) {
		it, ok := items[id]
		return it, ok
	})
	assert.Equal(t, map[string]string{"b": "a", "c": "a"}, reps)
}

func TestCompare_Order(t *testing.T) {
	ctx := DefaultContext()
	ctx.Used["used"] = true

	tests := []struct {
		name string
		a, b Item
	}{
		{"wider wins", Item{ID: "x", Width: 1024}, Item{ID: "y", Width: 512, Format: "png"}},
		{"quality wins", Item{ID: "x", Width: 64, Format: "png"}, Item{ID: "used", Width: 64, Format: "bc7"}},
		{"used wins", Item{ID: "used", Width: 64, Format: "bc1"}, Item{ID: "z", Width: 64, Format: "bc3"}},
		{"known format beats unknown", Item{ID: "x", Width: 64, Format: "bc1"}, Item{ID: "used", Width: 64, Format: "weird"}},
		{"unknown formats tie", Item{ID: "used", Width: 64, Format: "weird"}, Item{ID: "z", Width: 64, Format: "other"}},
		{"id descending", Item{ID: "b", Width: 64}, Item{ID: "a", Width: 64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Negative(t, Compare(ctx, tt.a, tt.b))
			assert.Positive(t, Compare(ctx, tt.b, tt.a))
		})
	}
	assert.Zero(t, Compare(ctx, Item{ID: "q"}, Item{ID: "q"}))
}

func TestCompare_Transitive(t *testing.T) {
	ctx := DefaultContext()
	ctx.Used["a"] = true

	a := Item{ID: "a", Width: 512, Format: "bc1"}
	c := Item{ID: "c", Width: 512, Format: "png"}
	x := Item{ID: "x", Width: 512, Format: "raw16"}

	assert.Negative(t, Compare(ctx, c, a))
	assert.Negative(t, Compare(ctx, a, x))
	assert.Negative(t, Compare(ctx, c, x))
	assert.Equal(t, c, Pick(ctx, []Item{a, c, x}))
	assert.Equal(t, c, Pick(ctx, []Item{x, a, c}))

	items := []Item{a, c, x, {ID: "y", Width: 512}, {ID: "b", Width: 512, Format: "bc1"}}
	for _, p := range items {
		for _, q := range items {
			for _, r := range items {
				if Compare(ctx, p, q) < 0 && Compare(ctx, q, r) < 0 {
					assert.Negative(t, Compare(ctx, p, r), "%s < %s < %s", p.ID, q.ID, r.ID)
				}
			}
		}
	}
}

func TestPick_DeterministicForAnyOrder(t *testing.T) {
	ctx := DefaultContext()
	ctx.Used["t3"] = true
	ctx.Used["t7"] = true

	formats := []string{"png", "bc1", "bc7", "mystery", "tga", ""}
	items := make([]Item, 12)
	for i := range items {
		items[i] = Item{
			ID:     string(rune('a'+i%3)) + string(rune('0'+i)),
			Width:  256 << (i % 2),
			Format: formats[i%len(formats)],
		}
	}

	want := Pick(ctx, items)
	rng := testutil.NewRNG(11)
	for round := 0; round < 50; round++ {
		shuffled := append([]Item(nil), items...)
		for i := len(shuffled) - 1; i > 0; i-- {
			j := rng.Intn(i + 1)
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		}
		assert.Equal(t, want, Pick(ctx, shuffled))
	}
}

func TestRepresentatives_UnknownItems(t *testing.T) {
	reps := Representatives(nil, [][]string{{"x1", "x2"}, {"solo"}}, func(string) (Item, bool) {
		return Item{}, false
	})
	assert.Equal(t, map[string]string{"x1": "x2"}, reps)
}

func TestPick_PanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() { Pick(nil, nil) })
}
