package equivalence

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/texdedup/testutil"
)

func TestCollection_Set(t *testing.T) {
	c := NewOrdered[string]()
	c.Set("a", "b")
	c.Set("c", "d")
	assert.Equal(t, 2, c.Len())

	c.Set("b", "c")
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []string{"a", "b", "c", "d"}, c.Get("d"))
	assert.Equal(t, []string{"x"}, c.Get("x"))
	assert.False(t, c.Contains("x"))
	assert.Equal(t, "a", c.Representative("d"))
	assert.Equal(t, "x", c.Representative("x"))
}

func TestCollection_SingletonsNotMaterialised(t *testing.T) {
	c := New[int]()
	c.SetClass(7)
	c.SetClass(7, 7)
	c.SetClass()
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Contains(7))
}

func TestCollection_EquivalenceLaws(t *testing.T) {
	rng := testutil.NewRNG(7)
	c := New[int]()
	for i := 0; i < 60; i++ {
		c.Set(rng.Intn(40), rng.Intn(40))
	}

	for a := 0; a < 40; a++ {
		assert.True(t, c.AreEqual(a, a))
		for b := 0; b < 40; b++ {
			assert.Equal(t, c.AreEqual(a, b), c.AreEqual(b, a))
			if !c.AreEqual(a, b) {
				continue
			}
			for x := 0; x < 40; x++ {
				if c.AreEqual(b, x) {
					assert.True(t, c.AreEqual(a, x), "%d~%d~%d", a, b, x)
				}
			}
		}
	}
}

func TestCollection_MergeCommutes(t *testing.T) {
	c1 := NewOrdered[string]()
	c1.Set("a", "b")
	c1.Set("b", "c")

	c2 := NewOrdered[string]()
	c2.Set("b", "c")
	c2.Set("a", "b")

	assert.Equal(t, c1.Classes(), c2.Classes())
}

func TestCollection_FreeListReuse(t *testing.T) {
	c := New[int]()
	c.Set(1, 2)
	c.Set(3, 4)
	c.Set(1, 3)
	require.Len(t, c.free, 1)

	c.Set(8, 9)
	assert.Empty(t, c.free)
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.AreEqual(2, 4))
	assert.False(t, c.AreEqual(2, 9))
}

func TestCollection_AddInconsistent(t *testing.T) {
	c := NewOrdered[string]()
	require.NoError(t, c.AddClass("a", "b"))
	require.NoError(t, c.AddClass("c", "d"))
	require.NoError(t, c.Add("b", "e"))

	err := c.Add("a", "d")
	var inconsistent *ErrInconsistentClass
	require.True(t, errors.As(err, &inconsistent))
	assert.Equal(t, "a", inconsistent.Item)
	assert.Equal(t, "d", inconsistent.Conflict)

	assert.False(t, c.AreEqual("a", "d"), "failed Add must not mutate")

	// Set always reconciles.
	c.Set("a", "d")
	assert.True(t, c.AreEqual("e", "c"))
}

func TestCollection_Pairs(t *testing.T) {
	c := NewOrdered[string]()
	c.SetClass("c", "a", "b")
	assert.Equal(t, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}}, c.Pairs())
}

func TestCollection_Clone(t *testing.T) {
	c := NewOrdered[string]()
	c.Set("a", "b")
	clone := c.Clone()
	clone.Set("b", "c")

	assert.False(t, c.AreEqual("a", "c"))
	assert.True(t, clone.AreEqual("a", "c"))
}

func TestCollection_JSONRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(99)
	c := NewOrdered[string]()
	for i := 0; i < 50; i++ {
		c.Set(fmt.Sprintf("tex%02d", rng.Intn(30)), fmt.Sprintf("tex%02d", rng.Intn(30)))
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	back := NewOrdered[string]()
	require.NoError(t, json.Unmarshal(data, back))
	assert.Equal(t, c.Classes(), back.Classes())

	for a := 0; a < 30; a++ {
		for b := 0; b < 30; b++ {
			x, y := fmt.Sprintf("tex%02d", a), fmt.Sprintf("tex%02d", b)
			assert.Equal(t, c.AreEqual(x, y), back.AreEqual(x, y))
		}
	}
}

func TestCollection_UnmarshalRejectsInconsistent(t *testing.T) {
	c := NewOrdered[string]()
	c.Set("keep", "me")

	err := json.Unmarshal([]byte(`[["a","b"],["c","d"],["a","c"]]`), c)
	var inconsistent *ErrInconsistentClass
	assert.ErrorAs(t, err, &inconsistent)
	assert.True(t, c.AreEqual("keep", "me"))
}

func TestCollection_ConcurrentSet(t *testing.T) {
	c := New[int]()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.Set(i, i+1)
				_ = c.AreEqual(w, i)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 1, c.Len())
	assert.True(t, c.AreEqual(0, 100))
}
