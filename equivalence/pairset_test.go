package equivalence

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairSet(t *testing.T) {
	p := NewPairSet[string]()
	p.Add("b", "a")
	p.Add("a", "b")
	p.Add("c", "c")
	p.Add("c", "a")

	assert.Equal(t, 2, p.Len())
	assert.True(t, p.Contains("a", "b"))
	assert.True(t, p.Contains("b", "a"))
	assert.False(t, p.Contains("c", "c"))
	assert.Equal(t, [][2]string{{"a", "b"}, {"a", "c"}}, p.Pairs())

	p.Remove("b", "a")
	assert.False(t, p.Contains("a", "b"))
}

func TestPairSet_DeleteFunc(t *testing.T) {
	p := NewPairSet[int]()
	p.Add(1, 2)
	p.Add(3, 4)
	n := p.DeleteFunc(func(a, b int) bool { return a == 1 })
	assert.Equal(t, 1, n)
	assert.Equal(t, [][2]int{{3, 4}}, p.Pairs())
}

func TestPairSet_JSON(t *testing.T) {
	p := NewPairSet[string]()
	p.Add("z", "y")
	p.Add("a", "m")

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `[["a","m"],["y","z"]]`, string(data))

	var back PairSet[string]
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p.Pairs(), back.Pairs())
}
