package checksum

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	// Check value for CRC-32C from RFC 3720.
	assert.Equal(t, uint32(0xE3069283), Sum([]byte("123456789")))
}

func TestWriterReader(t *testing.T) {
	data := bytes.Repeat([]byte("texture"), 1000)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, err := w.Write(data[:100])
	require.NoError(t, err)
	_, err = w.Write(data[100:])
	require.NoError(t, err)
	assert.Equal(t, Sum(data), w.Sum32())

	r := NewReader(&buf)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, w.Sum32(), r.Sum32())
}
