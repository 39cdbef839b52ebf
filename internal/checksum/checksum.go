// Package checksum computes CRC32-Castagnoli checksums over byte streams.
//
// Go's hash/crc32 uses SSE4.2 or the ARM CRC extension for this polynomial
// when available.
package checksum

import (
	"hash"
	"hash/crc32"
	"io"
)

var table = crc32.MakeTable(crc32.Castagnoli)

// Sum returns the CRC32C of data.
func Sum(data []byte) uint32 {
	return crc32.Checksum(data, table)
}

// Writer passes writes through to w and checksums them.
type Writer struct {
	w io.Writer
	h hash.Hash32
}

// NewWriter returns a Writer wrapping w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, h: crc32.New(table)}
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.h.Write(p[:n])
	return n, err
}

// Sum32 returns the checksum of everything written so far.
func (w *Writer) Sum32() uint32 { return w.h.Sum32() }

// Reader checksums everything read from r.
type Reader struct {
	r io.Reader
	h hash.Hash32
}

// NewReader returns a Reader wrapping r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, h: crc32.New(table)}
}

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.h.Write(p[:n])
	return n, err
}

// Sum32 returns the checksum of everything read so far.
func (r *Reader) Sum32() uint32 { return r.h.Sum32() }
