package index

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/texdedup/blobstore"
	"github.com/hupe1980/texdedup/fingerprint"
	"github.com/hupe1980/texdedup/internal/checksum"
)

const (
	sameRatioMagic = "TXSR"
	copyMagic      = "TXCP"
	formatVersion  = 1
	copyVersion    = 2

	// Bounds applied to decoded headers before anything is allocated.
	maxSnapshotPass  = 8
	maxSnapshotRatio = 1 << 15
)

// ErrBadSnapshot is returned when a snapshot cannot be decoded.
var ErrBadSnapshot = errors.New("index: bad snapshot")

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func writeUint32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeString(w io.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func checkHeader(kind fingerprint.Kind, ratio fingerprint.AspectRatio, pass int) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %s", ErrBadSnapshot, kind)
	}
	if pass < 1 || pass > maxSnapshotPass {
		return fmt.Errorf("%w: pass %d", ErrBadSnapshot, pass)
	}
	if !fingerprint.IsPowerOfTwo(ratio.W) || !fingerprint.IsPowerOfTwo(ratio.H) ||
		min(ratio.W, ratio.H) != 1 || max(ratio.W, ratio.H) > maxSnapshotRatio {
		return fmt.Errorf("%w: ratio %s", ErrBadSnapshot, ratio)
	}
	return nil
}

// readBytes reads n bytes, growing the buffer only as data arrives.
func readBytes(r io.Reader, n uint32) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil {
		return nil, err
	}
	if len(data) != int(n) {
		return nil, io.ErrUnexpectedEOF
	}
	return data, nil
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	if n > 1<<20 {
		return "", fmt.Errorf("%w: string of %d bytes", ErrBadSnapshot, n)
	}
	buf, err := readBytes(r, n)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteTo writes the candidates, their fingerprints and the non-empty
// buckets in a little-endian binary layout.
func (s *SameRatio) WriteTo(w io.Writer) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cw := &countingWriter{w: w}
	ratio := s.hasher.Ratio()
	header := []uint32{
		uint32(s.hasher.Kind()),
		uint32(ratio.W),
		uint32(ratio.H),
		uint32(s.pass),
		uint32(len(s.candidates)),
	}
	if _, err := io.WriteString(cw, sameRatioMagic); err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, binary.LittleEndian, uint8(formatVersion)); err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, binary.LittleEndian, header); err != nil {
		return cw.n, err
	}

	for i, c := range s.candidates {
		if err := writeString(cw, c.ID); err != nil {
			return cw.n, err
		}
		if err := binary.Write(cw, binary.LittleEndian, []uint32{uint32(c.Width), uint32(c.Height)}); err != nil {
			return cw.n, err
		}
		if _, err := cw.Write(s.fingerprints[i]); err != nil {
			return cw.n, err
		}
	}

	nonEmpty := 0
	for _, b := range s.buckets {
		if b != nil {
			nonEmpty++
		}
	}
	if err := writeUint32(cw, uint32(nonEmpty)); err != nil {
		return cw.n, err
	}
	for slot, b := range s.buckets {
		if b == nil {
			continue
		}
		data, err := b.ToBytes()
		if err != nil {
			return cw.n, err
		}
		if err := writeUint32(cw, uint32(slot)); err != nil {
			return cw.n, err
		}
		if err := writeUint32(cw, uint32(len(data))); err != nil {
			return cw.n, err
		}
		if _, err := cw.Write(data); err != nil {
			return cw.n, err
		}
	}
	return cw.n, nil
}

// ReadFrom replaces the index content with a stream written by WriteTo. The
// stream must have been written for the same kind, ratio and pass.
func (s *SameRatio) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	kind, ratio, pass, n, err := readSameRatioHeader(cr)
	if err != nil {
		return cr.n, err
	}
	if err := checkHeader(kind, ratio, pass); err != nil {
		return cr.n, err
	}
	if kind != s.hasher.Kind() || ratio != s.hasher.Ratio() || pass != s.pass {
		return cr.n, fmt.Errorf("%w: snapshot is %s %s pass %d, index is %s %s pass %d",
			ErrBadSnapshot, kind, ratio, pass, s.hasher.Kind(), s.hasher.Ratio(), s.pass)
	}
	return cr.n, s.readBody(cr, n)
}

func readSameRatioHeader(r io.Reader) (fingerprint.Kind, fingerprint.AspectRatio, int, int, error) {
	magic := make([]byte, len(sameRatioMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return 0, fingerprint.AspectRatio{}, 0, 0, err
	}
	if string(magic) != sameRatioMagic {
		return 0, fingerprint.AspectRatio{}, 0, 0, fmt.Errorf("%w: magic %q", ErrBadSnapshot, magic)
	}
	var version uint8
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return 0, fingerprint.AspectRatio{}, 0, 0, err
	}
	if version != formatVersion {
		return 0, fingerprint.AspectRatio{}, 0, 0, fmt.Errorf("%w: version %d", ErrBadSnapshot, version)
	}
	header := make([]uint32, 5)
	if err := binary.Read(r, binary.LittleEndian, header); err != nil {
		return 0, fingerprint.AspectRatio{}, 0, 0, err
	}
	ratio := fingerprint.AspectRatio{W: int(header[1]), H: int(header[2])}
	return fingerprint.Kind(header[0]), ratio, int(header[3]), int(header[4]), nil
}

func (s *SameRatio) readBody(r io.Reader, n int) error {
	byteCount := s.hasher.ByteCount()
	var candidates []Candidate
	var fingerprints [][]byte
	for i := 0; i < n; i++ {
		id, err := readString(r)
		if err != nil {
			return err
		}
		dims := make([]uint32, 2)
		if err := binary.Read(r, binary.LittleEndian, dims); err != nil {
			return err
		}
		fp, err := readBytes(r, uint32(byteCount))
		if err != nil {
			return err
		}
		candidates = append(candidates, Candidate{ID: id, Width: int(dims[0]), Height: int(dims[1])})
		fingerprints = append(fingerprints, fp)
	}

	nonEmpty, err := readUint32(r)
	if err != nil {
		return err
	}
	// Every fingerprint byte fills exactly one bucket.
	if int64(nonEmpty) > int64(n)*int64(byteCount) {
		return fmt.Errorf("%w: %d buckets for %d candidates", ErrBadSnapshot, nonEmpty, n)
	}
	var buckets []*roaring.Bitmap
	if nonEmpty > 0 {
		buckets = make([]*roaring.Bitmap, byteCount*256)
	}
	for i := uint32(0); i < nonEmpty; i++ {
		slot, err := readUint32(r)
		if err != nil {
			return err
		}
		if int(slot) >= len(buckets) {
			return fmt.Errorf("%w: bucket %d out of range", ErrBadSnapshot, slot)
		}
		size, err := readUint32(r)
		if err != nil {
			return err
		}
		data, err := readBytes(r, size)
		if err != nil {
			return err
		}
		b := roaring.New()
		if err := b.UnmarshalBinary(data); err != nil {
			return fmt.Errorf("%w: bucket %d: %v", ErrBadSnapshot, slot, err)
		}
		buckets[slot] = b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates, s.fingerprints, s.buckets = candidates, fingerprints, buckets
	return nil
}

// SaveSnapshot writes every SameRatio index of c to store under name as one
// lz4 frame.
func SaveSnapshot(ctx context.Context, store blobstore.BlobStore, name string, c *Copy) error {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)

	bw := bufio.NewWriter(zw)
	cw := checksum.NewWriter(bw)
	if err := c.writeTo(cw); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := writeUint32(bw, cw.Sum32()); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return store.Put(ctx, name, buf.Bytes())
}

func (c *Copy) writeTo(w io.Writer) error {
	ratios := c.Ratios()

	if _, err := io.WriteString(w, copyMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(copyVersion)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, []uint32{uint32(c.kind), uint32(c.pass), uint32(len(ratios))}); err != nil {
		return err
	}
	for _, r := range ratios {
		if _, err := c.lookup(r).WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// LoadSnapshot reads a Copy index written by SaveSnapshot. The stream is
// followed by a CRC32C of its content; a mismatch yields ErrBadSnapshot.
func LoadSnapshot(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) (*Copy, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(lz4.NewReader(bytes.NewReader(data)))
	r := checksum.NewReader(br)

	magic := make([]byte, len(copyMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if string(magic) != copyMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadSnapshot, magic)
	}
	var version uint8
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if version != copyVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadSnapshot, version)
	}
	header := make([]uint32, 3)
	if err := binary.Read(r, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}

	if err := checkHeader(fingerprint.Kind(header[0]), fingerprint.AspectRatio{W: 1, H: 1}, int(header[1])); err != nil {
		return nil, err
	}

	c := NewCopy(fingerprint.Kind(header[0]), int(header[1]), opts...)
	for i := uint32(0); i < header[2]; i++ {
		kind, ratio, pass, n, err := readSameRatioHeader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
		}
		if err := checkHeader(kind, ratio, pass); err != nil {
			return nil, err
		}
		if kind != c.kind || pass != c.pass {
			return nil, fmt.Errorf("%w: ratio %s has kind %s pass %d", ErrBadSnapshot, ratio, kind, pass)
		}
		idx := c.getOrCreate(ratio)
		if err := idx.readBody(r, n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
		}
		for ord, cand := range idx.candidates {
			c.byID[cand.ID] = location{index: idx, ord: uint32(ord)}
		}
	}

	want, err := readUint32(br)
	if err != nil {
		return nil, fmt.Errorf("%w: checksum: %v", ErrBadSnapshot, err)
	}
	if got := r.Sum32(); got != want {
		return nil, fmt.Errorf("%w: checksum %08x, want %08x", ErrBadSnapshot, got, want)
	}
	return c, nil
}
