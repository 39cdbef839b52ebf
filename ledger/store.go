package ledger

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/hupe1980/texdedup/blobstore"
	"github.com/hupe1980/texdedup/codec"
)

const (
	docCertain         = "certain"
	docUncertain       = "uncertain"
	docRejected        = "rejected"
	docRepresentatives = "representatives"
	docManifest        = "manifest"

	jsonExt = ".json"
	zstdExt = ".json.zst"
)

// Manifest summarises the last save of a dimension.
type Manifest struct {
	Dimension  Dimension `json:"dimension"`
	Codec      string    `json:"codec"`
	Compressed bool      `json:"compressed"`
	RunID      string    `json:"run_id,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
	Certain    int       `json:"certain_classes"`
	Uncertain  int       `json:"uncertain_classes"`
	Rejected   int       `json:"rejected_pairs"`
}

// Option configures a Store.
type Option func(*Store)

// WithCodec sets the JSON codec. The default is codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithCompression writes documents zstd-compressed at the given zstd level
// (1-22). A level of 0 or less disables compression.
func WithCompression(level int) Option {
	return func(s *Store) {
		if level <= 0 {
			s.compressor = nil
			return
		}
		s.compressor = newCompressor(level)
	}
}

// Store reads and writes ledgers in a blobstore.
type Store struct {
	blobs      blobstore.BlobStore
	codec      codec.Codec
	compressor *compressor
	now        func() time.Time
}

// NewStore returns a Store over blobs.
func NewStore(blobs blobstore.BlobStore, opts ...Option) *Store {
	s := &Store{
		blobs: blobs,
		codec: codec.Default,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the ledger of dim. Missing documents load as empty.
func (s *Store) Load(ctx context.Context, dim Dimension) (*Ledger, error) {
	l := New()
	if err := s.readDoc(ctx, dim, docCertain, l.Certain); err != nil {
		return nil, err
	}
	if err := s.readDoc(ctx, dim, docUncertain, l.Uncertain); err != nil {
		return nil, err
	}
	if err := s.readDoc(ctx, dim, docRejected, l.Rejected); err != nil {
		return nil, err
	}
	return l, nil
}

// Save writes all three documents of l and then the manifest.
func (s *Store) Save(ctx context.Context, dim Dimension, l *Ledger, runID string) error {
	if err := s.writeDoc(ctx, dim, docCertain, l.Certain); err != nil {
		return err
	}
	if err := s.writeDoc(ctx, dim, docUncertain, l.Uncertain); err != nil {
		return err
	}
	if err := s.writeDoc(ctx, dim, docRejected, l.Rejected); err != nil {
		return err
	}
	m := Manifest{
		Dimension:  dim,
		Codec:      s.codec.Name(),
		Compressed: s.compressor != nil,
		RunID:      runID,
		UpdatedAt:  s.now().UTC(),
		Certain:    l.Certain.Len(),
		Uncertain:  l.Uncertain.Len(),
		Rejected:   l.Rejected.Len(),
	}
	return s.writeDoc(ctx, dim, docManifest, &m)
}

// LoadManifest reads the manifest of dim, or returns blobstore.ErrNotFound.
func (s *Store) LoadManifest(ctx context.Context, dim Dimension) (*Manifest, error) {
	var m Manifest
	found, err := s.readDocFound(ctx, dim, docManifest, &m)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("ledger %s: manifest: %w", dim, blobstore.ErrNotFound)
	}
	return &m, nil
}

// LoadRepresentatives reads the representative map of dim. A missing map
// loads as empty.
func (s *Store) LoadRepresentatives(ctx context.Context, dim Dimension) (map[string]string, error) {
	reps := map[string]string{}
	if err := s.readDoc(ctx, dim, docRepresentatives, &reps); err != nil {
		return nil, err
	}
	return reps, nil
}

// SaveRepresentatives replaces the representative map of dim.
func (s *Store) SaveRepresentatives(ctx context.Context, dim Dimension, reps map[string]string) error {
	return s.writeDoc(ctx, dim, docRepresentatives, reps)
}

func (s *Store) readDoc(ctx context.Context, dim Dimension, doc string, v any) error {
	_, err := s.readDocFound(ctx, dim, doc, v)
	return err
}

// readDocFound prefers the compressed form when both exist.
func (s *Store) readDocFound(ctx context.Context, dim Dimension, doc string, v any) (bool, error) {
	base := path.Join(string(dim), doc)

	data, err := blobstore.ReadAll(ctx, s.blobs, base+zstdExt)
	if err == nil {
		data, err = decompress(data)
		if err != nil {
			return false, &ErrCorrupt{Dimension: dim, Document: doc, Err: err}
		}
	} else if errors.Is(err, blobstore.ErrNotFound) {
		data, err = blobstore.ReadAll(ctx, s.blobs, base+jsonExt)
		if errors.Is(err, blobstore.ErrNotFound) {
			return false, nil
		}
	}
	if err != nil {
		return false, fmt.Errorf("ledger %s: read %s: %w", dim, doc, err)
	}

	if err := s.codec.Unmarshal(data, v); err != nil {
		return false, &ErrCorrupt{Dimension: dim, Document: doc, Err: err}
	}
	return true, nil
}

func (s *Store) writeDoc(ctx context.Context, dim Dimension, doc string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("ledger %s: encode %s: %w", dim, doc, err)
	}

	base := path.Join(string(dim), doc)
	name, stale := base+jsonExt, base+zstdExt
	if s.compressor != nil {
		if data, err = s.compressor.compress(data); err != nil {
			return fmt.Errorf("ledger %s: compress %s: %w", dim, doc, err)
		}
		name, stale = stale, name
	}

	if err := s.blobs.Put(ctx, name, data); err != nil {
		return fmt.Errorf("ledger %s: write %s: %w", dim, doc, err)
	}
	if err := s.blobs.Delete(ctx, stale); err != nil {
		return fmt.Errorf("ledger %s: remove stale %s: %w", dim, stale, err)
	}
	return nil
}
