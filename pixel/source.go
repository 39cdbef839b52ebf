package pixel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/hupe1980/texdedup/blobstore"
	"github.com/hupe1980/texdedup/internal/resource"
)

// Source loads decoded images by identifier.
type Source interface {
	LoadImage(ctx context.Context, id string) (*Image, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, id string) (*Image, error)

// LoadImage implements Source.
func (f SourceFunc) LoadImage(ctx context.Context, id string) (*Image, error) {
	return f(ctx, id)
}

// DecodeError reports a texture that could not be loaded or decoded.
//
// The original underlying error can be accessed via errors.Unwrap.
type DecodeError struct {
	ID    string
	cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.ID, e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }

// BlobSource decodes PNG, JPEG, GIF, BMP and TIFF textures stored in a
// blobstore. Identifiers are blob names.
type BlobSource struct {
	store blobstore.BlobStore
	rc    *resource.Controller
}

// BlobSourceOption configures a BlobSource.
type BlobSourceOption func(*resource.Config)

// WithMemoryLimit bounds the pixel memory of concurrent decodes. Loads
// block until enough budget is free; a texture that could never fit fails
// with a DecodeError.
func WithMemoryLimit(bytes int64) BlobSourceOption {
	return func(c *resource.Config) { c.MemoryLimitBytes = bytes }
}

// WithIOLimit throttles blob reads to bytesPerSec.
func WithIOLimit(bytesPerSec int64) BlobSourceOption {
	return func(c *resource.Config) { c.IOLimitBytesPerSec = bytesPerSec }
}

// NewBlobSource returns a Source reading from store.
func NewBlobSource(store blobstore.BlobStore, opts ...BlobSourceOption) *BlobSource {
	var cfg resource.Config
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &BlobSource{store: store}
	if cfg != (resource.Config{}) {
		s.rc = resource.NewController(cfg)
	}
	return s
}

func (s *BlobSource) read(ctx context.Context, id string) ([]byte, image.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, image.Config{}, err
	}
	data, err := blobstore.ReadAll(ctx, s.store, id)
	if err != nil {
		return nil, image.Config{}, &DecodeError{ID: id, cause: err}
	}
	if err := s.rc.AcquireIO(ctx, int64(len(data))); err != nil {
		return nil, image.Config{}, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, image.Config{}, &DecodeError{ID: id, cause: err}
	}
	return data, cfg, nil
}

// LoadConfig returns the dimensions of id without decoding its pixels.
func (s *BlobSource) LoadConfig(ctx context.Context, id string) (image.Config, error) {
	_, cfg, err := s.read(ctx, id)
	return cfg, err
}

// LoadImage implements Source.
func (s *BlobSource) LoadImage(ctx context.Context, id string) (*Image, error) {
	data, cfg, err := s.read(ctx, id)
	if err != nil {
		return nil, err
	}
	// Decoded NRGBA plus the copy FromImage makes.
	need := int64(cfg.Width) * int64(cfg.Height) * 8
	if err := s.rc.AcquireMemory(ctx, need); err != nil {
		if errors.Is(err, resource.ErrMemoryLimitExceeded) {
			return nil, &DecodeError{ID: id, cause: err}
		}
		return nil, err
	}
	defer s.rc.ReleaseMemory(need)

	decoded, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{ID: id, cause: err}
	}
	return FromImage(decoded), nil
}

// IsSupported reports whether BlobSource can decode the named file.
func IsSupported(name string) bool {
	_, err := imaging.FormatFromFilename(name)
	return err == nil
}

// IsDecodeError reports whether err came from a failed load or decode.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
