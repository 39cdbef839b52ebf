package pixel

import (
	"context"

	"github.com/hupe1980/texdedup/internal/cache"
)

// CachedSource keeps recently loaded images in memory so that later
// refinement passes do not decode the same texture again. Cached images
// are shared and must not be modified.
type CachedSource struct {
	src   Source
	cache *cache.LRU[string, *Image]
}

// NewCachedSource wraps src with a cache of at most capacity bytes of
// pixel data.
func NewCachedSource(src Source, capacity int64) *CachedSource {
	return &CachedSource{
		src: src,
		cache: cache.NewLRU[string](capacity, func(img *Image) int64 {
			return int64(len(img.Pix))
		}),
	}
}

// LoadImage implements Source. Failed loads are not cached.
func (s *CachedSource) LoadImage(ctx context.Context, id string) (*Image, error) {
	if img, ok := s.cache.Get(id); ok {
		return img, nil
	}
	img, err := s.src.LoadImage(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(id, img)
	return img, nil
}

// Stats returns the cache hit and miss counts.
func (s *CachedSource) Stats() (hits, misses int64) {
	return s.cache.Stats()
}
