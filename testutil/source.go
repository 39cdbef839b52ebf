package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/texdedup/pixel"
)

// ErrBroken is returned by MemorySource for ids registered with PutBroken.
var ErrBroken = errors.New("testutil: broken texture")

// MemorySource is a pixel.Source over in-memory images.
type MemorySource struct {
	mu     sync.RWMutex
	images map[string]*pixel.Image
	broken map[string]bool
	loads  atomic.Int64
}

// NewMemorySource returns an empty source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		images: make(map[string]*pixel.Image),
		broken: make(map[string]bool),
	}
}

// Put registers an image under id.
func (s *MemorySource) Put(id string, img *pixel.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[id] = img
}

// PutBroken registers an id whose load always fails.
func (s *MemorySource) PutBroken(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken[id] = true
}

// IDs returns all registered ids, sorted, including broken ones.
func (s *MemorySource) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.images)+len(s.broken))
	for id := range s.images {
		ids = append(ids, id)
	}
	for id := range s.broken {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Loads returns the number of LoadImage calls so far.
func (s *MemorySource) Loads() int64 { return s.loads.Load() }

// LoadImage implements pixel.Source.
func (s *MemorySource) LoadImage(ctx context.Context, id string) (*pixel.Image, error) {
	s.loads.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.broken[id] {
		return nil, fmt.Errorf("load %s: %w", id, ErrBroken)
	}
	img, ok := s.images[id]
	if !ok {
		return nil, fmt.Errorf("load %s: not found", id)
	}
	return img, nil
}
