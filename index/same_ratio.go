package index

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/texdedup/fingerprint"
	"github.com/hupe1980/texdedup/pixel"
)

// Candidate is an image inserted into an index.
type Candidate struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// SameRatio is an inverted fingerprint index for a single aspect ratio.
//
// Candidates are numbered in insertion order. Bucket (pos, v) holds the
// ordinals of every candidate whose fingerprint has value v at position pos.
// The index is append-only and safe for concurrent use.
type SameRatio struct {
	hasher fingerprint.Hasher
	pass   int

	mu           sync.RWMutex
	candidates   []Candidate
	fingerprints [][]byte
	// buckets has ByteCount*256 entries once a candidate is present; a nil
	// slot is an empty bucket.
	buckets []*roaring.Bitmap
}

// NewSameRatio returns an empty index for kind and ratio at the given pass.
func NewSameRatio(kind fingerprint.Kind, ratio fingerprint.AspectRatio, pass int) *SameRatio {
	return &SameRatio{
		hasher: fingerprint.New(kind, ratio, pass),
		pass:   pass,
	}
}

// Hasher returns the fingerprint strategy of the index.
func (s *SameRatio) Hasher() fingerprint.Hasher { return s.hasher }

// Len returns the number of candidates.
func (s *SameRatio) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candidates)
}

// Add fingerprints img and inserts it under id. It returns false if no
// fingerprint can be computed for img.
func (s *SameRatio) Add(img *pixel.Image, id string) bool {
	fp, ok := s.hasher.TryGetBytes(img)
	if !ok {
		return false
	}
	s.insert(Candidate{ID: id, Width: img.Width, Height: img.Height}, fp)
	return true
}

func (s *SameRatio) insert(c Candidate, fp []byte) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ord := uint32(len(s.candidates))
	s.candidates = append(s.candidates, c)
	s.fingerprints = append(s.fingerprints, fp)
	if s.buckets == nil {
		s.buckets = make([]*roaring.Bitmap, s.hasher.ByteCount()*256)
	}
	for pos, v := range fp {
		b := s.buckets[pos*256+int(v)]
		if b == nil {
			b = roaring.New()
			s.buckets[pos*256+int(v)] = b
		}
		b.Add(ord)
	}
	return ord
}

// GetSimilar returns every candidate whose fingerprint is within spread of
// img's fingerprint at every byte position, in insertion order. A negative
// spread selects the kind's default. It returns false if no fingerprint can
// be computed for img.
func (s *SameRatio) GetSimilar(img *pixel.Image, spread int) ([]Candidate, bool) {
	fp, ok := s.hasher.TryGetBytes(img)
	if !ok {
		return nil, false
	}
	return s.Query(fp, spread), true
}

// Query is GetSimilar for a precomputed fingerprint. A fingerprint of the
// wrong length matches nothing.
func (s *SameRatio) Query(fp []byte, spread int) []Candidate {
	if len(fp) != s.hasher.ByteCount() {
		return []Candidate{}
	}
	if spread < 0 {
		spread = s.hasher.Kind().DefaultSpread()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.buckets == nil {
		return []Candidate{}
	}

	var result *roaring.Bitmap
	window := make([]*roaring.Bitmap, 0, 2*spread+1)
	for pos, v := range fp {
		lo, hi := max(int(v)-spread, 0), min(int(v)+spread, 255)
		window = window[:0]
		for val := lo; val <= hi; val++ {
			if b := s.buckets[pos*256+val]; b != nil {
				window = append(window, b)
			}
		}
		if len(window) == 0 {
			return []Candidate{}
		}

		var union *roaring.Bitmap
		if len(window) == 1 {
			union = window[0].Clone()
		} else {
			union = roaring.FastOr(window...)
		}
		if result == nil {
			result = union
		} else {
			result.And(union)
		}
		if result.IsEmpty() {
			return []Candidate{}
		}
	}

	out := make([]Candidate, 0, result.GetCardinality())
	it := result.Iterator()
	for it.HasNext() {
		out = append(out, s.candidates[it.Next()])
	}
	return out
}

// fingerprintOf returns the stored fingerprint of the candidate with the
// given ordinal.
func (s *SameRatio) fingerprintOf(ord uint32) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fingerprints[ord]
}
