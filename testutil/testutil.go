package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/texdedup/pixel"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// TextureCells is the number of random colour cells per axis in a Texture.
const TextureCells = 8

// Texture returns a width×height image made of TextureCells×TextureCells
// blocks of random opaque colour. Channel values stay within [70, 185] so
// that tests can add offsets without clamping.
func (r *RNG) Texture(width, height int) *pixel.Image {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cells [TextureCells][TextureCells][3]uint8
	for cy := range cells {
		for cx := range cells[cy] {
			for c := range 3 {
				cells[cy][cx][c] = uint8(70 + r.rand.Intn(116))
			}
		}
	}

	img := pixel.New(width, height)
	for y := 0; y < height; y++ {
		cy := y * TextureCells / height
		for x := 0; x < width; x++ {
			cx := x * TextureCells / width
			c := cells[cy][cx]
			img.Set(x, y, c[0], c[1], c[2], 255)
		}
	}
	return img
}

// Jitter returns a copy of img with every colour channel shifted by a random
// amount in [-amp, amp]. Alpha is left untouched.
func (r *RNG) Jitter(img *pixel.Image, amp int) *pixel.Image {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		for c := range 3 {
			out.Pix[i+c] = clamp(int(out.Pix[i+c]) + r.rand.Intn(2*amp+1) - amp)
		}
	}
	return out
}
