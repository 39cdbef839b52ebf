package fingerprint

import (
	"fmt"
	"math/bits"
)

// AspectRatio is width:height in lowest terms.
type AspectRatio struct {
	W int `json:"w"`
	H int `json:"h"`
}

// RatioOf reduces width:height by their greatest common divisor.
func RatioOf(width, height int) AspectRatio {
	if width <= 0 || height <= 0 {
		return AspectRatio{}
	}
	g := gcd(width, height)
	return AspectRatio{W: width / g, H: height / g}
}

// IsZero reports whether the ratio is undefined.
func (r AspectRatio) IsZero() bool { return r.W == 0 || r.H == 0 }

func (r AspectRatio) String() string { return fmt.Sprintf("%d:%d", r.W, r.H) }

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
