package fingerprint

import (
	"fmt"
	"strings"
)

// Kind selects how grid cells are encoded into fingerprint bytes.
type Kind int

const (
	// KindWeightedRGBA biases comparison toward luminance.
	KindWeightedRGBA Kind = iota
	// KindAlpha compares transparency masks.
	KindAlpha
	// KindNormal compares tangent-space normal directions.
	KindNormal
	// KindGloss uses the blue channel as a gloss-map proxy.
	KindGloss
	// KindBrightness compares lighting-normalized greyscale.
	KindBrightness
)

var kindNames = [...]string{"weighted-rgba", "alpha", "normal", "gloss", "brightness"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k >= 0 && int(k) < len(kindNames) }

// ParseKind parses the String form of a Kind.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown fingerprint kind %q", s)
}

// BytesPerCell returns how many fingerprint bytes one grid cell produces.
func (k Kind) BytesPerCell() int {
	switch k {
	case KindWeightedRGBA:
		return 4
	case KindNormal:
		return 2
	default:
		return 1
	}
}

// MinPixels returns the pass-1 minimum grid cell count.
func (k Kind) MinPixels() int {
	switch k {
	case KindWeightedRGBA, KindNormal:
		return 256
	default:
		return 512
	}
}

// DefaultSpread returns the per-byte query tolerance that works well for the
// kind's value range.
func (k Kind) DefaultSpread() int {
	switch k {
	case KindAlpha:
		return 2
	case KindNormal, KindGloss:
		return 3
	default:
		return 4
	}
}
