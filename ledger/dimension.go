package ledger

import (
	"fmt"
	"strings"

	"github.com/hupe1980/texdedup/fingerprint"
)

// Dimension names an independently tracked similarity aspect.
type Dimension string

// Dimensions.
const (
	General    Dimension = "general"
	Alpha      Dimension = "alpha"
	Normal     Dimension = "normal"
	Gloss      Dimension = "gloss"
	Brightness Dimension = "brightness"
)

// Dimensions returns all known dimensions.
func Dimensions() []Dimension {
	return []Dimension{General, Alpha, Normal, Gloss, Brightness}
}

// ParseDimension parses a dimension name case-insensitively.
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := kinds[d]; !ok {
		return "", fmt.Errorf("unknown dimension %q", s)
	}
	return d, nil
}

var kinds = map[Dimension]fingerprint.Kind{
	General:    fingerprint.KindWeightedRGBA,
	Alpha:      fingerprint.KindAlpha,
	Normal:     fingerprint.KindNormal,
	Gloss:      fingerprint.KindGloss,
	Brightness: fingerprint.KindBrightness,
}

// Kind returns the fingerprint kind used for the dimension.
func (d Dimension) Kind() (fingerprint.Kind, bool) {
	k, ok := kinds[d]
	return k, ok
}

func (d Dimension) String() string { return string(d) }
