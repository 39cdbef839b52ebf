package fingerprint

import (
	"math"

	"github.com/hupe1980/texdedup/pixel"
)

// Hasher computes fingerprints for images of one aspect ratio.
type Hasher interface {
	// Kind returns the encoding strategy.
	Kind() Kind
	// Ratio returns the only aspect ratio the hasher accepts.
	Ratio() AspectRatio
	// ByteCount returns the fixed fingerprint length.
	ByteCount() int
	// TryGetBytes returns the fingerprint, or false if the image has a
	// different ratio, non-power-of-two dimensions, or fewer pixels than the
	// sampling grid.
	TryGetBytes(img *pixel.Image) ([]byte, bool)
}

type hasher struct {
	kind  Kind
	ratio AspectRatio
	gridW int
	gridH int
}

// New returns a Hasher for kind and ratio at refinement pass pass (1-based).
func New(kind Kind, ratio AspectRatio, pass int) Hasher {
	if pass < 1 {
		pass = 1
	}
	budget := kind.MinPixels() << (2 * (pass - 1))

	scale := 1
	for !ratio.IsZero() && ratio.W*scale*ratio.H*scale < budget {
		scale *= 2
	}

	return &hasher{
		kind:  kind,
		ratio: ratio,
		gridW: ratio.W * scale,
		gridH: ratio.H * scale,
	}
}

// Compute is a shortcut for New(kind, RatioOf(img), pass).TryGetBytes(img).
func Compute(kind Kind, img *pixel.Image, pass int) ([]byte, bool) {
	return New(kind, RatioOf(img.Width, img.Height), pass).TryGetBytes(img)
}

func (h *hasher) Kind() Kind { return h.kind }

func (h *hasher) Ratio() AspectRatio { return h.ratio }

func (h *hasher) ByteCount() int { return h.gridW * h.gridH * h.kind.BytesPerCell() }

// Grid returns the sampling grid dimensions.
func (h *hasher) Grid() (int, int) { return h.gridW, h.gridH }

func (h *hasher) TryGetBytes(img *pixel.Image) ([]byte, bool) {
	if img == nil || img.Validate() != nil {
		return nil, false
	}
	if !IsPowerOfTwo(img.Width) || !IsPowerOfTwo(img.Height) {
		return nil, false
	}
	if RatioOf(img.Width, img.Height) != h.ratio {
		return nil, false
	}
	if img.Width < h.gridW || img.Height < h.gridH {
		return nil, false
	}

	cells := downsample(img, h.gridW, h.gridH)
	out := make([]byte, 0, h.ByteCount())

	switch h.kind {
	case KindWeightedRGBA:
		for _, c := range cells {
			out = append(out,
				weigh(c[0], 0.25),
				weigh(c[1], 0.5),
				weigh(c[2], 0.25),
				weigh(c[3], 0.25))
		}
	case KindAlpha:
		for _, c := range cells {
			out = append(out, c[3]>>2)
		}
	case KindNormal:
		for _, c := range cells {
			out = append(out, c[0]>>1, c[1]>>1)
		}
	case KindGloss:
		for _, c := range cells {
			out = append(out, c[2]>>1)
		}
	case KindBrightness:
		out = append(out, normalizedBrightness(cells)...)
	default:
		return nil, false
	}
	return out, true
}

// downsample block-averages img into a gridW×gridH grid. Both image
// dimensions are powers of two and at least the grid size, so blocks tile
// the image exactly.
func downsample(img *pixel.Image, gridW, gridH int) [][4]uint8 {
	bw := img.Width / gridW
	bh := img.Height / gridH
	n := uint32(bw * bh)

	cells := make([][4]uint8, gridW*gridH)
	for gy := 0; gy < gridH; gy++ {
		for gx := 0; gx < gridW; gx++ {
			var sum [4]uint32
			for y := gy * bh; y < (gy+1)*bh; y++ {
				row := img.Pix[img.Offset(gx*bw, y):img.Offset((gx+1)*bw, y)]
				for i := 0; i < len(row); i += 4 {
					sum[0] += uint32(row[i])
					sum[1] += uint32(row[i+1])
					sum[2] += uint32(row[i+2])
					sum[3] += uint32(row[i+3])
				}
			}
			cells[gy*gridW+gx] = [4]uint8{
				uint8((sum[0] + n/2) / n),
				uint8((sum[1] + n/2) / n),
				uint8((sum[2] + n/2) / n),
				uint8((sum[3] + n/2) / n),
			}
		}
	}
	return cells
}

func weigh(v uint8, w float64) uint8 {
	return uint8(math.Round(float64(v) * w))
}

const (
	brightnessMean   = 128.0
	brightnessStdDev = 32.0
)

// normalizedBrightness converts cells to luma and rescales them to a fixed
// mean and standard deviation.
func normalizedBrightness(cells [][4]uint8) []byte {
	luma := make([]float64, len(cells))
	var mean float64
	for i, c := range cells {
		luma[i] = 0.299*float64(c[0]) + 0.587*float64(c[1]) + 0.114*float64(c[2])
		mean += luma[i]
	}
	mean /= float64(len(luma))

	var variance float64
	for _, l := range luma {
		variance += (l - mean) * (l - mean)
	}
	std := math.Sqrt(variance / float64(len(luma)))

	out := make([]byte, len(luma))
	for i, l := range luma {
		v := brightnessMean
		if std > 1e-9 {
			v += (l - mean) / std * brightnessStdDev
		}
		out[i] = uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	return out
}
