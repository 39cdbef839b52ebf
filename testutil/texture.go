package testutil

import "github.com/hupe1980/texdedup/pixel"

// Clone returns a deep copy of img.
func Clone(img *pixel.Image) *pixel.Image {
	out := pixel.New(img.Width, img.Height)
	copy(out.Pix, img.Pix)
	return out
}

// Solid returns a single-colour image.
func Solid(width, height int, r, g, b, a uint8) *pixel.Image {
	img := pixel.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, r, g, b, a)
		}
	}
	return img
}

// Downscale box-averages img by an integer factor.
func Downscale(img *pixel.Image, factor int) *pixel.Image {
	out := pixel.New(img.Width/factor, img.Height/factor)
	n := factor * factor
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			var sum [4]int
			for dy := 0; dy < factor; dy++ {
				for dx := 0; dx < factor; dx++ {
					i := img.Offset(x*factor+dx, y*factor+dy)
					for c := range 4 {
						sum[c] += int(img.Pix[i+c])
					}
				}
			}
			o := out.Offset(x, y)
			for c := range 4 {
				out.Pix[o+c] = uint8((sum[c] + n/2) / n)
			}
		}
	}
	return out
}

// Brighten returns a copy of img with delta added to every colour channel.
func Brighten(img *pixel.Image, delta int) *pixel.Image {
	out := Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		for c := range 3 {
			out.Pix[i+c] = clamp(int(out.Pix[i+c]) + delta)
		}
	}
	return out
}

// SetAlpha returns a copy of img with a constant alpha channel.
func SetAlpha(img *pixel.Image, a uint8) *pixel.Image {
	out := Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = a
	}
	return out
}

// QuadrantPattern returns a copy of img where every block×block tile has
// its four (block/2)×(block/2) quadrants shifted by the given offsets, in
// the order top-left, top-right, bottom-left, bottom-right. With zero-sum
// offsets the block averages are unchanged, so fingerprints sampled at
// block resolution stay identical while finer grids see the pattern.
func QuadrantPattern(img *pixel.Image, block int, offsets [4]int) *pixel.Image {
	out := Clone(img)
	half := block / 2
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			q := 0
			if x%block >= half {
				q++
			}
			if y%block >= half {
				q += 2
			}
			i := out.Offset(x, y)
			for c := range 3 {
				out.Pix[i+c] = clamp(int(out.Pix[i+c]) + offsets[q])
			}
		}
	}
	return out
}

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
