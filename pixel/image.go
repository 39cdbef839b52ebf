package pixel

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Image is a decoded, non-premultiplied RGBA8 pixel buffer in row-major order.
type Image struct {
	Width  int
	Height int
	// Pix holds 4 bytes per pixel (R, G, B, A).
	Pix []byte
}

// New allocates a zeroed image.
func New(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]byte, 4*width*height),
	}
}

// Offset returns the index of the pixel's red byte in Pix.
func (img *Image) Offset(x, y int) int {
	return 4 * (y*img.Width + x)
}

// At returns the channels of the pixel at (x, y).
func (img *Image) At(x, y int) (r, g, b, a uint8) {
	i := img.Offset(x, y)
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]
}

// Set stores the channels of the pixel at (x, y).
func (img *Image) Set(x, y int, r, g, b, a uint8) {
	i := img.Offset(x, y)
	img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, a
}

// Validate reports whether the buffer size matches the dimensions.
func (img *Image) Validate() error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", img.Width, img.Height)
	}
	if len(img.Pix) != 4*img.Width*img.Height {
		return fmt.Errorf("pixel buffer has %d bytes, want %d", len(img.Pix), 4*img.Width*img.Height)
	}
	return nil
}

// FromImage converts any image.Image into an RGBA8 buffer.
func FromImage(src image.Image) *Image {
	nrgba := imaging.Clone(src)
	b := nrgba.Bounds()
	img := New(b.Dx(), b.Dy())
	for y := 0; y < img.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+4*img.Width]
		copy(img.Pix[y*4*img.Width:], row)
	}
	return img
}

// ToNRGBA wraps the buffer as an *image.NRGBA without copying.
func (img *Image) ToNRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    img.Pix,
		Stride: 4 * img.Width,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}
