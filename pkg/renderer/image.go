package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Image is a packed 32-bit RGBA pixel buffer. Pixel (x, y) lives at
// Data[x + y*Width] and row 0 is the bottom of the picture.
type Image struct {
	Width  int
	Height int
	Data   []uint32
}

// NewImage allocates a black image
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Data:   make([]uint32, width*height),
	}
}

// Resize reallocates the buffer if the dimensions changed and reports whether they did
func (img *Image) Resize(width, height int) bool {
	if img.Width == width && img.Height == height {
		return false
	}
	img.Width = width
	img.Height = height
	img.Data = make([]uint32, width*height)
	return true
}

// At returns the packed pixel at (x, y)
func (img *Image) At(x, y int) uint32 {
	return img.Data[x+y*img.Width]
}

// Color returns the pixel at (x, y) unpacked to [0,1] channels
func (img *Image) Color(x, y int) core.Vec3 {
	return UnpackColor(img.At(x, y))
}

// RGBA converts the buffer to a top-down image for encoding
func (img *Image) RGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		row := img.Height - 1 - y
		for x := 0; x < img.Width; x++ {
			p := img.Data[x+y*img.Width]
			out.SetRGBA(x, row, color.RGBA{
				R: uint8(p),
				G: uint8(p >> 8),
				B: uint8(p >> 16),
				A: uint8(p >> 24),
			})
		}
	}
	return out
}

// PackColor converts a color with channels in [0,1] to R | G<<8 | B<<16 | A<<24
// with alpha fixed at 0xFF. Channels are truncated, not rounded.
func PackColor(c core.Vec3) uint32 {
	r := uint32(uint8(c.X * 255.0))
	g := uint32(uint8(c.Y * 255.0))
	b := uint32(uint8(c.Z * 255.0))
	return r | g<<8 | b<<16 | 0xFF<<24
}

// UnpackColor is the inverse of PackColor, up to quantization
func UnpackColor(p uint32) core.Vec3 {
	return core.Vec3{
		X: float64(uint8(p)) / 255.0,
		Y: float64(uint8(p>>8)) / 255.0,
		Z: float64(uint8(p>>16)) / 255.0,
	}
}
