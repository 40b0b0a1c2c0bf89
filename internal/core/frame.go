package core

import (
	"image"
	"image/color"
)

// Channels is the number of color channels in a Frame (R, G, B).
const Channels = 3

// RGB is a single 8-bit-per-channel pixel.
type RGB struct {
	R, G, B uint8
}

// Frame is a rendered snapshot of a simulation: Height rows of Width pixels,
// packed row-major as R, G, B bytes.
// Frames handed out by a simulation are treated as immutable by consumers.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFrame allocates a black frame of the given size.
func NewFrame(width, height int) *Frame {
	width = max(width, 0)
	height = max(height, 0)
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*Channels),
	}
}

// Stride returns the number of bytes in one row.
func (f *Frame) Stride() int {
	return f.Width * Channels
}

// Shape returns the frame dimensions as (height, width, channels).
func (f *Frame) Shape() (int, int, int) {
	return f.Height, f.Width, Channels
}

// offset returns the index of pixel (x, y) in Pix, or -1 when out of bounds.
func (f *Frame) offset(x, y int) int {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return -1
	}
	return y*f.Stride() + x*Channels
}

// Set writes a pixel. Out-of-bounds coordinates are silently ignored.
func (f *Frame) Set(x, y int, c RGB) {
	i := f.offset(x, y)
	if i < 0 {
		return
	}
	f.Pix[i] = c.R
	f.Pix[i+1] = c.G
	f.Pix[i+2] = c.B
}

// Get returns the pixel at (x, y). Out-of-bounds reads return black.
func (f *Frame) Get(x, y int) RGB {
	i := f.offset(x, y)
	if i < 0 {
		return RGB{}
	}
	return RGB{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2]}
}

// Fill paints every pixel with c.
func (f *Frame) Fill(c RGB) {
	for i := 0; i+2 < len(f.Pix); i += Channels {
		f.Pix[i] = c.R
		f.Pix[i+1] = c.G
		f.Pix[i+2] = c.B
	}
}

// FillRect paints the part of r that lies inside the frame.
func (f *Frame) FillRect(r Rect, c RGB) {
	x0 := Clamp(r.X, 0, f.Width)
	x1 := Clamp(r.Right(), 0, f.Width)
	y0 := Clamp(r.Y, 0, f.Height)
	y1 := Clamp(r.Bottom(), 0, f.Height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			f.Set(x, y, c)
		}
	}
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	pix := make([]uint8, len(f.Pix))
	copy(pix, f.Pix)
	return &Frame{Width: f.Width, Height: f.Height, Pix: pix}
}

// ColorModel implements image.Image.
func (f *Frame) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// At implements image.Image so frames can be fed to image/draw style scalers.
func (f *Frame) At(x, y int) color.Color {
	p := f.Get(x, y)
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff}
}
