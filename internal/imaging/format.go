// Package imaging converts simulation frames into the pixel layout and size a
// display surface expects. Conversion is pure: it never writes to the source
// frame and keeps no state between calls.
package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"

	"github.com/vovakirdan/envview/internal/core"
)

// ErrUnsupported indicates an unknown pixel format or filter name.
var ErrUnsupported = errors.New("imaging: unsupported")

// PixelFormat is the channel order of a converted image.
type PixelFormat int

const (
	FormatRGB PixelFormat = iota
	FormatBGR
	FormatRGBA
)

// String returns the config name of the format.
func (p PixelFormat) String() string {
	switch p {
	case FormatRGB:
		return "rgb"
	case FormatBGR:
		return "bgr"
	case FormatRGBA:
		return "rgba"
	default:
		return "unknown"
	}
}

// Channels returns bytes per pixel.
func (p PixelFormat) Channels() int {
	if p == FormatRGBA {
		return 4
	}
	return 3
}

// ParsePixelFormat parses "rgb", "bgr" or "rgba" (case-insensitive).
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rgb":
		return FormatRGB, nil
	case "bgr":
		return FormatBGR, nil
	case "rgba":
		return FormatRGBA, nil
	}
	return FormatRGB, fmt.Errorf("%w pixel format %q", ErrUnsupported, s)
}

// Filter names a resampling kernel.
type Filter string

const (
	// FilterNearest replicates pixels. For integer up-scaling this is the
	// same as area interpolation.
	FilterNearest    Filter = "nearest"
	FilterBilinear   Filter = "bilinear"
	FilterCatmullRom Filter = "catmullrom"
)

// ParseFilter validates a filter name. An empty name selects nearest.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FilterNearest, nil
	}
	if _, err := f.interpolator(); err != nil {
		return FilterNearest, err
	}
	return f, nil
}

func (f Filter) interpolator() (draw.Interpolator, error) {
	switch f {
	case FilterNearest, "":
		return draw.NearestNeighbor, nil
	case FilterBilinear:
		return draw.ApproxBiLinear, nil
	case FilterCatmullRom:
		return draw.CatmullRom, nil
	}
	return nil, fmt.Errorf("%w filter %q", ErrUnsupported, string(f))
}

// Image is a converted frame ready for presentation.
type Image struct {
	Width  int
	Height int
	Format PixelFormat
	Pix    []uint8
}

// Stride returns the number of bytes in one row.
func (img *Image) Stride() int {
	return img.Width * img.Format.Channels()
}

// RGBAt returns the pixel at (x, y) regardless of channel order.
// Out-of-bounds reads return black.
func (img *Image) RGBAt(x, y int) core.RGB {
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return core.RGB{}
	}
	i := y*img.Stride() + x*img.Format.Channels()
	p := img.Pix[i : i+3]
	if img.Format == FormatBGR {
		return core.RGB{R: p[2], G: p[1], B: p[0]}
	}
	return core.RGB{R: p[0], G: p[1], B: p[2]}
}

// ToRGBA copies the image into a standard library RGBA image.
func (img *Image) ToRGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			p := img.RGBAt(x, y)
			out.SetRGBA(x, y, color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff})
		}
	}
	return out
}
