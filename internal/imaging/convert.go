package imaging

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/vovakirdan/envview/internal/core"
)

// Converter resizes a frame by Scale and reorders its channels into Format.
type Converter struct {
	Scale  float64
	Format PixelFormat
	Filter Filter
}

// Validate checks the converter settings.
func (c Converter) Validate() error {
	if c.Scale <= 0 || math.IsNaN(c.Scale) || math.IsInf(c.Scale, 0) {
		return fmt.Errorf("imaging: scale must be positive, got %v", c.Scale)
	}
	if c.Format < FormatRGB || c.Format > FormatRGBA {
		return fmt.Errorf("%w pixel format %d", ErrUnsupported, int(c.Format))
	}
	if _, err := c.Filter.interpolator(); err != nil {
		return err
	}
	return nil
}

// OutputSize returns the size Convert produces for a width x height frame.
func (c Converter) OutputSize(width, height int) (int, int) {
	return scaleDim(width, c.Scale), scaleDim(height, c.Scale)
}

func scaleDim(n int, s float64) int {
	if n <= 0 {
		return 0
	}
	return max(1, int(math.Round(float64(n)*s)))
}

// Convert returns a new image of (H*s) x (W*s) pixels in c.Format.
// The source frame is only read.
func (c Converter) Convert(src *core.Frame) (*Image, error) {
	if src == nil {
		return nil, fmt.Errorf("imaging: nil frame")
	}
	if len(src.Pix) != src.Width*src.Height*core.Channels {
		return nil, fmt.Errorf("imaging: frame buffer has %d bytes, expected %d",
			len(src.Pix), src.Width*src.Height*core.Channels)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	dw, dh := c.OutputSize(src.Width, src.Height)
	out := &Image{
		Width:  dw,
		Height: dh,
		Format: c.Format,
		Pix:    make([]uint8, dw*dh*c.Format.Channels()),
	}
	if dw == 0 || dh == 0 {
		return out, nil
	}

	if dw == src.Width && dh == src.Height {
		pack(out, src.Pix, core.Channels)
		return out, nil
	}

	interp, _ := c.Filter.interpolator()
	scaled := image.NewRGBA(image.Rect(0, 0, dw, dh))
	interp.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)
	pack(out, scaled.Pix, 4)
	return out, nil
}

// pack copies RGB(A) pixels with srcChannels bytes each into dst's layout.
func pack(dst *Image, src []uint8, srcChannels int) {
	dc := dst.Format.Channels()
	n := dst.Width * dst.Height
	for i := 0; i < n; i++ {
		s := src[i*srcChannels : i*srcChannels+3]
		d := dst.Pix[i*dc : i*dc+dc]
		switch dst.Format {
		case FormatBGR:
			d[0], d[1], d[2] = s[2], s[1], s[0]
		case FormatRGBA:
			d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 0xff
		default:
			d[0], d[1], d[2] = s[0], s[1], s[2]
		}
	}
}
