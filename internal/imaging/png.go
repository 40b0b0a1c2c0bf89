package imaging

import (
	"fmt"
	"image/png"
	"io"
)

// EncodePNG writes img as a PNG.
func EncodePNG(w io.Writer, img *Image) error {
	if err := png.Encode(w, img.ToRGBA()); err != nil {
		return fmt.Errorf("imaging: encode png: %w", err)
	}
	return nil
}
