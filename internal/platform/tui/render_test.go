package tui

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/envview/internal/core"
	"github.com/vovakirdan/envview/internal/imaging"
)

func solidImage(w, h int, c core.RGB) *imaging.Image {
	img := &imaging.Image{Width: w, Height: h, Format: imaging.FormatRGB, Pix: make([]uint8, w*h*3)}
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = c.R, c.G, c.B
	}
	return img
}

func TestRenderHalfBlockRows(t *testing.T) {
	fr := NewFrameRenderer(nil)

	tests := []struct {
		name      string
		w, h      int
		wantLines int
	}{
		{"even height", 4, 6, 3},
		{"odd height", 5, 3, 2},
		{"single row", 7, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := fr.Render(solidImage(tt.w, tt.h, core.RGB{R: 200}))
			lines := strings.Split(out, "\n")
			if len(lines) != tt.wantLines {
				t.Fatalf("got %d lines, want %d", len(lines), tt.wantLines)
			}
			for i, line := range lines {
				if w := lipgloss.Width(line); w != tt.w {
					t.Errorf("line %d width = %d, want %d", i, w, tt.w)
				}
			}
			if n := strings.Count(out, halfBlock); n != tt.w*tt.wantLines {
				t.Errorf("got %d half blocks, want %d", n, tt.w*tt.wantLines)
			}
		})
	}
}

func TestRenderEmpty(t *testing.T) {
	fr := NewFrameRenderer(nil)
	if out := fr.Render(nil); out != "" {
		t.Errorf("Render(nil) = %q", out)
	}
	if out := fr.Render(&imaging.Image{}); out != "" {
		t.Errorf("Render(empty) = %q", out)
	}
}

func TestRenderCellColors(t *testing.T) {
	img := solidImage(2, 2, core.RGB{})
	// Top-left red, bottom-left blue.
	img.Pix[0] = 255
	img.Pix[2*3+2] = 255

	fr := NewFrameRenderer(nil)
	got := fr.cell(img, 0, 0)
	want := cellColors{top: core.RGB{R: 255}, bottom: core.RGB{B: 255}}
	if got != want {
		t.Errorf("cell(0,0) = %+v, want %+v", got, want)
	}

	// Odd last row pairs with black.
	odd := solidImage(1, 3, core.RGB{G: 9})
	if c := fr.cell(odd, 0, 2); c.bottom != (core.RGB{}) || c.top != (core.RGB{G: 9}) {
		t.Errorf("cell on last odd row = %+v", c)
	}
}

func TestRenderCachesStyles(t *testing.T) {
	fr := NewFrameRenderer(nil)
	fr.Render(solidImage(8, 8, core.RGB{R: 1, G: 2, B: 3}))
	if len(fr.styles) != 1 {
		t.Errorf("solid image produced %d styles, want 1", len(fr.styles))
	}
}

func TestRenderStyleCacheIsBounded(t *testing.T) {
	fr := NewFrameRenderer(nil)
	rng := rand.New(rand.NewSource(1))

	for range 20 {
		img := &imaging.Image{Width: 120, Height: 80, Format: imaging.FormatRGB, Pix: make([]uint8, 120*80*3)}
		rng.Read(img.Pix)
		fr.Render(img)
		if len(fr.styles) > maxCachedStyles {
			t.Fatalf("style cache holds %d entries, limit %d", len(fr.styles), maxCachedStyles)
		}
	}

	// A bounded cache still serves repeated colours.
	fr.Render(solidImage(4, 4, core.RGB{R: 9}))
	n := len(fr.styles)
	fr.Render(solidImage(4, 4, core.RGB{R: 9}))
	if len(fr.styles) != n {
		t.Errorf("repeated colour added styles: %d -> %d", n, len(fr.styles))
	}
}

func TestHexColor(t *testing.T) {
	if got := hexColor(core.RGB{R: 0xff, G: 0x0a, B: 0x00}); got != "#ff0a00" {
		t.Errorf("hexColor() = %q", got)
	}
}
