package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/envview/internal/core"
	"github.com/vovakirdan/envview/internal/imaging"
)

// halfBlock draws the upper pixel in the foreground colour and the lower
// pixel in the background colour, so one cell shows two pixel rows.
const halfBlock = "▀"

// maxCachedStyles bounds the style cache. Noisy frames produce a new colour
// pair for almost every cell, so the cache is dropped when it fills up.
const maxCachedStyles = 4096

// cellColors is the pixel pair shown by one terminal cell.
type cellColors struct {
	top, bottom core.RGB
}

// FrameRenderer turns converted images into styled half-block text.
type FrameRenderer struct {
	r      *lipgloss.Renderer
	styles map[cellColors]lipgloss.Style
}

// NewFrameRenderer creates a renderer bound to r. A nil r uses the default
// lipgloss renderer (the local terminal).
func NewFrameRenderer(r *lipgloss.Renderer) *FrameRenderer {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &FrameRenderer{r: r, styles: make(map[cellColors]lipgloss.Style)}
}

// Render draws img with two pixel rows per text line.
// Groups adjacent cells with the same colours to minimize ANSI escape sequences.
func (fr *FrameRenderer) Render(img *imaging.Image) string {
	if img == nil || img.Width == 0 || img.Height == 0 {
		return ""
	}

	lines := (img.Height + 1) / 2
	var sb strings.Builder
	sb.Grow(img.Width*lines*4 + lines)

	for row := range lines {
		if row > 0 {
			sb.WriteRune('\n')
		}
		y := row * 2

		x := 0
		for x < img.Width {
			start := fr.cell(img, x, y)
			n := 0
			for x < img.Width && fr.cell(img, x, y) == start {
				n++
				x++
			}
			sb.WriteString(fr.style(start).Render(strings.Repeat(halfBlock, n)))
		}
	}
	return sb.String()
}

func (fr *FrameRenderer) cell(img *imaging.Image, x, y int) cellColors {
	c := cellColors{top: img.RGBAt(x, y)}
	if y+1 < img.Height {
		c.bottom = img.RGBAt(x, y+1)
	}
	return c
}

func (fr *FrameRenderer) style(c cellColors) lipgloss.Style {
	if s, ok := fr.styles[c]; ok {
		return s
	}
	if len(fr.styles) >= maxCachedStyles {
		clear(fr.styles)
	}
	s := fr.r.NewStyle().
		Foreground(lipgloss.Color(hexColor(c.top))).
		Background(lipgloss.Color(hexColor(c.bottom)))
	fr.styles[c] = s
	return s
}

func hexColor(c core.RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
