package tui

import "math"

// chromeRows is the number of terminal rows used below the frame: the status
// line, a blank line and the help line.
const chromeRows = 3

// minFitScale keeps tiny terminals from collapsing the frame to nothing.
const minFitScale = 0.1

// FitScale returns the largest scale at which a width x height frame fits in
// a cols x rows terminal, with two pixel rows per cell and room for the
// status lines. Scales of at least 1 are rounded down to whole numbers to
// keep pixels square. Unknown terminal sizes yield 1.
func FitScale(width, height, cols, rows int) float64 {
	if width <= 0 || height <= 0 || cols <= 0 || rows <= 0 {
		return 1
	}
	rows -= chromeRows
	if rows < 1 {
		rows = 1
	}

	sx := float64(cols) / float64(width)
	sy := float64(rows*2) / float64(height)
	s := math.Min(sx, sy)
	if s >= 1 {
		return math.Floor(s)
	}
	return math.Max(s, minFitScale)
}
