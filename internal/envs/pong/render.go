package pong

import (
	"strconv"

	"github.com/vovakirdan/envview/internal/core"
	"github.com/vovakirdan/envview/internal/env"
)

// ALE Pong palette.
var (
	colorBackground = core.RGB{R: 144, G: 72, B: 17}
	colorWall       = core.RGB{R: 236, G: 236, B: 236}
	colorBall       = core.RGB{R: 236, G: 236, B: 236}
	colorAgent      = core.RGB{R: 92, G: 186, B: 92}
	colorCPU        = core.RGB{R: 213, G: 130, B: 74}
)

// digitGlyphs are 3x5 bitmaps, one string per row.
var digitGlyphs = [10][5]string{
	{"###", "#.#", "#.#", "#.#", "###"},
	{".#.", "##.", ".#.", ".#.", "###"},
	{"###", "..#", "###", "#..", "###"},
	{"###", "..#", "###", "..#", "###"},
	{"#.#", "#.#", "###", "..#", "..#"},
	{"###", "#..", "###", "..#", "###"},
	{"###", "#..", "###", "#.#", "###"},
	{"###", "..#", "..#", "..#", "..#"},
	{"###", "#.#", "###", "#.#", "###"},
	{"###", "#.#", "###", "..#", "###"},
}

const glyphScale = 2

// Render draws the court into a new frame.
func (e *Env) Render() (*core.Frame, error) {
	if e.closed {
		return nil, env.ErrClosed
	}
	if !e.ready {
		return nil, env.ErrNotReset
	}

	f := core.NewFrame(e.width, e.height)
	f.Fill(colorBackground)

	// Walls
	f.FillRect(core.NewRect(0, courtTop, e.width, wallHeight), colorWall)
	f.FillRect(core.NewRect(0, e.courtBottom(), e.width, wallHeight), colorWall)

	// Paddles
	f.FillRect(core.NewRect(DefaultPaddleOffset, int(e.cpuY), DefaultPaddleWidth, e.paddleHeight), colorCPU)
	agentX := e.width - DefaultPaddleOffset - DefaultPaddleWidth
	f.FillRect(core.NewRect(agentX, int(e.agentY), DefaultPaddleWidth, e.paddleHeight), colorAgent)

	// Ball (hidden while waiting for the serve, like the cartridge)
	if !e.serving && !e.done {
		f.FillRect(core.NewRect(int(e.ballX), int(e.ballY), 2, 2), colorBall)
	}

	// Scores: CPU on the left quarter, agent on the right quarter
	drawNumber(f, e.width/4, 1, e.cpuScore, colorCPU)
	drawNumber(f, e.width*3/4, 1, e.agentScore, colorAgent)

	return f, nil
}

// drawNumber draws n centred on x with its top edge at y.
func drawNumber(f *core.Frame, x, y, n int, c core.RGB) {
	text := strconv.Itoa(n)
	glyphW := 3*glyphScale + glyphScale // Glyph plus one column of spacing
	startX := x - (len(text)*glyphW)/2

	for i, r := range text {
		glyph := digitGlyphs[r-'0']
		gx := startX + i*glyphW
		for row, line := range glyph {
			for col, px := range line {
				if px != '#' {
					continue
				}
				f.FillRect(core.NewRect(gx+col*glyphScale, y+row*glyphScale, glyphScale, glyphScale), c)
			}
		}
	}
}
