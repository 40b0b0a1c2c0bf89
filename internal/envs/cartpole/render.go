package cartpole

import (
	"math"

	"github.com/vovakirdan/envview/internal/core"
	"github.com/vovakirdan/envview/internal/env"
)

var (
	colorBackground = core.RGB{R: 255, G: 255, B: 255}
	colorTrack      = core.RGB{R: 0, G: 0, B: 0}
	colorCart       = core.RGB{R: 0, G: 0, B: 0}
	colorPole       = core.RGB{R: 202, G: 152, B: 101}
	colorAxle       = core.RGB{R: 129, G: 132, B: 203}
)

// Render draws the cart, pole and track into a new frame.
func (e *Env) Render() (*core.Frame, error) {
	if e.closed {
		return nil, env.ErrClosed
	}
	if !e.ready {
		return nil, env.ErrNotReset
	}

	f := core.NewFrame(e.width, e.height)
	f.Fill(colorBackground)

	worldWidth := XThreshold * 2
	scale := float64(e.width) / worldWidth

	trackY := e.height * 3 / 4
	f.FillRect(core.NewRect(0, trackY, e.width, 1), colorTrack)

	cartW := max(e.width/12, 4)
	cartH := max(e.height/16, 3)
	cartX := int(e.state[0]*scale + float64(e.width)/2)
	f.FillRect(core.NewRect(cartX-cartW/2, trackY-cartH, cartW, cartH), colorCart)

	// Pole from the axle, theta measured from vertical
	axleX := float64(cartX)
	axleY := float64(trackY - cartH)
	poleLen := scale * 2 * PoleLength
	theta := e.state[2]
	samples := int(poleLen) * 2
	for i := 0; i <= samples; i++ {
		t := float64(i) / float64(samples)
		px := axleX + t*poleLen*math.Sin(theta)
		py := axleY - t*poleLen*math.Cos(theta)
		f.FillRect(core.NewRect(int(px), int(py), 2, 1), colorPole)
	}
	f.Set(cartX, int(axleY), colorAxle)

	return f, nil
}
