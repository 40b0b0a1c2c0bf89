// Package grab captures a single converted frame from a simulation, the
// non-interactive way to look at what an environment renders.
package grab

import (
	"fmt"
	"io"

	"github.com/vovakirdan/envview/internal/core"
	"github.com/vovakirdan/envview/internal/env"
	"github.com/vovakirdan/envview/internal/imaging"
)

// Options control what is captured.
type Options struct {
	Seed      int64
	Steps     int         // Actions applied after reset, before capturing
	Action    core.Action // Action applied on each of those steps
	Converter imaging.Converter
}

// Capture resets e, applies opts.Steps steps of opts.Action, then renders
// and converts the current frame. Stepping stops early when the episode ends.
func Capture(e env.Env, opts Options) (*imaging.Image, error) {
	if opts.Steps < 0 {
		return nil, fmt.Errorf("grab: negative step count %d", opts.Steps)
	}
	if err := opts.Converter.Validate(); err != nil {
		return nil, fmt.Errorf("grab: %w", err)
	}

	if _, err := e.Reset(opts.Seed); err != nil {
		return nil, fmt.Errorf("grab: reset: %w", err)
	}
	for i := 0; i < opts.Steps; i++ {
		res, err := e.Step(opts.Action)
		if err != nil {
			return nil, fmt.Errorf("grab: step %d: %w", i, err)
		}
		if res.Finished() {
			break
		}
	}

	frame, err := e.Render()
	if err != nil {
		return nil, fmt.Errorf("grab: render: %w", err)
	}
	img, err := opts.Converter.Convert(frame)
	if err != nil {
		return nil, fmt.Errorf("grab: %w", err)
	}
	return img, nil
}

// WritePNG captures a frame and encodes it to w.
func WritePNG(w io.Writer, e env.Env, opts Options) error {
	img, err := Capture(e, opts)
	if err != nil {
		return err
	}
	if err := imaging.EncodePNG(w, img); err != nil {
		return fmt.Errorf("grab: %w", err)
	}
	return nil
}
