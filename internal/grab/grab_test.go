package grab

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/vovakirdan/envview/internal/env"
	"github.com/vovakirdan/envview/internal/envs/colorpad"
	"github.com/vovakirdan/envview/internal/envs/pong"
	"github.com/vovakirdan/envview/internal/imaging"
)

func TestCaptureScalesFrame(t *testing.T) {
	e, err := colorpad.New(env.Options{Width: 10, Height: 6})
	if err != nil {
		t.Fatalf("colorpad.New() failed: %v", err)
	}

	img, err := Capture(e, Options{Converter: imaging.Converter{Scale: 3}})
	if err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}
	if img.Width != 30 || img.Height != 18 {
		t.Errorf("size = %dx%d, want 30x18", img.Width, img.Height)
	}
}

func TestCaptureAppliesSteps(t *testing.T) {
	e, err := colorpad.New(env.Options{Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("colorpad.New() failed: %v", err)
	}
	conv := imaging.Converter{Scale: 1}

	before, err := Capture(e, Options{Converter: conv})
	if err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}
	after, err := Capture(e, Options{Converter: conv, Steps: 2, Action: colorpad.ActionInvert})
	if err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}
	// Inverting twice restores the original image.
	if !bytes.Equal(before.Pix, after.Pix) {
		t.Error("double invert changed the frame")
	}

	once, err := Capture(e, Options{Converter: conv, Steps: 1, Action: colorpad.ActionInvert})
	if err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}
	if bytes.Equal(before.Pix, once.Pix) {
		t.Error("single invert left the frame unchanged")
	}
}

func TestCaptureErrors(t *testing.T) {
	e, _ := pong.New(env.Options{})

	if _, err := Capture(e, Options{Converter: imaging.Converter{Scale: 0}}); err == nil {
		t.Error("expected error for zero scale")
	}
	if _, err := Capture(e, Options{Converter: imaging.Converter{Scale: 1}, Steps: -1}); err == nil {
		t.Error("expected error for negative steps")
	}
	if _, err := Capture(e, Options{Converter: imaging.Converter{Scale: 1}, Action: 99, Steps: 1}); err == nil {
		t.Error("expected error for invalid action")
	}
}

func TestWritePNG(t *testing.T) {
	e, err := pong.New(env.Options{})
	if err != nil {
		t.Fatalf("pong.New() failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WritePNG(&buf, e, Options{Seed: 1, Steps: 5, Converter: imaging.Converter{Scale: 2}}); err != nil {
		t.Fatalf("WritePNG() failed: %v", err)
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() failed: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != pong.DefaultWidth*2 || b.Dy() != pong.DefaultHeight*2 {
		t.Errorf("decoded size = %dx%d", b.Dx(), b.Dy())
	}
}
