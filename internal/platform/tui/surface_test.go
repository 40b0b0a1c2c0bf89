package tui

import (
	"testing"

	"github.com/vovakirdan/envview/internal/imaging"
)

func TestChannelSurfaceKeepsLatest(t *testing.T) {
	s := NewChannelSurface()
	first := &imaging.Image{Width: 1}
	second := &imaging.Image{Width: 2}

	if err := s.Present(first); err != nil {
		t.Fatalf("Present() failed: %v", err)
	}
	if err := s.Present(second); err != nil {
		t.Fatalf("Present() failed: %v", err)
	}

	select {
	case got := <-s.Frames():
		if got != second {
			t.Errorf("got image of width %d, want the latest", got.Width)
		}
	default:
		t.Fatal("no frame delivered")
	}

	select {
	case <-s.Frames():
		t.Error("stale frame still queued")
	default:
	}
}
