package tui

import (
	"github.com/vovakirdan/envview/internal/imaging"
)

// ChannelSurface is a viewer.Surface that hands images to the UI goroutine.
// It holds at most one undelivered image; presenting a new one replaces a
// stale one, so a slow terminal never blocks the simulation.
type ChannelSurface struct {
	frames chan *imaging.Image
}

// NewChannelSurface creates an empty surface.
func NewChannelSurface() *ChannelSurface {
	return &ChannelSurface{frames: make(chan *imaging.Image, 1)}
}

// Present queues img, dropping an image the UI has not picked up yet.
// Present must only be called from one goroutine.
func (s *ChannelSurface) Present(img *imaging.Image) error {
	for {
		select {
		case s.frames <- img:
			return nil
		default:
		}
		select {
		case <-s.frames:
		default:
		}
	}
}

// Frames returns the delivery channel.
func (s *ChannelSurface) Frames() <-chan *imaging.Image {
	return s.frames
}
