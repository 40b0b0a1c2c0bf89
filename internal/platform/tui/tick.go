// Package tui hosts the interactive viewer in a terminal, locally or over
// SSH, using Bubble Tea. The simulation itself never runs on the Bubble Tea
// goroutine: it is driven by an eventloop.Loop, and frames reach the view
// through a channel surface.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/envview/internal/imaging"
)

// FrameMsg carries a newly presented image to the model.
type FrameMsg struct {
	Image *imaging.Image
}

// LoopDoneMsg reports that the session's event loop has exited.
type LoopDoneMsg struct {
	Err error
}

// waitForFrame returns a command that blocks until the next frame arrives.
func waitForFrame(frames <-chan *imaging.Image) tea.Cmd {
	return func() tea.Msg {
		img, ok := <-frames
		if !ok {
			return nil
		}
		return FrameMsg{Image: img}
	}
}

// runLoop returns a command that runs the session loop to completion.
func runLoop(s *Session) tea.Cmd {
	return func() tea.Msg {
		return LoopDoneMsg{Err: s.Run()}
	}
}
