package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/envview/internal/env"
	"github.com/vovakirdan/envview/internal/viewer"
)

func TestPickerNavigation(t *testing.T) {
	m := NewPickerModel(80, 24)
	if len(m.items) == 0 {
		t.Fatal("no simulations registered")
	}
	if !strings.Contains(m.View(), "colorpad") {
		t.Error("colorpad missing from picker")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if next.(PickerModel).cursor != 0 {
		t.Error("cursor moved above the first item")
	}

	for range len(m.items) + 2 {
		next, _ = next.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if got := next.(PickerModel).cursor; got != len(m.items)-1 {
		t.Errorf("cursor = %d, want clamped to %d", got, len(m.items)-1)
	}

	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := next.(PickerModel).Selected(); got != m.items[len(m.items)-1].ID {
		t.Errorf("Selected() = %q", got)
	}
	if cmd == nil {
		t.Error("selection should end the picker program")
	}
}

func TestPickerQuit(t *testing.T) {
	m := NewPickerModel(80, 24)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	pm := next.(PickerModel)
	if !pm.IsQuitting() || pm.Selected() != "" {
		t.Error("q should quit without a selection")
	}
	if pm.View() != "" {
		t.Error("view not cleared after quit")
	}
}

func TestHostStartsViewerOnSelection(t *testing.T) {
	var built string
	var session *Session
	build := func(id string, cols, rows int) (*Session, error) {
		built = id
		e, err := env.Make(id, env.Options{Width: 4, Height: 4})
		if err != nil {
			return nil, err
		}
		session, _ = newTestSession(t, e, nil)
		return session, nil
	}

	h := NewHostModel(build, nil, 80, 24)
	// Move the cursor to colorpad.
	for i, item := range h.picker.items {
		if item.ID == "colorpad" {
			h.picker.cursor = i
		}
	}

	next, cmd := h.Update(tea.KeyMsg{Type: tea.KeyEnter})
	h = next.(HostModel)
	if built != "colorpad" || h.viewer == nil {
		t.Fatalf("viewer not started (built %q)", built)
	}
	if cmd == nil {
		t.Error("viewer Init command not returned")
	}

	// Keys now reach the viewer.
	next, _ = h.Update(keyMsg("r"))
	h = next.(HostModel)
	if h.viewer.lastKey != "r" {
		t.Error("key not forwarded to the viewer")
	}

	if err := h.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	if session.Status().State != viewer.StateStopped {
		t.Error("session not closed by host")
	}
}

func TestHostBuildError(t *testing.T) {
	boom := errors.New("no such env")
	h := NewHostModel(func(string, int, int) (*Session, error) { return nil, boom }, nil, 80, 24)

	next, cmd := h.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !errors.Is(next.(HostModel).Err(), boom) {
		t.Error("build error not reported")
	}
	if cmd == nil {
		t.Error("build error should quit")
	}
	if err := next.(HostModel).Close(); err != nil {
		t.Errorf("Close() without a session = %v", err)
	}
}
