package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SessionBuilder creates a viewer session for a simulation ID at the given
// terminal size.
type SessionBuilder func(envID string, cols, rows int) (*Session, error)

// sessionSlot holds the session a HostModel started, so it can be closed
// from outside the Bubble Tea goroutine.
type sessionSlot struct {
	mu      sync.Mutex
	session *Session
}

func (s *sessionSlot) set(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
}

// Close closes the session, if one was started.
func (s *sessionSlot) Close() error {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()
	if sess == nil {
		return nil
	}
	return sess.Close()
}

// HostModel manages the picker -> viewer flow of one terminal.
// This is the top-level model used for SSH sessions without a command.
type HostModel struct {
	picker   PickerModel
	viewer   *Model
	build    SessionBuilder
	renderer *lipgloss.Renderer
	slot     *sessionSlot
	err      error
	quitting bool
}

// NewHostModel creates a host that starts with the picker.
func NewHostModel(build SessionBuilder, r *lipgloss.Renderer, width, height int) HostModel {
	return HostModel{
		picker:   NewPickerModel(width, height),
		build:    build,
		renderer: r,
		slot:     &sessionSlot{},
	}
}

// Init initializes the host.
func (m HostModel) Init() tea.Cmd {
	return m.picker.Init()
}

// Update handles messages for the host.
func (m HostModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.viewer != nil {
		next, cmd := m.viewer.Update(msg)
		if vm, ok := next.(Model); ok {
			m.viewer = &vm
		}
		return m, cmd
	}
	return m.updatePicker(msg)
}

// updatePicker handles updates while choosing a simulation.
func (m HostModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.picker.Update(msg)
	if pm, ok := next.(PickerModel); ok {
		m.picker = pm
	}

	if m.picker.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if id := m.picker.Selected(); id != "" {
		cols, rows := m.picker.Size()
		sess, err := m.build(id, cols, rows)
		if err != nil {
			m.err = err
			m.quitting = true
			return m, tea.Quit
		}
		m.slot.set(sess)

		vm := NewModel(sess, m.renderer)
		vm.width, vm.height = cols, rows
		vm.help.Width = cols
		m.viewer = &vm
		return m, vm.Init()
	}

	return m, cmd
}

// View renders the current view.
func (m HostModel) View() string {
	if m.quitting {
		return ""
	}
	if m.viewer != nil {
		return m.viewer.View()
	}
	return m.picker.View()
}

// Err returns the error that ended the host, if any.
func (m HostModel) Err() error {
	if m.err != nil {
		return m.err
	}
	if m.viewer != nil {
		return m.viewer.Err()
	}
	return nil
}

// Close closes the viewer session the host started.
func (m HostModel) Close() error {
	return m.slot.Close()
}
