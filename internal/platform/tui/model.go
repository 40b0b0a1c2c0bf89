package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/envview/internal/imaging"
	"github.com/vovakirdan/envview/internal/viewer"
)

// Model is the Bubble Tea model for one viewer session.
type Model struct {
	session  *Session
	frames   *FrameRenderer
	keys     ViewerKeyMap
	help     help.Model
	status   lipgloss.Style
	errStyle lipgloss.Style
	image    *imaging.Image
	lastKey  string
	width    int
	height   int
	err      error
	quitting bool
}

// NewModel creates a model for s. A nil renderer uses the local terminal.
func NewModel(s *Session, r *lipgloss.Renderer) Model {
	fr := NewFrameRenderer(r)
	h := help.New()
	h.ShowAll = false

	return Model{
		session:  s,
		frames:   fr,
		keys:     s.KeyMap(),
		help:     h,
		status:   fr.r.NewStyle().Foreground(lipgloss.Color("245")),
		errStyle: fr.r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// Init starts the event loop and the frame listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(runLoop(m.session), waitForFrame(m.session.Frames()))
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case FrameMsg:
		m.image = msg.Image
		return m, waitForFrame(m.session.Frames())

	case LoopDoneMsg:
		m.err = msg.Err
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.session.Stop()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	k := viewer.NormalizeKey(msg.String())
	m.lastKey = k
	m.session.Key(k)
	return m, nil
}

// Err returns the error that ended the session loop, if any.
func (m Model) Err() error {
	return m.err
}

// View renders the latest frame, the status line and key help.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if m.image != nil {
		b.WriteString(m.frames.Render(m.image))
	}
	b.WriteString("\n")
	b.WriteString(m.status.Render(m.statusLine()))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) statusLine() string {
	st := m.session.Status()
	last := m.lastKey
	if last == "" {
		last = "-"
	}
	line := fmt.Sprintf("%s  tick %d  key pressed: %s  action %d  pending %d",
		m.session.Title(), st.Ticks, last, st.LastAction, st.Pending)
	if st.Episodes > 0 {
		line += fmt.Sprintf("  episode %d", st.Episodes+1)
	}
	if st.State == viewer.StateStopped {
		line += "  " + m.errStyle.Render("stopped")
	}
	return line
}

// Run starts the Bubble Tea program for s on the local terminal and closes
// the session when the program exits. A fatal simulation error is returned.
func Run(s *Session) error {
	p := tea.NewProgram(
		NewModel(s, nil),
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, runErr := p.Run()
	closeErr := s.Close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}
