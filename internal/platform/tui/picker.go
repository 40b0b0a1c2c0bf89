package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/envview/internal/env"
)

// PickerKeyMap defines the key bindings for the simulation picker.
type PickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

// DefaultPickerKeyMap returns default key bindings.
func DefaultPickerKeyMap() PickerKeyMap {
	return PickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "w"), // vim-style k for up
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "s"), // vim-style j for down
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
		),
	}
}

// PickerModel is the Bubble Tea model for choosing a simulation.
type PickerModel struct {
	items    []env.Descriptor
	cursor   int
	width    int
	height   int
	keys     PickerKeyMap
	quitting bool
	selected string // Set when the user picks a simulation
}

// NewPickerModel lists every registered simulation.
func NewPickerModel(width, height int) PickerModel {
	return PickerModel{
		items:  env.List(),
		width:  width,
		height: height,
		keys:   DefaultPickerKeyMap(),
	}
}

// Init initializes the picker model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the picker.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for picker navigation.
func (m PickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Select):
		if len(m.items) > 0 {
			m.selected = m.items[m.cursor].ID
			return m, tea.Quit // Exit picker to start the viewer
		}
	}

	return m, nil
}

// View renders the picker.
func (m PickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("  E N V V I E W  ", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select a simulation", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s (%s)", cursor, item.Title, item.ID)
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Select  |  Q: Quit"
	b.WriteString(centerText(controls, m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the chosen simulation ID, or empty if none.
func (m PickerModel) Selected() string {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m PickerModel) IsQuitting() bool {
	return m.quitting
}

// Size returns the last known terminal size.
func (m PickerModel) Size() (int, int) {
	return m.width, m.height
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}

// RunPicker runs the picker and returns the chosen simulation ID, or empty
// when the user quit.
func RunPicker(width, height int) (string, error) {
	p := tea.NewProgram(
		NewPickerModel(width, height),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	m, ok := finalModel.(PickerModel)
	if !ok || m.IsQuitting() {
		return "", nil
	}
	return m.Selected(), nil
}
