package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/envview/internal/storage"
)

// History layout constants
const (
	maxHistoryRows = 100
	historyChrome  = 8 // Title, tabs, help and margins
)

// HistoryKeyMap defines the key bindings for the history screen.
type HistoryKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextEnv key.Binding
	PrevEnv key.Binding
	Toggle  key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextEnv, k.PrevEnv, k.Toggle, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.NextEnv, k.PrevEnv, k.Toggle},
		{k.Quit},
	}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextEnv: key.NewBinding(
			key.WithKeys("right", "l", "tab"),
			key.WithHelp("right/tab", "next env"),
		),
		PrevEnv: key.NewBinding(
			key.WithKeys("left", "h", "shift+tab"),
			key.WithHelp("left", "prev env"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "episodes/sessions"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel browses recorded episodes and viewer sessions.
type HistoryModel struct {
	envs     []string // "" lists every simulation
	cursor   int
	sessions bool // Show sessions instead of episodes
	store    *storage.Store
	table    table.Model
	help     help.Model
	keys     HistoryKeyMap
	best     *storage.Episode
	stats    *storage.EnvStats
	empty    bool
	width    int
	height   int
	quitting bool
}

// NewHistoryModel creates a history browser over envs, starting at the
// first one. An empty string in envs stands for all simulations.
func NewHistoryModel(store *storage.Store, envs []string, width, height int) HistoryModel {
	if len(envs) == 0 {
		envs = []string{""}
	}
	m := HistoryModel{
		envs:   envs,
		store:  store,
		keys:   DefaultHistoryKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.load()
	return m
}

func (m *HistoryModel) columns() []table.Column {
	if m.sessions {
		return []table.Column{
			{Title: "Env", Width: 10},
			{Title: "User", Width: 12},
			{Title: "Ticks", Width: 8},
			{Title: "Duration", Width: 10},
			{Title: "End", Width: 10},
			{Title: "Date", Width: 14},
		}
	}
	return []table.Column{
		{Title: "Env", Width: 10},
		{Title: "Seed", Width: 8},
		{Title: "Steps", Width: 8},
		{Title: "Reward", Width: 10},
		{Title: "Result", Width: 10},
		{Title: "Date", Width: 14},
	}
}

// load reads rows for the current env and view into a fresh table.
func (m *HistoryModel) load() {
	envID := m.envs[m.cursor]
	var rows []table.Row
	m.best = nil
	m.stats = nil

	if m.store != nil {
		if m.sessions {
			rows = SessionRows(m.recentSessions(envID))
		} else {
			rows = EpisodeRows(m.recentEpisodes(envID))
			if envID != "" {
				// Best-effort, the table still shows
				m.best, _ = m.store.BestEpisode(envID)
				m.stats, _ = m.store.Stats(envID)
			}
		}
	}
	m.empty = len(rows) == 0

	height := m.height - historyChrome
	if height < 3 {
		height = 10
	}
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	t.SetStyles(historyTableStyles())
	m.table = t
}

func (m *HistoryModel) recentEpisodes(envID string) []storage.Episode {
	eps, err := m.store.RecentEpisodes(envID, maxHistoryRows)
	if err != nil {
		return nil
	}
	return eps
}

func (m *HistoryModel) recentSessions(envID string) []storage.Session {
	ss, err := m.store.RecentSessions(envID, maxHistoryRows)
	if err != nil {
		return nil
	}
	return ss
}

func historyTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	return s
}

// EpisodeRows formats episodes as table rows.
func EpisodeRows(eps []storage.Episode) []table.Row {
	rows := make([]table.Row, len(eps))
	for i, e := range eps {
		result := "truncated"
		if e.Terminated {
			result = "done"
		}
		rows[i] = table.Row{
			e.EnvID,
			fmt.Sprintf("%d", e.Seed),
			fmt.Sprintf("%d", e.Steps),
			fmt.Sprintf("%.1f", e.TotalReward),
			result,
			e.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

// SessionRows formats viewer sessions as table rows.
func SessionRows(ss []storage.Session) []table.Row {
	rows := make([]table.Row, len(ss))
	for i, s := range ss {
		user := s.User
		if user == "" {
			user = "local"
		}
		rows[i] = table.Row{
			s.EnvID,
			user,
			fmt.Sprintf("%d", s.Ticks),
			s.Duration.Round(time.Second).String(),
			s.EndReason,
			s.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextEnv):
			m.cursor = (m.cursor + 1) % len(m.envs)
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.PrevEnv):
			m.cursor = (m.cursor - 1 + len(m.envs)) % len(m.envs)
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.Toggle):
			m.sessions = !m.sessions
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.load()
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	what := "EPISODES"
	if m.sessions {
		what = "SESSIONS"
	}
	envID := m.envs[m.cursor]
	if envID == "" {
		envID = "all"
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s - %s", what, envID)))
	b.WriteString("\n")

	if m.best != nil {
		b.WriteString(fmt.Sprintf("best: %.1f in %d steps (seed %d)\n", m.best.TotalReward, m.best.Steps, m.best.Seed))
	}
	if m.stats != nil && m.stats.Episodes > 0 {
		b.WriteString(fmt.Sprintf("%d episodes, mean reward %.1f, mean steps %.1f\n",
			m.stats.Episodes, m.stats.AvgReward, m.stats.AvgSteps))
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if m.empty {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(1, 2)
		b.WriteString(tableStyle.Render(emptyStyle.Render("Nothing recorded yet.")))
	} else {
		b.WriteString(tableStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// RunHistory runs the history browser.
func RunHistory(store *storage.Store, envs []string, width, height int) error {
	p := tea.NewProgram(
		NewHistoryModel(store, envs, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
