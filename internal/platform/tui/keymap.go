package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/vovakirdan/envview/internal/core"
	"github.com/vovakirdan/envview/internal/viewer"
)

// ViewerKeyMap defines the key bindings shown by the viewer.
// Quit keys are handled by the host; every other key goes to the viewer
// loop, which ignores keys outside the simulation's table.
type ViewerKeyMap struct {
	Quit    key.Binding
	Help    key.Binding
	Actions []key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ViewerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view, four actions per column.
func (k ViewerKeyMap) FullHelp() [][]key.Binding {
	var cols [][]key.Binding
	for i := 0; i < len(k.Actions); i += 4 {
		cols = append(cols, k.Actions[i:min(i+4, len(k.Actions))])
	}
	return append(cols, []key.Binding{k.Help, k.Quit})
}

// NewViewerKeyMap builds help bindings from the simulation key table.
// Keys bound to the same action share one help entry.
func NewViewerKeyMap(keys viewer.KeyMap, space core.ActionSpace) ViewerKeyMap {
	var actions []key.Binding
	var group []string
	flush := func(a core.Action) {
		if len(group) == 0 {
			return
		}
		actions = append(actions, key.NewBinding(
			key.WithKeys(group...),
			key.WithHelp(strings.Join(group, "/"), strings.ToLower(space.Meaning(a))),
		))
		group = nil
	}

	bindings := keys.Bindings()
	for i, b := range bindings {
		if i > 0 && bindings[i-1].Action != b.Action {
			flush(bindings[i-1].Action)
		}
		group = append(group, b.Key)
	}
	if len(bindings) > 0 {
		flush(bindings[len(bindings)-1].Action)
	}

	return ViewerKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q/esc", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "keys"),
		),
		Actions: actions,
	}
}
