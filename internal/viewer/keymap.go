package viewer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vovakirdan/envview/internal/core"
)

// KeyMap is a fixed table from key identifiers to action indices.
// Identifiers are toolkit-neutral strings: single characters ("1", "w"),
// or names such as "up", "down", "space", "enter".
type KeyMap struct {
	bindings map[string]core.Action
}

// DefaultKeyMap maps digit keys 1-6 to actions 0-5, the Atari layout.
// Panics if the built-in table is invalid.
func DefaultKeyMap() KeyMap {
	return MustKeyMap(map[string]int{"1": 0, "2": 1, "3": 2, "4": 3, "5": 4, "6": 5})
}

// MustKeyMap is like NewKeyMap but panics on an invalid table.
func MustKeyMap(bindings map[string]int) KeyMap {
	km, err := NewKeyMap(bindings)
	if err != nil {
		panic(err)
	}
	return km
}

// NewKeyMap builds a key table. Action indices must be non-negative and keys
// must be unique after normalisation. Whether an index is valid for a given
// simulation is not checked here.
func NewKeyMap(bindings map[string]int) (KeyMap, error) {
	km := KeyMap{bindings: make(map[string]core.Action, len(bindings))}
	for key, action := range bindings {
		k := NormalizeKey(key)
		if k == "" {
			return KeyMap{}, fmt.Errorf("viewer: empty key in key map")
		}
		if action < 0 {
			return KeyMap{}, fmt.Errorf("viewer: key %q maps to negative action %d", key, action)
		}
		if _, dup := km.bindings[k]; dup {
			return KeyMap{}, fmt.Errorf("viewer: key %q bound twice", k)
		}
		km.bindings[k] = core.Action(action)
	}
	return km, nil
}

// Lookup returns the action bound to key.
func (k KeyMap) Lookup(key string) (core.Action, bool) {
	a, ok := k.bindings[NormalizeKey(key)]
	return a, ok
}

// Len returns the number of bindings.
func (k KeyMap) Len() int {
	return len(k.bindings)
}

// MaxAction returns the largest bound action index, or -1 for an empty map.
func (k KeyMap) MaxAction() core.Action {
	maxA := core.Action(-1)
	for _, a := range k.bindings {
		if a > maxA {
			maxA = a
		}
	}
	return maxA
}

// Binding is one key/action pair.
type Binding struct {
	Key    string
	Action core.Action
}

// Bindings returns the table sorted by action, then key.
func (k KeyMap) Bindings() []Binding {
	out := make([]Binding, 0, len(k.bindings))
	for key, a := range k.bindings {
		out = append(out, Binding{Key: key, Action: a})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Action != out[j].Action {
			return out[i].Action < out[j].Action
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// NormalizeKey maps key spellings to one identifier: lower-case names and
// "space" for the space bar. Single characters keep their case.
func NormalizeKey(key string) string {
	if key == " " {
		return "space"
	}
	key = strings.TrimSpace(key)
	if len([]rune(key)) == 1 {
		return key
	}
	return strings.ToLower(key)
}
