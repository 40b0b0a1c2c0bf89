package viewer

import (
	"testing"

	"github.com/vovakirdan/envview/internal/core"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	for i, key := range []string{"1", "2", "3", "4", "5", "6"} {
		a, ok := km.Lookup(key)
		if !ok || a != core.Action(i) {
			t.Errorf("Lookup(%q) = %d, %v; expected %d", key, a, ok, i)
		}
	}
	if _, ok := km.Lookup("7"); ok {
		t.Error("7 should not be bound")
	}
	if km.MaxAction() != 5 {
		t.Errorf("MaxAction() = %d, expected 5", km.MaxAction())
	}
	if km.Len() != 6 {
		t.Errorf("Len() = %d, expected 6", km.Len())
	}
}

func TestMustKeyMapPanicsOnInvalidTable(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustKeyMap() with a negative action did not panic")
		}
	}()
	MustKeyMap(map[string]int{"1": -1})
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{" ", "space"},
		{"space", "space"},
		{"SPACE", "space"},
		{"Up", "up"},
		{"W", "W"},
		{"w", "w"},
		{"ctrl+C", "ctrl+c"},
	}

	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestNewKeyMapSpace(t *testing.T) {
	km, err := NewKeyMap(map[string]int{"space": 1, "up": 2})
	if err != nil {
		t.Fatal(err)
	}
	if a, ok := km.Lookup(" "); !ok || a != 1 {
		t.Errorf("space bar should map to 1, got %d, %v", a, ok)
	}
	if a, ok := km.Lookup("UP"); !ok || a != 2 {
		t.Errorf("UP should map to 2, got %d, %v", a, ok)
	}
}

func TestNewKeyMapErrors(t *testing.T) {
	if _, err := NewKeyMap(map[string]int{"a": -1}); err == nil {
		t.Error("negative action should be rejected")
	}
	if _, err := NewKeyMap(map[string]int{"": 1}); err == nil {
		t.Error("empty key should be rejected")
	}
	if _, err := NewKeyMap(map[string]int{" ": 1, "space": 2}); err == nil {
		t.Error("duplicate key after normalisation should be rejected")
	}
}

func TestBindingsSorted(t *testing.T) {
	km, err := NewKeyMap(map[string]int{"b": 2, "a": 2, "z": 0})
	if err != nil {
		t.Fatal(err)
	}
	got := km.Bindings()
	want := []Binding{{"z", 0}, {"a", 2}, {"b", 2}}
	if len(got) != len(want) {
		t.Fatalf("Bindings() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bindings()[%d] = %v, expected %v", i, got[i], want[i])
		}
	}
}
