package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/envview/internal/core"
	"github.com/vovakirdan/envview/internal/env"
	"github.com/vovakirdan/envview/internal/imaging"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestEmbeddedDefaultMatchesDefaultConfig(t *testing.T) {
	cfg := embeddedDefault()
	def := DefaultConfig()

	if cfg.Viewer.TickIntervalMS != def.Viewer.TickIntervalMS {
		t.Errorf("tick interval: embedded %d, default %d", cfg.Viewer.TickIntervalMS, def.Viewer.TickIntervalMS)
	}
	if cfg.Viewer.Scale != def.Viewer.Scale {
		t.Errorf("scale: embedded %v, default %v", cfg.Viewer.Scale, def.Viewer.Scale)
	}
	if cfg.Viewer.AutoResetOnDone {
		t.Error("auto reset should be off by default")
	}
	if cfg.Storage.Path != def.Storage.Path {
		t.Errorf("storage path: embedded %q, default %q", cfg.Storage.Path, def.Storage.Path)
	}
	for id, want := range def.Envs {
		got, ok := cfg.Envs[id]
		if !ok {
			t.Errorf("embedded config has no entry for %s", id)
			continue
		}
		if len(got.Keys) != len(want.Keys) {
			t.Errorf("%s: embedded has %d keys, default %d", id, len(got.Keys), len(want.Keys))
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("embedded default is invalid: %v", err)
	}
	if err := def.Validate(); err != nil {
		t.Errorf("DefaultConfig is invalid: %v", err)
	}
}

func TestLoadCustomPathOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
viewer:
  tick_interval_ms: 50
  auto_reset_on_done: true
envs:
  pong:
    keys:
      up: 2
      down: 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if got := cfg.Viewer.TickInterval(); got != 50*time.Millisecond {
		t.Errorf("TickInterval() = %v, want 50ms", got)
	}
	if !cfg.Viewer.AutoResetOnDone {
		t.Error("auto_reset_on_done not applied")
	}
	// Untouched values keep their defaults
	if cfg.Viewer.Scale != 2 {
		t.Errorf("scale = %v, want default 2", cfg.Viewer.Scale)
	}
	if _, ok := cfg.Envs["cartpole"]; !ok {
		t.Error("cartpole defaults lost")
	}

	km, err := cfg.KeyMap("pong")
	if err != nil {
		t.Fatalf("KeyMap() failed: %v", err)
	}
	if km.Len() != 2 {
		t.Errorf("pong keymap has %d bindings, want 2 (file replaces defaults)", km.Len())
	}
	if a, ok := km.Lookup("up"); !ok || a != 2 {
		t.Errorf("Lookup(up) = %d, %v", a, ok)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist in chain, got %v", err)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "viewer: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero tick", func(c *Config) { c.Viewer.TickIntervalMS = 0 }, "viewer.tick_interval_ms"},
		{"negative scale", func(c *Config) { c.Viewer.Scale = -1 }, "viewer.scale"},
		{"bad filter", func(c *Config) { c.Viewer.Filter = "lanczos9" }, "viewer.filter"},
		{"bad format", func(c *Config) { c.Viewer.PixelFormat = "yuv" }, "viewer.pixel_format"},
		{"negative default action", func(c *Config) { c.Viewer.DefaultAction = -1 }, "viewer.default_action"},
		{"negative size", func(c *Config) { c.Envs["pong"] = EnvConfig{Width: -3} }, "envs.pong"},
		{"negative max steps", func(c *Config) { c.Envs["pong"] = EnvConfig{MaxSteps: -1} }, "envs.pong.max_steps"},
		{"negative key action", func(c *Config) {
			c.Envs["pong"] = EnvConfig{Keys: map[string]int{"x": -1}}
		}, "envs.pong.keys"},
		{"empty storage", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := embeddedDefault()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
			var cfgErr *env.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error %T is not *env.ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestScaleZeroMeansFit(t *testing.T) {
	cfg := embeddedDefault()
	cfg.Viewer.Scale = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("scale 0 should be valid: %v", err)
	}
	// The converter itself needs a resolved scale.
	if _, err := cfg.Viewer.Converter(0); err == nil {
		t.Error("Converter(0) should fail")
	}
	c, err := cfg.Viewer.Converter(3)
	if err != nil {
		t.Fatalf("Converter(3) failed: %v", err)
	}
	if c.Scale != 3 || c.Format != imaging.FormatRGB || c.Filter != imaging.FilterNearest {
		t.Errorf("unexpected converter %+v", c)
	}
}

func TestKeyMapFallsBackToDefault(t *testing.T) {
	cfg := embeddedDefault()
	km, err := cfg.KeyMap("unknown-env")
	if err != nil {
		t.Fatalf("KeyMap() failed: %v", err)
	}
	for i := 1; i <= 6; i++ {
		key := string(rune('0' + i))
		a, ok := km.Lookup(key)
		if !ok || a != core.Action(i-1) {
			t.Errorf("Lookup(%q) = %d, %v; want %d", key, a, ok, i-1)
		}
	}
}

func TestColorpadKeys(t *testing.T) {
	cfg := embeddedDefault()
	km, err := cfg.KeyMap("colorpad")
	if err != nil {
		t.Fatalf("KeyMap() failed: %v", err)
	}
	cases := map[string]core.Action{"r": 1, "3": 6, "i": 7, " ": 10, "space": 10}
	for key, want := range cases {
		if a, ok := km.Lookup(key); !ok || a != want {
			t.Errorf("Lookup(%q) = %d, %v; want %d", key, a, ok, want)
		}
	}
}

func TestEnvOptions(t *testing.T) {
	cfg := embeddedDefault()
	opts := cfg.EnvOptions("cartpole")
	if opts.MaxSteps != 500 || opts.Width != 96 || opts.Height != 64 {
		t.Errorf("EnvOptions(cartpole) = %+v", opts)
	}
	if got := cfg.EnvOptions("nope"); got != (env.Options{}) {
		t.Errorf("EnvOptions(nope) = %+v, want zero", got)
	}
}
