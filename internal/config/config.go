// Package config provides YAML-based configuration loading for the viewer,
// the built-in simulations and the storage and SSH layers.
package config

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vovakirdan/envview/internal/core"
	"github.com/vovakirdan/envview/internal/env"
	"github.com/vovakirdan/envview/internal/imaging"
	"github.com/vovakirdan/envview/internal/viewer"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete envview configuration.
type Config struct {
	Viewer  ViewerConfig         `yaml:"viewer"`
	Envs    map[string]EnvConfig `yaml:"envs"`
	Storage StorageConfig        `yaml:"storage"`
	Server  ServerConfig         `yaml:"server"`
}

// ViewerConfig configures the interactive loop and frame conversion.
type ViewerConfig struct {
	TickIntervalMS  int     `yaml:"tick_interval_ms"`
	Scale           float64 `yaml:"scale"` // 0 = fit to terminal
	Filter          string  `yaml:"filter"`
	PixelFormat     string  `yaml:"pixel_format"`
	AutoResetOnDone bool    `yaml:"auto_reset_on_done"`
	Seed            int64   `yaml:"seed"`
	DefaultAction   int     `yaml:"default_action"`
}

// EnvConfig holds per-simulation settings. Zero sizes mean the simulation's
// own defaults.
type EnvConfig struct {
	Width    int            `yaml:"width"`
	Height   int            `yaml:"height"`
	MaxSteps int            `yaml:"max_steps"`
	Keys     map[string]int `yaml:"keys"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures `envview serve`.
type ServerConfig struct {
	Address            string `yaml:"address"`
	HostKey            string `yaml:"host_key"`
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`
}

// TickInterval returns the tick period.
func (v ViewerConfig) TickInterval() time.Duration {
	return time.Duration(v.TickIntervalMS) * time.Millisecond
}

// Converter builds the frame converter for the given scale. Callers resolve
// a fit-to-terminal scale of 0 before calling.
func (v ViewerConfig) Converter(scale float64) (imaging.Converter, error) {
	format, err := imaging.ParsePixelFormat(v.PixelFormat)
	if err != nil {
		return imaging.Converter{}, invalid("viewer.pixel_format", err)
	}
	filter, err := imaging.ParseFilter(v.Filter)
	if err != nil {
		return imaging.Converter{}, invalid("viewer.filter", err)
	}
	c := imaging.Converter{Scale: scale, Format: format, Filter: filter}
	if err := c.Validate(); err != nil {
		return imaging.Converter{}, invalid("viewer.scale", err)
	}
	return c, nil
}

// IdleTimeout returns the SSH idle timeout.
func (s ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutMinutes) * time.Minute
}

// Env returns the settings for id, or a zero EnvConfig.
func (c Config) Env(id string) EnvConfig {
	return c.Envs[id]
}

// EnvOptions returns the factory options for id.
func (c Config) EnvOptions(id string) env.Options {
	e := c.Env(id)
	return env.Options{Width: e.Width, Height: e.Height, MaxSteps: e.MaxSteps}
}

// KeyMap builds the key table for id. Simulations without a configured
// table use the default "1".."6" mapping.
func (c Config) KeyMap(id string) (viewer.KeyMap, error) {
	keys := c.Env(id).Keys
	if len(keys) == 0 {
		return viewer.DefaultKeyMap(), nil
	}
	km, err := viewer.NewKeyMap(keys)
	if err != nil {
		return viewer.KeyMap{}, invalid("envs."+id+".keys", err)
	}
	return km, nil
}

// DefaultAction returns the configured no-op action.
func (c Config) DefaultAction() core.Action {
	return core.Action(c.Viewer.DefaultAction)
}

// Validate checks every section and reports the first invalid field.
func (c Config) Validate() error {
	v := c.Viewer
	if v.TickIntervalMS <= 0 {
		return invalid("viewer.tick_interval_ms", fmt.Errorf("must be positive, got %d", v.TickIntervalMS))
	}
	if v.Scale < 0 {
		return invalid("viewer.scale", fmt.Errorf("must not be negative, got %v", v.Scale))
	}
	if _, err := imaging.ParseFilter(v.Filter); err != nil {
		return invalid("viewer.filter", err)
	}
	if _, err := imaging.ParsePixelFormat(v.PixelFormat); err != nil {
		return invalid("viewer.pixel_format", err)
	}
	if v.DefaultAction < 0 {
		return invalid("viewer.default_action", fmt.Errorf("must not be negative, got %d", v.DefaultAction))
	}

	ids := make([]string, 0, len(c.Envs))
	for id := range c.Envs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		e := c.Envs[id]
		if e.Width < 0 || e.Height < 0 {
			return invalid("envs."+id, fmt.Errorf("negative size %dx%d", e.Width, e.Height))
		}
		if e.MaxSteps < 0 {
			return invalid("envs."+id+".max_steps", fmt.Errorf("must not be negative, got %d", e.MaxSteps))
		}
		if _, err := c.KeyMap(id); err != nil {
			return err
		}
	}

	if c.Storage.Path == "" {
		return invalid("storage.path", errors.New("must not be empty"))
	}
	if c.Server.IdleTimeoutMinutes < 0 {
		return invalid("server.idle_timeout_minutes", errors.New("must not be negative"))
	}
	return nil
}

// invalid wraps err as a *env.ConfigError for field. The chain always
// contains ErrInvalid.
func invalid(field string, err error) error {
	var cfgErr *env.ConfigError
	if errors.As(err, &cfgErr) && errors.Is(err, ErrInvalid) {
		return err
	}
	return &env.ConfigError{Field: field, Err: fmt.Errorf("%w: %w", ErrInvalid, err)}
}
