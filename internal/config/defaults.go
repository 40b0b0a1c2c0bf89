package config

import (
	_ "embed"
)

//go:embed defaults/envview.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration, used when the embedded
// YAML cannot be parsed.
func DefaultConfig() Config {
	return Config{
		Viewer: ViewerConfig{
			TickIntervalMS: 100,
			Scale:          2,
			Filter:         "nearest",
			PixelFormat:    "rgb",
		},
		Envs: map[string]EnvConfig{
			"pong": {
				Keys: map[string]int{"1": 0, "2": 1, "3": 2, "4": 3, "5": 4, "6": 5},
			},
			"cartpole": {
				MaxSteps: 500,
				Keys:     map[string]int{"left": 0, "a": 0, "right": 1, "d": 1},
			},
			"colorpad": {
				Keys: map[string]int{
					"r": 1, "g": 2, "b": 3,
					"1": 4, "2": 5, "3": 6,
					"i": 7, "n": 8, "c": 9, "space": 10,
				},
			},
		},
		Storage: StorageConfig{Path: "~/.envview/envview.db"},
		Server: ServerConfig{
			Address:            ":23234",
			IdleTimeoutMinutes: 30,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
