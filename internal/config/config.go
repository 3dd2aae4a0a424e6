// Package config implements the configuration surface (spec §6):
// default-then-overlay YAML loading, bound clamping with warnings, and
// resolution of key-binding descriptors into internal/ui's
// map[string]BoundAction.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"matchmaker/internal/logging"
)

// Layout mirrors the optional `layout` option.
type Layout struct {
	Direction    string     `yaml:"direction"` // "none" | "horizontal" | "vertical"
	PreviewRatio Percentage `yaml:"preview_ratio"`
	ListRatio    Percentage `yaml:"list_ratio"`
}

// Config is the full recognized configuration surface.
type Config struct {
	TickRateHz        int    `yaml:"tick_rate_hz"`
	PreviewDebounceMs int    `yaml:"preview_debounce_ms"`
	ChildKillGraceMs  int    `yaml:"child_kill_grace_ms"`
	InputSeparator    string `yaml:"input_separator"` // empty = line mode; else one ASCII char
	OutputSeparator   string `yaml:"output_separator"`
	OutputTemplate    string `yaml:"output_template"`

	// DefaultCommand is the candidate-producer fallback spawned when
	// stdin is a terminal (nothing piped in) and no positional items
	// were given on the command line. It produces the candidate
	// stream, not a preview — see PreviewCommand for that.
	DefaultCommand string `yaml:"default_command"`

	// PreviewCommand is the template run against the item under the
	// cursor to render the preview pane (spec §4.4's {}/{1}..{N}/{q}
	// expansion). Empty disables the preview pane regardless of
	// layout.direction.
	PreviewCommand string `yaml:"preview_command"`

	// Sync makes Pick block until the initial candidate source has
	// fully drained before starting the Event Loop, instead of
	// streaming candidates in as the UI is already live.
	Sync               bool              `yaml:"sync"`
	ColumnsSplit       string            `yaml:"columns_split"` // fixed delimiter char, or "/regex/"
	MatchColumn        int               `yaml:"match_column"`
	Layout             Layout            `yaml:"layout"`
	Binds              map[string]string `yaml:"binds"` // key_combo -> action-with-args
	PreserveSelection  bool              `yaml:"preserve_selection_on_reload"`
	InvalidUTF8LossyOK bool              `yaml:"invalid_utf8_lossy"`
}

// DefaultConfig returns the documented defaults for every option in
// spec.md §6.
func DefaultConfig() *Config {
	return &Config{
		TickRateHz:        60,
		PreviewDebounceMs: 30,
		ChildKillGraceMs:  200,
		InputSeparator:    "",
		OutputSeparator:   "\n",
		OutputTemplate:    "{}",
		DefaultCommand:    "",
		PreviewCommand:    "",
		Sync:              false,
		ColumnsSplit:      "",
		MatchColumn:       0,
		Layout: Layout{
			Direction:    "horizontal",
			PreviewRatio: Percentage(0.5),
			ListRatio:    Percentage(0),
		},
		Binds:              nil,
		PreserveSelection:  true,
		InvalidUTF8LossyOK: false,
	}
}

// Load reads a YAML config file over DefaultConfig()'s values,
// matching the teacher's DefaultConfig -> unmarshal-over-defaults
// pattern: a missing file is not an error, it simply yields defaults.
func Load(path string) (*Config, []string, error) {
	cfg := DefaultConfig()
	if path == "" {
		warnings := cfg.clamp()
		return cfg, warnings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Get(logging.CategoryBoot).Info("config file not found, using defaults: %s", path)
			warnings := cfg.clamp()
			return cfg, warnings, nil
		}
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validateStructure(); err != nil {
		return nil, nil, err
	}
	warnings := cfg.clamp()
	return cfg, warnings, nil
}
