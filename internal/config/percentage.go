package config

import "fmt"

// Percentage is a [0,1] fraction, the Go equivalent of the original's
// percentage.rs newtype. It round-trips through YAML as a plain
// float; Config.clamp clamps an out-of-range value to [0,1] after
// loading and reports a warning for it.
type Percentage float64

// UnmarshalYAML decodes the raw value without clamping it, so that
// Config.clamp sees an out-of-range value, clamps it to the nearest
// bound and emits a warning (Testable Property #4).
func (p *Percentage) UnmarshalYAML(unmarshal func(any) error) error {
	var f float64
	if err := unmarshal(&f); err != nil {
		return err
	}
	*p = Percentage(f)
	return nil
}

func (p Percentage) MarshalYAML() (any, error) {
	return float64(p), nil
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) (int, bool) {
	if v < lo {
		return lo, true
	}
	if v > hi {
		return hi, true
	}
	return v, false
}

// clamp enforces every bounded option's range, returning a warning per
// field that was out of range and got clamped (Testable Property #4).
func (c *Config) clamp() []string {
	var warnings []string

	if v, clamped := clampInt(c.TickRateHz, 10, 240); clamped {
		warnings = append(warnings, fmt.Sprintf("tick_rate_hz %d out of range [10,240], clamped to %d", c.TickRateHz, v))
		c.TickRateHz = v
	}
	if v, clamped := clampInt(c.PreviewDebounceMs, 0, 5000); clamped {
		warnings = append(warnings, fmt.Sprintf("preview_debounce_ms %d out of range [0,5000], clamped to %d", c.PreviewDebounceMs, v))
		c.PreviewDebounceMs = v
	}
	if v, clamped := clampInt(c.ChildKillGraceMs, 0, 60_000); clamped {
		warnings = append(warnings, fmt.Sprintf("child_kill_grace_ms %d out of range [0,60000], clamped to %d", c.ChildKillGraceMs, v))
		c.ChildKillGraceMs = v
	}

	ratio := float64(c.Layout.PreviewRatio)
	if clamped := clampFloat(ratio, 0, 1); clamped != ratio {
		warnings = append(warnings, fmt.Sprintf("layout.preview_ratio %v out of range [0,1], clamped to %v", ratio, clamped))
		c.Layout.PreviewRatio = Percentage(clamped)
	}

	listRatio := float64(c.Layout.ListRatio)
	if clamped := clampFloat(listRatio, 0, 1); clamped != listRatio {
		warnings = append(warnings, fmt.Sprintf("layout.list_ratio %v out of range [0,1], clamped to %v", listRatio, clamped))
		c.Layout.ListRatio = Percentage(clamped)
	}

	return warnings
}

// validateStructure catches malformed values that are errors rather
// than clampable ranges (spec §7's ConfigError): an input_separator
// that is not exactly one byte, an unknown layout.direction, and an
// unknown or malformed bind action. Templates and sigils are not
// checked here.
func (c *Config) validateStructure() error {
	if c.InputSeparator != "" && len(c.InputSeparator) != 1 {
		return &StructuralError{Msg: fmt.Sprintf("input_separator must be exactly one ASCII byte, got %q", c.InputSeparator)}
	}
	switch c.Layout.Direction {
	case "none", "horizontal", "vertical":
	default:
		return &StructuralError{Msg: fmt.Sprintf("layout.direction must be none|horizontal|vertical, got %q", c.Layout.Direction)}
	}
	for key, action := range c.Binds {
		if err := validateActionSyntax(action); err != nil {
			return &StructuralError{Msg: fmt.Sprintf("binds[%s]: %v", key, err)}
		}
	}
	return nil
}

// StructuralError is spec §7's ConfigError: detected at pick-start and
// returned before any UI is shown.
type StructuralError struct{ Msg string }

func (e *StructuralError) Error() string { return "config: " + e.Msg }
