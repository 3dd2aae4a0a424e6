package config

import (
	"fmt"
	"strings"

	"matchmaker/internal/interrupt"
	"matchmaker/internal/ui"
)

// navByName maps the action names a binds: entry may name onto
// internal/ui's plain navigation taxonomy.
var navByName = map[string]ui.NavAction{
	"up":            ui.NavUp,
	"down":          ui.NavDown,
	"page-up":       ui.NavPageUp,
	"page-down":     ui.NavPageDown,
	"top":           ui.NavTop,
	"bottom":        ui.NavBottom,
	"toggle":        ui.NavToggleSelect,
	"select-all":    ui.NavSelectAll,
	"deselect-all":  ui.NavDeselectAll,
	"accept":        ui.NavAccept,
	"accept-non-empty": ui.NavAcceptNonEmpty,
	"backspace":     ui.NavBackspace,
	"clear-query":   ui.NavClearQuery,
	"cursor-start":  ui.NavCursorStart,
	"cursor-end":    ui.NavCursorEnd,
	"kill-line":     ui.NavKillLine,
	"preview-up":     ui.NavPreviewUp,
	"preview-down":   ui.NavPreviewDown,
	"preview-toggle": ui.NavPreviewToggle,
}

// validateActionSyntax checks an action-with-args descriptor's shape
// without needing the full binding context, for use at config-parse
// time (spec §7: unknown actions are a ConfigError detected before any
// UI is shown).
func validateActionSyntax(descriptor string) error {
	_, err := parseAction(descriptor)
	return err
}

// ResolveBinds merges user-supplied descriptors over DefaultBindings,
// parsing each "kind" or "kind:args" descriptor into a ui.BoundAction.
func ResolveBinds(overrides map[string]string) (map[string]ui.BoundAction, error) {
	resolved := ui.DefaultBindings()
	for key, descriptor := range overrides {
		action, err := parseAction(descriptor)
		if err != nil {
			return nil, fmt.Errorf("binds[%s]: %w", key, err)
		}
		resolved[key] = action
	}
	return resolved, nil
}

// parseAction parses one "kind" or "kind:template" descriptor. Plain
// navigation actions take no args; print/execute/become/reload take a
// template; abort takes an integer exit code.
func parseAction(descriptor string) (ui.BoundAction, error) {
	kind, arg, _ := strings.Cut(descriptor, ":")
	kind = strings.TrimSpace(kind)

	if nav, ok := navByName[kind]; ok {
		return ui.BoundAction{Nav: nav}, nil
	}

	switch kind {
	case "print":
		return ui.BoundAction{Interrupt: &interrupt.Interrupt{Kind: interrupt.Print, Template: arg}}, nil
	case "execute":
		return ui.BoundAction{Interrupt: &interrupt.Interrupt{Kind: interrupt.Execute, Template: arg}}, nil
	case "become":
		return ui.BoundAction{Interrupt: &interrupt.Interrupt{Kind: interrupt.Become, Template: arg}}, nil
	case "reload":
		return ui.BoundAction{Interrupt: &interrupt.Interrupt{Kind: interrupt.Reload, Template: arg}}, nil
	case "abort":
		code := 1
		if arg != "" {
			if _, err := fmt.Sscanf(arg, "%d", &code); err != nil {
				return ui.BoundAction{}, fmt.Errorf("invalid abort exit code %q", arg)
			}
		}
		return ui.BoundAction{Interrupt: &interrupt.Interrupt{Kind: interrupt.Abort, ExitCode: code}}, nil
	default:
		return ui.BoundAction{}, fmt.Errorf("unknown action %q", kind)
	}
}
