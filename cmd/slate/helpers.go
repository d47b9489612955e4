package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"slate/internal/pathspec"
)

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

var titleCaser = cases.Title(language.Und)

// slotLabel renders a mapping slot key as a human heading, e.g.
// "asset_published_path" becomes "Asset Published Path".
func slotLabel(slot pathspec.Slot) string {
	return titleCaser.String(strings.ReplaceAll(string(slot), "_", " "))
}

// parseBindings turns repeated KEY=VALUE flags into template bindings.
// Values that parse as integers or booleans are converted so typed
// variables validate naturally.
func parseBindings(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid binding %q (expected KEY=VALUE)", pair)
		}
		out[strings.TrimSpace(key)] = coerceValue(strings.TrimSpace(value))
	}
	return out, nil
}

func coerceValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// parseVariableFlags assembles variable declarations from the three
// repeatable flags: --var NAME=TYPE, --var-default NAME=VALUE, and
// --var-allowed NAME=V1,V2.
func parseVariableFlags(varFlags, defaultFlags, allowedFlags []string) ([]pathspec.Variable, error) {
	byName := make(map[string]*pathspec.Variable)
	var order []string

	for _, flag := range varFlags {
		name, typeName, _ := strings.Cut(flag, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid --var %q (expected NAME or NAME=TYPE)", flag)
		}
		varType, err := pathspec.ParseVariableType(strings.TrimSpace(typeName))
		if err != nil {
			return nil, fmt.Errorf("--var %s: %w", name, err)
		}
		byName[name] = &pathspec.Variable{Name: name, Type: varType, Required: true}
		order = append(order, name)
	}

	for _, flag := range defaultFlags {
		name, value, ok := strings.Cut(flag, "=")
		name = strings.TrimSpace(name)
		v := byName[name]
		if !ok || v == nil {
			return nil, fmt.Errorf("--var-default %q does not match a --var declaration", flag)
		}
		v.Default = coerceValue(strings.TrimSpace(value))
	}

	for _, flag := range allowedFlags {
		name, list, ok := strings.Cut(flag, "=")
		name = strings.TrimSpace(name)
		v := byName[name]
		if !ok || v == nil {
			return nil, fmt.Errorf("--var-allowed %q does not match a --var declaration", flag)
		}
		for _, item := range strings.Split(list, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			v.AllowedValues = append(v.AllowedValues, coerceValue(item))
		}
	}

	out := make([]pathspec.Variable, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
