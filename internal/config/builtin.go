package config

import (
	_ "embed"
	"fmt"
)

//go:embed builtin.yaml
var builtinRules []byte

// Builtin returns the built-in rule set.
// The embedded file is parsed on every call, so callers get their own copy.
func Builtin() (*File, error) {
	f, err := Parse(builtinRules)
	if err != nil {
		return nil, fmt.Errorf("built-in rules: %w", err)
	}
	return f, nil
}
