package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseOption parses a --option value of the form key=value.
//
// The value is read as a YAML scalar or flow collection, so "true" becomes a
// boolean, "3" an integer, and "[a, b]" a list. Anything that does not parse
// is kept as a plain string.
func ParseOption(s string) (string, any, error) {
	key, raw, found := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidOption, s)
	}

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
		return key, raw, nil //nolint:nilerr // unparsable values are plain strings
	}

	return key, value, nil
}

// ParseOptions parses several --option values into a map.
// Later values override earlier ones for the same key.
func ParseOptions(values []string) (map[string]any, error) {
	opts := make(map[string]any, len(values))
	for _, v := range values {
		key, value, err := ParseOption(v)
		if err != nil {
			return nil, err
		}
		opts[key] = value
	}
	return opts, nil
}
