package model

import (
	"fmt"
	"strings"
)

// Impact represents how severely an accessibility failure affects users.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons. Impacts are ordered, and the most severe
// impact of a set of failures is the one reported. MarshalText and
// UnmarshalText keep the wire and config form a readable string.
type Impact int

const (
	// ImpactNone means no impact was assigned. It marshals as an empty string.
	ImpactNone Impact = iota

	// ImpactMinor indicates a nuisance that rarely blocks users.
	ImpactMinor

	// ImpactModerate indicates a failure that makes content harder to use.
	ImpactModerate

	// ImpactSerious indicates a failure that blocks some users in some cases.
	ImpactSerious

	// ImpactCritical indicates a failure that blocks users from content or
	// functionality entirely.
	ImpactCritical
)

// String returns the lower-case name of the impact.
func (i Impact) String() string {
	switch i {
	case ImpactNone:
		return ""
	case ImpactMinor:
		return "minor"
	case ImpactModerate:
		return "moderate"
	case ImpactSerious:
		return "serious"
	case ImpactCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseImpact parses an impact name. Matching is case-insensitive and an empty
// string yields ImpactNone.
func ParseImpact(s string) (Impact, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ImpactNone, nil
	case "minor":
		return ImpactMinor, nil
	case "moderate":
		return ImpactModerate, nil
	case "serious":
		return ImpactSerious, nil
	case "critical":
		return ImpactCritical, nil
	default:
		return ImpactNone, fmt.Errorf("unknown impact %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (i Impact) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Impact) UnmarshalText(text []byte) error {
	parsed, err := ParseImpact(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// MaxImpact returns the most severe of the given impacts.
func MaxImpact(impacts ...Impact) Impact {
	highest := ImpactNone
	for _, i := range impacts {
		if i > highest {
			highest = i
		}
	}
	return highest
}
