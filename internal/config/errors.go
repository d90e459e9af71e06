package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate and by rule file loading, and
// provide specific information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances at each failure. This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Dynamic details such as the rule id are added by
// wrapping with fmt.Errorf.
var (
	// ErrNoRuleID is returned when no rule id is given to run, or when a rule
	// in a rule file has no id.
	ErrNoRuleID = errors.New("no rule id specified")

	// ErrConflictingInputs is returned when both --html and --file are given.
	// A run evaluates exactly one node.
	ErrConflictingInputs = errors.New("conflicting inputs: --html and --file cannot be used together")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidOption is returned for a --option value that is not of the
	// form key=value or has an empty key.
	ErrInvalidOption = errors.New("invalid option: expected key=value")

	// ErrUnknownRuleKind is returned when a rule's kind is neither "cel" nor
	// "script".
	ErrUnknownRuleKind = errors.New("unknown rule kind")

	// ErrInvalidRuleSpec is returned when a rule's spec cannot be decoded.
	ErrInvalidRuleSpec = errors.New("invalid rule spec")

	// ErrInvalidLocale is returned for a locale that is not a BCP 47 tag.
	ErrInvalidLocale = errors.New("invalid locale")
)
