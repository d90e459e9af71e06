package rule

import "errors"

// Rule definition errors.
// These are returned by Registry.Add and Invoke so callers can use errors.Is.
var (
	// ErrNilDefinition is returned when a nil definition is registered.
	ErrNilDefinition = errors.New("rule definition is nil")

	// ErrEmptyID is returned when a definition has no identifier.
	ErrEmptyID = errors.New("rule definition has an empty id")

	// ErrNilEvaluator is returned when a definition has no evaluator.
	ErrNilEvaluator = errors.New("rule definition has no evaluator")
)
