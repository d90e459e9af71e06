package rule

import (
	"slices"
)

// Result is whatever a rule's evaluator returns.
//
// The audit engine never inspects it: booleans, nil, maps, and structs all
// flow through unchanged. Built-in evaluators return *model.RuleResult.
type Result = any

// Options is the caller-supplied options mapping passed to an evaluator.
// The engine passes it through unmodified.
type Options map[string]any

// Evaluator is the capability every rule exposes: synchronous evaluation of a
// context with options.
//
// Design decision: We use an interface rather than a bare function field
// because:
//  1. Evaluators carry compiled state (CEL programs, scripts)
//  2. Tests can substitute recording evaluators
//  3. EvaluatorFunc still covers the simple function case
type Evaluator interface {
	// Evaluate checks the nodes of c and returns the rule's result.
	// A returned error is propagated unchanged to the caller of the audit.
	Evaluate(c *Context, opts Options) (Result, error)
}

// EvaluatorFunc adapts an ordinary function to the Evaluator interface.
type EvaluatorFunc func(c *Context, opts Options) (Result, error)

// Evaluate calls f(c, opts).
func (f EvaluatorFunc) Evaluate(c *Context, opts Options) (Result, error) {
	return f(c, opts)
}

// Definition is a registered rule.
//
// A Definition is owned by the Registry it is added to and is mutable:
// DisableHiddenExclusion changes ExcludeHidden in place, and the change is
// visible to every later lookup of the same definition.
type Definition struct {
	// ID uniquely identifies the rule, e.g. "image-alt".
	ID string

	// ExcludeHidden makes the rule skip content hidden by markup.
	ExcludeHidden bool

	// Tags classify the rule, e.g. "wcag2a" or "best-practice".
	Tags []string

	// Evaluator runs the rule's check logic.
	Evaluator Evaluator
}

// HasTag reports whether the definition carries the given tag.
func (d *Definition) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// validate checks that the definition can be registered.
func (d *Definition) validate() error {
	if d == nil {
		return ErrNilDefinition
	}
	if d.ID == "" {
		return ErrEmptyID
	}
	if d.Evaluator == nil {
		return ErrNilEvaluator
	}
	return nil
}
