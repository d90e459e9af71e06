// Package rule defines the rule contract of the audit engine and the registry
// rules live in.
//
// A rule is a Definition: an identifier, configuration flags such as
// ExcludeHidden, and an Evaluator that synchronously checks the nodes of a
// Context. The Registry holds definitions in registration order and resolves
// identifiers by exact match, first match wins.
//
// The package also provides the building blocks of the virtual rule pipeline:
// BuildContext wraps a single node into a Context, DisableHiddenExclusion
// turns off hidden-content exclusion on a definition, and Invoke calls a
// definition's evaluator exactly once.
package rule
