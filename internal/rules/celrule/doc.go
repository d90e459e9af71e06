// Package celrule implements rules written as CEL (Common Expression
// Language) expressions.
//
// A CEL rule has up to three expressions, each evaluated once per candidate
// node:
//   - matches (bool, optional): whether the rule applies to the node
//   - check (bool, required): whether the node passes
//   - data (any, optional): evidence attached to the check result
//
// Expressions have access to two variables:
//   - `node` (map): nodeName, attributes, text, childCount, hidden
//   - `options` (map): the options passed to the run
//
// Besides the CEL standard library and the strings extension, the following
// functions are available:
//   - isValidRole(string) bool: whether the token is a WAI-ARIA role
//   - isValidLang(string) bool: whether the value is a well-formed BCP 47 tag
//   - tokens(string) list<string>: the value split on whitespace
//
// Example:
//
//	matches: "'role' in node.attributes"
//	check:   "tokens(node.attributes.role).all(r, isValidRole(r))"
package celrule
