// Package model defines the result data structures shared across a11yscan.
//
// This package contains the following main types:
//   - RuleResult: the result of one rule run, with per-node outcomes
//   - NodeResult and CheckResult: the outcome for one node and one check
//   - Impact: the ordered severity of an accessibility failure
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The rule engines, the metadata publisher, reports, and the
// result store all need these types.
//
// The models are designed to be serializable to JSON for report output and
// result history.
package model
