// Package metadata publishes descriptive metadata onto rule results.
//
// A rule's evaluator produces a raw result: which nodes it looked at and which
// checks passed or failed. The publisher enriches that result with what a
// human needs to act on it: the rule's description and help text, a link to
// documentation, impact levels, and one message per check.
//
// The text lives in a Catalog keyed by rule and check identifiers, with one
// set of entries per locale. Locale selection uses golang.org/x/text/language
// matching, so "en-GB" resolves to "en" and an unknown locale falls back to the
// catalog's default.
//
// The audit engine calls Publisher.Publish once per successful rule run and
// never depends on what the publisher does with the value. Publishers must
// therefore accept any result, including booleans and nil.
package metadata
