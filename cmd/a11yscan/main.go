// Package main provides the entry point for the a11yscan CLI.
//
// a11yscan runs a single accessibility rule against a snippet of HTML that
// is not part of a rendered page, and reports the rule's result with its
// localized description and messages.
//
// Usage:
//
//	a11yscan run <rule-id> --html '<img src="logo.png">'
//	a11yscan rules
//
// See --help for all available options.
package main

// main is the entry point for a11yscan.
func main() {
	Execute()
}
