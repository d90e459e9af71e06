// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for documentation and pull requests
//
// Design decision: We separate report writing from result data structures
// (which are in the model package). The audit engine returns results as
// opaque values; writers render *model.RuleResult in full and fall back to a
// generic rendering for anything else.
package report
