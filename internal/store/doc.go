// Package store provides SQLite-based history of rule runs.
//
// Every run of the CLI can be recorded with the rule id, the evaluated
// markup, the options, and the published result, so earlier runs can be
// listed and compared with `a11yscan history`.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because the
// history is a single local file, and the CGO-free driver keeps
// cross-compilation simple. Results are stored as JSON documents since the
// audit engine treats them as opaque values.
package store
