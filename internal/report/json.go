package report

import (
	"encoding/json"
	"io"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library. The result types already carry json tags, and the history
// store reads back what this writer produces.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// resultOnly writes the bare result instead of the whole report.
	resultOnly bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithResultOnly writes only the rule result, without the report envelope.
// The output of an absent rule is null.
func WithResultOnly() JSONWriterOption {
	return func(w *JSONWriter) {
		w.resultOnly = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// jsonReport adds a summary to the report envelope.
type jsonReport struct {
	*Report

	// Outcome is the overall outcome of a *model.RuleResult.
	Outcome string `json:"outcome,omitempty"`

	// Summary is present for *model.RuleResult values only.
	Summary *Summary `json:"summary,omitempty"`
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(report *Report) (int, error) {
	if w.resultOnly {
		return w.writeJSON(report.Result)
	}

	wrapped := jsonReport{Report: report}
	if rr := report.RuleResult(); rr != nil {
		s := Summarize(rr)
		wrapped.Summary = &s
		wrapped.Outcome = string(rr.Outcome())
	}
	return w.writeJSON(wrapped)
}

// Marshal returns the JSON encoding of v as written by a compact JSONWriter,
// without the trailing newline.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
