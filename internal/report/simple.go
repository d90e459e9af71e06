package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/a11yscan/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors so the output can be piped to files or other tools.
type SimpleWriter struct {
	baseWriter

	// showPasses controls whether passed nodes are listed.
	showPasses bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowPasses configures the writer to list passed nodes.
func WithShowPasses(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showPasses = show
	}
}

// WithVerbose enables verbose output with check messages and help links.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)

	switch rr := report.RuleResult(); {
	case !report.Found:
		sb.WriteString("Rule not found. Run `a11yscan rules` to list available rules.\n\n")
	case rr == nil:
		fmt.Fprintf(&sb, "Result: %v\n\n", report.Result)
	default:
		w.writeSummary(&sb, rr)
		w.writeNodes(&sb, rr)
	}

	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *Report) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Rule:    %s\n", report.RuleID)
	if rr := report.RuleResult(); rr != nil {
		if rr.Help != "" {
			fmt.Fprintf(sb, "Help:    %s\n", rr.Help)
		}
		if rr.Impact != model.ImpactNone {
			fmt.Fprintf(sb, "Impact:  %s\n", rr.Impact)
		}
		fmt.Fprintf(sb, "Outcome: %s\n", strings.ToUpper(string(rr.Outcome())))
		if w.verbose && rr.HelpURL != "" {
			fmt.Fprintf(sb, "More:    %s\n", rr.HelpURL)
		}
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, rr *model.RuleResult) {
	s := Summarize(rr)
	fmt.Fprintf(sb, "  PASSED:       %d\n", s.Passed)
	fmt.Fprintf(sb, "  FAILED:       %d\n", s.Failed)
	fmt.Fprintf(sb, "  INCOMPLETE:   %d\n", s.Incomplete)
	fmt.Fprintf(sb, "  INAPPLICABLE: %d\n", s.Inapplicable)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeNodes(sb *strings.Builder, rr *model.RuleResult) {
	outcomes := []model.Outcome{model.OutcomeFailed, model.OutcomeIncomplete}
	if w.showPasses {
		outcomes = append(outcomes, model.OutcomePassed)
	}

	for _, outcome := range outcomes {
		nodes := rr.NodesWithOutcome(outcome)
		if len(nodes) == 0 {
			continue
		}

		fmt.Fprintf(sb, "[%s] %s\n", outcomeIndicator(outcome), strings.ToUpper(string(outcome)))
		for _, n := range nodes {
			fmt.Fprintf(sb, "  * %s\n", truncateString(n.HTML, 66))
			if n.Impact != model.ImpactNone {
				fmt.Fprintf(sb, "    Impact: %s\n", n.Impact)
			}
			if !w.verbose {
				continue
			}
			for _, c := range n.Checks {
				if c.Message != "" {
					fmt.Fprintf(sb, "    %s: %s\n", c.ID, c.Message)
				}
			}
		}
		sb.WriteString("\n")
	}
}

// outcomeIndicator returns a visual indicator for the outcome.
func outcomeIndicator(o model.Outcome) string {
	switch o {
	case model.OutcomeFailed:
		return "!!"
	case model.OutcomeIncomplete:
		return "?"
	case model.OutcomePassed:
		return "ok"
	case model.OutcomeInapplicable:
		return "-"
	default:
		return "?"
	}
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by a11yscan\n")
}
