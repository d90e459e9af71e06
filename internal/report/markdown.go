package report

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/a11yscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing, such as pull
// request comments.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation, which provides tables, code blocks, and GitHub-flavored
// markdown alerts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Accessibility Report: " + report.RuleID)
	md.PlainText("")

	rr := report.RuleResult()
	switch {
	case !report.Found:
		md.Warningf("Rule `%s` is not registered.", report.RuleID)
		md.PlainText("")
	case rr == nil:
		w.writeOpaque(md, report.Result)
	default:
		w.writeRule(md, report, rr)
		w.writeSummary(md, rr)
		w.writeNodes(md, rr)
	}

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by a11yscan on %s*", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	return len(md.String()), md.Build()
}

// writeRule writes the rule metadata table.
func (w *MarkdownWriter) writeRule(md *markdown.Markdown, report *Report, rr *model.RuleResult) {
	rows := [][]string{
		{"Rule", "`" + rr.ID + "`"},
		{"Outcome", outcomeText(rr.Outcome())},
	}
	if rr.Help != "" {
		help := rr.Help
		if rr.HelpURL != "" {
			help = markdown.Link(rr.Help, rr.HelpURL)
		}
		rows = append(rows, []string{"Help", help})
	}
	if rr.Description != "" {
		rows = append(rows, []string{"Description", rr.Description})
	}
	if rr.Impact != model.ImpactNone {
		rows = append(rows, []string{"Impact", rr.Impact.String()})
	}
	if len(rr.Tags) > 0 {
		tags := ""
		for i, t := range rr.Tags {
			if i > 0 {
				tags += ", "
			}
			tags += "`" + t + "`"
		}
		rows = append(rows, []string{"Tags", tags})
	}
	if report.Locale != "" {
		rows = append(rows, []string{"Locale", report.Locale})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// outcomeText returns a labelled outcome for tables.
func outcomeText(o model.Outcome) string {
	switch o {
	case model.OutcomePassed:
		return "✅ Passed"
	case model.OutcomeFailed:
		return "❌ Failed"
	case model.OutcomeIncomplete:
		return "⚠️ Needs review"
	case model.OutcomeInapplicable:
		return "➖ Inapplicable"
	default:
		return string(o)
	}
}

// writeSummary writes the node counts, a pie chart, and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, rr *model.RuleResult) {
	s := Summarize(rr)

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Nodes"},
		Rows: [][]string{
			{"Passed", strconv.Itoa(s.Passed)},
			{"Failed", strconv.Itoa(s.Failed)},
			{"Incomplete", strconv.Itoa(s.Incomplete)},
			{"Inapplicable", strconv.Itoa(s.Inapplicable)},
			{"**Total**", "**" + strconv.Itoa(s.Total()) + "**"},
		},
	})
	md.PlainText("")

	if s.Failed+s.Incomplete > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Impact of failed and incomplete nodes"),
			piechart.WithShowData(true),
		)
		for _, impact := range impactsBySeverity {
			if n := s.ByImpact[impact]; n > 0 {
				label := impact.String()
				if label == "" {
					label = "unrated"
				}
				chart.LabelAndIntValue(label, uint64(n)) //nolint:gosec // counts are never negative
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case s.Failed > 0 && rr.Impact >= model.ImpactSerious:
		md.Cautionf("%d node(s) fail this rule with %s impact.", s.Failed, rr.Impact)
	case s.Failed > 0:
		md.Warningf("%d node(s) fail this rule.", s.Failed)
	case s.Incomplete > 0:
		md.Importantf("%d node(s) need manual review.", s.Incomplete)
	case s.Passed > 0:
		md.Tip("All applicable nodes pass this rule.")
	default:
		md.Note("The rule does not apply to the given markup.")
	}
	md.PlainText("")
}

// writeNodes writes one table per outcome that needs attention.
func (w *MarkdownWriter) writeNodes(md *markdown.Markdown, rr *model.RuleResult) {
	sections := []struct {
		outcome model.Outcome
		header  string
	}{
		{model.OutcomeFailed, "Violations"},
		{model.OutcomeIncomplete, "Needs Review"},
	}

	for _, sec := range sections {
		nodes := rr.NodesWithOutcome(sec.outcome)
		if len(nodes) == 0 {
			continue
		}

		md.H2(sec.header)
		md.PlainText("")

		rows := make([][]string, len(nodes))
		for i, n := range nodes {
			impact := n.Impact.String()
			if impact == "" {
				impact = "-"
			}
			rows[i] = []string{
				"`" + truncateString(n.HTML, 60) + "`",
				impact,
				truncateString(nodeMessage(n), 80),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Element", "Impact", "Message"},
			Rows:   rows,
		})
		md.PlainText("")

		for _, n := range nodes {
			if n.FailureSummary != "" {
				md.Details(truncateString(n.HTML, 60), n.FailureSummary)
			}
		}
		md.PlainText("")
	}
}

// nodeMessage returns the first message of a failed or incomplete check.
func nodeMessage(n model.NodeResult) string {
	for _, c := range n.Checks {
		if c.Outcome == n.Outcome && c.Message != "" {
			return c.Message
		}
	}
	return "-"
}

// writeOpaque writes a result that is not a *model.RuleResult as JSON.
func (w *MarkdownWriter) writeOpaque(md *markdown.Markdown, result any) {
	md.H2("Result")
	md.PlainText("")

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		md.PlainTextf("`%v`", result)
		md.PlainText("")
		return
	}
	md.CodeBlocks(markdown.SyntaxHighlight("json"), string(data))
	md.PlainText("")
}
