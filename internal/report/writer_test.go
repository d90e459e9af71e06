package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/a11yscan/internal/model"
)

// createTestReport creates a published image-alt report for testing.
func createTestReport() *Report {
	rr := model.NewRuleResult("image-alt")
	rr.Description = "Ensures <img> elements have alternate text"
	rr.Help = "Images must have alternate text"
	rr.HelpURL = "https://example.com/image-alt"
	rr.Impact = model.ImpactCritical
	rr.Tags = []string{"wcag2a", "wcag111"}
	rr.AddNode(model.NodeResult{
		HTML:    `<img src="logo.png" alt="Logo">`,
		Outcome: model.OutcomePassed,
		Checks:  []model.CheckResult{{ID: "has-alt", Outcome: model.OutcomePassed, Message: "Element has an alt attribute"}},
	})
	rr.AddNode(model.NodeResult{
		HTML:           `<img src="banner.png">`,
		Outcome:        model.OutcomeFailed,
		Impact:         model.ImpactCritical,
		FailureSummary: "Fix all of the following:\n  Element does not have an alt attribute",
		Checks:         []model.CheckResult{{ID: "has-alt", Outcome: model.OutcomeFailed, Message: "Element does not have an alt attribute", Impact: model.ImpactCritical}},
	})

	return &Report{
		RuleID:      "image-alt",
		Found:       true,
		Locale:      "en",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Result:      rr,
	}
}

// TestSummarize tests node counting.
func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("counts nodes by outcome and impact", func(t *testing.T) {
		t.Parallel()

		s := Summarize(createTestReport().RuleResult())
		if s.Passed != 1 || s.Failed != 1 || s.Incomplete != 0 || s.Inapplicable != 0 {
			t.Errorf("unexpected summary %+v", s)
		}
		if s.Total() != 2 {
			t.Errorf("expected total 2, got %d", s.Total())
		}
		if s.ByImpact[model.ImpactCritical] != 1 {
			t.Errorf("expected one critical node, got %v", s.ByImpact)
		}
	})

	t.Run("nil result yields an empty summary", func(t *testing.T) {
		t.Parallel()

		if s := Summarize(nil); s.Total() != 0 || s.ByImpact == nil {
			t.Errorf("unexpected summary %+v", s)
		}
	})
}

// TestSimpleWriter tests the text output.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"Rule:    image-alt", "Images must have alternate text", "Outcome: FAILED", "FAILED:       1", `<img src="banner.png">`} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "logo.png") {
			t.Error("expected passed nodes to be hidden by default")
		}
	})

	t.Run("verbose mode includes messages and links", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true), WithShowPasses(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"has-alt: Element does not have an alt attribute", "https://example.com/image-alt", "logo.png"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("reports absent rules", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(&Report{RuleID: "missing"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Rule not found") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("prints opaque results", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(&Report{RuleID: "custom", Found: true, Result: true}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Result: true") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}

// TestJSONWriter tests the JSON output.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs the report envelope", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got map[string]any
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got["ruleId"] != "image-alt" || got["found"] != true || got["outcome"] != "failed" {
			t.Errorf("unexpected envelope %v", got)
		}
		summary, ok := got["summary"].(map[string]any)
		if !ok || summary["failed"] != float64(1) {
			t.Errorf("unexpected summary %v", got["summary"])
		}
		result, ok := got["result"].(map[string]any)
		if !ok || result["impact"] != "critical" {
			t.Errorf("unexpected result %v", got["result"])
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected a single line of JSON")
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"ruleId\"") {
			t.Errorf("expected indented output, got %q", buf.String())
		}
	})

	t.Run("result only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithResultOnly()).Write(&Report{RuleID: "missing"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "null\n" {
			t.Errorf("expected null, got %q", buf.String())
		}
	})

	t.Run("opaque results have no summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(&Report{RuleID: "custom", Found: true, Result: "ok"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "summary") || !strings.Contains(buf.String(), `"result":"ok"`) {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown output.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes rule table, summary, and violations", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewMarkdownWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected a non-zero byte count")
		}

		output := buf.String()
		for _, want := range []string{
			"# Accessibility Report: image-alt",
			"https://example.com/image-alt",
			"## Summary",
			"mermaid",
			"## Violations",
			"banner.png",
			"Element does not have an alt attribute",
			"[!CAUTION]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "## Needs Review") {
			t.Error("expected no review section without incomplete nodes")
		}
	})

	t.Run("absent rule", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(&Report{RuleID: "missing"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "is not registered") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("opaque result as JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := &Report{RuleID: "custom", Found: true, Result: map[string]int{"count": 2}}
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "```json") || !strings.Contains(buf.String(), `"count": 2`) {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}

// errWriter is a Writer that always fails.
type errWriter struct{}

func (errWriter) Write(*Report) (int, error) {
	return 0, errors.New("write failed")
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

		n, err := mw.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("expected %d bytes, got %d", text.Len()+js.Len(), n)
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		_, err := NewMultiWriter(errWriter{}, NewSimpleWriter(&after)).Write(createTestReport())
		if err == nil {
			t.Fatal("expected an error")
		}
		if after.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		if n, err := NewMultiWriter().Write(createTestReport()); n != 0 || err != nil {
			t.Errorf("expected 0, nil; got %d, %v", n, err)
		}
	})
}

// TestTruncateString tests truncation with ellipsis.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{input: "short", maxLen: 10, want: "short"},
		{input: "exactly10!", maxLen: 10, want: "exactly10!"},
		{input: "this is too long", maxLen: 10, want: "this is..."},
		{input: "abcdef", maxLen: 2, want: "ab"},
		{input: "画像には代替テキストが必要です", maxLen: 6, want: "画像に..."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
