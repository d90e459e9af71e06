package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/a11yscan/internal/audit"
	"github.com/nao1215/a11yscan/internal/config"
)

// writeFile writes content to name in a temporary directory and returns the
// path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// emptyRuleFile returns a rule file without rules, so only built-in rules
// are registered regardless of the environment.
func emptyRuleFile(t *testing.T) string {
	t.Helper()
	return writeFile(t, "rules.yaml", "rules: []\n")
}

// decodeJSON decodes a JSON report.
func decodeJSON(t *testing.T, s string) map[string]any {
	t.Helper()

	var got map[string]any
	if err := json.Unmarshal([]byte(s), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, s)
	}
	return got
}

// TestRunCmd tests running rules from the command line.
func TestRunCmd(t *testing.T) {
	t.Parallel()

	t.Run("reports a failing image", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, "", "run", "image-alt", "-c", emptyRuleFile(t), "--html", `<img src="a.png">`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Rule:    image-alt", "Images must have alternate text", "Outcome: FAILED"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q, got %q", want, stdout)
			}
		}
	})

	t.Run("json report with localized metadata", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, "", "run", "image-alt", "-c", emptyRuleFile(t),
			"--html", `<img src="a.png">`, "--locale", "ja", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := decodeJSON(t, stdout)
		if got["found"] != true || got["outcome"] != "failed" {
			t.Errorf("unexpected envelope %v", got)
		}
		result := got["result"].(map[string]any)
		if result["help"] != "画像には代替テキストが必要です" {
			t.Errorf("expected Japanese help, got %v", result["help"])
		}
	})

	t.Run("aria-roles runs on hidden markup", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, "", "run", "aria-roles", "-c", emptyRuleFile(t),
			"--html", `<div role="nav" hidden></div>`, "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := decodeJSON(t, stdout); got["outcome"] != "failed" {
			t.Errorf("expected the hidden node to be evaluated, got %v", got["outcome"])
		}
	})

	t.Run("raw result without publishing", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, "", "run", "image-alt", "-c", emptyRuleFile(t),
			"--html", `<img src="a.png" alt="A">`, "--json", "--no-publish")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		result := decodeJSON(t, stdout)["result"].(map[string]any)
		if _, ok := result["help"]; ok {
			t.Errorf("expected no metadata, got %v", result)
		}
	})

	t.Run("passes options to the rule", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, "", "run", "label", "-c", emptyRuleFile(t),
			"--html", `<input type="text" id="q">`, "--option", "assumeLabelled=true", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := decodeJSON(t, stdout); got["outcome"] != "passed" {
			t.Errorf("expected passed, got %v", got["outcome"])
		}
	})

	t.Run("reads a serialized node", func(t *testing.T) {
		t.Parallel()

		nodeFile := writeFile(t, "node.yaml", "nodeName: div\nattributes:\n  role: navigation\n")
		stdout, _, err := executeCmd(t, "", "run", "aria-roles", "-c", emptyRuleFile(t), "--file", nodeFile, "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := decodeJSON(t, stdout); got["outcome"] != "passed" {
			t.Errorf("expected passed, got %v", got["outcome"])
		}
	})

	t.Run("reads markup from stdin", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, `<button>Save</button>`, "run", "button-name", "-c", emptyRuleFile(t), "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := decodeJSON(t, stdout); got["outcome"] != "passed" {
			t.Errorf("expected passed, got %v", got["outcome"])
		}
	})

	t.Run("user rules shadow built-in rules", func(t *testing.T) {
		t.Parallel()

		rules := writeFile(t, ".a11yscan", `
rules:
  - id: image-alt
    kind: cel
    metadata:
      help: Always passes
    spec:
      check: "true"
`)
		stdout, _, err := executeCmd(t, "", "run", "image-alt", "-c", rules, "--html", `<img src="a.png">`, "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := decodeJSON(t, stdout)
		if got["outcome"] != "passed" || got["result"].(map[string]any)["help"] != "Always passes" {
			t.Errorf("expected the user's rule, got %v", got)
		}
	})

	t.Run("writes the report when message rendering fails", func(t *testing.T) {
		t.Parallel()

		rules := writeFile(t, ".a11yscan", `
rules:
  - id: broken-message
    kind: cel
    spec:
      check: "true"
checks:
  broken-message:
    pass: "{{.Data"
`)
		stdout, _, err := executeCmd(t, "", "run", "broken-message", "-c", rules, "--html", `<p>x</p>`, "--json")
		if !errors.Is(err, audit.ErrPublish) {
			t.Fatalf("expected ErrPublish, got %v", err)
		}
		got := decodeJSON(t, stdout)
		if got["found"] != true || got["outcome"] != "passed" {
			t.Errorf("expected the rule result in the report, got %v", got)
		}
	})

	t.Run("unknown rule", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, "", "run", "no-such-rule", "-c", emptyRuleFile(t), "--html", `<p>`)
		if !errors.Is(err, errRuleNotFound) {
			t.Errorf("expected errRuleNotFound, got %v", err)
		}
		if !strings.Contains(stdout, "Rule not found") {
			t.Errorf("expected a not found report, got %q", stdout)
		}
	})

	t.Run("missing explicit rule file", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCmd(t, "", "run", "image-alt", "-c", filepath.Join(t.TempDir(), "missing.yaml"), "--html", `<img>`)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("conflicting inputs", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCmd(t, "", "run", "image-alt", "--html", `<img>`, "--file", "x.html")
		if !errors.Is(err, config.ErrConflictingInputs) {
			t.Errorf("expected ErrConflictingInputs, got %v", err)
		}
	})

	t.Run("invalid option", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCmd(t, "", "run", "image-alt", "--html", `<img>`, "--option", "novalue")
		if !errors.Is(err, config.ErrInvalidOption) {
			t.Errorf("expected ErrInvalidOption, got %v", err)
		}
	})

	t.Run("writes the report and metrics to files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		reportPath := filepath.Join(dir, "out", "report.md")
		metricsPath := filepath.Join(dir, "metrics.prom")

		_, _, err := executeCmd(t, "", "run", "link-name", "-c", emptyRuleFile(t),
			"--html", `<a href="/"></a>`, "--markdown", "-o", reportPath, "--metrics-file", metricsPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		md, err := os.ReadFile(reportPath) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(md), "# Accessibility Report: link-name") {
			t.Errorf("unexpected report %q", md)
		}

		prom, err := os.ReadFile(metricsPath) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read metrics: %v", err)
		}
		if !strings.Contains(string(prom), `a11yscan_rule_runs_total{outcome="found",rule="link-name"} 1`) {
			t.Errorf("unexpected metrics %q", prom)
		}
	})

	t.Run("debug logging goes to stderr", func(t *testing.T) {
		t.Parallel()

		_, stderr, err := executeCmd(t, "", "run", "image-alt", "-c", emptyRuleFile(t),
			"--html", `<img alt="A">`, "--log-level", "debug", "--log-format", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stderr, `"msg":"invoking rule"`) {
			t.Errorf("expected debug logs, got %q", stderr)
		}
	})
}

// TestRunSaveAndHistory tests recording runs and listing them.
func TestRunSaveAndHistory(t *testing.T) {
	t.Parallel()

	dbDir := t.TempDir()
	rules := emptyRuleFile(t)

	for _, markup := range []string{`<img src="a.png">`, `<img src="a.png" alt="A">`} {
		if _, _, err := executeCmd(t, "", "run", "image-alt", "-c", rules, "--html", markup, "--save", "--db-dir", dbDir); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	_, _, _ = executeCmd(t, "", "run", "no-such-rule", "-c", rules, "--html", `<p>`, "--save", "--db-dir", dbDir) //nolint:dogsled // the error is expected

	stdout, _, err := executeCmd(t, "", "history", "--db-dir", dbDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"image-alt", "failed", "passed", "not found"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected history to contain %q, got %q", want, stdout)
		}
	}

	stdout, _, err = executeCmd(t, "", "history", "--db-dir", dbDir, "--rule", "image-alt", "--limit", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected a header and one run, got %q", stdout)
	}
	id := strings.Fields(lines[1])[0]

	stdout, _, err = executeCmd(t, "", "history", id, "--db-dir", dbDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := decodeJSON(t, stdout)
	if got["id"] != id || got["ruleId"] != "image-alt" || got["nodeHtml"] != `<img src="a.png" alt="A"/>` {
		t.Errorf("unexpected run %v", got)
	}
}

// TestHistoryWithoutDatabase tests the history command before any run was
// saved.
func TestHistoryWithoutDatabase(t *testing.T) {
	t.Parallel()

	_, _, err := executeCmd(t, "", "history", "--db-dir", filepath.Join(t.TempDir(), "none"))
	if err == nil || !strings.Contains(err.Error(), "no history found") {
		t.Errorf("expected a no history error, got %v", err)
	}
}

// TestRulesCmd tests listing rules.
func TestRulesCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists built-in rules", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, "", "rules", "-c", emptyRuleFile(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"ID", "image-alt", "aria-roles", "button-name", "critical"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("filters by tag in the requested locale", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, "", "rules", "-c", emptyRuleFile(t), "--tag", "section508", "--locale", "ja")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "ボタンには識別可能なテキストが必要です") {
			t.Errorf("expected Japanese help, got %q", stdout)
		}
		if strings.Contains(stdout, "tabindex") {
			t.Errorf("expected tabindex to be filtered out, got %q", stdout)
		}
	})

	t.Run("no rules", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, "", "rules", "-c", emptyRuleFile(t), "--no-builtin")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "No rules found.") {
			t.Errorf("unexpected output %q", stdout)
		}
	})
}
