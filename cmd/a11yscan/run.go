package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/a11yscan/internal/audit"
	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/log"
	"github.com/nao1215/a11yscan/internal/metadata"
	"github.com/nao1215/a11yscan/internal/metrics"
	"github.com/nao1215/a11yscan/internal/report"
	"github.com/nao1215/a11yscan/internal/store"
	"github.com/nao1215/a11yscan/internal/tracing"
	"github.com/nao1215/a11yscan/internal/vdom"
)

// errRuleNotFound is returned after the report of an unregistered rule has
// been written, so the process exits with a non-zero status.
var errRuleNotFound = errors.New("rule not found")

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <rule-id>",
		Short: "Run one rule against an HTML snippet",
		Long: `Run evaluates a single rule against one node that is not part of a
rendered page.

The node is the first element of the given markup. Hidden-content exclusion
is always disabled, because a detached node has no computed style.

Input:
  --html     inline markup
  --file     a file of markup, or of a serialized node when it ends in
             .json, .yaml, or .yml; "-" reads standard input
  (neither)  markup from standard input

Examples:
  # Check an image for alternate text
  a11yscan run image-alt --html '<img src="logo.png">'

  # Check a component rendered to a file, with Japanese messages
  a11yscan run button-name --file button.html --locale ja

  # Pass options to the rule
  a11yscan run label --html '<input id="q">' --option assumeLabelled=true

  # Describe the node without markup
  a11yscan run aria-roles --file node.yaml

  # Output a Markdown report and record the run in the history
  a11yscan run link-name --file nav.html --markdown --save`,
		Args: cobra.ExactArgs(1),
		RunE: runRunCmd,
	}

	// Input flags
	cmd.Flags().String("html", "", "Markup to evaluate")
	cmd.Flags().StringP("file", "f", "", "File with markup or a serialized node (- for stdin)")

	// Rule flags
	cmd.Flags().StringArrayP("option", "O", nil, "Rule option as key=value (repeatable)")
	cmd.Flags().StringP("locale", "l", config.DefaultLocale, "Locale of rule descriptions and messages")
	cmd.Flags().Bool("no-builtin", false, "Do not load the built-in rules")
	cmd.Flags().Bool("no-publish", false, "Return the raw rule result without descriptions and messages")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History and telemetry flags
	cmd.Flags().Bool("save", false, "Record the run in the result history")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the result history database")
	cmd.Flags().String("metrics-file", "", "Write run metrics in Prometheus text format to this file")
	cmd.Flags().String("otlp-endpoint", "", "Export traces to this OTLP/HTTP collector (host:port)")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	if err := loadRuleFile(cfg, logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.NewContext(ctx, logger)

	return runRule(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
}

// buildRunConfig creates a Config from cobra command flags.
func buildRunConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	if err := globalFlags(cmd, cfg); err != nil {
		return nil, err
	}

	var err error
	if len(args) > 0 {
		cfg.RuleID = args[0]
	}

	if cfg.HTML, err = cmd.Flags().GetString("html"); err != nil {
		return nil, err
	}
	if cfg.InputFile, err = cmd.Flags().GetString("file"); err != nil {
		return nil, err
	}

	rawOptions, err := cmd.Flags().GetStringArray("option")
	if err != nil {
		return nil, err
	}
	if cfg.Options, err = config.ParseOptions(rawOptions); err != nil {
		return nil, err
	}

	if cfg.Locale, err = cmd.Flags().GetString("locale"); err != nil {
		return nil, err
	}
	if cfg.NoBuiltin, err = cmd.Flags().GetBool("no-builtin"); err != nil {
		return nil, err
	}
	if cfg.NoPublish, err = cmd.Flags().GetBool("no-publish"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.SaveToDB, err = cmd.Flags().GetBool("save"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.MetricsFile, err = cmd.Flags().GetString("metrics-file"); err != nil {
		return nil, err
	}
	if cfg.OTLPEndpoint, err = cmd.Flags().GetString("otlp-endpoint"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// runRule runs the configured rule and writes its report.
func runRule(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	if cfg.OTLPEndpoint != "" {
		tc := tracing.DefaultConfig(config.AppName, getVersion())
		tc.OTLPEndpoint = cfg.OTLPEndpoint
		tc.Insecure = true
		shutdown, err := tracing.Setup(ctx, tc, logger)
		if err != nil {
			return err
		}
		defer func() {
			_ = tracing.Shutdown(shutdown, logger) //nolint:errcheck // logged by Shutdown
		}()
	}

	files, err := ruleFiles(cfg)
	if err != nil {
		return err
	}
	registry, err := config.BuildRegistry(logger, files...)
	if err != nil {
		return err
	}

	node, err := readNode(cfg, stdin)
	if err != nil {
		return err
	}

	promRegistry := prometheus.NewRegistry()
	m, err := metrics.New(promRegistry)
	if err != nil {
		return err
	}

	auditOpts := []audit.Option{
		audit.WithLogger(logger),
		audit.WithMetrics(m),
		audit.WithPublisher(nil),
	}
	if !cfg.NoPublish {
		catalog, err := config.BuildCatalog(files...)
		if err != nil {
			return err
		}
		auditOpts = append(auditOpts, audit.WithPublisher(metadata.NewCatalogPublisher(catalog,
			metadata.WithLocale(cfg.Locale),
			metadata.WithPublisherLogger(logger),
		)))
	}
	auditor := audit.New(registry, auditOpts...)

	result, found, runErr := auditor.RunVirtualRule(ctx, cfg.RuleID, node, cfg.Options)

	rep := &report.Report{
		RuleID:      cfg.RuleID,
		Found:       found,
		Locale:      cfg.Locale,
		GeneratedAt: time.Now(),
		Result:      result,
	}

	if cfg.SaveToDB {
		if err := saveRun(ctx, cfg, node, rep, runErr, logger); err != nil {
			logger.Error("failed to save run", "error", err)
		}
	}

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, promRegistry); err != nil {
			logger.Error("failed to write metrics", "path", cfg.MetricsFile, "error", err)
		}
	}

	// A publishing failure still carries the rule's result, so it is
	// reported before the error is returned.
	if runErr != nil && !errors.Is(runErr, audit.ErrPublish) {
		return runErr
	}

	if err := outputReport(cfg, stdout, rep); err != nil {
		if runErr != nil {
			return errors.Join(runErr, fmt.Errorf("failed to write report: %w", err))
		}
		return fmt.Errorf("failed to write report: %w", err)
	}

	if runErr != nil {
		return runErr
	}
	if !found {
		return fmt.Errorf("%w: %s", errRuleNotFound, cfg.RuleID)
	}
	return nil
}

// readNode returns the node to evaluate from --html, --file, or stdin.
func readNode(cfg *config.Config, stdin io.Reader) (*html.Node, error) {
	if cfg.HTML != "" {
		return vdom.ParseString(cfg.HTML)
	}

	var (
		r    io.Reader = stdin
		name           = cfg.InputFile
	)
	if name != "" && name != "-" {
		f, err := os.Open(name) //nolint:gosec // User-provided input path is intentional
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		var s vdom.SerialNode
		if err := json.NewDecoder(r).Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode serialized node: %w", err)
		}
		return vdom.FromSerial(s), nil
	case ".yaml", ".yml":
		var s vdom.SerialNode
		if err := yaml.NewDecoder(r).Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode serialized node: %w", err)
		}
		return vdom.FromSerial(s), nil
	default:
		return vdom.ParseFragment(r)
	}
}

// outputReport writes the report in the requested format.
func outputReport(cfg *config.Config, stdout io.Writer, rep *report.Report) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := w.Write(rep)
	return err
}

// saveRun records the run in the result history.
func saveRun(ctx context.Context, cfg *config.Config, node *html.Node, rep *report.Report, runErr error, logger *slog.Logger) error {
	db, err := store.Open(cfg.DBDir, store.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	run := store.Run{
		RuleID:   rep.RuleID,
		Found:    rep.Found,
		NodeHTML: vdom.New(node).HTML(),
		Options:  cfg.Options,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if rep.Result != nil {
		data, err := report.Marshal(rep.Result)
		if err != nil {
			return fmt.Errorf("failed to serialize result: %w", err)
		}
		run.Result = data
	}
	if rr := rep.RuleResult(); rr != nil {
		run.Outcome = string(rr.Outcome())
	}

	saved, err := db.SaveRun(ctx, run)
	if err != nil {
		return err
	}

	logger.Info("run saved to history", "id", saved.ID, "path", db.Path())
	return nil
}
