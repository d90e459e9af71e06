package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"

	"github.com/nao1215/a11yscan/internal/log"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "a11yscan"

	// DefaultLocale is the locale of rule metadata when none is configured.
	DefaultLocale = "en"

	// DefaultLogLevel only shows problems. Debug output includes every
	// rule lookup and the options passed to the rule.
	DefaultLogLevel = "warn"

	// DefaultLogFormat is the human-readable format.
	DefaultLogFormat = "text"
)

// Config holds all options of a single a11yscan run.
// This struct is populated from CLI flags and passed through the application
// via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs for
// simplicity, as the number of options is small.
type Config struct {
	// RuleID is the identifier of the rule to run.
	RuleID string

	// HTML is inline markup to evaluate. Only its first element is used.
	HTML string

	// InputFile is a file containing markup to evaluate, or "-" for stdin.
	// Files ending in .json, .yaml, or .yml are read as serialized nodes.
	InputFile string

	// Options are passed to the rule unmodified.
	Options map[string]any

	// Locale selects the language of rule descriptions and messages.
	Locale string

	// LogLevel and LogFormat configure the logger. See internal/log.
	LogLevel  string
	LogFormat string

	// Verbose forces the debug log level.
	Verbose bool

	// ConfigFilePath is the path to the rule file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// RuleFile holds the rules loaded from the rule file, if any.
	RuleFile *File

	// NoBuiltin disables the built-in rule set.
	NoBuiltin bool

	// NoPublish skips metadata publishing and returns the raw rule result.
	NoPublish bool

	// JSONReport enables JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output path of the report. Stdout when empty.
	ReportFile string

	// DBDir is the directory of the result history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB records the run in the result history.
	SaveToDB bool

	// OTLPEndpoint, when set, exports traces to this OTLP/HTTP collector.
	OTLPEndpoint string

	// MetricsFile, when set, receives the run's metrics in the Prometheus
	// text exposition format.
	MetricsFile string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero strings. This also
// serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Options:   make(map[string]any),
		Locale:    DefaultLocale,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		DBDir:     XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for a11yscan.
// On Linux: ~/.local/share/a11yscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for a11yscan.
// On Linux: ~/.config/a11yscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// EffectiveLogLevel returns the log level to use, taking Verbose into account.
func (c *Config) EffectiveLogLevel() string {
	if c.Verbose {
		return string(log.LevelDebug)
	}
	return c.LogLevel
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
func (c *Config) Validate() error {
	if c.RuleID == "" {
		return ErrNoRuleID
	}

	if c.HTML != "" && c.InputFile != "" {
		return ErrConflictingInputs
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	for key := range c.Options {
		if key == "" {
			return ErrInvalidOption
		}
	}

	if c.Locale != "" {
		if _, err := language.Parse(c.Locale); err != nil {
			return ErrInvalidLocale
		}
	}

	if _, err := log.GetLevel(c.EffectiveLogLevel()); err != nil {
		return err
	}
	if _, err := log.GetFormat(c.LogFormat); err != nil {
		return err
	}

	return nil
}
