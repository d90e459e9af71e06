package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/log"
)

// NewRootCmd creates the root command for a11yscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "a11yscan",
		Short: "Run accessibility rules against HTML snippets",
		Long: `a11yscan runs accessibility rules against HTML that is not part of a
rendered page, such as component markup or template output.

Rules come from the built-in rule set and from a rule file (.a11yscan in the
current directory, config.yaml in the XDG config directory, or .a11yscan in
the home directory). Use "a11yscan init" to create a rule file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging (same as --log-level debug)")
	cmd.PersistentFlags().String("log-level", config.DefaultLogLevel,
		"Log level ("+strings.Join(log.AllLevels, ", ")+")")
	cmd.PersistentFlags().String("log-format", config.DefaultLogFormat,
		"Log format ("+strings.Join(log.AllFormats, ", ")+")")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Rule file path (default: .a11yscan in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewRulesCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
