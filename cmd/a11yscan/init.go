package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/config"
)

//go:embed templates/a11yscan.yaml
var ruleFileTemplate []byte

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a rule file with example rules",
		Long: `Init creates a new .a11yscan rule file in the current directory.

The generated file includes:
- An example CEL rule and an example JavaScript rule
- Message templates for their checks
- A commented translation example

Examples:
  # Create .a11yscan in current directory
  a11yscan init

  # Create the rule file at a specific path
  a11yscan init -o rules/a11y.yaml

  # Force overwrite existing file
  a11yscan init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the rule file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing rule file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("rule file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, ruleFileTemplate, 0600); err != nil {
		return fmt.Errorf("failed to write rule file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created rule file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to add your own rules, then run one with:")
	fmt.Fprintln(out, "  a11yscan run no-autoplay --html '<video src=\"intro.mp4\" autoplay></video>'")

	return nil
}
