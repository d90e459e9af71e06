package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/metadata"
)

// NewRulesCmd creates the rules command.
func NewRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List available rules",
		Long: `Rules lists the registered rules in lookup order, with their help text
in the selected locale.

Rules from the rule file come first. When a rule file and the built-in set
define the same id, only the first definition is used.

Examples:
  # List every rule
  a11yscan rules

  # List WCAG 2 level A rules, in Japanese where available
  a11yscan rules --tag wcag2a --locale ja`,
		Args: cobra.NoArgs,
		RunE: runRulesCmd,
	}

	cmd.Flags().StringP("tag", "t", "", "Only list rules with this tag")
	cmd.Flags().StringP("locale", "l", config.DefaultLocale, "Locale of rule help text")
	cmd.Flags().Bool("no-builtin", false, "Do not load the built-in rules")

	return cmd
}

// runRulesCmd executes the rules command.
func runRulesCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	if err := globalFlags(cmd, cfg); err != nil {
		return err
	}

	tag, err := cmd.Flags().GetString("tag")
	if err != nil {
		return err
	}
	if cfg.Locale, err = cmd.Flags().GetString("locale"); err != nil {
		return err
	}
	if cfg.NoBuiltin, err = cmd.Flags().GetBool("no-builtin"); err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	if err := loadRuleFile(cfg, logger); err != nil {
		return err
	}

	files, err := ruleFiles(cfg)
	if err != nil {
		return err
	}
	registry, err := config.BuildRegistry(logger, files...)
	if err != nil {
		return err
	}
	catalog, err := config.BuildCatalog(files...)
	if err != nil {
		return err
	}

	defs := registry.List()
	if tag != "" {
		defs = registry.WithTag(tag)
	}
	view := catalog.Lookup(cfg.Locale)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tIMPACT\tTAGS\tHELP")
	listed := 0
	for _, def := range defs {
		// Skip definitions shadowed by an earlier one with the same id.
		if effective, _ := registry.Find(def.ID); effective != def {
			continue
		}
		listed++
		impact, help := ruleColumns(view, def.ID)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", def.ID, impact, strings.Join(def.Tags, ","), help)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if listed == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No rules found.")
	}
	return nil
}

// ruleColumns returns the impact and help columns of a rule.
func ruleColumns(view *metadata.View, ruleID string) (string, string) {
	info, _ := view.Rule(ruleID)

	impact := info.Impact.String()
	if impact == "" {
		impact = "-"
	}
	help := info.Help
	if help == "" {
		help = "-"
	}
	return impact, help
}
