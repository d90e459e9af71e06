package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/report"
	"github.com/nao1215/a11yscan/internal/store"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show runs recorded with --save",
		Long: `History lists the runs recorded with "a11yscan run --save", newest first.

With a run id, it prints the stored result of that run as JSON.

Examples:
  # List the 20 most recent runs
  a11yscan history

  # List runs of one rule
  a11yscan history --rule image-alt --limit 5

  # Show one run
  a11yscan history 6f1c2a0e-8d7b-4c33-9a51-2f0e4c1d9b77`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("rule", "r", "", "Only list runs of this rule")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the result history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	ruleID, err := cmd.Flags().GetString("rule")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	db, err := store.Open(dbDir, store.Options{CreateIfNotExists: false})
	if err != nil {
		return fmt.Errorf("no history found (record runs with `a11yscan run --save`): %w", err)
	}
	defer db.Close()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		run, err := db.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		_, err = report.NewJSONWriter(out, report.WithPrettyPrint(), report.WithResultOnly()).Write(&report.Report{Result: run})
		return err
	}

	runs, err := db.ListRuns(cmd.Context(), ruleID, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tRULE\tOUTCOME")
	for _, run := range runs {
		outcome := run.Outcome
		switch {
		case run.Error != "":
			outcome = "error"
		case !run.Found:
			outcome = "not found"
		case outcome == "":
			outcome = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			run.ID,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.RuleID,
			outcome,
		)
	}
	return tw.Flush()
}
