package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"contentcms/internal/models"
	"contentcms/internal/reconcile"
	"contentcms/internal/store"
)

var (
	dryRun       bool
	historyLimit int
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Bring the stored content groups in line with the schema",
	Long: `Reconcile creates the groups the schema declares, adds and removes their
areas, and deletes groups the schema no longer declares.

With --dry-run the writes are listed but not applied.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent reconciliation runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	reconcileCmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the writes without applying them")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to list")
	reconcileCmd.AddCommand(historyCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if dryRun {
		plan, err := reconcile.New(a.repo, models.SystemClock).Plan(a.schema)
		if err != nil {
			return err
		}
		printPlan(out, plan)
		return nil
	}

	res, err := a.reconcile()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created %d, updated %d, removed %d\n", res.Created, res.Updated, res.Removed)
	return nil
}

func printPlan(w io.Writer, plan *reconcile.Plan) {
	if plan.Empty() {
		fmt.Fprintln(w, "nothing to do")
		return
	}
	for _, step := range []struct {
		verb   string
		groups []*models.ContentGroup
	}{
		{"create", plan.Create},
		{"update", plan.Update},
		{"remove", plan.Remove},
	} {
		for _, g := range step.groups {
			fmt.Fprintf(w, "%s %s.%s\n", step.verb, g.Namespace, g.Name)
		}
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.runs == nil {
		return fmt.Errorf("reconciliation history needs the %s store", "postgres")
	}
	entries, err := a.runs.RecentEntries(historyLimit)
	if err != nil {
		return err
	}
	printHistory(cmd.OutOrStdout(), entries)
	return nil
}

func printHistory(w io.Writer, entries []store.ReconcileLogEntry) {
	for _, e := range entries {
		status := "ok"
		if e.Error != "" {
			status = "failed: " + e.Error
		}
		fmt.Fprintf(w, "%s  created %d, updated %d, removed %d  %s\n",
			e.ReconciledAt.Format("2006-01-02 15:04:05"), e.Created, e.Updated, e.Removed, status)
	}
}
