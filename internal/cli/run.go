package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/estimate-pro/internal/core"
	"github.com/valter-silva-au/estimate-pro/internal/observability"
)

var (
	runDeliverables string
	runRequirements string
	runAutoApprove  bool
	runNoExport     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the estimation workflow",
	Long: `Run the full estimation workflow: read the deliverable list and
requirements, evaluate business, quality, and constraints aspects in
parallel, generate a per-deliverable estimate, and iterate on it with
your feedback until approval or the iteration bound.

With --yes the first estimate is approved without prompting.`,
	Args: cobra.NoArgs,
	RunE: runWorkflow,
}

func init() {
	runCmd.Flags().StringVarP(&runDeliverables, "deliverables", "d", "", "deliverables file (.csv, .yaml, or .yml)")
	runCmd.Flags().StringVarP(&runRequirements, "requirements", "r", "", "project requirements text file")
	runCmd.Flags().BoolVarP(&runAutoApprove, "yes", "y", false, "approve the first estimate without prompting")
	runCmd.Flags().BoolVar(&runNoExport, "no-export", false, "skip writing estimate, summary, and session log files")
	_ = runCmd.MarkFlagRequired("deliverables")
	_ = runCmd.MarkFlagRequired("requirements")
	rootCmd.AddCommand(runCmd)
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	deliverables, err := Workbook.ReadDeliverables(runDeliverables)
	if err != nil {
		return err
	}
	requirements, err := Workbook.ReadRequirements(runRequirements)
	if err != nil {
		return err
	}

	orch := NewOrchestrator(!runAutoApprove)
	st := orch.Execute(cmd.Context(), runDeliverables, requirements, deliverables)

	// The refinement loop shows intermediate results; always show the
	// terminal state too.
	NewConsoleReporter(os.Stdout, Formatter).ShowResults(st)

	if !runNoExport {
		exportResults(st)
	}
	notifyCompletion(st)

	if st.EstimationValue() == nil {
		return fmt.Errorf("estimation failed: %d error(s) recorded, see session log", len(st.Errors))
	}
	return nil
}

func exportResults(st *core.WorkflowState) {
	if est := st.EstimationValue(); est != nil {
		agg := core.ComputeDisplayAggregates(est.DeliverableEstimates)
		if path, err := Workbook.WriteEstimate(est, agg, Formatter); err == nil {
			fmt.Printf("Estimate written to %s\n", path)
		} else {
			fmt.Fprintf(os.Stderr, "writing estimate: %s\n", err)
		}
	}

	if path, err := Workbook.WriteSummary(st); err == nil {
		fmt.Printf("Summary written to %s\n", path)
	} else {
		fmt.Fprintf(os.Stderr, "writing summary: %s\n", err)
	}

	if path, err := SessionLog.Export(st); err == nil {
		fmt.Printf("Session log written to %s\n", path)
	} else {
		fmt.Fprintf(os.Stderr, "writing session log: %s\n", err)
	}
}

func notifyCompletion(st *core.WorkflowState) {
	if Notifier == nil {
		return
	}

	summary := observability.CompletionSummary{
		Source:         st.Source,
		Approved:       st.UserApproved,
		FinalStep:      string(st.CurrentStep),
		IterationCount: st.IterationCount,
		ErrorCount:     len(st.Errors),
		WarningCount:   len(st.Warnings),
		FinishedAt:     time.Now().UTC(),
	}
	if est := st.EstimationValue(); est != nil {
		agg := core.ComputeDisplayAggregates(est.DeliverableEstimates)
		summary.TotalEffortDays = agg.TotalEffortDays
		summary.TotalCostText = Formatter.Format(agg.TotalCost)
	}

	if err := Notifier.NotifyCompletion(summary); err != nil {
		fmt.Fprintf(os.Stderr, "sending completion notification: %s\n", err)
	}
}
