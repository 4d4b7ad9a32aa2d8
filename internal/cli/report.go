package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/valter-silva-au/estimate-pro/internal/core"
	"github.com/valter-silva-au/estimate-pro/internal/currency"
)

// Report style definitions.
var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginTop(1)

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	fallbackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// consoleReporter renders workflow results to a terminal with lipgloss
// styling. All totals come from recomputed aggregates.
type consoleReporter struct {
	out  io.Writer
	fmtr currency.Formatter
}

// NewConsoleReporter creates a Reporter writing styled output to out.
func NewConsoleReporter(out io.Writer, fmtr currency.Formatter) core.Reporter {
	return &consoleReporter{out: out, fmtr: fmtr}
}

func (r *consoleReporter) ShowResults(st *core.WorkflowState) {
	var b strings.Builder

	b.WriteString(reportTitleStyle.Render(" Estimation Results "))
	b.WriteString("\n")

	r.writeScores(&b, st)
	r.writeEstimates(&b, st)
	r.writeHistory(&b, st)
	r.writeIssues(&b, st)

	fmt.Fprintln(r.out, b.String())
}

func (r *consoleReporter) writeScores(b *strings.Builder, st *core.WorkflowState) {
	b.WriteString(sectionStyle.Render("Evaluation Scores"))
	b.WriteString("\n")

	writeScore := func(label string, complete bool, score int, fallback bool) {
		switch {
		case !complete:
			fmt.Fprintf(b, "  %-14s %s\n", label, errStyle.Render("failed"))
		case fallback:
			fmt.Fprintf(b, "  %-14s %3d %s\n", label, score, fallbackStyle.Render("(fallback)"))
		default:
			fmt.Fprintf(b, "  %-14s %3d\n", label, score)
		}
	}

	summary := st.Summary()
	writeScore("Business", summary.BusinessComplete, summary.BusinessScore,
		st.Business != nil && st.Business.Meta.Fallback)
	writeScore("Quality", summary.QualityComplete, summary.QualityScore,
		st.Quality != nil && st.Quality.Meta.Fallback)
	writeScore("Constraints", summary.ConstraintsComplete, summary.ConstraintsScore,
		st.Constraints != nil && st.Constraints.Meta.Fallback)
}

func (r *consoleReporter) writeEstimates(b *strings.Builder, st *core.WorkflowState) {
	est := st.EstimationValue()
	if est == nil {
		b.WriteString(sectionStyle.Render("Estimate"))
		b.WriteString("\n")
		b.WriteString(errStyle.Render("  No estimate available."))
		b.WriteString("\n")
		return
	}

	b.WriteString(sectionStyle.Render("Estimate"))
	b.WriteString("\n")
	if st.Estimation.Meta.Fallback {
		b.WriteString(fallbackStyle.Render("  Produced from fallback values; model endpoint unavailable."))
		b.WriteString("\n")
	}

	for _, line := range est.DeliverableEstimates {
		fmt.Fprintf(b, "  %-32s %8s  %12s  %s\n",
			line.Name,
			fmt.Sprintf("%.1fd", line.FinalEffortDays),
			r.fmtr.Format(line.Cost),
			dimStyle.Render(fmt.Sprintf("conf %.2f", line.Confidence)))
	}

	agg := core.ComputeDisplayAggregates(est.DeliverableEstimates)
	var taxRate float64
	if Config != nil {
		taxRate = Config.TaxRate
	}
	tax := agg.TotalCost * taxRate
	b.WriteString(totalStyle.Render(fmt.Sprintf("  Total: %s  |  %s  |  confidence %.2f",
		r.fmtr.FormatEffort(agg.TotalEffortDays),
		r.fmtr.Format(agg.TotalCost+tax),
		agg.WeightedConfidence)))
	b.WriteString("\n")
	fmt.Fprintf(b, "  %s\n", dimStyle.Render(fmt.Sprintf("subtotal %s, tax %s",
		r.fmtr.Format(agg.TotalCost), r.fmtr.Format(tax))))
}

func (r *consoleReporter) writeHistory(b *strings.Builder, st *core.WorkflowState) {
	deltas := core.SummarizeHistoryDeltas(st.History)
	if deltas == nil {
		return
	}

	b.WriteString(sectionStyle.Render("Change Since First Estimate"))
	b.WriteString("\n")
	line := fmt.Sprintf("  %+.1f person-days (%s cost)", deltas.EffortDelta, r.fmtr.Format(deltas.CostDelta))
	if deltas.EffortDeltaPercent != nil {
		line += fmt.Sprintf(", %+.1f%%", *deltas.EffortDeltaPercent)
	}
	b.WriteString(line)
	b.WriteString("\n")
}

func (r *consoleReporter) writeIssues(b *strings.Builder, st *core.WorkflowState) {
	if len(st.Warnings) > 0 {
		b.WriteString(sectionStyle.Render("Warnings"))
		b.WriteString("\n")
		for _, w := range st.Warnings {
			b.WriteString(warnStyle.Render("  ! " + w))
			b.WriteString("\n")
		}
	}
	if len(st.Errors) > 0 {
		b.WriteString(sectionStyle.Render("Errors"))
		b.WriteString("\n")
		for _, e := range st.Errors {
			b.WriteString(errStyle.Render("  x " + e))
			b.WriteString("\n")
		}
	}
}
