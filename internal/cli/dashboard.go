package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/estimate-pro/internal/observability"
)

// Dashboard panel indices.
const (
	panelMetrics = iota
	panelRuns
	panelIssues
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	metricsData *metricsSnapshot
	runs        []runSnapshot
	issues      []issueSnapshot

	// State.
	loading bool
	err     error
}

type metricsSnapshot struct {
	workflowsStarted   int
	workflowsFinished  int
	estimatesApproved  int
	refinementsApplied int
	eventCount         int
}

type runSnapshot struct {
	step       string
	approved   bool
	iterations int
	time       string
}

type issueSnapshot struct {
	level   string
	event   string
	message string
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	metrics *metricsSnapshot
	runs    []runSnapshot
	issues  []issueSnapshot
	err     error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	runApproved    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	runUnapproved  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	issueErrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	issueWarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelMetrics,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadData
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.metricsData = msg.metrics
		m.runs = msg.runs
		m.issues = msg.issues
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" ESP Dashboard ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	metricsPanel := m.renderMetricsPanel()
	runsPanel := m.renderRunsPanel()
	issuesPanel := m.renderIssuesPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		// Horizontal layout: three columns.
		colWidth := availableWidth / 3
		metricsPanel = m.applyPanelStyle(panelMetrics, metricsPanel, colWidth-4)
		runsPanel = m.applyPanelStyle(panelRuns, runsPanel, colWidth-4)
		issuesPanel = m.applyPanelStyle(panelIssues, issuesPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, metricsPanel, runsPanel, issuesPanel)
	} else {
		// Vertical layout: stacked.
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		metricsPanel = m.applyPanelStyle(panelMetrics, metricsPanel, panelWidth)
		runsPanel = m.applyPanelStyle(panelRuns, runsPanel, panelWidth)
		issuesPanel = m.applyPanelStyle(panelIssues, issuesPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, metricsPanel, runsPanel, issuesPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderMetricsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Metrics (7d)"))
	b.WriteString("\n")

	if m.metricsData == nil {
		b.WriteString("  No metrics available.")
		return b.String()
	}

	md := m.metricsData
	lines := []struct {
		label string
		value int
	}{
		{"Events", md.eventCount},
		{"Started", md.workflowsStarted},
		{"Finished", md.workflowsFinished},
		{"Approved", md.estimatesApproved},
		{"Refinements", md.refinementsApplied},
	}

	for _, l := range lines {
		b.WriteString(fmt.Sprintf("  %-14s %d\n", l.label, l.value))
	}

	return b.String()
}

func (m dashboardModel) renderRunsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Recent Runs"))
	b.WriteString("\n")

	if len(m.runs) == 0 {
		b.WriteString("  No runs recorded.")
		return b.String()
	}

	for _, run := range m.runs {
		style := runUnapproved
		verdict := "open"
		if run.approved {
			style = runApproved
			verdict = "approved"
		}
		label := fmt.Sprintf("  %-10s %-22s iter %d  %s", verdict, run.step, run.iterations, run.time)
		b.WriteString(style.Render(label))
		b.WriteString("\n")
	}

	return b.String()
}

func (m dashboardModel) renderIssuesPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Issues"))
	b.WriteString("\n")

	if len(m.issues) == 0 {
		b.WriteString("  No recent issues.")
		return b.String()
	}

	for _, issue := range m.issues {
		style := issueWarnStyle
		if issue.level == "ERROR" {
			style = issueErrStyle
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", style.Render("["+issue.level+"]"), issue.message))
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d issue(s)", len(m.issues)))

	return b.String()
}

// maxDashboardRows bounds the recent runs and issues lists.
const maxDashboardRows = 10

func loadData() tea.Msg {
	var result dataLoadedMsg

	since := time.Now().UTC().AddDate(0, 0, -7)

	if MetricsCalc != nil {
		metrics, err := MetricsCalc.Calculate(since)
		if err != nil {
			result.err = fmt.Errorf("loading metrics: %w", err)
			return result
		}
		result.metrics = &metricsSnapshot{
			workflowsStarted:   metrics.WorkflowsStarted,
			workflowsFinished:  metrics.WorkflowsFinished,
			estimatesApproved:  metrics.EstimatesApproved,
			refinementsApplied: metrics.RefinementsApplied,
			eventCount:         metrics.EventCount,
		}
	}

	if EventLog != nil {
		finished, err := EventLog.Read(observability.EventFilter{Since: &since, Type: "workflow.finished"})
		if err != nil {
			result.err = fmt.Errorf("loading runs: %w", err)
			return result
		}
		// Newest first.
		for i := len(finished) - 1; i >= 0 && len(result.runs) < maxDashboardRows; i-- {
			event := finished[i]
			run := runSnapshot{
				time: event.Time.Format("2006-01-02 15:04"),
			}
			if step, ok := event.Data["step"].(string); ok {
				run.step = step
			}
			if approved, ok := event.Data["approved"].(bool); ok {
				run.approved = approved
			}
			if iters, ok := event.Data["iterations"].(float64); ok {
				run.iterations = int(iters)
			}
			result.runs = append(result.runs, run)
		}

		for _, level := range []string{"ERROR", "WARN"} {
			events, err := EventLog.Read(observability.EventFilter{Since: &since, Level: level})
			if err != nil {
				result.err = fmt.Errorf("loading issues: %w", err)
				return result
			}
			for i := len(events) - 1; i >= 0 && len(result.issues) < maxDashboardRows; i-- {
				event := events[i]
				msg := event.Type
				if reason, ok := event.Data["reason"].(string); ok && reason != "" {
					msg = fmt.Sprintf("%s: %s", event.Type, reason)
				}
				result.issues = append(result.issues, issueSnapshot{
					level:   event.Level,
					event:   event.Type,
					message: msg,
				})
			}
		}
	}

	return result
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for workflow metrics and recent runs",
	Long: `Launch an interactive terminal dashboard showing workflow metrics,
recent estimation runs, and recent issues from the event log.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (observability may be disabled)")
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
