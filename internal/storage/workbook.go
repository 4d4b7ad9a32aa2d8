// Package storage handles file ingestion and output for the estimation
// workflow: deliverable lists, requirements text, estimate reports, and
// session log exports.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/estimate-pro/internal/core"
	"github.com/valter-silva-au/estimate-pro/internal/currency"
	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

// WorkbookStore reads workflow inputs and writes estimate outputs.
type WorkbookStore interface {
	// ReadDeliverables loads a deliverable list from a CSV or YAML file,
	// chosen by extension. Missing categories are inferred from the name
	// and description; missing complexity defaults to medium.
	ReadDeliverables(path string) ([]models.DeliverableItem, error)
	// ReadRequirements loads the project requirements text.
	ReadRequirements(path string) (string, error)
	// WriteEstimate writes the estimate as a timestamped CSV report with
	// a trailing total row computed from the given aggregates. It returns
	// the written path.
	WriteEstimate(result *models.EstimationResult, agg core.DisplayAggregates, fmtr currency.Formatter) (string, error)
	// WriteSummary writes the workflow summary as a timestamped YAML
	// file and returns the written path.
	WriteSummary(st *core.WorkflowState) (string, error)
}

type fileWorkbookStore struct {
	outputDir string
}

// NewWorkbookStore creates a WorkbookStore writing into outputDir. The
// directory is created on first write.
func NewWorkbookStore(outputDir string) WorkbookStore {
	return &fileWorkbookStore{outputDir: outputDir}
}

func (s *fileWorkbookStore) ReadDeliverables(path string) ([]models.DeliverableItem, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return readDeliverablesYAML(path)
	case ".csv":
		return readDeliverablesCSV(path)
	default:
		return nil, fmt.Errorf("unsupported deliverables format %q, want .csv, .yaml, or .yml", filepath.Ext(path))
	}
}

func readDeliverablesCSV(path string) ([]models.DeliverableItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening deliverables file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading deliverables CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("deliverables file %s is empty", path)
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("deliverables file %s needs at least name and description columns, got %d", path, len(header))
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var items []models.DeliverableItem
	for _, row := range records[1:] {
		name := field(row, "name")
		if name == "" {
			continue
		}
		item := models.DeliverableItem{
			Name:        name,
			Description: field(row, "description"),
			Category:    models.Category(field(row, "category")),
			Complexity:  models.Complexity(field(row, "complexity")),
		}
		items = append(items, normalizeItem(item))
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("deliverables file %s has no data rows", path)
	}
	return items, nil
}

func readDeliverablesYAML(path string) ([]models.DeliverableItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening deliverables file: %w", err)
	}

	var doc struct {
		Deliverables []models.DeliverableItem `yaml:"deliverables"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing deliverables YAML: %w", err)
	}

	items := doc.Deliverables
	if len(items) == 0 {
		// Also accept a bare top-level list.
		if err := yaml.Unmarshal(raw, &items); err != nil || len(items) == 0 {
			return nil, fmt.Errorf("deliverables file %s has no entries", path)
		}
	}

	for i, item := range items {
		if item.Name == "" {
			return nil, fmt.Errorf("deliverable %d in %s has no name", i+1, path)
		}
		items[i] = normalizeItem(item)
	}
	return items, nil
}

// normalizeItem fills in inferred category and default complexity.
func normalizeItem(item models.DeliverableItem) models.DeliverableItem {
	if !item.Category.Valid() {
		item.Category = core.InferCategory(item.Name, item.Description)
	}
	if !item.Complexity.Valid() {
		item.Complexity = models.ComplexityMedium
	}
	return item
}

func (s *fileWorkbookStore) ReadRequirements(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading requirements file: %w", err)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", fmt.Errorf("requirements file %s is empty", path)
	}
	return text, nil
}

func (s *fileWorkbookStore) WriteEstimate(result *models.EstimationResult, agg core.DisplayAggregates, fmtr currency.Formatter) (string, error) {
	if result == nil {
		return "", fmt.Errorf("no estimation result to write")
	}
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(s.outputDir, fmt.Sprintf("estimate_%s.csv", time.Now().Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating estimate file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	rows := [][]string{{
		"name", "description", "base_effort_days", "complexity_multiplier",
		"risk_multiplier", "final_effort_days", "cost", "confidence", "rationale",
	}}
	for _, est := range result.DeliverableEstimates {
		rows = append(rows, []string{
			est.Name,
			est.Description,
			fmt.Sprintf("%.1f", est.BaseEffortDays),
			fmt.Sprintf("%.2f", est.ComplexityMultiplier),
			fmt.Sprintf("%.2f", est.RiskMultiplier),
			fmt.Sprintf("%.1f", est.FinalEffortDays),
			fmtr.Format(est.Cost),
			fmt.Sprintf("%.2f", est.Confidence),
			est.Rationale,
		})
	}
	// The total row uses recomputed aggregates, not the model's summary.
	rows = append(rows, []string{
		"Total", "", "", "", "",
		fmt.Sprintf("%.1f", agg.TotalEffortDays),
		fmtr.Format(agg.TotalCost),
		fmt.Sprintf("%.2f", agg.WeightedConfidence),
		"",
	})

	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("writing estimate CSV: %w", err)
	}
	return path, nil
}

// estimateSummary is the YAML layout for the workflow summary file.
type estimateSummary struct {
	GeneratedAt        string   `yaml:"generated_at"`
	Source             string   `yaml:"source"`
	Approved           bool     `yaml:"approved"`
	Step               string   `yaml:"step"`
	IterationCount     int      `yaml:"iteration_count"`
	TotalEffortDays    float64  `yaml:"total_effort_days"`
	TotalCost          float64  `yaml:"total_cost"`
	WeightedConfidence float64  `yaml:"weighted_confidence"`
	BusinessScore      int      `yaml:"business_score"`
	QualityScore       int      `yaml:"quality_score"`
	ConstraintsScore   int      `yaml:"constraints_score"`
	KeyRisks           []string `yaml:"key_risks,omitempty"`
	Warnings           []string `yaml:"warnings,omitempty"`
	Errors             []string `yaml:"errors,omitempty"`
}

func (s *fileWorkbookStore) WriteSummary(st *core.WorkflowState) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	summary := st.Summary()
	doc := estimateSummary{
		GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
		Source:           st.Source,
		Approved:         st.UserApproved,
		Step:             string(st.CurrentStep),
		IterationCount:   summary.IterationCount,
		BusinessScore:    summary.BusinessScore,
		QualityScore:     summary.QualityScore,
		ConstraintsScore: summary.ConstraintsScore,
		Warnings:         st.Warnings,
		Errors:           st.Errors,
	}
	if est := st.EstimationValue(); est != nil {
		agg := core.ComputeDisplayAggregates(est.DeliverableEstimates)
		doc.TotalEffortDays = agg.TotalEffortDays
		doc.TotalCost = agg.TotalCost
		doc.WeightedConfidence = agg.WeightedConfidence
		doc.KeyRisks = est.KeyRisks
	}

	raw, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling summary: %w", err)
	}

	path := filepath.Join(s.outputDir, fmt.Sprintf("summary_%s.yaml", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("writing summary file: %w", err)
	}
	return path, nil
}
