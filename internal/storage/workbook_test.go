package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/estimate-pro/internal/core"
	"github.com/valter-silva-au/estimate-pro/internal/currency"
	"github.com/valter-silva-au/estimate-pro/pkg/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestReadDeliverablesCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "items.csv", `name,description,category,complexity
Login Screen,User authentication UI,,
Order API,REST endpoints,backend_development,high
`)

	items, err := NewWorkbookStore(dir).ReadDeliverables(path)
	if err != nil {
		t.Fatalf("ReadDeliverables: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	// Missing category is inferred, missing complexity defaults to medium.
	if items[0].Category != models.CategoryFrontend {
		t.Errorf("inferred category = %s, want %s", items[0].Category, models.CategoryFrontend)
	}
	if items[0].Complexity != models.ComplexityMedium {
		t.Errorf("default complexity = %s, want medium", items[0].Complexity)
	}
	if items[1].Category != models.CategoryBackend || items[1].Complexity != models.ComplexityHigh {
		t.Errorf("explicit values not preserved: %+v", items[1])
	}
}

func TestReadDeliverablesCSVRejectsNarrowHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "items.csv", "name\nLogin Screen\n")

	if _, err := NewWorkbookStore(dir).ReadDeliverables(path); err == nil {
		t.Fatal("expected an error for a single-column file")
	}
}

func TestReadDeliverablesCSVRejectsNoRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "items.csv", "name,description\n")

	if _, err := NewWorkbookStore(dir).ReadDeliverables(path); err == nil {
		t.Fatal("expected an error for a header-only file")
	}
}

func TestReadDeliverablesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "items.yaml", `deliverables:
  - name: Customer Schema
    description: table design
  - name: Integration Testing
    description: end to end checks
    complexity: low
`)

	items, err := NewWorkbookStore(dir).ReadDeliverables(path)
	if err != nil {
		t.Fatalf("ReadDeliverables: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Category != models.CategoryDatabase {
		t.Errorf("inferred category = %s, want %s", items[0].Category, models.CategoryDatabase)
	}
	if items[1].Complexity != models.ComplexityLow {
		t.Errorf("complexity = %s, want low", items[1].Complexity)
	}
}

func TestReadDeliverablesUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "items.xlsx", "binary")

	if _, err := NewWorkbookStore(dir).ReadDeliverables(path); err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
}

func TestReadRequirementsRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reqs.txt", "  \n\n")

	if _, err := NewWorkbookStore(dir).ReadRequirements(path); err == nil {
		t.Fatal("expected an error for an empty requirements file")
	}
}

func TestWriteEstimateUsesRecomputedTotals(t *testing.T) {
	dir := t.TempDir()
	store := NewWorkbookStore(dir)

	result := &models.EstimationResult{
		DeliverableEstimates: []models.DeliverableEstimate{
			{Name: "a", FinalEffortDays: 10, Cost: 5000, Confidence: 0.8},
			{Name: "b", FinalEffortDays: 5, Cost: 2500, Confidence: 0.6},
		},
		// Wrong on purpose; the total row must ignore it.
		FinancialSummary: models.FinancialSummary{TotalEffortDays: 999, Subtotal: 999},
	}
	agg := core.ComputeDisplayAggregates(result.DeliverableEstimates)

	fmtr, err := currency.NewFormatter("USD")
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}

	path, err := store.WriteEstimate(result, agg, fmtr)
	if err != nil {
		t.Fatalf("WriteEstimate: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	// Header, two line items, total row.
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}

	total := rows[3]
	if total[0] != "Total" {
		t.Errorf("total row label = %q", total[0])
	}
	if total[5] != "15.0" {
		t.Errorf("total effort = %q, want 15.0", total[5])
	}
	if !strings.Contains(total[6], "7,500") {
		t.Errorf("total cost = %q, want the recomputed 7,500", total[6])
	}
}

func TestWriteSummaryReflectsState(t *testing.T) {
	dir := t.TempDir()
	store := NewWorkbookStore(dir)

	st := core.NewWorkflowState("items.csv", "reqs", nil)
	st.AddWarning("something advisory")

	path, err := store.WriteSummary(st)
	if err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}
	out := string(raw)
	for _, want := range []string{"source: items.csv", "approved: false", "something advisory"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
