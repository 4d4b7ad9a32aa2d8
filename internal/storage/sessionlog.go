package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/estimate-pro/internal/core"
)

// SessionLogExporter writes the per-run session log as a JSON document
// for later inspection.
type SessionLogExporter interface {
	Export(st *core.WorkflowState) (string, error)
}

type fileSessionLogExporter struct {
	outputDir string
}

// NewSessionLogExporter creates an exporter writing into outputDir.
func NewSessionLogExporter(outputDir string) SessionLogExporter {
	return &fileSessionLogExporter{outputDir: outputDir}
}

// sessionLogDocument is the JSON layout of an exported session log.
type sessionLogDocument struct {
	Timestamp string            `json:"timestamp"`
	Summary   sessionLogSummary `json:"summary"`
	Logs      []core.LogEntry   `json:"session_logs"`
	Errors    []string          `json:"errors"`
	Warnings  []string          `json:"warnings"`
}

type sessionLogSummary struct {
	Source         string `json:"source"`
	IterationCount int    `json:"iteration_count"`
	FinalStep      string `json:"final_step"`
	Approved       bool   `json:"approved"`
	ErrorCount     int    `json:"error_count"`
	WarningCount   int    `json:"warning_count"`
}

func (e *fileSessionLogExporter) Export(st *core.WorkflowState) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	doc := sessionLogDocument{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Summary: sessionLogSummary{
			Source:         st.Source,
			IterationCount: st.IterationCount,
			FinalStep:      string(st.CurrentStep),
			Approved:       st.UserApproved,
			ErrorCount:     len(st.Errors),
			WarningCount:   len(st.Warnings),
		},
		Logs:     st.SessionLogs,
		Errors:   st.Errors,
		Warnings: st.Warnings,
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling session log: %w", err)
	}

	path := filepath.Join(e.outputDir, fmt.Sprintf("session_%s.json", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("writing session log: %w", err)
	}
	return path, nil
}
