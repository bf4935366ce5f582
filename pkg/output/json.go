package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/jvanloock/dupdirs/pkg/analyze"
	"github.com/jvanloock/dupdirs/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	writer io.Writer
}

// JSONReportData represents the final report
type JSONReportData struct {
	SessionID      string               `json:"session_id"`
	Roots          []string             `json:"roots"`
	Duration       string               `json:"duration"`
	DurationMs     int64                `json:"duration_ms"`
	FoldersScanned int                  `json:"folders_scanned"`
	TotalMatches   int                  `json:"total_matches"`
	Matches        []models.FolderMatch `json:"matches"`
	Errors         *JSONErrorSummary    `json:"errors,omitempty"`
}

// JSONErrorSummary represents the accumulated error summary
type JSONErrorSummary struct {
	SkippedFiles     int      `json:"skipped_files"`
	PermissionErrors int      `json:"permission_errors"`
	NetworkErrors    int      `json:"network_errors"`
	ResourceErrors   int      `json:"resource_errors"`
	SkippedPaths     []string `json:"skipped_paths,omitempty"`
	Messages         []string `json:"messages,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return nil
}

// Complete renders the finished analysis result as one JSON document
func (f *JSONFormatter) Complete(result *analyze.Result) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	report := JSONReportData{
		SessionID:      result.SessionID,
		Roots:          result.Roots,
		Duration:       result.Duration.Round(time.Millisecond).String(),
		DurationMs:     result.Duration.Milliseconds(),
		FoldersScanned: result.FoldersScanned,
		TotalMatches:   result.TotalMatches,
		Matches:        result.Matches,
	}
	if result.Errors.HasErrors() {
		report.Errors = &JSONErrorSummary{
			SkippedFiles:     result.Errors.SkippedFiles,
			PermissionErrors: result.Errors.PermissionErrors,
			NetworkErrors:    result.Errors.NetworkErrors,
			ResourceErrors:   result.Errors.ResourceErrors,
			SkippedPaths:     result.Errors.SkippedPaths,
			Messages:         result.Errors.ErrorMessages,
		}
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// Error reports an error as a JSON document
func (f *JSONFormatter) Error(err error) error {
	if f.writer == nil {
		f.writer = os.Stderr
	}
	return json.NewEncoder(f.writer).Encode(map[string]string{
		"error": err.Error(),
	})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
