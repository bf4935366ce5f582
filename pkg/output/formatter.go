package output

import (
	"io"

	"github.com/jvanloock/dupdirs/pkg/analyze"
	"github.com/jvanloock/dupdirs/pkg/models"
)

// DetailFunc resolves the side-by-side file listing for one folder
// match, for formatters that show per-pair detail.
type DetailFunc func(m models.FolderMatch) []models.FileDetail

// Formatter defines the interface for output formatting
// Implementations include human-readable and JSON formatters
type Formatter interface {
	// Start initializes the formatter for a new analysis run
	Start(writer io.Writer) error

	// Complete renders the finished analysis result
	Complete(result *analyze.Result) error

	// Error reports a fatal error
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// ForFormat returns the formatter matching a config format name,
// falling back to human output.
func ForFormat(format string) Formatter {
	if format == "json" {
		return NewJSONFormatter()
	}
	return NewHumanFormatter()
}
