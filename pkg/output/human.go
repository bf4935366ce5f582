package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/jvanloock/dupdirs/pkg/analyze"
	"github.com/jvanloock/dupdirs/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer io.Writer

	// ShowDetails adds the per-pair file listing under each match
	ShowDetails bool

	// Details resolves file listings when ShowDetails is set
	Details DetailFunc
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer) error {
	f.writer = writer
	return nil
}

// Complete renders the finished analysis result
func (f *HumanFormatter) Complete(result *analyze.Result) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Analysis completed in %s\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Summary:\n")
	fmt.Fprintf(f.writer, "  Folders scanned:   %d\n", result.FoldersScanned)
	fmt.Fprintf(f.writer, "  Folder pairs:      %d\n", result.TotalMatches)
	fmt.Fprintf(f.writer, "  Matches reported:  %d\n", len(result.Matches))

	if len(result.Matches) == 0 {
		fmt.Fprintf(f.writer, "\n%s\n", color.GreenString("No duplicate folders above the thresholds."))
	} else {
		fmt.Fprintf(f.writer, "\nDuplicate folders:\n")
		for _, m := range result.Matches {
			fmt.Fprintf(f.writer, "\n  %s  %s\n",
				similarityString(m.SimilarityPercent),
				fmt.Sprintf("%s (%s)", formatBytes(m.FolderSizeBytes), modString(m.LatestModification)))
			fmt.Fprintf(f.writer, "    %s\n", m.LeftFolder)
			fmt.Fprintf(f.writer, "    %s\n", m.RightFolder)
			fmt.Fprintf(f.writer, "    %d duplicate files\n", len(m.DuplicateFiles))

			if f.ShowDetails && f.Details != nil {
				for _, d := range f.Details(m) {
					marker := color.YellowString("~")
					if d.IsDuplicate {
						marker = color.RedString("=")
					}
					side := "both"
					if !d.InLeft {
						side = "right only"
					} else if !d.InRight {
						side = "left only"
					}
					fmt.Fprintf(f.writer, "      %s %s (%s)\n", marker, d.FileName, side)
				}
			}
		}
	}

	f.printErrors(result.Errors)
	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "%s %v\n", color.RedString("Error:"), err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

func (f *HumanFormatter) printErrors(summary models.ErrorSummary) {
	if !summary.HasErrors() {
		return
	}

	fmt.Fprintf(f.writer, "\n%s\n", color.YellowString("Warnings:"))
	if summary.SkippedFiles > 0 {
		fmt.Fprintf(f.writer, "  Skipped items:      %d\n", summary.SkippedFiles)
	}
	if summary.PermissionErrors > 0 {
		fmt.Fprintf(f.writer, "  Permission errors:  %d\n", summary.PermissionErrors)
	}
	if summary.NetworkErrors > 0 {
		fmt.Fprintf(f.writer, "  Network errors:     %d\n", summary.NetworkErrors)
	}
	if summary.ResourceErrors > 0 {
		fmt.Fprintf(f.writer, "  Resource errors:    %d\n", summary.ResourceErrors)
	}
	if len(summary.SkippedPaths) > 0 {
		fmt.Fprintf(f.writer, "  Skipped paths (first %d):\n", min(len(summary.SkippedPaths), 10))
		for i, p := range summary.SkippedPaths {
			if i >= 10 {
				fmt.Fprintf(f.writer, "    ... and %d more\n", len(summary.SkippedPaths)-10)
				break
			}
			fmt.Fprintf(f.writer, "    %s\n", p)
		}
	}
}

// similarityString colors the similarity by how alarming it is.
func similarityString(percent float64) string {
	s := fmt.Sprintf("%5.1f%%", percent)
	switch {
	case percent >= 90:
		return color.RedString(s)
	case percent >= 70:
		return color.YellowString(s)
	default:
		return s
	}
}

func modString(t *time.Time) string {
	if t == nil {
		return "mtime unknown"
	}
	return t.Format("2006-01-02")
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
