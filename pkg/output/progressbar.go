package output

import (
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"github.com/jvanloock/dupdirs/pkg/progress"
)

// BarReporter renders analysis progress as a terminal progress bar,
// one bar per phase. It implements progress.Reporter and is safe for
// use from the scanner's and finder's worker goroutines.
type BarReporter struct {
	mu     sync.Mutex
	writer io.Writer
	width  int

	phase progress.Phase
	bar   *pb.ProgressBar
}

// NewBarReporter creates a reporter writing bars to w (stderr when
// nil). Terminal width is detected once; pipes get a fixed width.
func NewBarReporter(w io.Writer) *BarReporter {
	if w == nil {
		w = os.Stderr
	}

	width := 0
	if file, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(file.Fd())); err == nil && tw > 0 {
			width = tw
		}
	}
	if width == 0 {
		width = 80
	}

	return &BarReporter{writer: w, width: width}
}

// Report implements progress.Reporter.
func (r *BarReporter) Report(report progress.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if report.Phase != r.phase || r.bar == nil {
		if r.bar != nil {
			r.bar.Finish()
		}
		r.phase = report.Phase

		if report.Phase == progress.PhaseComplete {
			r.bar = nil
			return
		}

		r.bar = pb.New(report.Max).
			SetWriter(r.writer).
			SetWidth(r.width).
			Set("prefix", phaseLabel(report.Phase)+" ")
		r.bar.Start()
	}

	if report.Indeterminate || report.Max <= 0 {
		// No meaningful total yet; show movement without a percentage.
		r.bar.SetTotal(int64(report.Current) + 1)
	} else {
		r.bar.SetTotal(int64(report.Max))
	}
	r.bar.SetCurrent(int64(report.Current))
}

// Close finishes any open bar. Call once after the session ends.
func (r *BarReporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
}

func phaseLabel(p progress.Phase) string {
	switch p {
	case progress.PhaseCountingFolders:
		return "Counting folders"
	case progress.PhaseScanningFolders:
		return "Scanning folders"
	case progress.PhaseBuildingFileIndex:
		return "Indexing files"
	case progress.PhaseComparingFiles:
		return "Comparing files"
	case progress.PhaseAggregatingResults:
		return "Aggregating results"
	default:
		return string(p)
	}
}
