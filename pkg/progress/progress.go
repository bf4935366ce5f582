package progress

import "sync"

// Phase identifies which stage of the analysis a report belongs to.
type Phase string

const (
	// PhaseCountingFolders is the indeterminate enumeration phase
	PhaseCountingFolders Phase = "counting_folders"
	// PhaseScanningFolders is the per-folder analysis phase
	PhaseScanningFolders Phase = "scanning_folders"
	// PhaseBuildingFileIndex is duplicate detection stage one
	PhaseBuildingFileIndex Phase = "building_file_index"
	// PhaseComparingFiles covers candidate grouping and hashing
	PhaseComparingFiles Phase = "comparing_files"
	// PhaseAggregatingResults is folder-match aggregation
	PhaseAggregatingResults Phase = "aggregating_results"
	// PhaseComplete is the terminal report of a run
	PhaseComplete Phase = "complete"
)

// Report is one progress notification. Within a phase, Current is
// monotonically non-decreasing, and every phase ends with a report at
// Current == Max or a PhaseComplete marker.
type Report struct {
	Phase         Phase
	Current       int
	Max           int
	Message       string
	Indeterminate bool
}

// Reporter consumes progress reports. Implementations must tolerate
// being called from multiple goroutines.
type Reporter interface {
	Report(r Report)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(r Report)

// Report calls f(r).
func (f ReporterFunc) Report(r Report) { f(r) }

// Notify sends a report to the sink, tolerating a nil reporter.
func Notify(reporter Reporter, r Report) {
	if reporter != nil {
		reporter.Report(r)
	}
}

// Monotonic serializes reports from concurrent workers and drops any
// that would move Current backwards within a phase. Without it, a
// worker holding a stale count can be preempted between incrementing
// and reporting, then fire after a newer count has already gone out.
type Monotonic struct {
	inner Reporter

	mu    sync.Mutex
	phase Phase
	high  int
}

// NewMonotonic wraps a reporter. A nil inner reporter is tolerated;
// reports are then tracked but go nowhere.
func NewMonotonic(inner Reporter) *Monotonic {
	return &Monotonic{inner: inner}
}

// Report forwards r unless its Current is behind the highest value
// already reported for the same phase. The forward happens under the
// lock, so delivery order matches the filtering decision.
func (m *Monotonic) Report(r Report) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.Phase != m.phase {
		m.phase = r.Phase
		m.high = 0
	} else if r.Current < m.high {
		return
	}
	if r.Current > m.high {
		m.high = r.Current
	}
	Notify(m.inner, r)
}
