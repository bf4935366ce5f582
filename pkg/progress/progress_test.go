package progress

import (
	"sync"
	"testing"
)

// recorder collects forwarded reports in arrival order.
type recorder struct {
	mu      sync.Mutex
	reports []Report
}

func (r *recorder) Report(report Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
}

// TestNotify tests the nil-safe send helper
func TestNotify(t *testing.T) {
	Notify(nil, Report{Phase: PhaseComplete})

	rec := &recorder{}
	Notify(rec, Report{Phase: PhaseComplete, Current: 1})
	if len(rec.reports) != 1 {
		t.Errorf("reports = %d, want 1", len(rec.reports))
	}
}

// TestMonotonic tests that stale concurrent reports are dropped
func TestMonotonic(t *testing.T) {
	t.Run("DropsRegressions", func(t *testing.T) {
		rec := &recorder{}
		m := NewMonotonic(rec)

		m.Report(Report{Phase: PhaseScanningFolders, Current: 25})
		m.Report(Report{Phase: PhaseScanningFolders, Current: 50})
		// A preempted worker firing late with a stale count.
		m.Report(Report{Phase: PhaseScanningFolders, Current: 30})
		m.Report(Report{Phase: PhaseScanningFolders, Current: 75})

		got := make([]int, 0, len(rec.reports))
		for _, r := range rec.reports {
			got = append(got, r.Current)
		}
		want := []int{25, 50, 75}
		if len(got) != len(want) {
			t.Fatalf("forwarded = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("forwarded = %v, want %v", got, want)
			}
		}
	})

	t.Run("EqualCurrentPasses", func(t *testing.T) {
		rec := &recorder{}
		m := NewMonotonic(rec)

		m.Report(Report{Phase: PhaseComparingFiles, Current: 10})
		m.Report(Report{Phase: PhaseComparingFiles, Current: 10})

		if len(rec.reports) != 2 {
			t.Errorf("equal Current should not be dropped, forwarded %d", len(rec.reports))
		}
	})

	t.Run("PhaseChangeResets", func(t *testing.T) {
		rec := &recorder{}
		m := NewMonotonic(rec)

		m.Report(Report{Phase: PhaseScanningFolders, Current: 100})
		m.Report(Report{Phase: PhaseComparingFiles, Current: 0})

		if len(rec.reports) != 2 {
			t.Fatalf("a new phase should start fresh, forwarded %d", len(rec.reports))
		}
		if rec.reports[1].Phase != PhaseComparingFiles || rec.reports[1].Current != 0 {
			t.Errorf("second report = %+v", rec.reports[1])
		}
	})

	t.Run("NilInnerTolerated", func(t *testing.T) {
		m := NewMonotonic(nil)
		m.Report(Report{Phase: PhaseComplete, Current: 1})
	})

	t.Run("ConcurrentReportsStayMonotonic", func(t *testing.T) {
		rec := &recorder{}
		m := NewMonotonic(rec)

		var wg sync.WaitGroup
		for i := 1; i <= 200; i++ {
			wg.Add(1)
			go func(current int) {
				defer wg.Done()
				m.Report(Report{Phase: PhaseScanningFolders, Current: current})
			}(i)
		}
		wg.Wait()

		prev := 0
		for _, r := range rec.reports {
			if r.Current < prev {
				t.Fatalf("Current regressed from %d to %d", prev, r.Current)
			}
			prev = r.Current
		}
	})
}
