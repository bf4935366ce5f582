package recovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"syscall"
	"testing"
	"time"

	"github.com/jvanloock/dupdirs/pkg/models"
)

// fakeProber controls reachability answers in tests
type fakeProber struct {
	hostReachable bool
	pathReachable bool
}

func (p fakeProber) HostReachable(host string, timeout time.Duration) bool {
	return p.hostReachable
}

func (p fakeProber) PathReachable(path string) bool {
	return p.pathReachable
}

// TestClassify tests the error taxonomy mapping
func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want models.ErrorKind
	}{
		{"Cancelled", context.Canceled, models.KindCancelled},
		{"DeadlineExceeded", context.DeadlineExceeded, models.KindCancelled},
		{"WrappedCancelled", fmt.Errorf("read failed: %w", context.Canceled), models.KindCancelled},
		{"Permission", fs.ErrPermission, models.KindAccessDenied},
		{"NotFound", fs.ErrNotExist, models.KindNotFound},
		{"PathTooLong", syscall.ENAMETOOLONG, models.KindPathTooLong},
		{"Locked", syscall.EBUSY, models.KindLocked},
		{"DiskFull", syscall.ENOSPC, models.KindResourceConstrained},
		{"TooManyHandles", syscall.EMFILE, models.KindResourceConstrained},
		{"HostUnreachable", syscall.EHOSTUNREACH, models.KindNetworkUnreachable},
		{"LockedByMessage", errors.New("the file is being used by another process"), models.KindLocked},
		{"Unknown", errors.New("something odd"), models.KindUnknown},
		{"Nil", nil, models.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

// TestHandleFileAccessError tests the advisory decisions
func TestHandleFileAccessError(t *testing.T) {
	t.Run("AccessDenied", func(t *testing.T) {
		p := NewPolicy(nil)
		action := p.HandleFileAccessError("/data/secret", fs.ErrPermission)

		if action.Type != models.ActionRetryWithElevation {
			t.Errorf("action = %s, want retry_with_elevation", action.Type)
		}
		if action.ShouldRetry {
			t.Error("permission errors should not auto-retry")
		}
		if p.Summary().PermissionErrors != 1 {
			t.Errorf("PermissionErrors = %d, want 1", p.Summary().PermissionErrors)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		p := NewPolicy(nil)
		action := p.HandleFileAccessError("/data/gone", fs.ErrNotExist)

		if action.Type != models.ActionSkip {
			t.Errorf("action = %s, want skip", action.Type)
		}
		if p.Summary().SkippedFiles != 1 {
			t.Errorf("SkippedFiles = %d, want 1", p.Summary().SkippedFiles)
		}
	})

	t.Run("Locked", func(t *testing.T) {
		p := NewPolicy(nil)
		action := p.HandleFileAccessError("/data/busy", syscall.EBUSY)

		if action.Type != models.ActionRetry || !action.ShouldRetry {
			t.Errorf("locked file should advise retry, got %+v", action)
		}
		if action.RetryDelay != lockedRetryDelay {
			t.Errorf("RetryDelay = %v, want %v", action.RetryDelay, lockedRetryDelay)
		}
	})

	t.Run("SkippedPathsRecorded", func(t *testing.T) {
		p := NewPolicy(nil)
		p.HandleFileAccessError("/data/gone", fs.ErrNotExist)

		summary := p.Summary()
		if len(summary.SkippedPaths) != 1 || summary.SkippedPaths[0] != "/data/gone" {
			t.Errorf("SkippedPaths = %v, want [/data/gone]", summary.SkippedPaths)
		}
	})
}

// TestHandleNetworkError tests reachability-based decisions
func TestHandleNetworkError(t *testing.T) {
	t.Run("UnreachableHostPauses", func(t *testing.T) {
		p := NewPolicy(nil)
		p.SetProber(fakeProber{hostReachable: false})

		action := p.HandleNetworkError(`\\server\share\dir`, errors.New("io timeout"))
		if action.Type != models.ActionPauseAndWait {
			t.Errorf("action = %s, want pause_and_wait", action.Type)
		}
		if action.RetryDelay != networkPauseDelay {
			t.Errorf("RetryDelay = %v, want %v", action.RetryDelay, networkPauseDelay)
		}
	})

	t.Run("ReachableHostRetries", func(t *testing.T) {
		p := NewPolicy(nil)
		p.SetProber(fakeProber{hostReachable: true})

		action := p.HandleNetworkError(`\\server\share\dir`, errors.New("io timeout"))
		if action.Type != models.ActionRetry {
			t.Errorf("action = %s, want retry", action.Type)
		}
	})

	t.Run("CountsNetworkErrors", func(t *testing.T) {
		p := NewPolicy(nil)
		p.SetProber(fakeProber{hostReachable: true})
		p.HandleNetworkError(`\\server\share`, errors.New("boom"))

		if p.Summary().NetworkErrors != 1 {
			t.Errorf("NetworkErrors = %d, want 1", p.Summary().NetworkErrors)
		}
	})
}

// TestHandleResourceConstraintError tests resource pressure decisions
func TestHandleResourceConstraintError(t *testing.T) {
	t.Run("DiskSpaceAborts", func(t *testing.T) {
		p := NewPolicy(nil)
		action := p.HandleResourceConstraintError(models.ResourceDiskSpace, syscall.ENOSPC)

		if action.Type != models.ActionAbort {
			t.Errorf("disk exhaustion should abort, got %s", action.Type)
		}
		if action.ShouldRetry {
			t.Error("disk exhaustion should not retry")
		}
	})

	t.Run("MemoryReducesParallelism", func(t *testing.T) {
		p := NewPolicy(nil)
		action := p.HandleResourceConstraintError(models.ResourceMemory, syscall.ENOMEM)

		if action.Type != models.ActionReduceParallelism {
			t.Errorf("memory pressure should reduce parallelism, got %s", action.Type)
		}
	})

	t.Run("HandlesReduceParallelism", func(t *testing.T) {
		p := NewPolicy(nil)
		action := p.HandleResourceConstraintError(models.ResourceHandles, syscall.EMFILE)

		if action.Type != models.ActionReduceParallelism {
			t.Errorf("handle exhaustion should reduce parallelism, got %s", action.Type)
		}
	})

	t.Run("BandwidthPauses", func(t *testing.T) {
		p := NewPolicy(nil)
		action := p.HandleResourceConstraintError(models.ResourceBandwidth, errors.New("slow"))

		if action.Type != models.ActionPauseAndWait {
			t.Errorf("bandwidth constraint should pause, got %s", action.Type)
		}
	})
}

// TestSummaryIsolation tests that Summary returns a deep copy
func TestSummaryIsolation(t *testing.T) {
	p := NewPolicy(nil)
	p.LogSkippedItem("/data/x", "test")

	summary := p.Summary()
	summary.SkippedPaths[0] = "mutated"
	summary.SkippedFiles = 99

	fresh := p.Summary()
	if fresh.SkippedPaths[0] != "/data/x" {
		t.Error("mutating a returned summary should not affect the policy")
	}
	if fresh.SkippedFiles != 1 {
		t.Errorf("SkippedFiles = %d, want 1", fresh.SkippedFiles)
	}
}

// TestClear tests summary reset between runs
func TestClear(t *testing.T) {
	p := NewPolicy(nil)
	p.LogSkippedItem("/data/x", "test")
	p.HandleFileAccessError("/data/y", fs.ErrPermission)

	p.Clear()

	summary := p.Summary()
	if summary.HasErrors() {
		t.Errorf("summary after Clear should be empty, got %+v", summary)
	}
	if len(summary.SkippedPaths) != 0 || len(summary.ErrorMessages) != 0 {
		t.Error("paths and messages should be empty after Clear")
	}
}
