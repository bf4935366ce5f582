package recovery

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/jvanloock/dupdirs/internal/platform"
	"github.com/jvanloock/dupdirs/pkg/logging"
	"github.com/jvanloock/dupdirs/pkg/models"
)

// Recovery timing. The policy only advises; callers own the actual
// retry, skip, or abort.
const (
	lockedRetryDelay    = 2 * time.Second
	networkRetryDelay   = 5 * time.Second
	networkPauseDelay   = 30 * time.Second
	bandwidthPauseDelay = 10 * time.Second
	probeTimeout        = 5 * time.Second

	// maxErrorMessages bounds the sampled message list; counters keep
	// the full totals regardless.
	maxErrorMessages = 200
)

// Policy classifies filesystem failures into advisory recovery
// actions and accumulates a summary of what was skipped. It never
// returns an error itself: every call produces a decision.
type Policy struct {
	mu      sync.Mutex
	summary models.ErrorSummary

	prober Prober
	logger logging.Logger
}

// NewPolicy creates a recovery policy with the default network prober.
func NewPolicy(logger logging.Logger) *Policy {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Policy{prober: DialProber{}, logger: logger}
}

// SetProber replaces the network prober, for tests.
func (p *Policy) SetProber(prober Prober) {
	p.prober = prober
}

// HandleFileAccessError classifies one file access failure and returns
// the advisory action. Every call updates the shared summary.
func (p *Policy) HandleFileAccessError(path string, err error) models.RecoveryAction {
	kind := Classify(err)

	switch kind {
	case models.KindAccessDenied:
		p.record(path, err, &p.summary.PermissionErrors, true)
		return models.RecoveryAction{
			Type:              models.ActionRetryWithElevation,
			Message:           fmt.Sprintf("access denied: %s", path),
			SuggestedSolution: "re-run with elevated privileges or adjust permissions on the folder",
			ShouldRetry:       false,
		}

	case models.KindNotFound:
		p.record(path, err, &p.summary.SkippedFiles, true)
		return models.RecoveryAction{
			Type:    models.ActionSkip,
			Message: fmt.Sprintf("no longer exists: %s", path),
		}

	case models.KindLocked:
		p.record(path, err, &p.summary.SkippedFiles, true)
		return models.RecoveryAction{
			Type:              models.ActionRetry,
			Message:           fmt.Sprintf("file in use: %s", path),
			SuggestedSolution: "close the application holding the file",
			ShouldRetry:       true,
			RetryDelay:        lockedRetryDelay,
		}

	case models.KindPathTooLong:
		p.record(path, err, &p.summary.SkippedFiles, true)
		return models.RecoveryAction{
			Type:              models.ActionSkip,
			Message:           fmt.Sprintf("path too long: %s", path),
			SuggestedSolution: "shorten the folder nesting or move the tree closer to the root",
		}
	}

	// I/O failures under a network location get the network treatment.
	if platform.IsNetworkPath(path) {
		return p.HandleNetworkError(path, err)
	}

	p.record(path, err, &p.summary.SkippedFiles, true)
	return models.RecoveryAction{
		Type:    models.ActionSkip,
		Message: fmt.Sprintf("skipped %s: %v", path, err),
	}
}

// HandleNetworkError decides between waiting out an unreachable server
// and a short retry for a transient network hiccup.
func (p *Policy) HandleNetworkError(path string, err error) models.RecoveryAction {
	p.record(path, err, &p.summary.NetworkErrors, true)

	reachable := true
	if platform.IsUNCPath(path) {
		reachable = p.prober.HostReachable(platform.UNCHost(path), probeTimeout)
	} else if platform.IsNetworkPath(path) {
		reachable = p.prober.PathReachable(path)
	}

	if !reachable {
		return models.RecoveryAction{
			Type:              models.ActionPauseAndWait,
			Message:           fmt.Sprintf("network location unreachable: %s", path),
			SuggestedSolution: "check the network connection and that the server is online",
			ShouldRetry:       true,
			RetryDelay:        networkPauseDelay,
		}
	}

	return models.RecoveryAction{
		Type:        models.ActionRetry,
		Message:     fmt.Sprintf("transient network error on %s: %v", path, err),
		ShouldRetry: true,
		RetryDelay:  networkRetryDelay,
	}
}

// HandleResourceConstraintError advises on resource pressure. Disk
// exhaustion is the one unconditional abort: continuing is unsafe.
func (p *Policy) HandleResourceConstraintError(kind models.ResourceKind, err error) models.RecoveryAction {
	p.record(string(kind), err, &p.summary.ResourceErrors, false)

	switch kind {
	case models.ResourceMemory:
		runtime.GC()
		time.Sleep(100 * time.Millisecond)
		return models.RecoveryAction{
			Type:              models.ActionReduceParallelism,
			Message:           "memory pressure detected",
			SuggestedSolution: "reduce the worker count or analyze fewer roots per run",
			ShouldRetry:       true,
		}

	case models.ResourceDiskSpace:
		return models.RecoveryAction{
			Type:              models.ActionAbort,
			Message:           "disk space exhausted",
			SuggestedSolution: "free disk space before re-running the analysis",
			ShouldRetry:       false,
		}

	case models.ResourceBandwidth:
		return models.RecoveryAction{
			Type:        models.ActionPauseAndWait,
			Message:     "network bandwidth constrained",
			ShouldRetry: true,
			RetryDelay:  bandwidthPauseDelay,
		}
	}

	// File handles, CPU, and anything else resource-shaped.
	return models.RecoveryAction{
		Type:              models.ActionReduceParallelism,
		Message:           fmt.Sprintf("resource constraint: %s", kind),
		SuggestedSolution: "reduce the worker count",
		ShouldRetry:       true,
	}
}

// LogSkippedItem records a skipped path without classifying anything.
func (p *Policy) LogSkippedItem(path, reason string) {
	p.mu.Lock()
	p.summary.SkippedFiles++
	p.summary.SkippedPaths = append(p.summary.SkippedPaths, path)
	p.appendMessage(fmt.Sprintf("skipped %s: %s", path, reason))
	p.summary.LastErrorTime = time.Now()
	p.mu.Unlock()

	p.logger.Debug(context.Background(), "item skipped", logging.Fields{
		"path":   path,
		"reason": reason,
	})
}

// Summary returns a deep copy of the accumulated summary, so callers
// never observe partial writes mid-accumulation.
func (p *Policy) Summary() models.ErrorSummary {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := p.summary
	out.SkippedPaths = append([]string(nil), p.summary.SkippedPaths...)
	out.ErrorMessages = append([]string(nil), p.summary.ErrorMessages...)
	return out
}

// Clear resets all counters and lists between runs.
func (p *Policy) Clear() {
	p.mu.Lock()
	p.summary = models.ErrorSummary{}
	p.mu.Unlock()
}

func (p *Policy) record(subject string, err error, counter *int, skipped bool) {
	p.mu.Lock()
	*counter++
	if skipped {
		p.summary.SkippedPaths = append(p.summary.SkippedPaths, subject)
	}
	p.appendMessage(fmt.Sprintf("[%s] %s: %v",
		time.Now().Format(time.RFC3339), subject, err))
	p.summary.LastErrorTime = time.Now()
	p.mu.Unlock()

	p.logger.Warn(context.Background(), "file access error", logging.Fields{
		"subject": subject,
		"error":   err.Error(),
	})
}

// appendMessage must be called with the mutex held.
func (p *Policy) appendMessage(msg string) {
	if len(p.summary.ErrorMessages) < maxErrorMessages {
		p.summary.ErrorMessages = append(p.summary.ErrorMessages, msg)
	}
}
