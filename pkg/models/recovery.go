package models

import (
	"time"
)

// ErrorKind categorizes a filesystem failure for recovery decisions.
type ErrorKind string

const (
	// KindAccessDenied indicates a permission failure
	KindAccessDenied ErrorKind = "access_denied"
	// KindNotFound indicates a missing file or directory
	KindNotFound ErrorKind = "not_found"
	// KindLocked indicates the file is in use by another process
	KindLocked ErrorKind = "locked"
	// KindPathTooLong indicates the path exceeds platform limits
	KindPathTooLong ErrorKind = "path_too_long"
	// KindNetworkUnreachable indicates a network location failure
	KindNetworkUnreachable ErrorKind = "network_unreachable"
	// KindResourceConstrained indicates memory/disk/handle/CPU pressure
	KindResourceConstrained ErrorKind = "resource_constrained"
	// KindCancelled indicates a cancellation, which always propagates
	KindCancelled ErrorKind = "cancelled"
	// KindUnknown indicates an unclassified failure
	KindUnknown ErrorKind = "unknown"
)

// ResourceKind identifies which resource is constrained.
type ResourceKind string

const (
	ResourceMemory    ResourceKind = "memory"
	ResourceDiskSpace ResourceKind = "disk_space"
	ResourceHandles   ResourceKind = "file_handles"
	ResourceCPU       ResourceKind = "cpu"
	ResourceBandwidth ResourceKind = "network_bandwidth"
)

// ActionType is the advisory decision returned by the recovery policy.
type ActionType string

const (
	// ActionRetry advises re-attempting after RetryDelay
	ActionRetry ActionType = "retry"
	// ActionRetryWithElevation advises the user to re-run elevated
	ActionRetryWithElevation ActionType = "retry_with_elevation"
	// ActionSkip advises skipping the item and continuing
	ActionSkip ActionType = "skip"
	// ActionPauseAndWait advises pausing before continuing
	ActionPauseAndWait ActionType = "pause_and_wait"
	// ActionReduceParallelism advises shrinking the worker pool
	ActionReduceParallelism ActionType = "reduce_parallelism"
	// ActionAbort advises stopping the whole operation
	ActionAbort ActionType = "abort"
)

// RecoveryAction is the policy's advice for one failure. The policy
// only advises; callers decide whether to retry, skip, or abort.
type RecoveryAction struct {
	Type              ActionType
	Message           string
	SuggestedSolution string
	ShouldRetry       bool
	RetryDelay        time.Duration
}

// ErrorSummary accumulates skipped items and error counts over one
// analysis session. Cleared explicitly between runs.
type ErrorSummary struct {
	SkippedFiles     int
	PermissionErrors int
	NetworkErrors    int
	ResourceErrors   int

	SkippedPaths  []string
	ErrorMessages []string

	LastErrorTime time.Time
}

// HasErrors reports whether anything was skipped or counted.
func (s ErrorSummary) HasErrors() bool {
	return s.SkippedFiles > 0 || s.PermissionErrors > 0 ||
		s.NetworkErrors > 0 || s.ResourceErrors > 0
}
