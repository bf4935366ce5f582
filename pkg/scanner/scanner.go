package scanner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/jvanloock/dupdirs/pkg/cache"
	"github.com/jvanloock/dupdirs/pkg/logging"
	"github.com/jvanloock/dupdirs/pkg/models"
	"github.com/jvanloock/dupdirs/pkg/progress"
	"github.com/jvanloock/dupdirs/pkg/recovery"
	"github.com/jvanloock/dupdirs/pkg/storage"
)

const (
	enumerateReportEvery = 100
	scanReportEvery      = 25
)

// Scanner walks a directory tree and fills the cache store with folder
// aggregates and per-file metadata. Scans are incremental: folders
// already in the store are never touched again, so re-running over the
// same tree costs no filesystem work.
//
// Individual failures never stop a scan. Unreadable subtrees are
// skipped and recorded; a folder whose listing fails is cached empty so
// later stages see a consistent picture.
type Scanner struct {
	backend  storage.Backend
	store    *cache.Store
	policy   *recovery.Policy
	logger   logging.Logger
	reporter progress.Reporter
	workers  int
	excludes []string
}

// NewScanner creates a tree scanner.
func NewScanner(backend storage.Backend, store *cache.Store, policy *recovery.Policy, logger logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return &Scanner{
		backend: backend,
		store:   store,
		policy:  policy,
		logger:  logger,
		workers: n,
	}
}

// SetReporter installs an optional progress sink.
func (s *Scanner) SetReporter(reporter progress.Reporter) {
	s.reporter = reporter
}

// SetWorkers overrides the bounded worker budget.
func (s *Scanner) SetWorkers(n int) {
	if n >= 1 {
		s.workers = n
	}
}

// SetExcludes installs glob patterns; matching files and folders are
// left out of the scan entirely.
func (s *Scanner) SetExcludes(patterns []string) {
	s.excludes = patterns
}

// ScanTree scans every folder under root that is not already cached.
// It returns an error only for an unusable root or cancellation;
// everything else degrades to skips recorded with the policy.
func (s *Scanner) ScanTree(ctx context.Context, root string) error {
	exists, err := s.backend.DirExists(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to check scan root %s: %w", root, err)
	}
	if !exists {
		return fmt.Errorf("scan root does not exist: %s", root)
	}

	folders, err := s.enumerate(ctx, root)
	if err != nil {
		return err
	}

	var toScan []string
	for _, folder := range folders {
		if !s.store.IsCached(folder) {
			toScan = append(toScan, folder)
		}
	}

	s.logger.Info(ctx, "scan starting", logging.Fields{
		"root":     root,
		"folders":  len(folders),
		"uncached": len(toScan),
	})

	if len(toScan) == 0 {
		progress.Notify(s.reporter, progress.Report{
			Phase:   progress.PhaseComplete,
			Current: len(folders),
			Max:     len(folders),
			Message: "all folders already scanned",
		})
		return nil
	}

	sem := semaphore.NewWeighted(int64(s.workers))
	var scanned atomic.Int64

	// Workers report concurrently; serialize through a monotonic
	// wrapper so Current never runs backwards within the phase.
	reporter := progress.NewMonotonic(s.reporter)

	for _, folder := range toScan {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}

		go func(folder string) {
			defer sem.Release(1)

			s.scanFolder(ctx, root, folder)

			done := scanned.Add(1)
			if done%scanReportEvery == 0 {
				reporter.Report(progress.Report{
					Phase:   progress.PhaseScanningFolders,
					Current: int(done),
					Max:     len(toScan),
					Message: fmt.Sprintf("scanned %d of %d folders", done, len(toScan)),
				})
			}
		}(folder)
	}

	// Wait for in-flight workers; a cancelled context surfaces here.
	if err := sem.Acquire(ctx, int64(s.workers)); err != nil {
		return err
	}

	reporter.Report(progress.Report{
		Phase:   progress.PhaseComplete,
		Current: len(toScan),
		Max:     len(toScan),
		Message: fmt.Sprintf("scanned %d folders", len(toScan)),
	})

	return nil
}

// CountSubfolders returns a best-effort count of folders under root,
// for sizing progress bars. Never less than 1, even on total failure.
func (s *Scanner) CountSubfolders(ctx context.Context, root string) int {
	folders, err := s.enumerate(ctx, root)
	if err != nil || len(folders) == 0 {
		return 1
	}
	return len(folders)
}

// enumerate walks the tree breadth-first and returns every reachable
// folder, root included. A folder whose listing fails is recorded as
// skipped; its subtree is simply not reachable this run.
func (s *Scanner) enumerate(ctx context.Context, root string) ([]string, error) {
	progress.Notify(s.reporter, progress.Report{
		Phase:         progress.PhaseCountingFolders,
		Message:       "counting folders",
		Indeterminate: true,
	})

	folders := []string{root}
	queue := []string{root}

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		dir := queue[0]
		queue = queue[1:]

		entries, err := s.backend.ListDir(ctx, dir)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			s.policy.LogSkippedItem(dir, fmt.Sprintf("cannot enumerate: %v", err))
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir {
				continue
			}
			if s.excluded(root, entry.Path) {
				continue
			}
			folders = append(folders, entry.Path)
			queue = append(queue, entry.Path)

			if len(folders)%enumerateReportEvery == 0 {
				progress.Notify(s.reporter, progress.Report{
					Phase:         progress.PhaseCountingFolders,
					Current:       len(folders),
					Message:       fmt.Sprintf("found %d folders", len(folders)),
					Indeterminate: true,
				})
			}
		}
	}

	progress.Notify(s.reporter, progress.Report{
		Phase:   progress.PhaseCountingFolders,
		Current: len(folders),
		Max:     len(folders),
		Message: fmt.Sprintf("found %d folders", len(folders)),
	})

	return folders, nil
}

// scanFolder lists one folder, stats its files, and caches the
// aggregate. Failures are absorbed: a file that cannot be statted is
// excluded from the totals, and a folder that cannot be listed is
// cached empty so the run stays consistent.
func (s *Scanner) scanFolder(ctx context.Context, root, folder string) {
	entries, err := s.backend.ListDir(ctx, folder)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		s.policy.HandleFileAccessError(folder, err)
		s.store.Put(folder, models.FolderInfo{})
		return
	}

	var info models.FolderInfo
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}
		if s.excluded(root, entry.Path) {
			continue
		}

		fi := entry
		if fi.ModTime.IsZero() {
			// The listing could not stat this entry; try once directly.
			statted, err := s.backend.Stat(ctx, fi.Path)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				s.policy.HandleFileAccessError(fi.Path, err)
				continue
			}
			fi = *statted
		}

		info.Files = append(info.Files, fi.Path)
		info.TotalSize += fi.Size
		if info.LatestModification == nil || fi.ModTime.After(*info.LatestModification) {
			mod := fi.ModTime
			info.LatestModification = &mod
		}

		s.store.PutMetadata(fi.Path, models.FileMetadata{
			FileName:      fi.Name,
			Size:          fi.Size,
			LastWriteTime: fi.ModTime,
		})
	}

	s.store.Put(folder, info)
}

// excluded matches a path against the exclude patterns using its
// position relative to the scan root.
func (s *Scanner) excluded(root, path string) bool {
	if len(s.excludes) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return shouldExclude(rel, s.excludes)
}
