package dupes

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jvanloock/dupdirs/internal/platform"
	"github.com/jvanloock/dupdirs/pkg/cache"
	"github.com/jvanloock/dupdirs/pkg/logging"
	"github.com/jvanloock/dupdirs/pkg/models"
	"github.com/jvanloock/dupdirs/pkg/progress"
	"github.com/jvanloock/dupdirs/pkg/recovery"
)

// Progress cadence per stage, so a slow UI consumer is not flooded.
const (
	indexReportEvery = 100
	groupReportEvery = 50
	hashReportEvery  = 10
)

// indexKey buckets files that could be the same: equal lowercased
// name and equal size. Only buckets spanning more than one folder are
// worth hashing.
type indexKey struct {
	name string
	size int64
}

// Finder detects duplicate files across folders in three stages:
// build a (name, size) candidate index, expand multi-folder buckets
// into file groups, then confirm with content hashes. It operates
// purely on cached scan data; the filesystem is touched only to hash.
type Finder struct {
	store    *cache.Store
	policy   *recovery.Policy
	hasher   *Hasher
	logger   logging.Logger
	reporter progress.Reporter
	workers  int
}

// NewFinder creates a duplicate finder.
func NewFinder(store *cache.Store, policy *recovery.Policy, hasher *Hasher, logger logging.Logger) *Finder {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Finder{
		store:   store,
		policy:  policy,
		hasher:  hasher,
		logger:  logger,
		workers: defaultWorkers(),
	}
}

// SetReporter installs an optional progress sink.
func (f *Finder) SetReporter(reporter progress.Reporter) {
	f.reporter = reporter
}

// SetWorkers overrides the bounded worker budget for hashing.
func (f *Finder) SetWorkers(n int) {
	if n >= 1 {
		f.workers = n
	}
}

func defaultWorkers() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}

// FindDuplicates returns every confirmed cross-folder duplicate pair
// among the given already-scanned folders. Pairs are canonical: the
// lexicographically smaller folder supplies PathA.
func (f *Finder) FindDuplicates(ctx context.Context, folders []string) ([]models.FileMatch, error) {
	// Cancellation before any work wins even over an empty input.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buckets, err := f.buildIndex(ctx, folders)
	if err != nil {
		return nil, err
	}

	multiFolder := 0
	for _, folderSet := range buckets {
		if len(folderSet) > 1 {
			multiFolder++
		}
	}
	if multiFolder == 0 {
		// Nothing shares a name and size across folders; no point
		// expanding or hashing anything.
		progress.Notify(f.reporter, progress.Report{
			Phase:   progress.PhaseComparingFiles,
			Current: 0,
			Max:     0,
			Message: "no duplicate candidates found",
		})
		return nil, nil
	}

	groups, err := f.expandGroups(ctx, buckets)
	if err != nil {
		return nil, err
	}

	return f.confirmByHash(ctx, groups)
}

// buildIndex is stage one: bucket folders by (lowercased file name,
// size). A folder appears at most once per bucket even when it holds
// several same-name-same-size files.
func (f *Finder) buildIndex(ctx context.Context, folders []string) (map[indexKey]map[string]string, error) {
	progress.Notify(f.reporter, progress.Report{
		Phase:         progress.PhaseBuildingFileIndex,
		Message:       "building file index",
		Indeterminate: true,
	})

	buckets := make(map[indexKey]map[string]string)
	filesIndexed := 0

	for _, folder := range folders {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		files, ok := f.store.Files(folder)
		if !ok {
			f.policy.LogSkippedItem(folder, "folder missing from cache")
			continue
		}

		folderKey := platform.NormalizeKey(folder)
		for _, file := range files {
			meta, ok := f.store.GetMetadata(file)
			if !ok {
				f.policy.LogSkippedItem(file, "no cached metadata")
				continue
			}

			key := indexKey{name: strings.ToLower(meta.FileName), size: meta.Size}
			folderSet := buckets[key]
			if folderSet == nil {
				folderSet = make(map[string]string)
				buckets[key] = folderSet
			}
			folderSet[folderKey] = folder

			filesIndexed++
			if filesIndexed%indexReportEvery == 0 {
				progress.Notify(f.reporter, progress.Report{
					Phase:         progress.PhaseBuildingFileIndex,
					Current:       filesIndexed,
					Message:       fmt.Sprintf("indexed %d files", filesIndexed),
					Indeterminate: true,
				})
			}
		}
	}

	progress.Notify(f.reporter, progress.Report{
		Phase:   progress.PhaseBuildingFileIndex,
		Current: filesIndexed,
		Max:     filesIndexed,
		Message: fmt.Sprintf("indexed %d files in %d buckets", filesIndexed, len(buckets)),
	})

	return buckets, nil
}

// expandGroups is stage two: re-expand each multi-folder bucket into
// the concrete file paths carrying that (name, size) identity. Groups
// with fewer than two files cannot produce a pair and are dropped.
func (f *Finder) expandGroups(ctx context.Context, buckets map[indexKey]map[string]string) (map[string][]string, error) {
	progress.Notify(f.reporter, progress.Report{
		Phase:         progress.PhaseComparingFiles,
		Message:       "grouping candidate files",
		Indeterminate: true,
	})

	groups := make(map[string][]string)
	filesGrouped := 0

	for key, folderSet := range buckets {
		if len(folderSet) < 2 {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		groupKey := fmt.Sprintf("%s|%d", key.name, key.size)
		for _, folder := range folderSet {
			files, ok := f.store.Files(folder)
			if !ok {
				continue
			}
			for _, file := range files {
				meta, ok := f.store.GetMetadata(file)
				if !ok {
					continue
				}
				if strings.ToLower(meta.FileName) == key.name && meta.Size == key.size {
					groups[groupKey] = append(groups[groupKey], file)
					filesGrouped++
					if filesGrouped%groupReportEvery == 0 {
						progress.Notify(f.reporter, progress.Report{
							Phase:         progress.PhaseComparingFiles,
							Current:       filesGrouped,
							Message:       fmt.Sprintf("grouped %d candidate files", filesGrouped),
							Indeterminate: true,
						})
					}
				}
			}
		}

		if len(groups[groupKey]) < 2 {
			delete(groups, groupKey)
		}
	}

	return groups, nil
}

// confirmByHash is stage three: within each group, hash-compare every
// pair of files living in different folders. Groups are processed in
// parallel under the bounded worker budget; cancellation is observed
// at group granularity.
func (f *Finder) confirmByHash(ctx context.Context, groups map[string][]string) ([]models.FileMatch, error) {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Workers report concurrently; serialize through a monotonic
	// wrapper so Current never runs backwards within the phase.
	reporter := progress.NewMonotonic(f.reporter)

	reporter.Report(progress.Report{
		Phase:   progress.PhaseComparingFiles,
		Current: 0,
		Max:     len(keys),
		Message: fmt.Sprintf("hashing %d candidate groups", len(keys)),
	})

	var (
		mu        sync.Mutex
		matches   []models.FileMatch
		completed atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for _, key := range keys {
		files := groups[key]

		select {
		case <-gctx.Done():
			// Stop launching new groups; finished work stays cached.
			return nil, gctx.Err()
		default:
		}

		g.Go(func() error {
			found, err := f.confirmGroup(gctx, files)
			if err != nil {
				return err
			}

			mu.Lock()
			matches = append(matches, found...)
			mu.Unlock()

			done := completed.Add(1)
			if done%hashReportEvery == 0 {
				reporter.Report(progress.Report{
					Phase:   progress.PhaseComparingFiles,
					Current: int(done),
					Max:     len(keys),
					Message: fmt.Sprintf("compared %d of %d groups", done, len(keys)),
				})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	reporter.Report(progress.Report{
		Phase:   progress.PhaseComparingFiles,
		Current: len(keys),
		Max:     len(keys),
		Message: fmt.Sprintf("found %d duplicate file pairs", len(matches)),
	})

	f.logger.Info(ctx, "duplicate detection complete", logging.Fields{
		"groups":  len(keys),
		"matches": len(matches),
	})

	return matches, nil
}

// confirmGroup hashes one candidate group and emits a match for every
// cross-folder pair with equal non-empty hashes. Same-folder pairs are
// never compared: a duplicate has to cross folders to matter here.
func (f *Finder) confirmGroup(ctx context.Context, files []string) ([]models.FileMatch, error) {
	hashes := make([]string, len(files))
	for i, file := range files {
		hash, err := f.hasher.HashFile(ctx, file)
		if err != nil {
			return nil, err
		}
		hashes[i] = hash
	}

	var found []models.FileMatch
	for i := 0; i < len(files); i++ {
		if hashes[i] == "" {
			continue
		}
		dirI := platform.NormalizeKey(filepath.Dir(files[i]))
		for j := i + 1; j < len(files); j++ {
			if hashes[j] == "" || hashes[i] != hashes[j] {
				continue
			}
			if dirI == platform.NormalizeKey(filepath.Dir(files[j])) {
				continue
			}
			found = append(found, models.NewFileMatch(files[i], files[j]))
		}
	}
	return found, nil
}
