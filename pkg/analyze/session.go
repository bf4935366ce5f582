// Package analyze ties the scanner, duplicate finder, aggregator, and
// filter together into one cancellable analysis session.
package analyze

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jvanloock/dupdirs/internal/platform"
	"github.com/jvanloock/dupdirs/pkg/cache"
	"github.com/jvanloock/dupdirs/pkg/dupes"
	"github.com/jvanloock/dupdirs/pkg/logging"
	"github.com/jvanloock/dupdirs/pkg/match"
	"github.com/jvanloock/dupdirs/pkg/models"
	"github.com/jvanloock/dupdirs/pkg/progress"
	"github.com/jvanloock/dupdirs/pkg/ratelimit"
	"github.com/jvanloock/dupdirs/pkg/recovery"
	"github.com/jvanloock/dupdirs/pkg/scanner"
	"github.com/jvanloock/dupdirs/pkg/storage"
)

// Options configures an analysis session. Zero values get sensible
// defaults: local backend, fresh store, null logger, default filter
// criteria, automatic worker count.
type Options struct {
	// Roots are the trees to analyze
	Roots []string

	// Criteria filters the aggregated folder matches; the zero value
	// means the defaults (50% similarity, 1 MiB)
	Criteria models.FilterCriteria

	// Workers bounds scan and hash parallelism; 0 means max(1, NumCPU-1)
	Workers int

	// BufferSize is the hash read buffer size; 0 means 64 KiB
	BufferSize int

	// BandwidthLimit caps hash read throughput in bytes per second;
	// 0 means unlimited
	BandwidthLimit int64

	// Excludes are glob patterns for files and folders to skip
	Excludes []string

	// Timeout bounds the whole session; 0 means no wall-clock limit
	Timeout time.Duration

	Backend  storage.Backend
	Store    *cache.Store
	Logger   logging.Logger
	Reporter progress.Reporter
}

// Result is the outcome of one completed session.
type Result struct {
	SessionID string               `json:"session_id"`
	Roots     []string             `json:"roots"`
	Matches   []models.FolderMatch `json:"matches"`

	// TotalMatches counts folder pairs before filtering
	TotalMatches   int                 `json:"total_matches"`
	FoldersScanned int                 `json:"folders_scanned"`
	Duration       time.Duration       `json:"duration"`
	Errors         models.ErrorSummary `json:"errors"`
}

// Session runs the full pipeline over a set of roots. Sessions are
// single-use; the store survives across sessions for incremental runs.
type Session struct {
	id     string
	opts   Options
	store  *cache.Store
	policy *recovery.Policy
	logger logging.Logger
}

// NewSession prepares a session, filling in defaults.
func NewSession(opts Options) *Session {
	if opts.Backend == nil {
		opts.Backend = storage.NewLocal()
	}
	if opts.Store == nil {
		opts.Store = cache.NewStore()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNullLogger()
	}
	if isZeroCriteria(opts.Criteria) {
		opts.Criteria = models.DefaultFilterCriteria()
	}

	return &Session{
		id:     uuid.New().String(),
		opts:   opts,
		store:  opts.Store,
		policy: recovery.NewPolicy(opts.Logger),
		logger: opts.Logger,
	}
}

// ID returns the session identifier used in logs and results.
func (s *Session) ID() string {
	return s.id
}

// Store exposes the cache store, for snapshot save and detail lookups
// after the run.
func (s *Session) Store() *cache.Store {
	return s.store
}

// Policy exposes the recovery policy accumulating this session's
// skips and errors.
func (s *Session) Policy() *recovery.Policy {
	return s.policy
}

// Run executes scan, duplicate detection, aggregation, and filtering.
// Cancellation and timeout surface as context.Canceled or
// context.DeadlineExceeded; all other failures along the way degrade
// to entries in Result.Errors.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info(ctx, "analysis session starting", logging.Fields{
		"session": s.id,
		"roots":   len(s.opts.Roots),
	})

	sc := scanner.NewScanner(s.opts.Backend, s.store, s.policy, s.logger)
	sc.SetReporter(s.opts.Reporter)
	sc.SetExcludes(s.opts.Excludes)
	if s.opts.Workers > 0 {
		sc.SetWorkers(s.opts.Workers)
	}

	for _, root := range s.opts.Roots {
		if err := sc.ScanTree(ctx, root); err != nil {
			return nil, err
		}
	}

	folders := s.foldersUnderRoots()

	hasher := dupes.NewHasher(s.opts.Backend, s.store, s.policy, s.opts.BufferSize)
	hasher.SetLimiter(ratelimit.NewLimiter(s.opts.BandwidthLimit))

	finder := dupes.NewFinder(s.store, s.policy, hasher, s.logger)
	finder.SetReporter(s.opts.Reporter)
	if s.opts.Workers > 0 {
		finder.SetWorkers(s.opts.Workers)
	}

	fileMatches, err := finder.FindDuplicates(ctx, folders)
	if err != nil {
		return nil, err
	}

	folderMatches, err := match.Aggregate(ctx, fileMatches, s.store, s.opts.Reporter)
	if err != nil {
		return nil, err
	}

	filtered := match.ApplyFilters(folderMatches, s.opts.Criteria)

	progress.Notify(s.opts.Reporter, progress.Report{
		Phase:   progress.PhaseComplete,
		Current: len(filtered),
		Max:     len(filtered),
		Message: "analysis complete",
	})

	result := &Result{
		SessionID:      s.id,
		Roots:          s.opts.Roots,
		Matches:        filtered,
		TotalMatches:   len(folderMatches),
		FoldersScanned: len(folders),
		Duration:       time.Since(start),
		Errors:         s.policy.Summary(),
	}

	s.logger.Info(ctx, "analysis session complete", logging.Fields{
		"session":  s.id,
		"matches":  len(filtered),
		"total":    len(folderMatches),
		"folders":  len(folders),
		"duration": result.Duration.String(),
	})

	return result, nil
}

// foldersUnderRoots returns the cached folders inside any of the
// session roots. The store can hold folders from earlier sessions over
// other trees; those stay out of this run's comparison.
func (s *Session) foldersUnderRoots() []string {
	rootKeys := make([]string, 0, len(s.opts.Roots))
	for _, root := range s.opts.Roots {
		rootKeys = append(rootKeys, platform.NormalizeKey(root))
	}

	var folders []string
	for _, folder := range s.store.CachedFolders() {
		key := platform.NormalizeKey(folder)
		for _, rootKey := range rootKeys {
			if platform.IsDescendantKey(key, rootKey) {
				folders = append(folders, folder)
				break
			}
		}
	}
	return folders
}

func isZeroCriteria(c models.FilterCriteria) bool {
	return c.MinSimilarityPercent == 0 && c.MinSizeBytes == 0 &&
		c.MinDate == nil && c.MaxDate == nil
}
