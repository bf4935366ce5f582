// Package match turns confirmed file-level duplicate pairs into
// folder-level similarity results.
package match

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/jvanloock/dupdirs/internal/platform"
	"github.com/jvanloock/dupdirs/pkg/cache"
	"github.com/jvanloock/dupdirs/pkg/models"
	"github.com/jvanloock/dupdirs/pkg/progress"
)

const aggregateReportEvery = 25

// folderPair keys one ordered folder pairing. FileMatch is already
// canonical, so (left, right) never shows up reversed.
type folderPair struct {
	left  string
	right string
}

// Aggregate groups file matches by folder pair and computes one
// FolderMatch per pair, sorted by descending similarity. Folder counts
// and sizes come from the cache store; pairs whose folders are missing
// from the store still aggregate, with zero similarity.
func Aggregate(ctx context.Context, matches []models.FileMatch, store *cache.Store, reporter progress.Reporter) ([]models.FolderMatch, error) {
	// Cancellation before any work wins even over an empty input.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pairs := make(map[folderPair][]models.FileMatch)
	display := make(map[folderPair][2]string)

	for _, m := range matches {
		leftDir := filepath.Dir(m.PathA)
		rightDir := filepath.Dir(m.PathB)
		key := folderPair{
			left:  platform.NormalizeKey(leftDir),
			right: platform.NormalizeKey(rightDir),
		}
		pairs[key] = append(pairs[key], m)
		if _, ok := display[key]; !ok {
			display[key] = [2]string{leftDir, rightDir}
		}
	}

	progress.Notify(reporter, progress.Report{
		Phase:   progress.PhaseAggregatingResults,
		Current: 0,
		Max:     len(pairs),
		Message: fmt.Sprintf("aggregating %d folder pairs", len(pairs)),
	})

	results := make([]models.FolderMatch, 0, len(pairs))
	processed := 0

	for key, files := range pairs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		disp := display[key]
		leftInfo, leftOK := store.Get(disp[0])
		rightInfo, rightOK := store.Get(disp[1])

		leftCount, rightCount := 0, 0
		if leftOK {
			leftCount = leftInfo.FileCount()
		}
		if rightOK {
			rightCount = rightInfo.FileCount()
		}

		fm := models.FolderMatch{
			LeftFolder:        disp[0],
			RightFolder:       disp[1],
			DuplicateFiles:    append([]models.FileMatch(nil), files...),
			SimilarityPercent: models.Similarity(len(files), leftCount, rightCount),
		}
		if leftOK {
			fm.FolderSizeBytes = leftInfo.TotalSize
			fm.LatestModification = leftInfo.LatestModification
		}
		results = append(results, fm)

		processed++
		if processed%aggregateReportEvery == 0 {
			progress.Notify(reporter, progress.Report{
				Phase:   progress.PhaseAggregatingResults,
				Current: processed,
				Max:     len(pairs),
				Message: fmt.Sprintf("aggregated %d of %d folder pairs", processed, len(pairs)),
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].SimilarityPercent != results[j].SimilarityPercent {
			return results[i].SimilarityPercent > results[j].SimilarityPercent
		}
		if results[i].LeftFolder != results[j].LeftFolder {
			return results[i].LeftFolder < results[j].LeftFolder
		}
		return results[i].RightFolder < results[j].RightFolder
	})

	progress.Notify(reporter, progress.Report{
		Phase:   progress.PhaseAggregatingResults,
		Current: len(pairs),
		Max:     len(pairs),
		Message: fmt.Sprintf("aggregated %d folder matches", len(results)),
	})

	return results, nil
}

// AggregateAll is the blocking convenience form of Aggregate with no
// progress reporting.
func AggregateAll(matches []models.FileMatch, store *cache.Store) ([]models.FolderMatch, error) {
	return Aggregate(context.Background(), matches, store, nil)
}

// ApplyFilters returns the matches satisfying the criteria. The input
// slice is never modified.
func ApplyFilters(matches []models.FolderMatch, criteria models.FilterCriteria) []models.FolderMatch {
	out := make([]models.FolderMatch, 0, len(matches))
	for _, m := range matches {
		if criteria.Matches(m) {
			out = append(out, m)
		}
	}
	return out
}
