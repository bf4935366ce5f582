package match

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/jvanloock/dupdirs/pkg/cache"
	"github.com/jvanloock/dupdirs/pkg/models"
)

// BuildFileDetails produces the side-by-side file listing for one
// folder pair: the case-insensitive union of both folders' file names,
// each classified as duplicate or unique and annotated with whatever
// metadata the cache holds. A side can be present with nil metadata
// when the file was listed but never stat'ed.
func BuildFileDetails(leftFolder, rightFolder string, duplicates []models.FileMatch, store *cache.Store) []models.FileDetail {
	dupNames := make(map[string]bool, len(duplicates))
	for _, d := range duplicates {
		dupNames[strings.ToLower(filepath.Base(d.PathA))] = true
		dupNames[strings.ToLower(filepath.Base(d.PathB))] = true
	}

	details := make(map[string]*models.FileDetail)

	collect := func(folder string, left bool) {
		files, ok := store.Files(folder)
		if !ok {
			return
		}
		for _, file := range files {
			name := filepath.Base(file)
			var meta *models.FileMetadata
			if m, ok := store.GetMetadata(file); ok {
				name = m.FileName
				meta = &m
			}

			key := strings.ToLower(name)
			d := details[key]
			if d == nil {
				d = &models.FileDetail{
					FileName:    name,
					IsDuplicate: dupNames[key],
				}
				details[key] = d
			}
			if left {
				d.InLeft = true
				d.Left = meta
			} else {
				d.InRight = true
				d.Right = meta
			}
		}
	}

	collect(leftFolder, true)
	collect(rightFolder, false)

	out := make([]models.FileDetail, 0, len(details))
	for _, d := range details {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].FileName) < strings.ToLower(out[j].FileName)
	})
	return out
}

// FilterDetails keeps the duplicates and, when includeUnique is set,
// the files present on only one side as well.
func FilterDetails(details []models.FileDetail, includeUnique bool) []models.FileDetail {
	if includeUnique {
		return details
	}
	out := make([]models.FileDetail, 0, len(details))
	for _, d := range details {
		if d.IsDuplicate {
			out = append(out, d)
		}
	}
	return out
}
