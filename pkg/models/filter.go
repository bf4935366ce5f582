package models

import (
	"time"
)

// FilterCriteria narrows aggregated folder matches. It is a pure
// predicate configuration with no side effects.
type FilterCriteria struct {
	// MinSimilarityPercent keeps matches at or above this similarity
	MinSimilarityPercent float64 `json:"min_similarity_percent"`

	// MinSizeBytes keeps matches whose left folder is at least this large
	MinSizeBytes int64 `json:"min_size_bytes"`

	// MinDate / MaxDate bound the match's latest modification date.
	// A match without a date fails whichever bound is set.
	MinDate *time.Time `json:"min_date,omitempty"`
	MaxDate *time.Time `json:"max_date,omitempty"`
}

// DefaultFilterCriteria returns the default filter: 50% similarity,
// 1 MiB size floor, no date bounds.
func DefaultFilterCriteria() FilterCriteria {
	return FilterCriteria{
		MinSimilarityPercent: 50.0,
		MinSizeBytes:         1 << 20,
	}
}

// Matches reports whether a folder match passes every criterion.
func (c FilterCriteria) Matches(m FolderMatch) bool {
	if m.SimilarityPercent < c.MinSimilarityPercent {
		return false
	}
	if m.FolderSizeBytes < c.MinSizeBytes {
		return false
	}
	if c.MinDate != nil {
		if m.LatestModification == nil || m.LatestModification.Before(*c.MinDate) {
			return false
		}
	}
	if c.MaxDate != nil {
		if m.LatestModification == nil || m.LatestModification.After(*c.MaxDate) {
			return false
		}
	}
	return true
}
