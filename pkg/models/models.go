package models

import "time"

// CategoryItem is one page listed in a wiki category
type CategoryItem struct {
	Title  string `json:"title"`
	PageID int64  `json:"pageid"`
}

// ItemSet is the result of walking a category listing. Complete is false
// when pagination stopped on an error and Items holds only the pages
// fetched before it.
type ItemSet struct {
	Items    []CategoryItem
	Complete bool
	Pages    int
}

// Status is the per-item processing state
type Status string

const (
	StatusPending     Status = "pending"
	StatusResolving   Status = "resolving"
	StatusUnresolved  Status = "unresolved"
	StatusSkipped     Status = "skipped"
	StatusFetching    Status = "fetching"
	StatusDownloaded  Status = "downloaded"
	StatusFetchFailed Status = "fetch_failed"
	StatusFailed      Status = "failed"
)

// Succeeded reports whether s is a successful terminal state
func (s Status) Succeeded() bool {
	return s == StatusSkipped || s == StatusDownloaded
}

// ResolvedAsset is the outcome for one item. Empty ImageURL or LocalPath
// means the value is absent.
type ResolvedAsset struct {
	Name      string
	ImageURL  string
	LocalPath string
	Status    Status
	Err       error
}

// Succeeded reports whether the item counts as a success in run statistics
func (a ResolvedAsset) Succeeded() bool {
	return a.Status.Succeeded()
}

// RunStats summarizes a complete run
type RunStats struct {
	Total           int
	Succeeded       int
	Failed          int
	ByStatus        map[Status]int
	ListingComplete bool
	Duration        time.Duration
}

// NewRunStats tallies results
func NewRunStats(results []ResolvedAsset) RunStats {
	stats := RunStats{
		Total:    len(results),
		ByStatus: make(map[Status]int),
	}
	for _, r := range results {
		stats.ByStatus[r.Status]++
		if r.Succeeded() {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
	}
	return stats
}
