package model

// Result is the aggregated output of one traversal.
//
// Sitemaps holds every direct child reference of the root document when the
// root is an index. It is never filtered, capped or extended with references
// found deeper in the tree. Entries holds the filtered and capped page entries
// gathered from the root or its descendants, in visitation order.
type Result struct {
	Entries  []Entry            `json:"entries"`
	Sitemaps []SitemapReference `json:"sitemaps"`
}

// NewResult returns an empty Result with non-nil slices.
func NewResult() *Result {
	return &Result{
		Entries:  make([]Entry, 0),
		Sitemaps: make([]SitemapReference, 0),
	}
}

// IsIndex reports whether the traversal root was an index document.
func (r *Result) IsIndex() bool {
	return len(r.Sitemaps) > 0
}

// Locations returns the Loc of every entry in order.
func (r *Result) Locations() []string {
	locs := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		locs = append(locs, e.Loc())
	}
	return locs
}

// ChangeFrequencyCounts counts entries per change frequency.
// Entries without a hint are counted under ChangeFrequencyUnset.
func (r *Result) ChangeFrequencyCounts() map[ChangeFrequency]int {
	counts := make(map[ChangeFrequency]int)
	for _, e := range r.Entries {
		counts[e.ChangeFrequency()]++
	}
	return counts
}
