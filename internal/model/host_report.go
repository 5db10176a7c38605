package model

import (
	"time"

	"github.com/google/uuid"
)

// Source tells how the sitemap URL of a HostReport was obtained.
type Source string

const (
	// SourceDirect means the caller supplied the sitemap URL.
	SourceDirect Source = "direct"

	// SourceRobots means the URL came from a Sitemap: line in robots.txt.
	SourceRobots Source = "robots"

	// SourceProbe means the URL is one of the conventional sitemap paths.
	SourceProbe Source = "probe"
)

// HostReport records one fetch or discovery run for a single target.
type HostReport struct {
	// ID identifies the run in the database and in reports.
	ID string `json:"id"`

	// Target is what the user asked for: a host or a sitemap URL.
	Target string `json:"target"`

	// SitemapURL is the root document that was traversed.
	// Empty when discovery found nothing.
	SitemapURL string `json:"sitemap_url,omitempty"`

	// Source tells how SitemapURL was obtained.
	Source Source `json:"source,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the run took.
	Duration time.Duration `json:"duration"`

	// Result holds the traversal output. Nil when the run failed.
	Result *Result `json:"result,omitempty"`

	// Error is the failure message, empty on success.
	Error string `json:"error,omitempty"`
}

// NewHostReport creates a report for target with a fresh ID and start time.
func NewHostReport(target string) *HostReport {
	return &HostReport{
		ID:        uuid.NewString(),
		Target:    target,
		StartedAt: time.Now().UTC(),
	}
}

// Failed reports whether the run ended with an error.
func (r *HostReport) Failed() bool {
	return r.Error != ""
}

// Summary condenses the report for simple output and history listings.
func (r *HostReport) Summary() Summary {
	s := Summary{
		ChangeFrequencies: make(map[string]int),
	}
	if r.Result == nil {
		return s
	}
	s.Entries = len(r.Result.Entries)
	s.Sitemaps = len(r.Result.Sitemaps)
	for freq, n := range r.Result.ChangeFrequencyCounts() {
		key := freq.String()
		if key == "" {
			key = "unset"
		}
		s.ChangeFrequencies[key] = n
	}
	for _, e := range r.Result.Entries {
		if t, ok := e.LastModified(); ok && t.After(s.NewestLastModified) {
			s.NewestLastModified = t
		}
	}
	return s
}

// Summary holds counts derived from a HostReport.
type Summary struct {
	Entries            int            `json:"entries"`
	Sitemaps           int            `json:"sitemaps"`
	ChangeFrequencies  map[string]int `json:"change_frequencies"`
	NewestLastModified time.Time      `json:"newest_lastmod"`
}
