package crawler

import (
	"context"
	"errors"
	"strings"

	"github.com/nao1215/sitemaps/internal/fetcher"
	"github.com/nao1215/sitemaps/internal/model"
)

// ErrNoSitemap is returned (joined with the last probe error) when neither
// robots.txt nor any conventional path yields a sitemap.
var ErrNoSitemap = errors.New("no sitemap found")

// ProbePaths are the conventional sitemap locations tried, in order, when
// robots.txt does not name one.
var ProbePaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap.xml.gz",
	"/sitemap_index.xml.gz",
}

// Discovery is the outcome of Discover.
type Discovery struct {
	// SitemapURL is the root document that was traversed.
	SitemapURL string

	// Source tells how SitemapURL was found.
	Source model.Source

	// Result is the traversal of SitemapURL.
	Result *model.Result
}

// Discover finds the sitemap of host and traverses it.
//
// The first Sitemap directive of host's robots.txt wins. When robots.txt
// cannot be fetched or names no sitemap, the ProbePaths are traversed in
// order; a probe that fails with a *fetcher.FetchError moves on to the next
// path, while any other error aborts discovery.
func (t *Traverser) Discover(ctx context.Context, host string) (*Discovery, error) {
	base, err := fetcher.NormalizeURI(host)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimSuffix(base.String(), "/")

	robotsURL := prefix + "/robots.txt"
	body, err := t.fetcher.Fetch(ctx, robotsURL)
	if err != nil {
		t.logger.Debug("robots.txt unavailable", "url", robotsURL, "error", err)
	} else if candidate, ok := SitemapFromRobots(body); ok {
		t.logger.Debug("sitemap declared in robots.txt", "url", candidate)

		result, err := t.Traverse(ctx, candidate)
		if err != nil {
			return nil, err
		}
		return &Discovery{SitemapURL: candidate, Source: model.SourceRobots, Result: result}, nil
	}

	var lastErr error
	for _, path := range ProbePaths {
		candidate := prefix + path

		result, err := t.Traverse(ctx, candidate)
		if err == nil {
			t.logger.Debug("sitemap found by probing", "url", candidate)
			return &Discovery{SitemapURL: candidate, Source: model.SourceProbe, Result: result}, nil
		}
		if !fetcher.IsFetchError(err) {
			return nil, err
		}

		t.logger.Debug("probe failed", "url", candidate, "error", err)
		lastErr = err
	}

	return nil, errors.Join(ErrNoSitemap, lastErr)
}
