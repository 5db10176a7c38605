// Package crawler resolves sitemap trees into flat lists of page entries.
//
// # Traversal
//
// A Traverser fetches a root sitemap document and, when the root is an
// index, every document below it. Traversal is depth-first, sequential and
// in document order. Entries pass through an optional Filter and stop at an
// optional cap; once the cap is reached the remaining child documents are
// not fetched.
//
//	t := crawler.NewTraverser(
//		crawler.WithMaxEntries(1000),
//		crawler.WithFilter(crawler.PatternFilter(nil, []string{"/tag/*"})),
//	)
//	result, err := t.Traverse(ctx, "https://example.com/sitemap_index.xml")
//
// # Discovery
//
// Discover finds a host's sitemap. It reads the first Sitemap directive from
// robots.txt and otherwise probes the conventional locations in ProbePaths.
//
//	d, err := t.Discover(ctx, "example.com")
//
// # Errors
//
// Fetch and parse errors abort a traversal and are returned wrapped, so
// errors.As finds *fetcher.FetchError and *fetcher.MaxRedirectError, and
// errors.Is finds the sitemap package sentinels. Discover returns
// ErrNoSitemap when every candidate fails.
package crawler
