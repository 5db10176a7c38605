// Package model defines the data structures shared by the sitemap fetcher,
// parser, traverser, database and report writers.
//
// This package contains the following main types:
//   - Entry: one page URL published in a listing document (<urlset>)
//   - SitemapReference: one child sitemap named by an index document (<sitemapindex>)
//   - Result: the aggregated output of a single traversal
//   - HostReport: a traversal or discovery run as stored and reported
//
// Entries and references are built by the parser and never modified
// afterwards. All types serialize to JSON for reports and database storage.
package model
