// Package pipeline runs the per-target work of a sitemaps invocation.
//
// A Pipeline executes Steps in order against a model.HostReport: the
// SitemapStep resolves and traverses the target's sitemap, and the optional
// StoreStep records the run in the history database. Step failures are
// recorded in the report.
//
// BatchProcessor runs one pipeline per target with bounded concurrency using
// errgroup, returning the reports in input order.
package pipeline
