// Package main provides the entry point for the sitemaps CLI.
//
// sitemaps finds, fetches and traverses XML sitemaps, following sitemap
// indexes down to their page entries, and keeps a history of every run.
//
// Usage:
//
//	sitemaps fetch https://example.com/sitemap.xml
//	sitemaps discover example.com
//	sitemaps history example.com --diff
//
// See --help for all available options.
package main

// main is the entry point for sitemaps.
func main() {
	Execute()
}
