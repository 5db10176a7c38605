// Package sitemap parses sitemap-protocol XML documents.
//
// A document is either a listing (<urlset>) of page entries or an index
// (<sitemapindex>) of child sitemap documents. Parse reports which one it saw
// and returns the typed items in document order.
//
// The parser is tolerant at the item level: an item whose <loc> is missing or
// is not an absolute http(s) URL is skipped, and a malformed <lastmod>,
// <changefreq> or <priority> leaves only that field unset. Only a document
// that is not well-formed XML, or whose root is neither urlset nor
// sitemapindex, is an error.
//
// Parse is a pure function. Fetching and decompression belong to the
// fetcher package.
package sitemap
