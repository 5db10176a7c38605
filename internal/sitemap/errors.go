package sitemap

import "errors"

var (
	// ErrMalformedDocument is returned (wrapped) when the input is not
	// well-formed XML or has no root element.
	ErrMalformedDocument = errors.New("malformed sitemap document")

	// ErrUnknownRoot is returned (wrapped) when the root element is neither
	// urlset nor sitemapindex.
	ErrUnknownRoot = errors.New("unknown sitemap root element")
)
