package fetcher

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURI parses raw into an absolute URI.
// Input without an "http://" or "https://" prefix is treated as a bare host
// (optionally followed by a path) and gets "http://" prepended.
func NormalizeURI(raw string) (*url.URL, error) {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidURI, raw, err)
	}
	if u.Host == "" || strings.ContainsAny(u.Host, " \t\r\n") {
		return nil, fmt.Errorf("%w: %q has no valid host", ErrInvalidURI, raw)
	}
	return u, nil
}

// hasGzipSuffix reports whether the URI path names a gzip file.
func hasGzipSuffix(u *url.URL) bool {
	return strings.HasSuffix(strings.ToLower(u.Path), ".gz")
}
