package crawler

import (
	"bufio"
	"bytes"
	"strings"
)

// sitemapDirective is the robots.txt field that names a sitemap.
const sitemapDirective = "sitemap:"

// SitemapFromRobots returns the first Sitemap directive in a robots.txt body.
// The directive name is matched case-insensitively, and a trailing "#" comment
// and surrounding whitespace are removed from the value. Directives with an
// empty value are ignored.
func SitemapFromRobots(body []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 4096), len(body)+1)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < len(sitemapDirective) || !strings.EqualFold(line[:len(sitemapDirective)], sitemapDirective) {
			continue
		}

		value := line[len(sitemapDirective):]
		if i := strings.IndexByte(value, '#'); i >= 0 {
			value = value[:i]
		}
		if value = strings.TrimSpace(value); value != "" {
			return value, true
		}
	}
	return "", false
}
