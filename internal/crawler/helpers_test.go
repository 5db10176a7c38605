package crawler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// testSite serves fixed documents and records every requested path.
// "{{base}}" in a document is replaced with the server's base URL.
type testSite struct {
	*httptest.Server

	mu       sync.Mutex
	docs     map[string]string
	requests []string
}

func newTestSite(t *testing.T, docs map[string]string) *testSite {
	t.Helper()

	s := &testSite{docs: docs}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.Path)
		body, ok := s.docs[r.URL.Path]
		s.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(strings.ReplaceAll(body, "{{base}}", "http://"+r.Host))) //nolint:errcheck
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests returns the requested paths in order.
func (s *testSite) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// urlset renders a listing with one entry per path.
func urlset(paths ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, p := range paths {
		fmt.Fprintf(&b, "  <url><loc>{{base}}%s</loc><changefreq>daily</changefreq></url>\n", p)
	}
	b.WriteString("</urlset>\n")
	return b.String()
}

// sitemapindex renders an index with one reference per path.
func sitemapindex(paths ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, p := range paths {
		fmt.Fprintf(&b, "  <sitemap><loc>{{base}}%s</loc><lastmod>2024-01-01</lastmod></sitemap>\n", p)
	}
	b.WriteString("</sitemapindex>\n")
	return b.String()
}

func pathsOf(t *testing.T, locs []string, base string) []string {
	t.Helper()

	paths := make([]string, 0, len(locs))
	for _, loc := range locs {
		paths = append(paths, strings.TrimPrefix(loc, base))
	}
	return paths
}
