package crawler

import "testing"

// TestSitemapFromRobots tests Sitemap directive extraction.
func TestSitemapFromRobots(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		want   string
		wantOK bool
	}{
		{
			name:   "trailing comment",
			body:   "Sitemap: http://host/s.xml #note",
			want:   "http://host/s.xml",
			wantOK: true,
		},
		{
			name:   "first directive wins",
			body:   "User-agent: *\nSitemap: http://host/a.xml\nSitemap: http://host/b.xml\n",
			want:   "http://host/a.xml",
			wantOK: true,
		},
		{
			name:   "case-insensitive name",
			body:   "SITEMAP:http://host/upper.xml",
			want:   "http://host/upper.xml",
			wantOK: true,
		},
		{
			name:   "indented with CRLF",
			body:   "User-agent: *\r\n   sitemap:   http://host/crlf.xml   \r\n",
			want:   "http://host/crlf.xml",
			wantOK: true,
		},
		{
			name:   "empty directive is skipped",
			body:   "Sitemap: # none yet\nSitemap: http://host/real.xml",
			want:   "http://host/real.xml",
			wantOK: true,
		},
		{
			name:   "commented out line",
			body:   "# Sitemap: http://host/old.xml\n",
			wantOK: false,
		},
		{
			name:   "no directive",
			body:   "User-agent: *\nDisallow: /private\n",
			wantOK: false,
		},
		{
			name:   "empty body",
			body:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := SitemapFromRobots([]byte(tt.body))
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v (%q)", tt.wantOK, ok, got)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
