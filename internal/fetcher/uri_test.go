package fetcher

import (
	"errors"
	"testing"
)

// TestNormalizeURI tests scheme defaulting and validation.
func TestNormalizeURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare host", input: "www.example.com", want: "http://www.example.com"},
		{name: "bare host with path", input: "www.example.com/sitemap.xml", want: "http://www.example.com/sitemap.xml"},
		{name: "http kept", input: "http://www.example.com/a", want: "http://www.example.com/a"},
		{name: "https kept", input: "https://www.example.com/a", want: "https://www.example.com/a"},
		{name: "uppercase scheme kept", input: "HTTPS://www.example.com/a", want: "https://www.example.com/a"},
		{name: "surrounding whitespace", input: "  www.example.com  ", want: "http://www.example.com"},
		{name: "spaces in host", input: "blah blah blah", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeURI(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURI) {
					t.Errorf("expected ErrInvalidURI, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %q, want %q", got.String(), tt.want)
			}
		})
	}
}
