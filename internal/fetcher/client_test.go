package fetcher

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

// TestNewHTTPClient tests client construction.
func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	t.Run("does not follow redirects", func(t *testing.T) {
		t.Parallel()

		client, err := NewHTTPClient(ClientOptions{Timeout: time.Second})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.Timeout != time.Second {
			t.Errorf("expected timeout 1s, got %v", client.Timeout)
		}
		if err := client.CheckRedirect(nil, nil); !errors.Is(err, http.ErrUseLastResponse) {
			t.Errorf("expected ErrUseLastResponse, got %v", err)
		}
	})

	t.Run("accepts a SOCKS5 proxy address", func(t *testing.T) {
		t.Parallel()

		if _, err := NewHTTPClient(ClientOptions{ProxyAddress: "127.0.0.1:9050"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects malformed proxy addresses", func(t *testing.T) {
		t.Parallel()

		for _, addr := range []string{"127.0.0.1", ":9050", "127.0.0.1:0", "127.0.0.1:70000", "host:port"} {
			if _, err := NewHTTPClient(ClientOptions{ProxyAddress: addr}); !errors.Is(err, ErrInvalidProxyAddress) {
				t.Errorf("expected ErrInvalidProxyAddress for %q, got %v", addr, err)
			}
		}
	})
}
