package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetrics tests collector registration and textfile export.
func TestMetrics(t *testing.T) {
	t.Parallel()

	t.Run("counters increment", func(t *testing.T) {
		t.Parallel()

		m := New()
		m.FetchRequests.WithLabelValues(OutcomeSuccess).Inc()
		m.FetchRequests.WithLabelValues(OutcomeSuccess).Inc()
		m.Redirects.Add(3)

		if got := testutil.ToFloat64(m.FetchRequests.WithLabelValues(OutcomeSuccess)); got != 2 {
			t.Errorf("expected 2 successful fetches, got %v", got)
		}
		if got := testutil.ToFloat64(m.Redirects); got != 3 {
			t.Errorf("expected 3 redirects, got %v", got)
		}
	})

	t.Run("separate instances do not share state", func(t *testing.T) {
		t.Parallel()

		a := New()
		b := New()
		a.Entries.Inc()

		if got := testutil.ToFloat64(b.Entries); got != 0 {
			t.Errorf("expected 0 entries on second instance, got %v", got)
		}
	})

	t.Run("writes textfile", func(t *testing.T) {
		t.Parallel()

		m := New()
		m.Documents.WithLabelValues("index").Inc()

		path := filepath.Join(t.TempDir(), "sitemaps.prom")
		if err := m.WriteTextfile(path); err != nil {
			t.Fatalf("failed to write textfile: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read textfile: %v", err)
		}
		if !strings.Contains(string(data), `sitemaps_documents_total{kind="index"} 1`) {
			t.Errorf("textfile missing documents counter:\n%s", data)
		}
	})
}
