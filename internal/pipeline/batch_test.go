package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nao1215/sitemaps/internal/model"
)

// funcStep adapts a function to the Step interface.
type funcStep func(ctx context.Context, report *model.HostReport) error

func (f funcStep) Do(ctx context.Context, report *model.HostReport) error { return f(ctx, report) }
func (f funcStep) Name() string { return "func" }

func TestNewBatchProcessor(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func(string) *Pipeline { return New() })
		if bp.concurrency != 4 {
			t.Errorf("concurrency = %d, want 4", bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func(string) *Pipeline { return New() }, WithConcurrency(7))
		if bp.concurrency != 7 {
			t.Errorf("concurrency = %d, want 7", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func(string) *Pipeline { return New() }, WithConcurrency(0))
		if bp.concurrency != 4 {
			t.Errorf("concurrency = %d, want 4", bp.concurrency)
		}
	})
}

func TestProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("returns reports in input order", func(t *testing.T) {
		t.Parallel()

		targets := []string{"a.example", "b.example", "c.example", "d.example", "e.example"}
		bp := NewBatchProcessor(func(target string) *Pipeline {
			p := New()
			p.AddStep(funcStep(func(_ context.Context, report *model.HostReport) error {
				report.SitemapURL = "http://" + target + "/sitemap.xml"
				return nil
			}))
			return p
		}, WithConcurrency(2))

		reports, err := bp.ProcessBatch(context.Background(), targets)
		if err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}
		if len(reports) != len(targets) {
			t.Fatalf("len(reports) = %d, want %d", len(reports), len(targets))
		}
		for i, r := range reports {
			if r.Target != targets[i] {
				t.Errorf("reports[%d].Target = %q, want %q", i, r.Target, targets[i])
			}
			if r.SitemapURL != "http://"+targets[i]+"/sitemap.xml" {
				t.Errorf("reports[%d].SitemapURL = %q", i, r.SitemapURL)
			}
		}
	})

	t.Run("records per-target errors", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func(target string) *Pipeline {
			p := New()
			p.AddStep(funcStep(func(context.Context, *model.HostReport) error {
				if target == "bad.example" {
					return errors.New("no sitemap found")
				}
				return nil
			}))
			return p
		})

		reports, err := bp.ProcessBatch(context.Background(), []string{"good.example", "bad.example"})
		if err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}
		if reports[0].Failed() {
			t.Errorf("reports[0].Error = %q, want empty", reports[0].Error)
		}
		if !reports[1].Failed() || !strings.Contains(reports[1].Error, "no sitemap found") {
			t.Errorf("reports[1].Error = %q", reports[1].Error)
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		release := make(chan struct{})
		bp := NewBatchProcessor(func(string) *Pipeline {
			p := New()
			p.AddStep(funcStep(func(context.Context, *model.HostReport) error {
				n := current.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				<-release
				current.Add(-1)
				return nil
			}))
			return p
		}, WithConcurrency(2))

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = bp.ProcessBatch(context.Background(), []string{"a", "b", "c", "d", "e", "f"}) //nolint:errcheck
		}()
		close(release)
		<-done

		if peak.Load() > 2 {
			t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		var ran atomic.Int32
		bp := NewBatchProcessor(func(string) *Pipeline {
			p := New()
			p.AddStep(funcStep(func(context.Context, *model.HostReport) error {
				ran.Add(1)
				return nil
			}))
			return p
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		reports, err := bp.ProcessBatch(ctx, []string{"a.example", "b.example"})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("ProcessBatch() error = %v, want context.Canceled", err)
		}
		if len(reports) != 2 {
			t.Fatalf("len(reports) = %d, want 2", len(reports))
		}
		for _, r := range reports {
			if !r.Failed() {
				t.Errorf("report for %s should record the cancellation", r.Target)
			}
		}
		if ran.Load() != 0 {
			t.Errorf("steps ran %d times, want 0", ran.Load())
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func(string) *Pipeline { return New() })
		reports, err := bp.ProcessBatch(context.Background(), nil)
		if err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}
		if len(reports) != 0 {
			t.Errorf("len(reports) = %d, want 0", len(reports))
		}
	})
}
