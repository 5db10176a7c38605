package pipeline

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/sitemaps/internal/model"
)

// mockStep is a test implementation of the Step interface.
type mockStep struct {
	name  string
	err   error
	calls *[]string
	mu    *sync.Mutex
}

func newMockStep(name string, err error, calls *[]string, mu *sync.Mutex) *mockStep {
	return &mockStep{name: name, err: err, calls: calls, mu: mu}
}

func (m *mockStep) Do(_ context.Context, _ *model.HostReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.calls = append(*m.calls, m.name)
	return m.err
}

func (m *mockStep) Name() string {
	return m.name
}

func TestNew(t *testing.T) {
	t.Parallel()

	p := New()
	if p.logger == nil {
		t.Error("expected default logger")
	}
	if p.continueOnError {
		t.Error("expected continueOnError to default to false")
	}
	if p.StepCount() != 0 {
		t.Errorf("StepCount() = %d, want 0", p.StepCount())
	}
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var calls []string
		var mu sync.Mutex
		p := New()
		p.AddStep(newMockStep("first", nil, &calls, &mu))
		p.AddSteps(newMockStep("second", nil, &calls, &mu), newMockStep("third", nil, &calls, &mu))

		report := model.NewHostReport("example.com")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !slices.Equal(calls, []string{"first", "second", "third"}) {
			t.Errorf("calls = %v", calls)
		}
		if !slices.Equal(p.StepNames(), []string{"first", "second", "third"}) {
			t.Errorf("StepNames() = %v", p.StepNames())
		}
		if report.Failed() {
			t.Errorf("report.Error = %q, want empty", report.Error)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var calls []string
		var mu sync.Mutex
		stepErr := errors.New("boom")
		p := New()
		p.AddSteps(newMockStep("first", stepErr, &calls, &mu), newMockStep("second", nil, &calls, &mu))

		report := model.NewHostReport("example.com")
		err := p.Execute(context.Background(), report)
		if !errors.Is(err, stepErr) {
			t.Fatalf("Execute() error = %v, want %v", err, stepErr)
		}
		if !slices.Equal(calls, []string{"first"}) {
			t.Errorf("calls = %v", calls)
		}
		if report.Error != "boom" {
			t.Errorf("report.Error = %q, want boom", report.Error)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		var calls []string
		var mu sync.Mutex
		p := New(WithContinueOnError(true))
		p.AddSteps(
			newMockStep("first", errors.New("first failed"), &calls, &mu),
			newMockStep("second", errors.New("second failed"), &calls, &mu),
			newMockStep("third", nil, &calls, &mu),
		)

		report := model.NewHostReport("example.com")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if len(calls) != 3 {
			t.Errorf("calls = %v, want all three", calls)
		}
		if !strings.Contains(report.Error, "first failed") || !strings.Contains(report.Error, "second failed") {
			t.Errorf("report.Error = %q, want both failures", report.Error)
		}
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		t.Parallel()

		var calls []string
		var mu sync.Mutex
		p := New(WithContinueOnError(true))
		p.AddStep(newMockStep("first", nil, &calls, &mu))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report := model.NewHostReport("example.com")
		if err := p.Execute(ctx, report); !errors.Is(err, context.Canceled) {
			t.Fatalf("Execute() error = %v, want context.Canceled", err)
		}
		if len(calls) != 0 {
			t.Errorf("calls = %v, want none", calls)
		}
		if !report.Failed() {
			t.Error("expected cancellation to be recorded")
		}
	})
}
