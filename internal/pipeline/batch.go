package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/sitemaps/internal/config"
	"github.com/nao1215/sitemaps/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor handles concurrent processing of multiple targets.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	// pipelineFactory creates the pipeline for one target, so that
	// per-site configuration can differ between targets.
	pipelineFactory func(target string) *Pipeline

	// concurrency is the maximum number of targets processed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent targets.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func(target string) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     config.DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs the pipeline of every target with bounded concurrency.
//
// It returns one report per target, in input order. A target that fails
// has its error recorded in its report; it does not affect the others.
// The returned error is non-nil only when ctx was cancelled, in which case
// the targets that had not started carry the cancellation error.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.HostReport, error) {
	bp.logger.Info("starting batch processing",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*model.HostReport, len(targets))

	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			report := model.NewHostReport(target)
			results[i] = report

			if err := ctx.Err(); err != nil {
				report.Error = err.Error()
				return nil
			}

			bp.logger.Debug("processing target",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			// Failures are recorded in the report.
			_ = bp.pipelineFactory(target).Execute(ctx, report) //nolint:errcheck

			if report.Failed() {
				bp.logger.Warn("target failed",
					"target", target,
					"error", report.Error,
				)
			}
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	bp.logger.Info("batch processing complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)

	return results, ctx.Err()
}
