package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/sitemaps/internal/config"
	"github.com/nao1215/sitemaps/internal/crawler"
	"github.com/nao1215/sitemaps/internal/fetcher"
	"github.com/nao1215/sitemaps/internal/metrics"
	"github.com/nao1215/sitemaps/internal/model"
)

// IsSitemapURL reports whether target names a sitemap document rather than
// a host: it has a path beyond "/". Bare hosts are discovered; sitemap URLs
// are traversed directly.
func IsSitemapURL(target string) bool {
	u, err := fetcher.NormalizeURI(target)
	if err != nil {
		return false
	}
	return u.Path != "" && u.Path != "/"
}

// Mode selects how SitemapStep treats its target.
type Mode int

const (
	// ModeAuto traverses sitemap URLs directly and discovers bare hosts.
	ModeAuto Mode = iota

	// ModeDirect traverses every target as a sitemap URL.
	ModeDirect

	// ModeDiscover discovers the sitemap of every target.
	ModeDiscover
)

// SitemapStep resolves the sitemap of a target and traverses it.
type SitemapStep struct {
	traverser *crawler.Traverser
	mode      Mode
	logger    *slog.Logger
}

// SitemapStepOption configures a SitemapStep.
type SitemapStepOption func(*SitemapStep)

// WithMode sets how targets are treated. The default is ModeAuto.
func WithMode(mode Mode) SitemapStepOption {
	return func(s *SitemapStep) {
		s.mode = mode
	}
}

// WithSitemapLogger sets a custom logger for the sitemap step.
func WithSitemapLogger(logger *slog.Logger) SitemapStepOption {
	return func(s *SitemapStep) {
		s.logger = logger
	}
}

// NewSitemapStep creates a sitemap step that uses traverser.
func NewSitemapStep(traverser *crawler.Traverser, opts ...SitemapStepOption) *SitemapStep {
	s := &SitemapStep{
		traverser: traverser,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SitemapStep) Name() string {
	return "sitemap"
}

// Do traverses the target directly or discovers its sitemap, as selected
// by the step's Mode.
func (s *SitemapStep) Do(ctx context.Context, report *model.HostReport) error {
	direct := s.mode == ModeDirect || (s.mode == ModeAuto && IsSitemapURL(report.Target))
	if direct {
		u, err := fetcher.NormalizeURI(report.Target)
		if err != nil {
			return err
		}
		report.SitemapURL = u.String()
		report.Source = model.SourceDirect

		result, err := s.traverser.Traverse(ctx, report.SitemapURL)
		if err != nil {
			return err
		}
		report.Result = result
	} else {
		discovery, err := s.traverser.Discover(ctx, report.Target)
		if err != nil {
			return err
		}
		report.SitemapURL = discovery.SitemapURL
		report.Source = discovery.Source
		report.Result = discovery.Result
	}

	s.logger.Info("sitemap traversed",
		"target", report.Target,
		"sitemap", report.SitemapURL,
		"source", report.Source,
		"entries", len(report.Result.Entries),
		"sitemaps", len(report.Result.Sitemaps),
	)
	return nil
}

// ReportStore persists finished reports.
type ReportStore interface {
	SaveReport(ctx context.Context, report *model.HostReport) error
}

// StoreStep saves the report to the run history.
type StoreStep struct {
	store ReportStore
}

// NewStoreStep creates a store step writing to store.
func NewStoreStep(store ReportStore) *StoreStep {
	return &StoreStep{store: store}
}

// Name returns the step name.
func (s *StoreStep) Name() string {
	return "store"
}

// Do saves the report. Failed runs are saved too.
func (s *StoreStep) Do(ctx context.Context, report *model.HostReport) error {
	if err := s.store.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("failed to store run %s: %w", report.ID, err)
	}
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// Headers are additional HTTP headers to send with requests.
	Headers map[string]string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// MaxEntries caps the entries of each traversal; 0 means unlimited.
	MaxEntries int

	// Include are glob patterns an entry path must match.
	Include []string

	// Exclude are glob patterns that drop matching entry paths.
	Exclude []string

	// Mode selects direct traversal or discovery.
	Mode Mode

	// Metrics receives fetch and traversal counters. May be nil.
	Metrics *metrics.Metrics

	// Store records each run. Nil disables the store step.
	Store ReportStore
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineUserAgent sets the User-Agent header for HTTP requests.
func WithPipelineUserAgent(userAgent string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		if userAgent != "" {
			c.UserAgent = userAgent
		}
	}
}

// WithPipelineHeaders sets additional HTTP headers.
func WithPipelineHeaders(headers map[string]string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Headers = headers
	}
}

// WithPipelineMaxBodySize sets the maximum response body size in bytes.
func WithPipelineMaxBodySize(maxBodySize int64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxBodySize = maxBodySize
	}
}

// WithPipelineMaxEntries sets the entry cap of each traversal.
func WithPipelineMaxEntries(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxEntries = n
	}
}

// WithPipelinePatterns sets the include and exclude entry path patterns.
func WithPipelinePatterns(include, exclude []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Include = include
		c.Exclude = exclude
	}
}

// WithPipelineMode sets how the sitemap step treats targets.
func WithPipelineMode(mode Mode) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Mode = mode
	}
}

// WithPipelineMetrics sets the metrics updated by the pipeline.
func WithPipelineMetrics(m *metrics.Metrics) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Metrics = m
	}
}

// WithPipelineStore adds a store step that records every run.
func WithPipelineStore(store ReportStore) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Store = store
	}
}

// DefaultPipeline creates a pipeline that traverses the target's sitemap
// and, when a store is configured, saves the run.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineMaxEntries, etc).
func DefaultPipeline(client fetcher.HTTPDoer, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	cfg := &DefaultPipelineConfig{
		UserAgent:   config.DefaultUserAgent,
		MaxBodySize: config.DefaultMaxBodySize,
		MaxEntries:  config.DefaultMaxEntries,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	if cfg.Store != nil {
		pipelineOpts = append(pipelineOpts, WithContinueOnError(true))
	}
	p := New(pipelineOpts...)

	fetchOpts := []fetcher.Option{
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithLogger(p.logger),
		fetcher.WithMetrics(cfg.Metrics),
	}
	if client != nil {
		fetchOpts = append(fetchOpts, fetcher.WithHTTPClient(client))
	}
	if len(cfg.Headers) > 0 {
		fetchOpts = append(fetchOpts, fetcher.WithHeaders(cfg.Headers))
	}

	traverser := crawler.NewTraverser(
		crawler.WithFetcher(fetcher.NewHTTPFetcher(fetchOpts...)),
		crawler.WithMaxEntries(cfg.MaxEntries),
		crawler.WithFilter(crawler.PatternFilter(cfg.Include, cfg.Exclude)),
		crawler.WithLogger(p.logger),
		crawler.WithMetrics(cfg.Metrics),
	)

	p.AddStep(NewSitemapStep(traverser,
		WithMode(cfg.Mode),
		WithSitemapLogger(p.logger),
	))
	if cfg.Store != nil {
		p.AddStep(NewStoreStep(cfg.Store))
	}

	return p
}
