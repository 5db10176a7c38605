package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/nao1215/sitemaps/internal/config"
	"github.com/nao1215/sitemaps/internal/database"
	"github.com/nao1215/sitemaps/internal/fetcher"
	applog "github.com/nao1215/sitemaps/internal/log"
	"github.com/nao1215/sitemaps/internal/metrics"
	"github.com/nao1215/sitemaps/internal/model"
	"github.com/nao1215/sitemaps/internal/pipeline"
	"github.com/nao1215/sitemaps/internal/report"
	"github.com/spf13/cobra"
)

// addRunFlags registers the flags shared by fetch and discover.
func addRunFlags(cmd *cobra.Command) {
	// Traversal flags
	cmd.Flags().IntP("max-entries", "n", config.DefaultMaxEntries,
		"Maximum number of entries per target (0 = unlimited)")
	cmd.Flags().StringSlice("include", nil,
		"Only keep entries whose path matches one of these glob patterns")
	cmd.Flags().StringSlice("exclude", nil,
		"Drop entries whose path matches one of these glob patterns")

	// HTTP flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy (host:port)")

	// Batch flags
	cmd.Flags().StringP("batch", "b", "",
		"Read additional targets from a file, one per line (# starts a comment)")
	cmd.Flags().IntP("concurrency", "C", config.DefaultConcurrency,
		"Number of targets processed at once")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitemaps in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History and metrics flags
	cmd.Flags().Bool("no-db", false,
		"Do not record this run in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.Flags().String("metrics-file", "",
		"Write Prometheus metrics of this run to a textfile")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// newLogger builds the secret-masking logger selected by --log-json.
func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	jsonLogs, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		jsonLogs, _ = cmd.Root().PersistentFlags().GetBool("log-json") //nolint:errcheck
	}
	if jsonLogs {
		return applog.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return applog.NewSecureLogger(cmd.ErrOrStderr(), verbose)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.MaxEntries, err = flags.GetInt("max-entries"); err != nil {
		return nil, err
	}
	cfg.MaxEntriesSet = flags.Changed("max-entries")
	if cfg.Include, err = flags.GetStringSlice("include"); err != nil {
		return nil, err
	}
	if cfg.Exclude, err = flags.GetStringSlice("exclude"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.MetricsFile, err = flags.GetString("metrics-file"); err != nil {
		return nil, err
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// An explicit config path must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.Targets = append(cfg.Targets, args...)

	batchFile, err := flags.GetString("batch")
	if err != nil {
		return nil, err
	}
	if batchFile != "" {
		targets, err := readTargetFile(batchFile)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, targets...)
	}

	return cfg, nil
}

// readTargetFile reads one target per line, skipping blank lines and
// # comments.
func readTargetFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided target list is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open target file: %w", err)
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line, _, _ := strings.Cut(scanner.Text(), "#")
		if line = strings.TrimSpace(line); line != "" {
			targets = append(targets, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read target file %s: %w", path, err)
	}
	return targets, nil
}

// runTargets executes fetch or discover, depending on mode.
func runTargets(cmd *cobra.Command, args []string, mode pipeline.Mode) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd, cfg.Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg, mode, cmd.OutOrStdout(), logger)
}

// run processes every target and writes the report.
func run(ctx context.Context, cfg *config.Config, mode pipeline.Mode, out io.Writer, logger *slog.Logger) error {
	client, err := fetcher.NewHTTPClient(fetcher.ClientOptions{
		Timeout:      cfg.Timeout,
		ProxyAddress: cfg.Proxy,
	})
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	var db *database.SitemapDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "path", db.Path())
	}

	m := metrics.New()

	bp := pipeline.NewBatchProcessor(
		func(target string) *pipeline.Pipeline {
			return createPipelineForTarget(client, logger, cfg, m, db, mode, target)
		},
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	reports, batchErr := bp.ProcessBatch(ctx, cfg.Targets)

	if err := outputReport(cfg, out, reports); err != nil {
		return err
	}

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics file: %w", err)
		}
	}

	if batchErr != nil {
		return batchErr
	}

	var failed int
	for _, r := range reports {
		if r.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d targets failed", failed, len(reports))
	}
	return nil
}

// createPipelineForTarget creates a pipeline with the per-site overrides of
// target applied. Flags given on the command line win over the site file.
func createPipelineForTarget(
	client fetcher.HTTPDoer,
	logger *slog.Logger,
	cfg *config.Config,
	m *metrics.Metrics,
	db *database.SitemapDB,
	mode pipeline.Mode,
	target string,
) *pipeline.Pipeline {
	var site config.SiteConfig
	if cfg.SiteConfigs != nil {
		site = cfg.SiteConfigs.GetSiteConfig(target)
	}

	userAgent := cfg.UserAgent
	if site.UserAgent != "" && userAgent == config.DefaultUserAgent {
		userAgent = site.UserAgent
	}
	maxEntries := cfg.MaxEntries
	if !cfg.MaxEntriesSet && site.MaxEntries > 0 {
		maxEntries = site.MaxEntries
	}
	include, exclude := cfg.Include, cfg.Exclude
	if len(include) == 0 && len(exclude) == 0 {
		include, exclude = site.Include, site.Exclude
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineUserAgent(userAgent),
		pipeline.WithPipelineMaxBodySize(cfg.MaxBodySize),
		pipeline.WithPipelineMaxEntries(maxEntries),
		pipeline.WithPipelinePatterns(include, exclude),
		pipeline.WithPipelineMode(mode),
		pipeline.WithPipelineMetrics(m),
	}
	if len(site.Headers) > 0 {
		configOpts = append(configOpts, pipeline.WithPipelineHeaders(site.Headers))
	}
	if db != nil {
		configOpts = append(configOpts, pipeline.WithPipelineStore(db))
	}

	return pipeline.DefaultPipeline(client, []pipeline.Option{pipeline.WithLogger(logger)}, configOpts...)
}

// newReportWriter selects the writer for the requested format.
func newReportWriter(w io.Writer, jsonOutput, markdownOutput, verbose bool) report.Writer {
	switch {
	case jsonOutput:
		return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case markdownOutput:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(verbose))
	}
}

// outputReport writes the reports to the report file, or to out.
func outputReport(cfg *config.Config, out io.Writer, reports []*model.HostReport) error {
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := newReportWriter(out, cfg.JSONReport, cfg.MarkdownReport, cfg.Verbose)
	if _, err := w.Write(reports); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
