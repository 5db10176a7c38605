package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout bounds each HTTP request. Sitemap files can be large,
	// so this is more generous than a typical API timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxEntries of 0 means traversals are not capped.
	DefaultMaxEntries = 0

	// DefaultConcurrency is the number of targets processed at once in
	// batch mode. Traversal of a single target is always sequential.
	DefaultConcurrency = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "sitemaps"

	// DefaultUserAgent identifies sitemaps in HTTP requests so that site
	// operators can recognize the traffic.
	DefaultUserAgent = "sitemaps/1.0 (+https://github.com/nao1215/sitemaps)"

	// DefaultMaxBodySize is the sitemap protocol's limit for one
	// uncompressed file.
	DefaultMaxBodySize = 50 * 1024 * 1024 // 50MiB
)

// Config holds all configuration options for a sitemaps run.
// It is populated from CLI flags and passed down explicitly.
type Config struct {
	// Timeout is the timeout of each individual HTTP request, redirects
	// included.
	Timeout time.Duration

	// MaxEntries caps the entries returned per target. 0 means no cap.
	MaxEntries int

	// MaxEntriesSet records that MaxEntries was given explicitly, so that it
	// wins over a site's maxEntries even when it is 0.
	MaxEntriesSet bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum body size in bytes, applied to raw and
	// inflated bodies. 0 means DefaultMaxBodySize.
	MaxBodySize int64

	// Proxy is an optional SOCKS5 proxy in "host:port" format.
	Proxy string

	// Concurrency is the number of targets processed at once.
	Concurrency int

	// Include and Exclude are glob patterns over entry paths.
	// An entry must match an include pattern (when any are given) and no
	// exclude pattern.
	Include []string
	Exclude []string

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// ConfigFilePath is the path to the site file. If empty, .sitemaps is
	// looked up in the current directory and then the home directory.
	ConfigFilePath string

	// SiteConfigs holds the per-site overrides loaded from the site file.
	SiteConfigs *File

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects GitHub Flavored Markdown output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	// Missing directories are created.
	ReportFile string

	// DBDir is the directory of the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB records each run in the history database.
	SaveToDB bool

	// MetricsFile, when set, receives the run's Prometheus metrics in the
	// text exposition format.
	MetricsFile string

	// Targets are the hosts or sitemap URLs to process.
	Targets []string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		MaxEntries:  DefaultMaxEntries,
		Concurrency: DefaultConcurrency,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
	}
}

// XDGDataDir returns the XDG data directory for sitemaps.
// On Linux: ~/.local/share/sitemaps
// On macOS: ~/Library/Application Support/sitemaps
// On Windows: %LOCALAPPDATA%\sitemaps
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitemaps.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxEntries < 0 {
		return ErrInvalidMaxEntries
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.SaveToDB && c.DBDir == "" {
		return ErrNoDBDir
	}

	return nil
}
