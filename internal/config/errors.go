package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no host or sitemap URL is given, neither as
	// an argument nor through --batch.
	ErrNoTarget = errors.New("no target specified: provide a host or sitemap URL, or use --batch")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxEntries is returned when the entry cap is negative.
	// Use 0 for no cap.
	ErrInvalidMaxEntries = errors.New("invalid max entries: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrNoDBDir is returned when history is enabled without a database
	// directory.
	ErrNoDBDir = errors.New("no database directory: set one or disable history with --no-db")
)
