package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitemaps/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "sitemaps.db"

// SitemapDB stores run reports and their entries.
type SitemapDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures SitemapDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the database in dbDir.
func Open(dbDir string, opts Options) (*SitemapDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &SitemapDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return sdb, nil
}

// Path returns the database file path.
func (sdb *SitemapDB) Path() string {
	return sdb.dbPath
}

// Close closes the database connection.
func (sdb *SitemapDB) Close() error {
	return sdb.db.Close()
}

func (sdb *SitemapDB) createTables() error {
	schema := `
	-- One row per fetch or discover run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		sitemap_url TEXT,
		source TEXT,
		started_at TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		entry_count INTEGER NOT NULL DEFAULT 0,
		sitemap_count INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Entries of a run in traversal order
	CREATE TABLE IF NOT EXISTS entries (
		run_id TEXT NOT NULL REFERENCES runs(id),
		position INTEGER NOT NULL,
		loc TEXT NOT NULL,
		lastmod TEXT,
		changefreq TEXT,
		priority REAL,
		PRIMARY KEY (run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_entries_loc ON entries(run_id, loc);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport stores report and its entries in one transaction.
func (sdb *SitemapDB) SaveReport(ctx context.Context, report *model.HostReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	summary := report.Summary()

	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after Commit

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, target, sitemap_url, source, started_at, duration_ms, entry_count, sitemap_count, error, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.ID,
		report.Target,
		report.SitemapURL,
		string(report.Source),
		formatTimestamp(report.StartedAt),
		report.Duration.Milliseconds(),
		summary.Entries,
		summary.Sitemaps,
		report.Error,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if report.Result != nil && len(report.Result.Entries) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (run_id, position, loc, lastmod, changefreq, priority)
		VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare entry insert: %w", err)
		}
		defer stmt.Close()

		for i, e := range report.Result.Entries {
			var lastmod, changefreq sql.NullString
			var priority sql.NullFloat64
			if t, ok := e.LastModified(); ok {
				lastmod = sql.NullString{String: formatTimestamp(t), Valid: true}
			}
			if f := e.ChangeFrequency(); f.IsSet() {
				changefreq = sql.NullString{String: f.String(), Valid: true}
			}
			if p, ok := e.Priority(); ok {
				priority = sql.NullFloat64{Float64: p, Valid: true}
			}

			if _, err := stmt.ExecContext(ctx, report.ID, i, e.Loc(), lastmod, changefreq, priority); err != nil {
				return fmt.Errorf("failed to save entry %s: %w", e.Loc(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ReportByID returns the stored report with id, or nil if there is none.
func (sdb *SitemapDB) ReportByID(ctx context.Context, id string) (*model.HostReport, error) {
	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, `SELECT report_json FROM runs WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return decodeReport(reportJSON)
}

// LatestReports returns up to limit reports of target, newest first.
// limit <= 0 returns all of them.
func (sdb *SitemapDB) LatestReports(ctx context.Context, target string, limit int) ([]*model.HostReport, error) {
	query := `
	SELECT report_json FROM runs
	WHERE target = ?
	ORDER BY started_at DESC, rowid DESC
	`
	args := []any{target}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}
	defer rows.Close()

	var reports []*model.HostReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		report, err := decodeReport(reportJSON)
		if err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// ListTargets returns every target with at least one stored run.
func (sdb *SitemapDB) ListTargets(ctx context.Context) ([]string, error) {
	rows, err := sdb.db.QueryContext(ctx, `SELECT DISTINCT target FROM runs ORDER BY target`)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

// RunMetadata summarizes a stored run without loading its entries.
type RunMetadata struct {
	ID         string
	Target     string
	SitemapURL string
	Source     model.Source
	StartedAt  time.Time
	Duration   time.Duration
	Entries    int
	Sitemaps   int
	Error      string
}

// History returns the runs of target, newest first.
func (sdb *SitemapDB) History(ctx context.Context, target string) ([]RunMetadata, error) {
	rows, err := sdb.db.QueryContext(ctx, `
	SELECT id, target, sitemap_url, source, started_at, duration_ms, entry_count, sitemap_count, error
	FROM runs
	WHERE target = ?
	ORDER BY started_at DESC, rowid DESC
	`, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var sitemapURL, source, runErr sql.NullString
		var startedAt string
		var durationMS int64

		if err := rows.Scan(&meta.ID, &meta.Target, &sitemapURL, &source, &startedAt, &durationMS,
			&meta.Entries, &meta.Sitemaps, &runErr); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		meta.SitemapURL = sitemapURL.String
		meta.Source = model.Source(source.String)
		meta.StartedAt = parseTimestamp(startedAt)
		meta.Duration = time.Duration(durationMS) * time.Millisecond
		meta.Error = runErr.String
		results = append(results, meta)
	}
	return results, rows.Err()
}

// Locations returns the entry locations of run id in traversal order.
func (sdb *SitemapDB) Locations(ctx context.Context, id string) ([]string, error) {
	return sdb.queryStrings(ctx, `SELECT loc FROM entries WHERE run_id = ? ORDER BY position`, id)
}

// Diff describes how the entries of one run differ from an earlier run.
type Diff struct {
	PreviousID string `json:"previous_id"`
	CurrentID  string `json:"current_id"`

	// Added are locations present only in the current run.
	Added []string `json:"added"`

	// Removed are locations present only in the previous run.
	Removed []string `json:"removed"`

	// Modified are locations present in both runs whose lastmod changed.
	Modified []string `json:"modified"`
}

// IsEmpty reports whether the two runs have the same entries.
func (d *Diff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// Diff compares the entries of two stored runs.
func (sdb *SitemapDB) Diff(ctx context.Context, previousID, currentID string) (*Diff, error) {
	d := &Diff{PreviousID: previousID, CurrentID: currentID}

	var err error
	d.Added, err = sdb.queryStrings(ctx, `
	SELECT loc FROM entries WHERE run_id = ?
	EXCEPT
	SELECT loc FROM entries WHERE run_id = ?
	ORDER BY loc
	`, currentID, previousID)
	if err != nil {
		return nil, fmt.Errorf("failed to diff added entries: %w", err)
	}

	d.Removed, err = sdb.queryStrings(ctx, `
	SELECT loc FROM entries WHERE run_id = ?
	EXCEPT
	SELECT loc FROM entries WHERE run_id = ?
	ORDER BY loc
	`, previousID, currentID)
	if err != nil {
		return nil, fmt.Errorf("failed to diff removed entries: %w", err)
	}

	d.Modified, err = sdb.queryStrings(ctx, `
	SELECT DISTINCT cur.loc
	FROM entries AS cur
	JOIN entries AS prev ON prev.loc = cur.loc AND prev.run_id = ?
	WHERE cur.run_id = ? AND IFNULL(cur.lastmod, '') <> IFNULL(prev.lastmod, '')
	ORDER BY cur.loc
	`, previousID, currentID)
	if err != nil {
		return nil, fmt.Errorf("failed to diff modified entries: %w", err)
	}

	return d, nil
}

func (sdb *SitemapDB) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		values = append(values, s)
	}
	return values, rows.Err()
}

func decodeReport(reportJSON string) (*model.HostReport, error) {
	var report model.HostReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// timestampLayout sorts lexically in time order for UTC values.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats are the layouts parseTimestamp accepts, most specific
// first.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05", // SQLite CURRENT_TIMESTAMP
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
