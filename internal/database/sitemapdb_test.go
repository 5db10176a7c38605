package database

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/nao1215/sitemaps/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *SitemapDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testEntry(t *testing.T, loc string, lastmod string) model.Entry {
	t.Helper()

	u, err := url.Parse(loc)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", loc, err)
	}
	var mod *time.Time
	if lastmod != "" {
		parsed, err := time.Parse("2006-01-02", lastmod)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", lastmod, err)
		}
		mod = &parsed
	}
	priority := 0.5
	return model.NewEntry(u, mod, model.ChangeFrequencyDaily, &priority)
}

func testReport(t *testing.T, target string, startedAt time.Time, entries ...model.Entry) *model.HostReport {
	t.Helper()

	report := model.NewHostReport(target)
	report.StartedAt = startedAt
	report.Duration = 1500 * time.Millisecond
	report.SitemapURL = "https://" + target + "/sitemap.xml"
	report.Source = model.SourceProbe
	report.Result = model.NewResult()
	report.Result.Entries = append(report.Result.Entries, entries...)
	return report
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		dbPath := filepath.Join(dbDir, FileName)
		if _, err := os.Stat(dbPath); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != dbPath {
			t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "missing")
		_, err := Open(dbDir, Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

func TestSaveAndLoadReport(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	report := testReport(t, "example.com", started,
		testEntry(t, "https://example.com/", "2026-02-01"),
		testEntry(t, "https://example.com/about", ""),
	)

	if err := db.SaveReport(ctx, report); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	loaded, err := db.ReportByID(ctx, report.ID)
	if err != nil {
		t.Fatalf("ReportByID() error = %v", err)
	}
	if loaded == nil {
		t.Fatal("ReportByID() returned nil")
	}
	if loaded.Target != report.Target || loaded.SitemapURL != report.SitemapURL || loaded.Source != report.Source {
		t.Errorf("loaded report = %+v, want %+v", loaded, report)
	}
	if !loaded.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", loaded.StartedAt, started)
	}
	if loaded.Result == nil || len(loaded.Result.Entries) != 2 {
		t.Fatalf("loaded entries = %+v, want 2", loaded.Result)
	}
	for i, e := range report.Result.Entries {
		if !loaded.Result.Entries[i].Equal(e) {
			t.Errorf("entry %d = %v, want %v", i, loaded.Result.Entries[i], e)
		}
	}

	locs, err := db.Locations(ctx, report.ID)
	if err != nil {
		t.Fatalf("Locations() error = %v", err)
	}
	want := []string{"https://example.com/", "https://example.com/about"}
	if !slices.Equal(locs, want) {
		t.Errorf("Locations() = %v, want %v", locs, want)
	}
}

func TestSaveFailedReport(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	report := model.NewHostReport("broken.example")
	report.Error = "no sitemap found"
	if err := db.SaveReport(ctx, report); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	history, err := db.History(ctx, "broken.example")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("len(History()) = %d, want 1", len(history))
	}
	if history[0].Error != "no sitemap found" || history[0].Entries != 0 {
		t.Errorf("History()[0] = %+v", history[0])
	}
}

func TestReportByIDNotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)

	report, err := db.ReportByID(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("ReportByID() error = %v", err)
	}
	if report != nil {
		t.Errorf("ReportByID() = %+v, want nil", report)
	}
}

func TestHistoryAndLatestReports(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 3 {
		report := testReport(t, "example.com", base.Add(time.Duration(i)*time.Hour),
			testEntry(t, "https://example.com/", ""))
		if err := db.SaveReport(ctx, report); err != nil {
			t.Fatalf("SaveReport() error = %v", err)
		}
		ids = append(ids, report.ID)
	}
	other := testReport(t, "other.example", base)
	if err := db.SaveReport(ctx, other); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	history, err := db.History(ctx, "example.com")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("len(History()) = %d, want 3", len(history))
	}
	if history[0].ID != ids[2] || history[2].ID != ids[0] {
		t.Errorf("History() is not newest first: %v", history)
	}
	if history[0].Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", history[0].Duration)
	}
	if history[0].Source != model.SourceProbe || history[0].Entries != 1 {
		t.Errorf("History()[0] = %+v", history[0])
	}

	latest, err := db.LatestReports(ctx, "example.com", 2)
	if err != nil {
		t.Fatalf("LatestReports() error = %v", err)
	}
	if len(latest) != 2 || latest[0].ID != ids[2] || latest[1].ID != ids[1] {
		t.Errorf("LatestReports() returned unexpected runs")
	}

	all, err := db.LatestReports(ctx, "example.com", 0)
	if err != nil {
		t.Fatalf("LatestReports() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(LatestReports(0)) = %d, want 3", len(all))
	}

	targets, err := db.ListTargets(ctx)
	if err != nil {
		t.Fatalf("ListTargets() error = %v", err)
	}
	if !slices.Equal(targets, []string{"example.com", "other.example"}) {
		t.Errorf("ListTargets() = %v", targets)
	}
}

func TestDiff(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	previous := testReport(t, "example.com", base,
		testEntry(t, "https://example.com/", "2026-01-01"),
		testEntry(t, "https://example.com/old", "2026-01-01"),
		testEntry(t, "https://example.com/same", "2026-01-01"),
	)
	current := testReport(t, "example.com", base.Add(24*time.Hour),
		testEntry(t, "https://example.com/", "2026-01-02"),
		testEntry(t, "https://example.com/new", ""),
		testEntry(t, "https://example.com/same", "2026-01-01"),
	)
	for _, r := range []*model.HostReport{previous, current} {
		if err := db.SaveReport(ctx, r); err != nil {
			t.Fatalf("SaveReport() error = %v", err)
		}
	}

	diff, err := db.Diff(ctx, previous.ID, current.ID)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if !slices.Equal(diff.Added, []string{"https://example.com/new"}) {
		t.Errorf("Added = %v", diff.Added)
	}
	if !slices.Equal(diff.Removed, []string{"https://example.com/old"}) {
		t.Errorf("Removed = %v", diff.Removed)
	}
	if !slices.Equal(diff.Modified, []string{"https://example.com/"}) {
		t.Errorf("Modified = %v", diff.Modified)
	}
	if diff.IsEmpty() {
		t.Error("IsEmpty() = true, want false")
	}

	same, err := db.Diff(ctx, current.ID, current.ID)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if !same.IsEmpty() {
		t.Errorf("Diff of a run with itself = %+v, want empty", same)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"stored layout", "2026-01-02T03:04:05.000000006Z", time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)},
		{"RFC3339", "2026-01-02T03:04:05Z", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"SQLite default", "2026-01-02 03:04:05", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"invalid", "yesterday", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
