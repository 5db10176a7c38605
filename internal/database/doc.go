// Package database stores the history of sitemaps runs in SQLite.
//
// Each run (a model.HostReport) is kept twice: as a JSON document for
// faithful reloading, and as one row per entry so that two runs of the same
// target can be compared in SQL. The driver is modernc.org/sqlite, which
// needs no cgo; the database is a single file in the XDG data directory.
package database
