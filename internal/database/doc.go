// Package database provides SQLite-based storage for linkex run history.
//
// The HistoryDB records one row per saved run: where the text came from,
// the base URL, mode and filter that were applied, a SHA3-256 digest of
// the input, the counters collected by the pipeline and the emitted links.
//
// modernc.org/sqlite is a CGO-free driver, so the history database is a
// single file that needs no external service.
package database
