package store

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"readyroom/config"
)

// NewDB opens the SQLite database at cfg.DBPath, creating the parent
// directory if needed. WAL journaling and foreign key enforcement are
// set per connection through the DSN so every pooled connection gets them.
func NewDB(cfg *config.AppConfig, logger *slog.Logger) (*sql.DB, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := "file:" + cfg.DBPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Single writer; SQLite serializes writes anyway and this avoids
	// SQLITE_BUSY churn under concurrent requests.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if logger != nil {
		logger.Info("database opened", "path", cfg.DBPath)
	}
	return db, nil
}

// NowISO returns the current UTC time as an ISO-8601 string with
// millisecond precision. The fixed width keeps TEXT timestamps
// lexicographically sortable.
func NowISO() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}
