package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"portal/internal/platform/config"
)

// Open connects to the portal database. The URL may carry a "file:" prefix.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := strings.TrimPrefix(cfg.URL, "file:")
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// DB wraps the shared handle for handlers that only need liveness checks.
type DB struct {
	DB *sql.DB
}

func NewDBWrapper(db *sql.DB) *DB {
	return &DB{DB: db}
}
