package storage

import (
	"bibled/internal/structures"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// OpenDBConnection opens the sqlite database at dsn, pings it and enables
// foreign keys. enableWAL switches the journal to write-ahead logging.
func OpenDBConnection(dsn string, enableWAL bool) (*sql.DB, error) {
	params := url.Values{}
	if enableWAL {
		params.Add("_journal_mode", "WAL")
	}
	params.Add("_busy_timeout", "5000")

	constructed := dsn
	if strings.Contains(dsn, "?") {
		constructed += "&" + params.Encode()
	} else {
		constructed += "?" + params.Encode()
	}

	db, err := sql.Open("sqlite3", constructed)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", dsn, err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database %q: %w", dsn, err)
	}
	if _, err = db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys for %q: %w", dsn, err)
	}
	return db, nil
}

// NewDatabaseProvider opens the configured database and brings its schema up to date.
// The returned cleanup closes the connection.
func NewDatabaseProvider(path string, enableWAL bool) (*sql.DB, func(), error) {
	db, err := OpenDBConnection(path, enableWAL)
	if err != nil {
		return nil, nil, err
	}
	if err = Migrate(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}

func NewSQLStoreProvider(conf *structures.Config) (*SQLStore, func(), error) {
	db, cleanup, err := NewDatabaseProvider(conf.Database.Path, conf.Database.WAL)
	if err != nil {
		return nil, nil, err
	}
	return NewSQLStore(db), cleanup, nil
}
