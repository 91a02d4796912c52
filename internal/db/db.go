package db

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// BusyTimeout is how long a connection waits on a locked database, in ms.
const BusyTimeout = 5000

// dsn builds the driver DSN for path. The driver runs each _pragma on every
// new pool connection. _txlock=immediate makes BEGIN take the write lock, so
// concurrent writers wait on busy_timeout rather than fail on lock upgrade.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", BusyTimeout))
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Set("_txlock", "immediate")
	return path + "?" + q.Encode()
}

// Open opens the Spice Story SQLite database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if path == ":memory:" {
		// An in-memory database lives and dies with its connection.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		// WAL is stored in the file, so setting it once is enough.
		db.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database %s: %w", path, err)
	}
	return db, nil
}
