// Package sqlite provides the SQLite connection factory for the optional
// invocation log. Uses modernc.org/sqlite — a pure-Go driver, no CGO.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Register the modernc sqlite driver under the name "sqlite"
	_ "modernc.org/sqlite"
)

// NewDB opens (or creates) a SQLite database at path configured for an
// append-mostly workload:
//   - WAL journal mode (concurrent reads during writes)
//   - 5-second busy timeout (prevents SQLITE_BUSY under burst writes)
//   - Synchronous=NORMAL (safe + faster than FULL under WAL)
//
// Use ":memory:" as path for in-memory databases in tests.
// Returns an error if the parent directory does not exist (will not create it).
func NewDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil, fmt.Errorf("sqlite.NewDB: parent directory %q does not exist", dir)
		}
	}

	// PRAGMAs applied at connection time via DSN query parameters;
	// modernc.org/sqlite supports _pragma=... params in the DSN.
	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.NewDB: open %q: %w", path, err)
	}

	// The invocation log is a single writer with occasional readers;
	// a small pool is plenty.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.NewDB: ping %q: %w", path, err)
	}

	return db, nil
}
