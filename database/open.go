package database

import (
	"database/sql"
	"fmt"
	"time"
)

// OpenOptions tunes openSQLite. Zero values use the defaults.
type OpenOptions struct {
	MaxRetries  int
	RetryBaseMs int
}

func (o OpenOptions) retryParams() (int, int) {
	maxRetries := o.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 8
	}
	baseMs := o.RetryBaseMs
	if baseMs <= 0 {
		baseMs = 400
	}
	return maxRetries, baseMs
}

// openSQLite opens the database at path, retrying with a linear backoff
// while another process holds the file lock. The pool is limited to one
// connection: sqlite allows a single writer.
func openSQLite(path string, opts OpenOptions, logger func(string)) (*sql.DB, error) {
	maxRetries, baseMs := opts.retryParams()
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			time.Sleep(time.Duration(baseMs*i) * time.Millisecond)
		}
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			lastErr = err
			logf(logger, "[DB] SQLite open attempt %d/%d failed: %v", i+1, maxRetries, err)
			continue
		}
		db.SetMaxIdleConns(1)
		db.SetMaxOpenConns(1)

		if err := db.Ping(); err != nil {
			db.Close()
			lastErr = err
			logf(logger, "[DB] SQLite ping attempt %d/%d failed: %v", i+1, maxRetries, err)
			continue
		}
		return db, nil
	}
	return nil, fmt.Errorf("failed to open %q after %d attempts: %w", path, maxRetries, lastErr)
}

func logf(logger func(string), format string, args ...interface{}) {
	if logger != nil {
		logger(fmt.Sprintf(format, args...))
	}
}
