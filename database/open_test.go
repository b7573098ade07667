package database

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenSQLite_RetriesThenFails(t *testing.T) {
	var logs []string
	path := filepath.Join(t.TempDir(), "missing", "dir", "x.db")
	_, err := openSQLite(path, OpenOptions{MaxRetries: 2, RetryBaseMs: 1}, func(m string) { logs = append(logs, m) })
	if err == nil || !strings.Contains(err.Error(), "after 2 attempts") {
		t.Fatalf("openSQLite = %v", err)
	}
	if len(logs) != 2 || !strings.HasPrefix(logs[0], "[DB] SQLite") {
		t.Errorf("logs = %v", logs)
	}
}

func TestOpenSQLite_SingleConnection(t *testing.T) {
	db, err := openSQLite(filepath.Join(t.TempDir(), "x.db"), OpenOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if n := db.Stats().MaxOpenConnections; n != 1 {
		t.Errorf("MaxOpenConnections = %d", n)
	}
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil || mode != "wal" {
		t.Errorf("journal_mode = %q, %v", mode, err)
	}
}
