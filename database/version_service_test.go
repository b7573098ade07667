package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"slidedeck/model"
)

// setupTestDB creates a temporary test database
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func fixedClock(start time.Time) func() time.Time {
	return func() time.Time {
		start = start.Add(time.Second)
		return start
	}
}

func TestInitDB_AppliesMigrationsOnce(t *testing.T) {
	dir := t.TempDir()
	var logs []string
	db, err := InitDB(dir, func(s string) { logs = append(logs, s) })
	if err != nil {
		t.Fatal(err)
	}
	db.Close()
	if len(logs) != len(GetMigrations()) {
		t.Errorf("expected %d migrations applied, got %v", len(GetMigrations()), logs)
	}

	logs = nil
	db, err = InitDB(dir, func(s string) { logs = append(logs, s) })
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if len(logs) != 0 {
		t.Errorf("migrations re-applied: %v", logs)
	}
	if _, err := os.Stat(filepath.Join(dir, DBFileName)); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestRollbackMigration(t *testing.T) {
	db := setupTestDB(t)
	if err := RollbackMigration(db, 2); err != nil {
		t.Fatalf("RollbackMigration: %v", err)
	}
	if err := RollbackMigration(db, 2); err == nil {
		t.Error("second rollback should fail")
	}
	if err := RollbackMigration(db, 99); err == nil {
		t.Error("unknown version should fail")
	}
}

func TestSaveVersion_LoadRoundTrip(t *testing.T) {
	svc := NewVersionService(setupTestDB(t), 0)
	p := model.New(model.English)
	p, _ = p.CreateSlide(model.English, model.LayoutComparison)

	v, err := svc.SaveVersion("talk", "", "ana", p)
	if err != nil {
		t.Fatalf("SaveVersion: %v", err)
	}
	if v.Description != "Version 1" || v.SlideCount != 2 || v.ID == "" {
		t.Errorf("unexpected version %+v", v)
	}

	got, meta, err := svc.LoadVersion(v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Error("loaded presentation differs")
	}
	if meta != v {
		t.Errorf("metadata = %+v, want %+v", meta, v)
	}
}

func TestListVersions_NewestFirstAndCapped(t *testing.T) {
	svc := NewVersionService(setupTestDB(t), 3)
	svc.now = fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	p := model.New(model.English)

	for i := 1; i <= 5; i++ {
		if _, err := svc.SaveVersion("talk", fmt.Sprintf("v%d", i), "", p); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.SaveVersion("other", "", "", p); err != nil {
		t.Fatal(err)
	}

	list, err := svc.ListVersions("talk")
	if err != nil {
		t.Fatal(err)
	}
	var desc []string
	for _, v := range list {
		desc = append(desc, v.Description)
	}
	if !reflect.DeepEqual(desc, []string{"v5", "v4", "v3"}) {
		t.Errorf("versions = %v", desc)
	}

	other, _ := svc.ListVersions("other")
	if len(other) != 1 {
		t.Errorf("pruning leaked into another deck: %d", len(other))
	}
}

func TestVersion_NotFound(t *testing.T) {
	svc := NewVersionService(setupTestDB(t), 0)
	if _, _, err := svc.LoadVersion("nope"); !errors.Is(err, ErrVersionNotFound) {
		t.Errorf("expected ErrVersionNotFound, got %v", err)
	}
	if err := svc.DeleteVersion("nope"); !errors.Is(err, ErrVersionNotFound) {
		t.Errorf("expected ErrVersionNotFound, got %v", err)
	}
	if _, err := svc.SaveVersion("", "", "", model.Presentation{}); err == nil {
		t.Error("empty deck name should fail")
	}
}

func TestDeleteVersion(t *testing.T) {
	svc := NewVersionService(setupTestDB(t), 0)
	v, err := svc.SaveVersion("talk", "", "", model.New(model.English))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteVersion(v.ID); err != nil {
		t.Fatal(err)
	}
	list, _ := svc.ListVersions("talk")
	if len(list) != 0 {
		t.Errorf("version still listed: %v", list)
	}
}
