package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// -----------------------------------------------------------------------------

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// -----------------------------------------------------------------------------

func TestSyncCopiesWhenWorkingMissing(t *testing.T) {
	dir := t.TempDir()
	master := filepath.Join(dir, "master.db")
	working := filepath.Join(dir, "working.db")
	writeFile(t, master, "master-data")

	copied, err := SyncMasterToWorking(master, working, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !copied {
		t.Errorf("expected a copy when the working file is missing")
	}
	if readFile(t, working) != "master-data" {
		t.Errorf("working copy does not match master")
	}
}

func TestSyncCopiesWhenMasterNewer(t *testing.T) {
	dir := t.TempDir()
	master := filepath.Join(dir, "master.db")
	working := filepath.Join(dir, "working.db")
	writeFile(t, working, "stale")
	writeFile(t, master, "fresh")

	// Force the mtime relationship instead of sleeping
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(working, old, old); err != nil {
		t.Fatalf("failed to set mtime: %v", err)
	}

	copied, err := SyncMasterToWorking(master, working, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !copied {
		t.Errorf("expected a copy when master is newer")
	}
	if readFile(t, working) != "fresh" {
		t.Errorf("working copy was not refreshed")
	}
}

func TestSyncSkipsWhenWorkingCurrent(t *testing.T) {
	dir := t.TempDir()
	master := filepath.Join(dir, "master.db")
	working := filepath.Join(dir, "working.db")
	writeFile(t, master, "master-data")
	writeFile(t, working, "working-data")

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(master, old, old); err != nil {
		t.Fatalf("failed to set mtime: %v", err)
	}

	copied, err := SyncMasterToWorking(master, working, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if copied {
		t.Errorf("expected no copy when working is at least as new")
	}
	if readFile(t, working) != "working-data" {
		t.Errorf("working copy must be untouched")
	}
}

func TestSyncMissingMasterUsesWorking(t *testing.T) {
	dir := t.TempDir()
	working := filepath.Join(dir, "working.db")
	writeFile(t, working, "working-data")

	copied, err := SyncMasterToWorking(filepath.Join(dir, "absent.db"), working, testLogger())
	if err != nil {
		t.Fatalf("a missing master with a present working copy must not be fatal: %v", err)
	}
	if copied {
		t.Errorf("expected no copy")
	}
}

func TestSyncBothMissingIsFatal(t *testing.T) {
	dir := t.TempDir()
	_, err := SyncMasterToWorking(
		filepath.Join(dir, "no-master.db"),
		filepath.Join(dir, "no-working.db"),
		testLogger(),
	)
	if err == nil {
		t.Errorf("expected an error when no store exists at all")
	}
}
