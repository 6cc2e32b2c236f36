package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a new sqlite store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(DriverSQLite, path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createSeededStore creates a store with the sample table populated.
func createSeededStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	if _, err := s.SeedSample(t.Context()); err != nil {
		t.Fatalf("SeedSample() failed: %v", err)
	}
	return s
}
