package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"schoolprofile/internal/profile"
)

// setupTestDB copies the testdata CSV files to a temp dir and loads them
func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	tmpDir := t.TempDir()
	for _, file := range []string{schoolDataFile, schoolMessagesFile} {
		data, err := os.ReadFile(filepath.Join("testdata", file))
		if err != nil {
			t.Fatalf("failed to read %s: %v", file, err)
		}
		if err := os.WriteFile(filepath.Join(tmpDir, file), data, 0644); err != nil {
			t.Fatalf("failed to write %s: %v", file, err)
		}
	}

	db, err := NewDB(tmpDir)
	if err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}

	return db, func() { db.Close() }
}

// readTestRows parses testdata/school data.csv without DuckDB.
func readTestRows(t *testing.T) []Row {
	t.Helper()

	f, err := os.Open(filepath.Join("testdata", schoolDataFile))
	if err != nil {
		t.Fatalf("failed to open test data: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse test data: %v", err)
	}

	header := records[0]
	var rows []Row
	for i, rec := range records[1:] {
		fields := make(map[string]string, len(header))
		for j, col := range header {
			fields[strings.ToLower(col)] = rec[j]
		}
		rows = append(rows, Row{Line: i + 2, Fields: fields})
	}
	return rows
}

// newTestService builds a service over the test rows with no database
func newTestService(t *testing.T) *ProfileService {
	t.Helper()
	messages := profile.Messages{"Jones": "Jones opened in 2017."}
	return newProfileService(readTestRows(t), messages, "Atlanta", "Georgia")
}
