package main

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// TestNewDB tests database initialization with the test CSV files
func TestNewDB(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if db.conn == nil {
		t.Fatal("Expected database connection to be established")
	}

	tables, err := db.Tables()
	if err != nil {
		t.Fatalf("Tables failed: %v", err)
	}
	expected := map[string]bool{"ai_summary_cache": false, "school_data": false, "school_messages": false}
	for _, name := range tables {
		if _, ok := expected[name]; ok {
			expected[name] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("Expected table %s, got %v", name, tables)
		}
	}
}

func TestSchoolDataIndexes(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	rows, err := db.ExecuteQuery(`SELECT index_name FROM duckdb_indexes() WHERE table_name = 'school_data'`)
	if err != nil {
		t.Fatalf("ExecuteQuery failed: %v", err)
	}
	found := make(map[string]bool)
	for _, r := range rows {
		found[fmt.Sprint(r["index_name"])] = true
	}
	for _, idx := range schoolDataIndexes {
		if !found[idx.name] {
			t.Errorf("Expected index %s, got %v", idx.name, rows)
		}
	}
}

func TestLoadRows(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	rows, err := db.LoadRows()
	if err != nil {
		t.Fatalf("LoadRows failed: %v", err)
	}
	if len(rows) != 13 {
		t.Fatalf("Expected 13 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Line != 2 {
		t.Errorf("Expected first row on line 2, got %d", first.Line)
	}
	if first.Fields["schoolname"] != "Atlanta" {
		t.Errorf("Expected lower-cased column schoolname = Atlanta, got %q", first.Fields["schoolname"])
	}
	if first.Fields["ela_sgp"] != "" {
		t.Errorf("Expected empty cell to load as empty string, got %q", first.Fields["ela_sgp"])
	}

	// Rows keep file order
	if rows[len(rows)-1].Fields["school"] != "Grady" {
		t.Errorf("Expected Grady last, got %q", rows[len(rows)-1].Fields["school"])
	}
	if rows[8].Fields["year"] != "3 Year Avg" {
		t.Errorf("Expected the 3 Year Avg label to survive, got %q", rows[8].Fields["year"])
	}
}

func TestRecordsFromRows(t *testing.T) {
	records := RecordsFromRows([]Row{{Line: 2, Fields: map[string]string{
		"schoolname":    "Hope-Hill Elementary School",
		"school":        "Hope-Hill",
		"year":          "2017",
		"grade_cluster": "Elementary",
		"bto_status":    "Above",
		"ccrpi_score":   "80.5",
		"ela":           "",
		"unknown":       "x",
	}}})

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.SchoolName != "Hope-Hill Elementary School" || r.BTOStatus != "Above" {
		t.Errorf("Unexpected identity fields %+v", r)
	}
	if r.Raw("ccrpi_score") != "80.5" {
		t.Errorf("Expected ccrpi_score 80.5, got %q", r.Raw("ccrpi_score"))
	}
	if _, ok := r.Metrics["ela"]; ok {
		t.Error("Expected empty metric cells to be dropped")
	}
}

func TestLoadMessages(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	messages, err := db.LoadMessages()
	if err != nil {
		t.Fatalf("LoadMessages failed: %v", err)
	}
	if msg, ok := messages.Advisory("Jones"); !ok || msg != "Jones opened in 2017." {
		t.Errorf("Expected Jones advisory, got %q (%v)", msg, ok)
	}
	if _, ok := messages.Advisory("Grady"); ok {
		t.Error("Expected no advisory for Grady")
	}
}

func TestExecuteQuery(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	rows, err := db.ExecuteQuery(`SELECT School, Year FROM school_data WHERE Grade_Cluster = 'High' ORDER BY School`)
	if err != nil {
		t.Fatalf("ExecuteQuery failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 high school rows, got %d", len(rows))
	}
	if rows[0]["School"] != "Atlanta" {
		t.Errorf("Expected Atlanta first, got %v", rows[0]["School"])
	}

	if _, err := db.ExecuteQuery(`SELECT * FROM no_such_table`); err == nil {
		t.Error("Expected error for missing table")
	}
}

func TestTableSchema(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	cols, err := db.TableSchema("school_messages")
	if err != nil {
		t.Fatalf("TableSchema failed: %v", err)
	}
	if len(cols) != 2 || cols[0].Name != "School" || cols[1].Name != "Message" {
		t.Errorf("Expected School and Message columns, got %+v", cols)
	}
	if cols[0].Type != "VARCHAR" {
		t.Errorf("Expected VARCHAR, got %s", cols[0].Type)
	}

	if _, err := db.TableSchema("missing"); err == nil {
		t.Error("Expected error for unknown table")
	}
}

func TestSummaryCache(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if _, err := db.LoadSummaryCache("key-1", time.Hour); !errors.Is(err, errCacheMiss) {
		t.Fatalf("Expected cache miss, got %v", err)
	}

	if err := db.SaveSummaryCache("key-1", "Hope-Hill Elementary School", "test-model", "first"); err != nil {
		t.Fatalf("SaveSummaryCache failed: %v", err)
	}
	if err := db.SaveSummaryCache("key-1", "Hope-Hill Elementary School", "test-model", "second"); err != nil {
		t.Fatalf("SaveSummaryCache upsert failed: %v", err)
	}

	got, err := db.LoadSummaryCache("key-1", time.Hour)
	if err != nil {
		t.Fatalf("LoadSummaryCache failed: %v", err)
	}
	if got != "second" {
		t.Errorf("Expected upserted summary, got %q", got)
	}

	if _, err := db.LoadSummaryCache("key-1", -time.Second); !errors.Is(err, errCacheMiss) {
		t.Errorf("Expected expired entry to miss, got %v", err)
	}
}
