package main

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"schoolprofile/cmd"
	"schoolprofile/internal/profile"
)

const (
	schoolDataFile     = "school data.csv"
	schoolMessagesFile = "school messages.csv"
	databaseFile       = "profile.duckdb"
)

// Row is one line of the school data file keyed by lower-case column name.
// NULL cells are "".
type Row struct {
	Line   int
	Fields map[string]string
}

type DB struct {
	conn    *sql.DB
	dataDir string
}

// NewDB opens <dataDir>/profile.duckdb and reloads both CSV files into it.
// The AI summary cache survives reloads.
func NewDB(dataDir string) (*DB, error) {
	dbPath := filepath.Join(dataDir, databaseFile)

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to open DuckDB database", "error", err, "db_path", dbPath)
		}
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	d := &DB{
		conn:    db,
		dataDir: dataDir,
	}

	start := time.Now()
	if err := d.loadTables(); err != nil {
		db.Close()
		if logger != nil {
			logger.Error("Failed to load school data", "error", err, "data_dir", dataDir)
		}
		return nil, fmt.Errorf("failed to load school data: %w", err)
	}

	if err := d.createCacheTables(); err != nil {
		// The cache only backs AI overviews
		if logger != nil {
			logger.Warn("Failed to create cache tables", "error", err)
		}
	}

	if logger != nil {
		logger.Info("School data loaded", "db_path", dbPath, "elapsed", time.Since(start).String())
	}
	return d, nil
}

var schoolDataIndexes = []struct{ name, columns string }{
	{"idx_school_data_cluster", "grade_cluster"},
	{"idx_school_data_name_year", "schoolname, year"},
	{"idx_school_data_short_year", "school, year"},
}

// loadTables replaces school_data and school_messages from the CSV files.
func (d *DB) loadTables() error {
	dataFile := filepath.Join(d.dataDir, schoolDataFile)
	messagesFile := filepath.Join(d.dataDir, schoolMessagesFile)

	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Ignore error - will fail if transaction was committed
	}()

	_, err = tx.Exec(fmt.Sprintf(`
		CREATE OR REPLACE TABLE school_data AS
		SELECT * FROM read_csv('%s', all_varchar=true, header=true)
	`, escapeLiteral(dataFile)))
	if err != nil {
		return fmt.Errorf("failed to create school_data table: %w", err)
	}

	_, err = tx.Exec(fmt.Sprintf(`
		CREATE OR REPLACE TABLE school_messages AS
		SELECT * FROM read_csv('%s', all_varchar=true, header=true)
	`, escapeLiteral(messagesFile)))
	if err != nil {
		return fmt.Errorf("failed to create school_messages table: %w", err)
	}

	// Create indexes on school_data
	for _, idx := range schoolDataIndexes {
		_, err = tx.Exec(fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON school_data(%s)`, idx.name, idx.columns))
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// createCacheTables creates cache tables
func (d *DB) createCacheTables() error {
	_, err := d.conn.Exec(`
		CREATE TABLE IF NOT EXISTS ai_summary_cache (
			cache_key VARCHAR PRIMARY KEY,
			school VARCHAR,
			model VARCHAR,
			summary TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create ai_summary_cache table: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// LoadRows returns every school_data row in file order.
func (d *DB) LoadRows() ([]Row, error) {
	rows, err := d.conn.Query(`SELECT * FROM school_data ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query school_data: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	for i, c := range columns {
		columns[i] = strings.ToLower(strings.TrimSpace(c))
	}

	var result []Row
	cells := make([]sql.NullString, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range cells {
		ptrs[i] = &cells[i]
	}

	line := 2 // header is line 1
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan school_data row: %w", err)
		}
		fields := make(map[string]string, len(columns))
		for i, c := range columns {
			if cells[i].Valid {
				fields[c] = cells[i].String
			} else {
				fields[c] = ""
			}
		}
		result = append(result, Row{Line: line, Fields: fields})
		line++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating school_data: %w", err)
	}
	return result, nil
}

// RecordsFromRows maps raw rows onto records. Unknown columns are ignored.
func RecordsFromRows(rows []Row) []profile.Record {
	records := make([]profile.Record, 0, len(rows))
	for _, r := range rows {
		rec := profile.Record{
			SchoolName:   r.Fields["schoolname"],
			School:       r.Fields["school"],
			Year:         r.Fields["year"],
			GradeCluster: r.Fields["grade_cluster"],
			SchoolNumber: r.Fields["schoolnumber"],
			BTOStatus:    r.Fields["bto_status"],
			Metrics:      make(map[profile.Metric]string),
		}
		for _, m := range profile.Metrics {
			if v, ok := r.Fields[string(m)]; ok && v != "" {
				rec.Metrics[m] = v
			}
		}
		records = append(records, rec)
	}
	return records
}

// LoadMessages reads the school -> advisory map. Later rows win.
func (d *DB) LoadMessages() (profile.Messages, error) {
	rows, err := d.conn.Query(`SELECT * FROM school_messages ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query school_messages: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	schoolCol, messageCol := -1, -1
	for i, c := range columns {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "school":
			schoolCol = i
		case "message":
			messageCol = i
		}
	}
	if schoolCol < 0 || messageCol < 0 {
		return nil, fmt.Errorf("school_messages needs School and Message columns, got %v", columns)
	}

	messages := make(profile.Messages)
	cells := make([]sql.NullString, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan school_messages row: %w", err)
		}
		if cells[schoolCol].Valid && cells[messageCol].Valid {
			messages[strings.TrimSpace(cells[schoolCol].String)] = cells[messageCol].String
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating school_messages: %w", err)
	}
	return messages, nil
}

// ExecuteQuery runs arbitrary SQL and returns rows as column -> value maps.
func (d *DB) ExecuteQuery(query string) ([]map[string]interface{}, error) {
	rows, err := d.conn.Query(query)
	if err != nil {
		if logger != nil {
			logger.Warn("Query failed", "error", err, "query", query)
		}
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := []map[string]interface{}{}
	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(map[string]interface{}, len(columns))
		for i, c := range columns {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

// TableSchema describes the columns of a table.
func (d *DB) TableSchema(table string) ([]cmd.ColumnInfo, error) {
	rows, err := d.conn.Query(`
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get schema for table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []cmd.ColumnInfo
	for rows.Next() {
		var c cmd.ColumnInfo
		if err := rows.Scan(&c.Name, &c.Type, &c.Nullable); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return cols, nil
}

// Tables lists the tables in the database.
func (d *DB) Tables() ([]string, error) {
	rows, err := d.ExecuteQuery(`SELECT table_name FROM information_schema.tables`)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, r := range rows {
		if n, ok := r["table_name"].(string); ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

// SaveSummaryCache stores an AI overview under its selection key.
func (d *DB) SaveSummaryCache(key, school, model, summary string) error {
	query := `
		INSERT INTO ai_summary_cache (cache_key, school, model, summary, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cache_key) DO UPDATE SET
			school = EXCLUDED.school,
			model = EXCLUDED.model,
			summary = EXCLUDED.summary,
			created_at = EXCLUDED.created_at
	`

	// Timestamps are written in UTC so age checks ignore the session time zone
	if _, err := d.conn.Exec(query, key, school, model, summary, time.Now().UTC()); err != nil {
		if logger != nil {
			logger.Error("Failed to save AI summary cache", "error", err, "school", school)
		}
		return fmt.Errorf("failed to save AI summary cache: %w", err)
	}

	if logger != nil {
		logger.Info("Saved AI summary to database cache", "school", school, "model", model)
	}
	return nil
}

// LoadSummaryCache returns a cached overview younger than maxAge.
func (d *DB) LoadSummaryCache(key string, maxAge time.Duration) (string, error) {
	var summary string
	var createdAt time.Time
	err := d.conn.QueryRow(`
		SELECT summary, created_at FROM ai_summary_cache WHERE cache_key = $1
	`, key).Scan(&summary, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", errCacheMiss
		}
		return "", fmt.Errorf("failed to load AI summary cache: %w", err)
	}

	if time.Since(createdAt) > maxAge {
		return "", errCacheMiss
	}
	return summary, nil
}
