package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"schoolprofile/internal/profile"
)

// ProfileRequest is a selection expressed as plain strings, as it arrives
// from flags, query parameters or tool calls.
type ProfileRequest struct {
	GradeLevel string            `json:"grade_level"`
	School     string            `json:"school"`
	Compare    string            `json:"compare,omitempty"`
	Years      map[string]string `json:"years,omitempty"`
}

// ValidationIssue is one row-shape problem found in the school data file.
type ValidationIssue struct {
	Row     int    `json:"row"`
	School  string `json:"school,omitempty"`
	Year    string `json:"year,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ColumnInfo describes one column of a DuckDB table.
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable string `json:"nullable"`
}

// Service is the profile backend the commands talk to.
type Service interface {
	GradeLevels() []string
	Schools(gradeLevel, prefix string) ([]string, error)
	Years(gradeLevel string, metric profile.Metric) ([]string, error)
	Profile(req ProfileRequest) (*profile.Profile, error)
	Trend(gradeLevel string, metric profile.Metric, school, compare string) (*profile.SeriesMatrix, error)
	Validate() ([]ValidationIssue, error)
	ExecuteQuery(query string) ([]map[string]interface{}, error)
	TableSchema(table string) ([]ColumnInfo, error)
	Close() error
}

// Overviewer writes an LLM overview paragraph for a profile.
type Overviewer interface {
	Overview(ctx context.Context, p *profile.Profile) (string, error)
}

// These variables are set by the main package.
var (
	LaunchTUI      func(cfg Config)
	InitService    func(cfg Config) (Service, func(), error)
	InitOverviewer func(svc Service, cfg Config) (Overviewer, error)
	StartServer    func(svc Service, cfg Config) error
	ExportXLSX     func(p *profile.Profile, path string) error
	DownloadData   func(cfg Config, force bool) error
	RenderProfile  func(p *profile.Profile, width int) (string, error)
)

// HandleError prints error and exits
func HandleError(err error, message string) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, err)
	os.Exit(1)
}

func printJSON(v interface{}) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		HandleError(err, "Failed to encode JSON")
	}
	fmt.Println(string(output))
}

// parseYears turns repeated family=year flags into a map.
func parseYears(pairs []string) (map[string]string, error) {
	years := make(map[string]string, len(pairs))
	for _, p := range pairs {
		family, year, ok := strings.Cut(p, "=")
		if !ok || family == "" || year == "" {
			return nil, fmt.Errorf("invalid --year %q, expected family=year (e.g. ccrpi=2017)", p)
		}
		if _, known := profile.ParseFamily(family); !known {
			return nil, fmt.Errorf("unknown family %q", family)
		}
		years[family] = year
	}
	return years, nil
}

func parseMetric(name string) profile.Metric {
	m, ok := profile.ParseMetric(name)
	if !ok {
		HandleError(fmt.Errorf("unknown metric %q", name), "Invalid metric")
	}
	return m
}

// withService opens the backend, runs fn and closes it.
func withService(fn func(svc Service)) {
	svc, cleanup, err := InitService(currentConfig())
	if err != nil {
		HandleError(err, "Failed to initialize data")
	}
	defer cleanup()
	fn(svc)
}
