package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"charm.land/fantasy"
	"github.com/spf13/cobra"

	"schoolprofile/internal/profile"
)

// mockBackend answers from fixed data
type mockBackend struct {
	lastQuery string
}

func (m *mockBackend) GradeLevels() []string { return []string{"Elementary", "High"} }

func (m *mockBackend) Schools(gradeLevel, prefix string) ([]string, error) {
	if gradeLevel != "Elementary" {
		return nil, fmt.Errorf("unknown grade level %q", gradeLevel)
	}
	return profile.MatchPrefix([]string{"Alpha Elementary School", "Beta Elementary"}, prefix), nil
}

func (m *mockBackend) Years(gradeLevel string, metric profile.Metric) ([]string, error) {
	return []string{"2016", "2017", profile.ThreeYearAvg}, nil
}

func (m *mockBackend) Profile(gradeLevel, school, compare string, years map[string]string) (*profile.Profile, error) {
	if school != "Alpha Elementary School" {
		return nil, &profile.UnknownIdentityError{Name: school}
	}
	return &profile.Profile{
		Title: school,
		Selection: profile.Selection{
			GradeLevel: gradeLevel,
			School:     school,
			Years:      map[profile.Family]string{profile.FamilyCCRPI: "2017"},
		},
		Charts: []profile.Chart{{
			Key: "ccrpi",
			Comparison: &profile.ComparisonMatrix{Entries: []profile.Entry{
				{Name: "Alpha", Value: profile.Some(80.5)},
				{Name: "Atlanta", Value: profile.Null()},
			}},
		}},
		Narratives: profile.Narratives{profile.CCRPIText("Alpha", profile.Some(80.5), "2017")},
	}, nil
}

func (m *mockBackend) Trend(gradeLevel string, metric profile.Metric, school, compare string) (*profile.SeriesMatrix, error) {
	return &profile.SeriesMatrix{Metric: metric, Years: []string{"2017"}}, nil
}

func (m *mockBackend) ExecuteQuery(query string) ([]map[string]interface{}, error) {
	m.lastQuery = query
	return []map[string]interface{}{{"n": 1}}, nil
}

func testRoot(names ...string) *cobra.Command {
	root := &cobra.Command{Use: "schoolprofile"}
	for _, n := range names {
		root.AddCommand(&cobra.Command{
			Use:   n + " [args]",
			Short: "The " + n + " command",
			Run:   func(cmd *cobra.Command, args []string) {},
		})
	}
	return root
}

func runTool(t *testing.T, tool fantasy.AgentTool, input string) fantasy.ToolResponse {
	t.Helper()
	resp, err := tool.Run(context.Background(), fantasy.ToolCall{ID: "1", Name: tool.Info().Name, Input: input})
	if err != nil {
		t.Fatalf("Tool execution failed: %v", err)
	}
	return resp
}

func toolByName(tools []fantasy.AgentTool, name string) fantasy.AgentTool {
	for _, tool := range tools {
		if tool.Info().Name == name {
			return tool
		}
	}
	return nil
}

func TestCreateToolsFromCommands(t *testing.T) {
	root := testRoot("levels", "schools", "profile", "trend", "query", "years", "serve", "validate")
	backend := &mockBackend{}

	t.Run("CreateSupportedTools", func(t *testing.T) {
		tools := CreateToolsFromCommands(root, nil, backend)

		// validate and serve have no tool
		if len(tools) != 6 {
			t.Errorf("Expected 6 tools, got %d", len(tools))
		}
	})

	t.Run("CreateToolsWithExclusions", func(t *testing.T) {
		tools := CreateToolsFromCommands(root, []string{"query", "trend"}, backend)

		if len(tools) != 4 {
			t.Errorf("Expected 4 tools after exclusions, got %d", len(tools))
		}
		if toolByName(tools, "query_school_data") != nil {
			t.Error("Expected query tool to be excluded")
		}
	})

	t.Run("ToolDescriptionFromShort", func(t *testing.T) {
		tools := CreateToolsFromCommands(root, nil, backend)
		tool := toolByName(tools, "list_schools")
		if tool == nil {
			t.Fatal("Expected list_schools tool")
		}
		if tool.Info().Description != "The schools command" {
			t.Errorf("Expected description from Short, got %q", tool.Info().Description)
		}
	})
}

func TestSchoolsTool(t *testing.T) {
	tool := createToolForCommand("schools", "List schools", &mockBackend{})
	if tool == nil {
		t.Fatal("Expected tool to be created, got nil")
	}

	resp := runTool(t, tool, `{"grade_level": "Elementary", "prefix": "al"}`)
	var schools []string
	if err := json.Unmarshal([]byte(resp.Content), &schools); err != nil {
		t.Fatalf("Expected JSON list, got %q", resp.Content)
	}
	if len(schools) != 1 || schools[0] != "Alpha Elementary School" {
		t.Errorf("Expected Alpha only, got %v", schools)
	}

	resp = runTool(t, tool, `{"grade_level": "Pre-K"}`)
	if !resp.IsError {
		t.Error("Expected error response for unknown grade level")
	}
}

func TestProfileTool(t *testing.T) {
	tool := createToolForCommand("profile", "Build a profile", &mockBackend{})

	resp := runTool(t, tool, `{"grade_level": "Elementary", "school": "Alpha Elementary School"}`)
	if resp.IsError {
		t.Fatalf("Expected profile, got error %q", resp.Content)
	}
	var summary ProfileSummary
	if err := json.Unmarshal([]byte(resp.Content), &summary); err != nil {
		t.Fatalf("Expected profile summary JSON: %v", err)
	}
	if summary.Charts["ccrpi"]["Alpha"] != "80.5" || summary.Charts["ccrpi"]["Atlanta"] != "missing" {
		t.Errorf("Unexpected ccrpi values %v", summary.Charts["ccrpi"])
	}
	if strings.Contains(summary.Narratives[profile.FamilyCCRPI], "<b>") {
		t.Errorf("Expected plain narrative, got %q", summary.Narratives[profile.FamilyCCRPI])
	}

	resp = runTool(t, tool, `{"grade_level": "Elementary", "school": "Nowhere"}`)
	if !resp.IsError {
		t.Error("Expected error response for unknown school")
	}
}

func TestQueryToolRejectsWrites(t *testing.T) {
	backend := &mockBackend{}
	tool := createToolForCommand("query", "Query", backend)

	resp := runTool(t, tool, `{"sql": "DROP TABLE school_data"}`)
	if !resp.IsError {
		t.Error("Expected error response for a write")
	}
	if backend.lastQuery != "" {
		t.Errorf("Expected no query to run, got %q", backend.lastQuery)
	}

	resp = runTool(t, tool, `{"sql": "SELECT count(*) AS n FROM school_data"}`)
	if resp.IsError {
		t.Errorf("Expected query result, got error %q", resp.Content)
	}
}

func TestIsReadOnlyQuery(t *testing.T) {
	testCases := []struct {
		sql      string
		expected bool
	}{
		{"SELECT * FROM school_data", true},
		{"  with t AS (SELECT 1) SELECT * FROM t;", true},
		{"SUMMARIZE school_data", true},
		{"DELETE FROM school_data", false},
		{"SELECT 1; DROP TABLE school_data", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.sql, func(t *testing.T) {
			if got := IsReadOnlyQuery(tc.sql); got != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestUnsupportedCommand(t *testing.T) {
	if tool := createToolForCommand("serve", "Start the web server", &mockBackend{}); tool != nil {
		t.Error("Expected no tool for serve")
	}
}

func TestNewConfigValidation(t *testing.T) {
	if _, err := newConfig(WithAPIKey("key")); err == nil {
		t.Error("Expected error without a backend")
	}
	if _, err := newConfig(WithBackend(&mockBackend{})); err == nil {
		t.Error("Expected error without an API key")
	}
	if _, err := newConfig(WithAPIKey("")); err == nil {
		t.Error("Expected error for an empty API key")
	}

	cfg, err := newConfig(WithAPIKey("key"), WithBackend(&mockBackend{}), WithModel("claude-sonnet-4-5"))
	if err != nil {
		t.Fatalf("Expected config, got %v", err)
	}
	if cfg.model != "claude-sonnet-4-5" {
		t.Errorf("Expected model override, got %s", cfg.model)
	}
}
