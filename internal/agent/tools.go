package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"charm.land/fantasy"
	"github.com/spf13/cobra"

	"schoolprofile/internal/profile"
)

// Commander is the part of a cobra root command tool generation needs.
type Commander interface {
	Commands() []*cobra.Command
}

// Backend is the profile data the tools read.
type Backend interface {
	GradeLevels() []string
	Schools(gradeLevel, prefix string) ([]string, error)
	Years(gradeLevel string, metric profile.Metric) ([]string, error)
	Profile(gradeLevel, school, compare string, years map[string]string) (*profile.Profile, error)
	Trend(gradeLevel string, metric profile.Metric, school, compare string) (*profile.SeriesMatrix, error)
	ExecuteQuery(query string) ([]map[string]interface{}, error)
}

type levelsInput struct{}

type schoolsInput struct {
	GradeLevel string `json:"grade_level" description:"Grade level: Elementary, Middle or High"`
	Prefix     string `json:"prefix,omitempty" description:"Optional case-insensitive prefix of the school name"`
}

type yearsInput struct {
	GradeLevel string `json:"grade_level" description:"Grade level: Elementary, Middle or High"`
	Metric     string `json:"metric" description:"Metric column, e.g. ccrpi_score, ela, math, bto_score, attend, grad_rate"`
}

type profileInput struct {
	GradeLevel string            `json:"grade_level" description:"Grade level: Elementary, Middle or High"`
	School     string            `json:"school" description:"Full school name exactly as returned by list_schools"`
	Compare    string            `json:"compare,omitempty" description:"Optional second school to compare against"`
	Years      map[string]string `json:"years,omitempty" description:"Optional year per chart family (ccrpi, miles, sgp, bto, att, grad, climate), e.g. {\"ccrpi\": \"2016\"}; 3YearAvg selects the three year average"`
}

type trendInput struct {
	GradeLevel string `json:"grade_level" description:"Grade level: Elementary, Middle or High"`
	Metric     string `json:"metric" description:"Metric column, e.g. ela, math, enrollment, ccrpi_score"`
	School     string `json:"school" description:"Full school name"`
	Compare    string `json:"compare,omitempty" description:"Optional second school"`
}

type queryInput struct {
	SQL string `json:"sql" description:"Read-only DuckDB SQL (SELECT, WITH, SUMMARIZE, DESCRIBE or SHOW) over school_data and school_messages"`
}

// toolNames maps a command to the tool that exposes it.
var toolNames = map[string]string{
	"levels":  "list_grade_levels",
	"schools": "list_schools",
	"years":   "list_years",
	"profile": "school_profile",
	"trend":   "metric_trend",
	"query":   "query_school_data",
}

// CreateToolsFromCommands creates Fantasy tools for the registered commands
// that have one, except for the specified exclusions (e.g., "serve", "ask")
func CreateToolsFromCommands(rootCmd Commander, exclusions []string, backend Backend) []fantasy.AgentTool {
	var tools []fantasy.AgentTool

	for _, cobraCmd := range rootCmd.Commands() {
		cmdName := strings.Split(cobraCmd.Use, " ")[0]

		skip := false
		for _, excl := range exclusions {
			if cmdName == excl {
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		if tool := createToolForCommand(cmdName, cobraCmd.Short, backend); tool != nil {
			tools = append(tools, tool)
		}
	}

	return tools
}

// createToolForCommand returns nil for commands without a tool.
func createToolForCommand(cmdName, short string, backend Backend) fantasy.AgentTool {
	name, ok := toolNames[cmdName]
	if !ok {
		return nil
	}
	description := short
	if description == "" {
		description = fmt.Sprintf("Execute the %s command", cmdName)
	}

	switch cmdName {
	case "levels":
		return fantasy.NewAgentTool(name, description,
			func(ctx context.Context, _ levelsInput, _ fantasy.ToolCall) (fantasy.ToolResponse, error) {
				return jsonResponse(backend.GradeLevels())
			})
	case "schools":
		return fantasy.NewAgentTool(name, description,
			func(ctx context.Context, in schoolsInput, _ fantasy.ToolCall) (fantasy.ToolResponse, error) {
				schools, err := backend.Schools(in.GradeLevel, in.Prefix)
				if err != nil {
					return errorResponse(err), nil
				}
				return jsonResponse(schools)
			})
	case "years":
		return fantasy.NewAgentTool(name, description,
			func(ctx context.Context, in yearsInput, _ fantasy.ToolCall) (fantasy.ToolResponse, error) {
				metric, ok := profile.ParseMetric(in.Metric)
				if !ok {
					return errorResponse(fmt.Errorf("unknown metric %q", in.Metric)), nil
				}
				years, err := backend.Years(in.GradeLevel, metric)
				if err != nil {
					return errorResponse(err), nil
				}
				return jsonResponse(years)
			})
	case "profile":
		return fantasy.NewAgentTool(name, description,
			func(ctx context.Context, in profileInput, _ fantasy.ToolCall) (fantasy.ToolResponse, error) {
				p, err := backend.Profile(in.GradeLevel, in.School, in.Compare, in.Years)
				if err != nil {
					return errorResponse(err), nil
				}
				return jsonResponse(Summarize(p))
			})
	case "trend":
		return fantasy.NewAgentTool(name, description,
			func(ctx context.Context, in trendInput, _ fantasy.ToolCall) (fantasy.ToolResponse, error) {
				metric, ok := profile.ParseMetric(in.Metric)
				if !ok {
					return errorResponse(fmt.Errorf("unknown metric %q", in.Metric)), nil
				}
				s, err := backend.Trend(in.GradeLevel, metric, in.School, in.Compare)
				if err != nil {
					return errorResponse(err), nil
				}
				return jsonResponse(s)
			})
	case "query":
		return fantasy.NewAgentTool(name, description,
			func(ctx context.Context, in queryInput, _ fantasy.ToolCall) (fantasy.ToolResponse, error) {
				if !IsReadOnlyQuery(in.SQL) {
					return errorResponse(fmt.Errorf("only read-only queries are allowed")), nil
				}
				rows, err := backend.ExecuteQuery(in.SQL)
				if err != nil {
					return errorResponse(err), nil
				}
				return jsonResponse(rows)
			})
	}
	return nil
}

var readOnlyPrefixes = []string{"SELECT", "WITH", "SUMMARIZE", "DESCRIBE", "SHOW", "FROM"}

// IsReadOnlyQuery reports whether a single SQL statement only reads.
func IsReadOnlyQuery(sql string) bool {
	q := strings.TrimSpace(sql)
	q = strings.TrimSuffix(q, ";")
	if q == "" || strings.Contains(q, ";") {
		return false
	}
	upper := strings.ToUpper(q)
	for _, p := range readOnlyPrefixes {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return false
}

// ProfileSummary is the compact form of a profile handed to the model.
type ProfileSummary struct {
	Title      string                       `json:"title"`
	Advisories []string                     `json:"advisories,omitempty"`
	Charts     map[string]map[string]string `json:"charts"`
	Narratives map[profile.Family]string    `json:"narratives"`
	Years      map[profile.Family]string    `json:"years"`
	Options    map[profile.Family][]string  `json:"year_options"`
}

// Summarize flattens a profile to chart key -> name -> formatted value and
// plain narrative text.
func Summarize(p *profile.Profile) ProfileSummary {
	s := ProfileSummary{
		Title:      p.Title,
		Advisories: p.Advisories,
		Charts:     make(map[string]map[string]string),
		Narratives: make(map[profile.Family]string),
		Years:      p.Selection.Years,
		Options:    p.YearOptions,
	}
	for _, c := range p.Charts {
		values := make(map[string]string)
		switch {
		case c.Comparison != nil:
			for _, e := range c.Comparison.Entries {
				values[e.Name] = formatValue(e.Value)
			}
		case c.Category != nil:
			for _, e := range c.Category.Entries {
				values[e.Label] = formatValue(e.Value)
			}
		case c.Grouped != nil:
			for _, g := range c.Grouped.Series {
				for i, cat := range c.Grouped.Categories {
					values[g.Name+" "+cat] = formatValue(g.Values[i])
				}
			}
		case c.Series != nil:
			for _, r := range c.Series.Rows {
				if year, v := c.Series.Latest(r.Name); year != "" {
					values[r.Name+" "+year] = formatValue(v)
				}
			}
		}
		s.Charts[c.Key] = values
	}
	for _, n := range p.Narratives {
		s.Narratives[n.Family] = n.Plain()
	}
	return s
}

func formatValue(v profile.Value) string {
	if !v.Valid {
		return "missing"
	}
	return v.String()
}

func jsonResponse(v interface{}) (fantasy.ToolResponse, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fantasy.ToolResponse{}, fmt.Errorf("failed to encode result as JSON: %w", err)
	}
	return fantasy.NewTextResponse(string(jsonBytes)), nil
}

func errorResponse(err error) fantasy.ToolResponse {
	return fantasy.NewTextErrorResponse(err.Error())
}
