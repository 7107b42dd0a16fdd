package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"schoolprofile/cmd"
	"schoolprofile/internal/profile"
)

const decimalPattern = `^(-?[0-9]+(\.[0-9]*)?|-?\.[0-9]+)?$`

// rowSchema is the JSON schema every school_data row must satisfy. Cells
// arrive as strings; empty metric cells are missing data, not errors.
func rowSchema() map[string]interface{} {
	properties := map[string]interface{}{
		"schoolname":    map[string]interface{}{"type": "string", "minLength": 1},
		"school":        map[string]interface{}{"type": "string", "minLength": 1},
		"grade_cluster": map[string]interface{}{"type": "string", "minLength": 1},
		"year": map[string]interface{}{
			"type":    "string",
			"pattern": `^([0-9]{4}|3 ?Year ?Avg)$`,
		},
		"bto_status": map[string]interface{}{
			"type": "string",
			"enum": []string{"", "Above", "Below", "Average"},
		},
	}
	for _, m := range profile.Metrics {
		properties[string(m)] = map[string]interface{}{
			"type":    "string",
			"pattern": decimalPattern,
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   []string{"schoolname", "school", "year", "grade_cluster"},
	}
}

// RowValidator checks raw rows against rowSchema.
type RowValidator struct {
	schema *gojsonschema.Schema
}

func NewRowValidator() (*RowValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(rowSchema()))
	if err != nil {
		return nil, fmt.Errorf("failed to compile row schema: %w", err)
	}
	return &RowValidator{schema: schema}, nil
}

// Validate returns one issue per schema violation, in row order.
func (v *RowValidator) Validate(rows []Row) ([]cmd.ValidationIssue, error) {
	var issues []cmd.ValidationIssue
	for _, r := range rows {
		doc := make(map[string]interface{}, len(r.Fields))
		for k, val := range r.Fields {
			doc[k] = val
		}
		result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
		if err != nil {
			return nil, fmt.Errorf("schema validation error on line %d: %w", r.Line, err)
		}
		if result.Valid() {
			continue
		}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "(root)" {
				if p, ok := desc.Details()["property"].(string); ok {
					field = p
				}
			}
			issues = append(issues, cmd.ValidationIssue{
				Row:     r.Line,
				School:  r.Fields["school"],
				Year:    r.Fields["year"],
				Field:   field,
				Message: desc.Description(),
			})
		}
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Row < issues[j].Row })
	return issues, nil
}

// integrityIssues turns duplicate-key errors into validation issues.
func integrityIssues(err error, rows []Row) []cmd.ValidationIssue {
	var dup *profile.DataIntegrityError
	if !errors.As(err, &dup) {
		return nil
	}
	var issues []cmd.ValidationIssue
	for _, d := range dup.Duplicates {
		line := 0
		if len(d.Rows) > 0 && d.Rows[0] < len(rows) {
			line = rows[d.Rows[0]].Line
		}
		lines := make([]int, 0, len(d.Rows))
		for _, i := range d.Rows {
			if i < len(rows) {
				lines = append(lines, rows[i].Line)
			}
		}
		issues = append(issues, cmd.ValidationIssue{
			Row:     line,
			School:  d.Name,
			Year:    d.Year,
			Field:   d.Field,
			Message: fmt.Sprintf("%q matches %d rows for %s (lines %v)", d.Name, len(d.Rows), d.GradeCluster, lines),
		})
	}
	return issues
}
