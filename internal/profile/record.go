package profile

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ThreeYearAvg is the normalized form of the "3 Year Avg" pseudo-year.
const (
	ThreeYearAvg      = "3YearAvg"
	ThreeYearAvgLabel = "3 Year Avg"
)

// Record is one row of the school data file: a school-year observation or a
// district/state reference row for one year.
type Record struct {
	SchoolName   string            `json:"schoolname"`
	School       string            `json:"school"`
	Year         string            `json:"year"`
	GradeCluster string            `json:"grade_cluster"`
	SchoolNumber string            `json:"schoolnumber"`
	BTOStatus    string            `json:"bto_status"`
	Metrics      map[Metric]string `json:"metrics"`
}

// Raw returns the cell text for a metric, "" when absent.
func (r Record) Raw(m Metric) string {
	if r.Metrics == nil {
		return ""
	}
	return strings.TrimSpace(r.Metrics[m])
}

// Value parses a metric cell. Empty and non-numeric cells are missing.
func (r Record) Value(m Metric) Value {
	raw := r.Raw(m)
	if raw == "" {
		return Null()
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Some(f)
}

// Has reports whether the metric cell is non-empty.
func (r Record) Has(m Metric) bool {
	return r.Raw(m) != ""
}

// NormalizedYear is the row's year with whitespace removed.
func (r Record) NormalizedYear() string {
	return NormalizeYear(r.Year)
}

// NormalizeYear strips all whitespace so "3 Year Avg" matches "3YearAvg".
func NormalizeYear(year string) string {
	return strings.Join(strings.Fields(year), "")
}

// IsCalendarYear reports whether a year is a real year rather than the
// three-year average bucket.
func IsCalendarYear(year string) bool {
	y := NormalizeYear(year)
	return y != "" && y != ThreeYearAvg
}

// Value is a nullable number. Missing observations stay null all the way to
// the renderer.
type Value struct {
	Float64 float64
	Valid   bool
}

func Some(f float64) Value { return Value{Float64: f, Valid: true} }

func Null() Value { return Value{} }

// Percent converts a proportion to a whole-number percentage.
func Percent(v Value) Value {
	if !v.Valid {
		return v
	}
	return Some(math.Round(v.Float64 * 100))
}

// String formats the number without trailing zeros, "" when null.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float64)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Null()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// MarshalYAML renders null for missing values.
func (v Value) MarshalYAML() (interface{}, error) {
	if !v.Valid {
		return nil, nil
	}
	return v.Float64, nil
}
