package profile

// Role marks where an entry sits in a chart.
type Role string

const (
	RoleSchool   Role = "school"
	RoleCompare  Role = "compare"
	RoleDistrict Role = "district"
	RoleState    Role = "state"
)

// Observation is one named value taken from the level.
type Observation struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
	Row   Record `json:"-"`
	Found bool   `json:"-"`
}

// Value returns the metric for (long name, year), null when the row or the
// cell is missing.
func (l *Level) Value(metric Metric, schoolName, year string) Value {
	r, ok := l.row(schoolName, year)
	if !ok {
		return Null()
	}
	return r.Value(metric)
}

// Observe selects the row for (long name, year). When the school was not
// observed that year the short name still comes from any of its rows.
func (l *Level) Observe(metric Metric, schoolName, year string) Observation {
	if r, ok := l.row(schoolName, year); ok {
		return Observation{Name: r.School, Value: r.Value(metric), Row: r, Found: true}
	}
	return Observation{Name: l.ShortName(schoolName), Value: Null()}
}
