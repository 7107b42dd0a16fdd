package profile

import "fmt"

// BTOAxisLimit bounds the beat-the-odds bar chart in both directions.
const BTOAxisLimit = 23

// Entry is one bar of a comparison chart.
type Entry struct {
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Value  Value  `json:"value"`
	Status Status `json:"status"`
	Color  string `json:"color"`
}

// ComparisonMatrix is the bar chart input for one metric and year, ordered
// school, compare, district, state.
type ComparisonMatrix struct {
	Metric    Metric       `json:"metric"`
	Year      string       `json:"year"`
	Format    NumberFormat `json:"format"`
	AxisLimit float64      `json:"axis_limit,omitempty"`
	Entries   []Entry      `json:"entries"`
}

// Comparison builds the bar chart input for a metric at a year. compare may
// be empty.
func (l *Level) Comparison(metric Metric, schoolName, compareName, year string) ComparisonMatrix {
	m := ComparisonMatrix{
		Metric: metric,
		Year:   NormalizeYear(year),
		Format: metric.Format(),
	}
	if metric == BTOScore {
		m.AxisLimit = BTOAxisLimit
	}

	subjects := []struct {
		name string
		role Role
	}{{schoolName, RoleSchool}}
	if compareName != "" {
		subjects = append(subjects, struct {
			name string
			role Role
		}{compareName, RoleCompare})
	}

	var district, state Observation
	if metric.HasDistrictReference() {
		district = l.observeReference(metric, l.refs.District, year)
	}
	if metric.HasStateReference() {
		state = l.observeReference(metric, l.refs.State, year)
	}

	for _, s := range subjects {
		obs := l.Observe(metric, s.name, year)
		status := l.status(metric, obs, district.Value, state.Value)
		m.Entries = append(m.Entries, Entry{
			Name:   obs.Name,
			Role:   s.role,
			Value:  obs.Value,
			Status: status,
			Color:  status.Color(),
		})
	}
	if metric.HasDistrictReference() {
		m.Entries = append(m.Entries, Entry{Name: district.Name, Role: RoleDistrict, Value: district.Value, Status: StatusAverage, Color: DistrictColor})
	}
	if metric.HasStateReference() {
		m.Entries = append(m.Entries, Entry{Name: state.Name, Role: RoleState, Value: state.Value, Status: StatusAverage, Color: StateColor})
	}
	return m
}

func (l *Level) observeReference(metric Metric, name, year string) Observation {
	obs := l.Observe(metric, name, year)
	if obs.Name == "" {
		obs.Name = name
	}
	return obs
}

func (l *Level) status(metric Metric, obs Observation, district, state Value) Status {
	if !obs.Value.Valid {
		return StatusMissing
	}
	switch metric.Kind() {
	case KindBTO:
		return Classify(Categorical{Status: obs.Row.BTOStatus})
	case KindSingleReference:
		return Classify(SingleReference(obs.Value, district))
	case KindDemographic:
		return StatusAverage
	}
	return Classify(Numeric{Value: obs.Value, District: district, State: state})
}

// Names, Values and Colors return the parallel arrays a renderer consumes.
func (m ComparisonMatrix) Names() []string {
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Name
	}
	return out
}

func (m ComparisonMatrix) Values() []Value {
	out := make([]Value, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Value
	}
	return out
}

func (m ComparisonMatrix) Colors() []string {
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Color
	}
	return out
}

// Subject returns the selected school's entry.
func (m ComparisonMatrix) Subject() Entry {
	for _, e := range m.Entries {
		if e.Role == RoleSchool {
			return e
		}
	}
	return Entry{}
}

// Present drops entries with no value so no zero bar is drawn.
func (m ComparisonMatrix) Present() ComparisonMatrix {
	out := m
	out.Entries = nil
	for _, e := range m.Entries {
		if e.Value.Valid {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// MissingAnnotation names the first entry without a value.
func (m ComparisonMatrix) MissingAnnotation() string {
	for _, e := range m.Entries {
		if !e.Value.Valid {
			return fmt.Sprintf("%s did not receive a score.", e.Name)
		}
	}
	return ""
}
