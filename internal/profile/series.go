package profile

// LinePalette colours school lines in order; district and state use greys.
var LinePalette = []string{
	"#1F77B4", "#FF7F0E", "#9467BD", "#8C564B", "#EC77C2",
	"#BCBD22", "#AEC7E8", "#FFBB78", "#FF9896",
}

// SeriesRow is one line of a time-series chart.
type SeriesRow struct {
	Name   string  `json:"name"`
	Role   Role    `json:"role"`
	Values []Value `json:"values"`
	Color  string  `json:"color"`
}

// SeriesMatrix holds one row per identity across the metric's years.
type SeriesMatrix struct {
	Metric Metric       `json:"metric"`
	Format NumberFormat `json:"format"`
	Years  []string     `json:"years"`
	Rows   []SeriesRow  `json:"rows"`
}

// Series builds a time series for a school and optional compare school.
// Every short name ever recorded under a long name gets its own line so a
// merged or renamed school keeps its history.
func (l *Level) Series(metric Metric, schoolName, compareName string) SeriesMatrix {
	m := SeriesMatrix{
		Metric: metric,
		Format: metric.Format(),
		Years:  l.AvailableYears(metric),
	}

	type identity struct {
		short string
		role  Role
	}
	var ids []identity
	seen := make(map[string]bool)
	add := func(long string, role Role) {
		for _, i := range l.byName[long] {
			short := l.records[i].School
			if seen[short] {
				continue
			}
			seen[short] = true
			ids = append(ids, identity{short, role})
		}
	}
	add(schoolName, RoleSchool)
	if compareName != "" {
		add(compareName, RoleCompare)
	}
	if metric.HasSeriesReferences() {
		ids = append(ids, identity{l.refs.District, RoleDistrict}, identity{l.refs.State, RoleState})
	}

	color := 0
	for _, id := range ids {
		row := SeriesRow{Name: id.short, Role: id.role, Values: make([]Value, len(m.Years))}
		for j, year := range m.Years {
			if r, ok := l.shortRow(id.short, year); ok {
				row.Values[j] = r.Value(metric)
			}
		}
		switch id.role {
		case RoleDistrict:
			row.Color = DistrictColor
		case RoleState:
			row.Color = StateColor
		default:
			row.Color = LinePalette[color%len(LinePalette)]
			color++
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

func (m SeriesMatrix) Colors() []string {
	out := make([]string, len(m.Rows))
	for i, r := range m.Rows {
		out[i] = r.Color
	}
	return out
}

// Latest returns the last year and value of the named row.
func (m SeriesMatrix) Latest(name string) (string, Value) {
	for _, r := range m.Rows {
		if r.Name != name || len(r.Values) == 0 {
			continue
		}
		return m.Years[len(m.Years)-1], r.Values[len(r.Values)-1]
	}
	return "", Null()
}
