package profile

import "sort"

// CategoryEntry is one bar of a demographic composition chart.
type CategoryEntry struct {
	Label  string `json:"label"`
	Metric Metric `json:"metric"`
	Year   string `json:"year"`
	Value  Value  `json:"value"`
	Color  string `json:"color"`
}

// CategoryMatrix is a single-school composition chart. Bars carry no
// above/below meaning and share the neutral colour.
type CategoryMatrix struct {
	School  string          `json:"school"`
	Format  NumberFormat    `json:"format"`
	Entries []CategoryEntry `json:"entries"`
}

// Race lists the race categories reported for the school at the year.
func (l *Level) Race(schoolName, year string) CategoryMatrix {
	m := CategoryMatrix{School: l.ShortName(schoolName), Format: FormatPercent}
	r, ok := l.row(schoolName, year)
	if !ok {
		return m
	}
	for _, c := range RaceCategories {
		if !r.Has(c.Metric) {
			continue
		}
		m.Entries = append(m.Entries, CategoryEntry{
			Label:  c.Label,
			Metric: c.Metric,
			Year:   NormalizeYear(year),
			Value:  r.Value(c.Metric),
			Color:  NeutralColor,
		})
	}
	return m
}

// RaceYear is the school's latest calendar year with any race data, or the
// level's latest race year when the school reports none.
func (l *Level) RaceYear(schoolName string) string {
	metrics := make([]Metric, len(RaceCategories))
	for i, c := range RaceCategories {
		metrics[i] = c.Metric
	}
	if year := l.SchoolMaxYear(schoolName, metrics...); year != "" {
		return year
	}
	return l.MaxYear(Black)
}

// Subgroups returns the four fixed subgroup bars. Each category is read at
// the school's own latest year for that column, since the source data lags
// differently per column and per school. A category the school never
// reports is null at the level's latest year.
func (l *Level) Subgroups(schoolName string) CategoryMatrix {
	m := CategoryMatrix{School: l.ShortName(schoolName), Format: FormatPercent}
	for _, c := range SubgroupCategories {
		year := l.SchoolMaxYear(schoolName, c.Metric)
		if year == "" {
			year = l.MaxYear(c.Metric)
		}
		m.Entries = append(m.Entries, CategoryEntry{
			Label:  c.Label,
			Metric: c.Metric,
			Year:   year,
			Value:  l.Value(c.Metric, schoolName, year),
			Color:  NeutralColor,
		})
	}
	return m
}

// YearOf is the year a category was read at, "" when the chart lacks it.
func (m CategoryMatrix) YearOf(metric Metric) string {
	for _, e := range m.Entries {
		if e.Metric == metric {
			return e.Year
		}
	}
	return ""
}

func (m CategoryMatrix) Labels() []string {
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Label
	}
	return out
}

func (m CategoryMatrix) Colors() []string {
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Color
	}
	return out
}

// MissingAnnotation is "Missing data." when any bar has no value.
func (m CategoryMatrix) MissingAnnotation() string {
	if len(m.Entries) == 0 {
		return missingData
	}
	for _, e := range m.Entries {
		if !e.Value.Valid {
			return missingData
		}
	}
	return ""
}

const missingData = "Missing data."

// GroupSeries is one school's values across the grouped categories.
type GroupSeries struct {
	Name   string  `json:"name"`
	Values []Value `json:"values"`
}

// GroupedMatrix is the two-school variant of a composition chart.
type GroupedMatrix struct {
	Categories []string      `json:"categories"`
	Format     NumberFormat  `json:"format"`
	Series     []GroupSeries `json:"series"`
}

// CombineCategories unions two schools' categories in alphabetical order. A
// category one school does not report becomes 0 for that school; a reported
// but empty category stays null.
func CombineCategories(name1, name2 string, a, b CategoryMatrix) GroupedMatrix {
	seen := make(map[string]bool)
	var labels []string
	for _, m := range []CategoryMatrix{a, b} {
		for _, e := range m.Entries {
			if !seen[e.Label] {
				seen[e.Label] = true
				labels = append(labels, e.Label)
			}
		}
	}
	sort.Strings(labels)

	series := func(name string, m CategoryMatrix) GroupSeries {
		byLabel := make(map[string]Value, len(m.Entries))
		for _, e := range m.Entries {
			byLabel[e.Label] = e.Value
		}
		s := GroupSeries{Name: name, Values: make([]Value, len(labels))}
		for i, label := range labels {
			v, ok := byLabel[label]
			if !ok {
				v = Some(0)
			}
			s.Values[i] = v
		}
		return s
	}

	return GroupedMatrix{
		Categories: labels,
		Format:     a.Format,
		Series:     []GroupSeries{series(name1, a), series(name2, b)},
	}
}

func (g GroupedMatrix) MissingAnnotation() string {
	for _, s := range g.Series {
		for _, v := range s.Values {
			if !v.Valid {
				return missingData
			}
		}
	}
	return ""
}
