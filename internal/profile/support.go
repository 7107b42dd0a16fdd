package profile

import (
	"fmt"
	"sort"
	"strings"
)

// ShortName maps a long name to the short name on its last row, "" when the
// school is unknown.
func (l *Level) ShortName(schoolName string) string {
	rows := l.byName[schoolName]
	if len(rows) == 0 {
		return ""
	}
	return l.records[rows[len(rows)-1]].School
}

// MaxYear is the latest calendar year with data for the metric, normalized.
// The three-year average is not a calendar year and never wins.
func (l *Level) MaxYear(metric Metric) string {
	max := ""
	for _, r := range l.records {
		if !r.Has(metric) || !IsCalendarYear(r.Year) {
			continue
		}
		if y := r.NormalizedYear(); y > max {
			max = y
		}
	}
	return max
}

// SchoolMaxYear is the latest calendar year at which the school has data
// for any of the metrics, "" when it has none.
func (l *Level) SchoolMaxYear(schoolName string, metrics ...Metric) string {
	max := ""
	for _, pos := range l.byName[schoolName] {
		r := l.records[pos]
		if !IsCalendarYear(r.Year) {
			continue
		}
		for _, m := range metrics {
			if r.Has(m) {
				if y := r.NormalizedYear(); y > max {
					max = y
				}
				break
			}
		}
	}
	return max
}

// AvailableYears lists normalized years with data for the metric, ascending,
// with the three-year average last.
func (l *Level) AvailableYears(metric Metric) []string {
	seen := make(map[string]bool)
	var years []string
	for _, r := range l.records {
		y := r.NormalizedYear()
		if y == "" || seen[y] || !r.Has(metric) {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}
	sortYears(years)
	return years
}

func sortYears(years []string) {
	sort.Slice(years, func(i, j int) bool {
		ci, cj := IsCalendarYear(years[i]), IsCalendarYear(years[j])
		if ci != cj {
			return ci
		}
		return years[i] < years[j]
	})
}

// YearLabel is the display form of a normalized year.
func YearLabel(year string) string {
	if NormalizeYear(year) == ThreeYearAvg {
		return ThreeYearAvgLabel
	}
	return year
}

// LatestYear is the most recent calendar year of any row in the level.
func (l *Level) LatestYear() string {
	return latestYear(l.records)
}

func latestYear(records []Record) string {
	max := ""
	for _, r := range records {
		if !IsCalendarYear(r.Year) {
			continue
		}
		if y := r.NormalizedYear(); y > max {
			max = y
		}
	}
	return max
}

// Schools lists the long names offered by the school filter: rows of the
// latest year, minus the district and state rows, in file order.
func (l *Level) Schools() []string {
	year := l.LatestYear()
	seen := make(map[string]bool)
	var out []string
	for _, r := range l.records {
		if r.NormalizedYear() != year || l.isReference(r.SchoolName) || seen[r.SchoolName] {
			continue
		}
		seen[r.SchoolName] = true
		out = append(out, r.SchoolName)
	}
	return out
}

// MatchPrefix keeps options starting with term, ignoring case.
func MatchPrefix(options []string, term string) []string {
	term = strings.ToUpper(strings.TrimSpace(term))
	var out []string
	for _, o := range options {
		if strings.HasPrefix(strings.ToUpper(o), term) {
			out = append(out, o)
		}
	}
	return out
}

// CheckMultiLevel returns an advisory when the selected school's building
// reports more than one grade cluster in the latest year.
func (d *Dataset) CheckMultiLevel(schoolName, gradeLevel string) string {
	year := latestYear(d.records)
	number := ""
	for _, r := range d.records {
		if r.SchoolName == schoolName && r.GradeCluster == gradeLevel && r.NormalizedYear() == year {
			number = r.SchoolNumber
		}
	}
	if number == "" {
		return ""
	}

	clusters := make(map[string]bool)
	for _, r := range d.records {
		if r.SchoolNumber == number && r.NormalizedYear() == year {
			clusters[r.GradeCluster] = true
		}
	}
	if len(clusters) < 2 {
		return ""
	}
	return fmt.Sprintf("%s contains multiple grade levels. The data below shows results for students at the %s level, "+
		"with two exceptions. The School Rating Comparison section and the Subgroups section show results for all levels "+
		"combined, because GOSA does not report these results separately.", schoolName, gradeLevel)
}

// Messages maps a short school name to an advisory HTML string.
type Messages map[string]string

// Advisory looks up the message for a short name.
func (m Messages) Advisory(school string) (string, bool) {
	msg, ok := m[school]
	if !ok || strings.TrimSpace(msg) == "" {
		return "", false
	}
	return msg, true
}
