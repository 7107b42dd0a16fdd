package profile

import "fmt"

// HighSchool is the grade cluster that reports graduation rates.
const HighSchool = "High"

// Chart is one chart surface of a profile. Exactly one of the matrix fields
// is set.
type Chart struct {
	Key        string            `json:"key"`
	Family     Family            `json:"family"`
	Title      string            `json:"title"`
	Comparison *ComparisonMatrix `json:"comparison,omitempty"`
	Category   *CategoryMatrix   `json:"category,omitempty"`
	Grouped    *GroupedMatrix    `json:"grouped,omitempty"`
	Series     *SeriesMatrix     `json:"series,omitempty"`
	Annotation string            `json:"annotation,omitempty"`
}

// Profile is everything rendered for one selection.
type Profile struct {
	Selection    Selection           `json:"selection"`
	Title        string              `json:"title"`
	SchoolShort  string              `json:"school_short"`
	CompareShort string              `json:"compare_short,omitempty"`
	Advisories   []string            `json:"advisories,omitempty"`
	Charts       []Chart             `json:"charts"`
	Narratives   Narratives          `json:"narratives"`
	YearOptions  map[Family][]string `json:"year_options"`
}

// Chart finds a chart by key.
func (p *Profile) Chart(key string) (Chart, bool) {
	for _, c := range p.Charts {
		if c.Key == key {
			return c, true
		}
	}
	return Chart{}, false
}

type comparisonChart struct {
	key    string
	family Family
	title  string
	metric Metric
}

var comparisonCharts = []comparisonChart{
	{"ccrpi", FamilyCCRPI, "School Rating (CCRPI)", CCRPIScore},
	{"ela", FamilyMilestones, "English Proficiency", ELA},
	{"math", FamilyMilestones, "Math Proficiency", Math},
	{"ela_sgp", FamilySGP, "English Typical or High Growth", ELASGP},
	{"math_sgp", FamilySGP, "Math Typical or High Growth", MathSGP},
	{"bto", FamilyBTO, "Beat the Odds", BTOScore},
	{"grad", FamilyGraduation, "Graduation Rate", GradRate},
	{"attend", FamilyAttendance, "Students Missing Fewer Than Six Days", Attendance},
	{"like_school", FamilyClimate, `"I like my school."`, LikeSchool},
	{"safe_school", FamilyClimate, `"I feel safe at school."`, SafeSchool},
}

// Build assembles a profile. Identity problems are reported here, once;
// chart building below never fails.
func Build(ds *Dataset, messages Messages, sel Selection) (*Profile, error) {
	level, err := ds.Level(sel.GradeLevel)
	if err != nil {
		return nil, err
	}
	if err := level.Resolve(sel.School); err != nil {
		return nil, err
	}
	if sel.Compare != "" {
		if err := level.Resolve(sel.Compare); err != nil {
			return nil, fmt.Errorf("compare school: %w", err)
		}
	}

	p := &Profile{
		Selection:   sel.clone(),
		Title:       sel.School,
		SchoolShort: level.ShortName(sel.School),
		YearOptions: make(map[Family][]string),
	}
	if sel.Compare != "" {
		p.Title = sel.School + " and " + sel.Compare
		p.CompareShort = level.ShortName(sel.Compare)
	}

	if msg, ok := messages.Advisory(p.SchoolShort); ok {
		p.Advisories = append(p.Advisories, msg)
	}
	if p.CompareShort != "" {
		if msg, ok := messages.Advisory(p.CompareShort); ok {
			p.Advisories = append(p.Advisories, msg)
		}
	}
	if msg := ds.CheckMultiLevel(sel.School, sel.GradeLevel); msg != "" {
		p.Advisories = append(p.Advisories, msg)
	}

	high := sel.GradeLevel == HighSchool
	for _, f := range YearFamilies {
		if f == FamilyGraduation && !high {
			continue
		}
		m, _ := f.Metric()
		p.YearOptions[f] = level.AvailableYears(m)
	}

	matrices := make(map[string]ComparisonMatrix)
	for _, c := range comparisonCharts {
		if c.family == FamilyGraduation && !high {
			continue
		}
		m := level.Comparison(c.metric, sel.School, sel.Compare, sel.Year(c.family))
		matrices[c.key] = m
		p.Charts = append(p.Charts, Chart{
			Key:        c.key,
			Family:     c.family,
			Title:      c.title,
			Comparison: &m,
			Annotation: m.MissingAnnotation(),
		})
	}

	raceYear := level.RaceYear(sel.School)
	subgroups := level.Subgroups(sel.School)
	p.Charts = append(p.Charts, demographicChart("race", FamilyRace, "Race/Ethnicity", p,
		level.Race(sel.School, raceYear), func() CategoryMatrix {
			return level.Race(sel.Compare, level.RaceYear(sel.Compare))
		}))
	p.Charts = append(p.Charts, demographicChart("subgroup", FamilySubgroup, "Subgroups", p,
		subgroups, func() CategoryMatrix { return level.Subgroups(sel.Compare) }))

	trends := []struct {
		key, title string
		metric     Metric
		family     Family
	}{
		{"ela_trend", "English Proficiency Over Time", ELA, FamilyMilestones},
		{"math_trend", "Math Proficiency Over Time", Math, FamilyMilestones},
		{"enroll_trend", "Enrollment", Enrollment, FamilyEnrollment},
	}
	var enrollment SeriesMatrix
	for _, t := range trends {
		s := level.Series(t.metric, sel.School, sel.Compare)
		if t.metric == Enrollment {
			enrollment = s
		}
		p.Charts = append(p.Charts, Chart{Key: t.key, Family: t.family, Title: t.title, Series: &s})
	}

	school := p.SchoolShort
	yearOf := func(f Family) string { return YearLabel(sel.Year(f)) }
	subject := func(key string) Value { return matrices[key].Subject().Value }

	p.Narratives = Narratives{
		CCRPIText(school, subject("ccrpi"), sel.Year(FamilyCCRPI)),
		MilestonesText(school, Percent(subject("ela")), Percent(subject("math")), yearOf(FamilyMilestones)),
		SGPText(school, Percent(subject("math_sgp")), sel.Year(FamilySGP)),
		BTOText(school, subject("bto"), sel.Year(FamilyBTO)),
	}
	if high {
		p.Narratives = append(p.Narratives, GraduationText(school, Percent(subject("grad")), yearOf(FamilyGraduation)))
	}
	p.Narratives = append(p.Narratives,
		AttendanceText(school, Percent(subject("attend")), yearOf(FamilyAttendance)),
		ClimateText(school, Percent(subject("safe_school")), yearOf(FamilyClimate)),
		RaceText(school, p.CompareShort, raceYear),
		SubgroupText(subgroups.YearOf(SWD), subgroups.YearOf(Mobility), subgroups.YearOf(DirectCert)),
		EnrollmentText(school, enrollment),
	)
	return p, nil
}

func demographicChart(key string, family Family, title string, p *Profile, own CategoryMatrix, other func() CategoryMatrix) Chart {
	c := Chart{Key: key, Family: family, Title: title}
	if p.CompareShort == "" {
		c.Category = &own
		c.Annotation = own.MissingAnnotation()
		return c
	}
	g := CombineCategories(p.SchoolShort, p.CompareShort, own, other())
	c.Grouped = &g
	c.Annotation = g.MissingAnnotation()
	return c
}
