package profile

// Metric names a numeric column of the school data file.
type Metric string

const (
	CCRPIScore Metric = "ccrpi_score"
	ELA        Metric = "ela"
	Math       Metric = "math"
	ELASGP     Metric = "ela_sgp"
	MathSGP    Metric = "math_sgp"
	BTOScore   Metric = "bto_score"
	Attendance Metric = "attend"
	LikeSchool Metric = "like_school"
	SafeSchool Metric = "safe_school"
	GradRate   Metric = "grad_rate"
	Enrollment Metric = "enrollment"
	DirectCert Metric = "direct_cert"
	LEP        Metric = "lep"
	Mobility   Metric = "mobility"
	SWD        Metric = "swd"

	AmericanIndian  Metric = "american_indian"
	Asian           Metric = "asian"
	Black           Metric = "black"
	Hispanic        Metric = "hispanic"
	PacificIslander Metric = "pacific_islander"
	TwoOrMore       Metric = "two_or_more"
	White           Metric = "white"
)

// Metrics lists every numeric column in file order.
var Metrics = []Metric{
	CCRPIScore, ELA, Math, ELASGP, MathSGP, BTOScore, Attendance, LikeSchool, SafeSchool,
	GradRate, Enrollment, DirectCert, LEP, Mobility, SWD,
	AmericanIndian, Asian, Black, Hispanic, PacificIslander, TwoOrMore, White,
}

// Category is a labelled demographic column.
type Category struct {
	Metric Metric
	Label  string
}

// RaceCategories is the race/ethnicity breakdown in display order.
var RaceCategories = []Category{
	{AmericanIndian, "American Indian"},
	{Asian, "Asian"},
	{Black, "Black"},
	{Hispanic, "Hispanic"},
	{PacificIslander, "Pacific Islander"},
	{TwoOrMore, "Two or More"},
	{White, "White"},
}

// SubgroupCategories is the fixed four-bar subgroup chart.
var SubgroupCategories = []Category{
	{DirectCert, "Direct Certification"},
	{LEP, "English Learners"},
	{Mobility, "Mobile Students"},
	{SWD, "Students with Disabilities"},
}

// ParseMetric resolves a column name.
func ParseMetric(name string) (Metric, bool) {
	for _, m := range Metrics {
		if string(m) == name {
			return m, true
		}
	}
	return "", false
}

// Kind controls which classifier colours a comparison chart.
type Kind int

const (
	KindGeneral Kind = iota
	KindSingleReference
	KindBTO
	KindDemographic
)

func (m Metric) Kind() Kind {
	switch m {
	case BTOScore:
		return KindBTO
	case Attendance, LikeSchool, SafeSchool:
		return KindSingleReference
	case Enrollment, DirectCert, LEP, Mobility, SWD,
		AmericanIndian, Asian, Black, Hispanic, PacificIslander, TwoOrMore, White:
		return KindDemographic
	}
	return KindGeneral
}

// HasDistrictReference reports whether comparison charts append the district row.
func (m Metric) HasDistrictReference() bool {
	return m != BTOScore
}

// HasStateReference reports whether comparison charts append the state row.
func (m Metric) HasStateReference() bool {
	return m.Kind() != KindBTO && m.Kind() != KindSingleReference
}

// HasSeriesReferences reports whether time series carry district and state lines.
func (m Metric) HasSeriesReferences() bool {
	return m != Enrollment
}

// NumberFormat is the label format tag handed to renderers.
type NumberFormat string

const (
	FormatPercent NumberFormat = "percentage-0dp"
	FormatFloat   NumberFormat = "float-1dp"
	FormatInteger NumberFormat = "integer-0dp"
)

func (m Metric) Format() NumberFormat {
	switch m {
	case CCRPIScore, BTOScore:
		return FormatFloat
	case Enrollment:
		return FormatInteger
	}
	return FormatPercent
}
