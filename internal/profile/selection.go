package profile

import "fmt"

// Family is a chart group with its own narrative and, for some, its own
// year selector.
type Family string

const (
	FamilyCCRPI      Family = "ccrpi"
	FamilyMilestones Family = "miles"
	FamilySGP        Family = "sgp"
	FamilyGraduation Family = "grad"
	FamilyBTO        Family = "bto"
	FamilyAttendance Family = "att"
	FamilyEnrollment Family = "enroll"
	FamilySubgroup   Family = "subgroup"
	FamilyRace       Family = "race"
	FamilyClimate    Family = "climate"
)

// YearFamilies are the families with an independent year selector, in
// page order.
var YearFamilies = []Family{
	FamilyCCRPI, FamilyMilestones, FamilySGP, FamilyBTO, FamilyAttendance, FamilyGraduation, FamilyClimate,
}

// Metric is the column whose years drive the family's year selector.
func (f Family) Metric() (Metric, bool) {
	switch f {
	case FamilyCCRPI:
		return CCRPIScore, true
	case FamilyMilestones:
		return ELA, true
	case FamilySGP:
		return ELASGP, true
	case FamilyBTO:
		return BTOScore, true
	case FamilyAttendance:
		return Attendance, true
	case FamilyGraduation:
		return GradRate, true
	case FamilyClimate:
		return LikeSchool, true
	}
	return "", false
}

// ParseFamily resolves a family key.
func ParseFamily(s string) (Family, bool) {
	for _, f := range append(YearFamilies, FamilyEnrollment, FamilySubgroup, FamilyRace) {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Selection is what the user has picked. It is a value: every change
// returns a new Selection and leaves the receiver untouched.
type Selection struct {
	GradeLevel string            `json:"grade_level"`
	School     string            `json:"school"`
	Compare    string            `json:"compare,omitempty"`
	Years      map[Family]string `json:"years"`
}

// NewSelection resolves the school and defaults every family to its
// latest year.
func NewSelection(level *Level, school string) (Selection, error) {
	if err := level.Resolve(school); err != nil {
		return Selection{}, err
	}
	years := make(map[Family]string, len(YearFamilies))
	for _, f := range YearFamilies {
		m, _ := f.Metric()
		years[f] = level.MaxYear(m)
	}
	return Selection{GradeLevel: level.Name(), School: school, Years: years}, nil
}

// Year returns the selected year for a family.
func (s Selection) Year(f Family) string {
	return s.Years[f]
}

func (s Selection) clone() Selection {
	out := s
	out.Years = make(map[Family]string, len(s.Years))
	for k, v := range s.Years {
		out.Years[k] = v
	}
	return out
}

// WithCompare adds a comparison school.
func (s Selection) WithCompare(level *Level, compare string) (Selection, error) {
	if err := level.Resolve(compare); err != nil {
		return s, err
	}
	out := s.clone()
	out.Compare = compare
	return out, nil
}

// WithoutCompare drops the comparison school.
func (s Selection) WithoutCompare() Selection {
	out := s.clone()
	out.Compare = ""
	return out
}

// WithYear changes one family's year. The year must be one the family's
// metric has data for.
func (s Selection) WithYear(level *Level, f Family, year string) (Selection, error) {
	m, ok := f.Metric()
	if !ok {
		return s, fmt.Errorf("%w: family %q has no year selector", ErrUnknownYear, f)
	}
	want := NormalizeYear(year)
	for _, y := range level.AvailableYears(m) {
		if y == want {
			out := s.clone()
			out.Years[f] = want
			return out, nil
		}
	}
	return s, fmt.Errorf("%w: %q for %s", ErrUnknownYear, year, f)
}
