package profile

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Narrative is the descriptive sentence shown next to a chart. Text may
// contain <b>...</b> emphasis and nothing else.
type Narrative struct {
	Family Family `json:"family"`
	Text   string `json:"text"`
}

var emphasis = regexp.MustCompile(`</?b>`)

// Markdown swaps the emphasis tags for **.
func (n Narrative) Markdown() string {
	return emphasis.ReplaceAllString(n.Text, "**")
}

// Plain removes the emphasis tags.
func (n Narrative) Plain() string {
	return emphasis.ReplaceAllString(n.Text, "")
}

func bold(s string) string { return "<b>" + s + "</b>" }

func isThreeYear(year string) bool { return NormalizeYear(year) == ThreeYearAvg }

const ccrpiIntro = "CCRPI is the state's school rating system."

func CCRPIText(school string, score Value, year string) Narrative {
	n := Narrative{Family: FamilyCCRPI, Text: ccrpiIntro}
	if !score.Valid {
		return n
	}
	if isThreeYear(year) {
		n.Text = fmt.Sprintf("%s %s had an average CCRPI of %s over the past three years. "+
			"This graph compares %s's CCRPI to the district and state results.", ccrpiIntro, school, bold(score.String()), school)
		return n
	}
	n.Text = fmt.Sprintf("%s %s had a CCRPI of %s in %s. "+
		"This graph compares %s's CCRPI to the district and state results.", ccrpiIntro, school, bold(score.String()), year, school)
	return n
}

// MilestonesText takes whole-number percentages.
func MilestonesText(school string, english, math Value, year string) Narrative {
	n := Narrative{Family: FamilyMilestones}
	if !english.Valid || !math.Valid {
		n.Text = fmt.Sprintf("This graph compares school proficiency rates at %s to the district and state.", school)
		return n
	}
	n.Text = fmt.Sprintf("In %s, %s of students at %s scored proficient or better in English and %s in Math. "+
		"This graph compares school proficiency rates at %s to the district and state.",
		year, bold(english.String()+"%"), school, bold(math.String()+"%"), school)
	return n
}

const sgpIntro = "The proficiency rates above show current achievement levels, while student growth measures whether students are learning over time."

func SGPText(school string, math Value, year string) Narrative {
	n := Narrative{Family: FamilySGP, Text: sgpIntro}
	if !math.Valid {
		return n
	}
	when := "In " + year
	if isThreeYear(year) {
		when = "Over the past three years"
	}
	n.Text = fmt.Sprintf("%s %s, %s of students at %s had typical or high growth in Math.", sgpIntro, when, bold(math.String()+"%"), school)
	return n
}

func GraduationText(school string, rate Value, year string) Narrative {
	n := Narrative{Family: FamilyGraduation}
	if !rate.Valid {
		n.Text = fmt.Sprintf("This graph compares graduation rates at %s to the district and state.", school)
		return n
	}
	n.Text = fmt.Sprintf("%s's %s graduation rate was %s. This graph compares graduation rates at %s to the district and state.",
		school, year, bold(rate.String()+"%"), school)
	return n
}

const btoIntro = "This metric compares a school's CCRPI score to schools that serve similar students."

// BTOText reports the magnitude of the signed point differential. A score of
// exactly zero reads as "0 points higher".
func BTOText(school string, score Value, year string) Narrative {
	n := Narrative{Family: FamilyBTO, Text: btoIntro}
	if !score.Valid {
		return n
	}
	direction := "higher"
	if score.Float64 < 0 {
		direction = "lower"
	}
	points := bold(Some(math.Abs(score.Float64)).String())
	if isThreeYear(year) {
		n.Text = fmt.Sprintf("%s %s's three year average of CCRPI scores was %s points %s than similar schools.", btoIntro, school, points, direction)
		return n
	}
	n.Text = fmt.Sprintf("%s %s's %s CCRPI score was %s points %s than similar schools.", btoIntro, school, year, points, direction)
	return n
}

func AttendanceText(school string, rate Value, year string) Narrative {
	n := Narrative{Family: FamilyAttendance}
	if !rate.Valid {
		n.Text = "This metric shows the percentage of students who missed less than six days."
		return n
	}
	n.Text = fmt.Sprintf("The percentage of students who missed less than six days at %s was %s during the %s school year.",
		school, bold(rate.String()+"%"), year)
	return n
}

// EnrollmentText reads the school's last value from the enrollment series.
func EnrollmentText(school string, series SeriesMatrix) Narrative {
	n := Narrative{Family: FamilyEnrollment, Text: "This graph shows changes in enrollment over time."}
	year, count := series.Latest(school)
	if !count.Valid {
		return n
	}
	n.Text = fmt.Sprintf("%s had %s students enrolled during the %s school year. This graph shows changes in enrollment over time.",
		school, bold(count.String()), year)
	return n
}

const subgroupIntro = "This graph shows the percentage of students in different subgroups."

// SubgroupText explains which year each subgroup column comes from. A direct
// certification year newer than the others gets the generic sentence.
func SubgroupText(subgroupYear, mobilityYear, directCertYear string) Narrative {
	n := Narrative{Family: FamilySubgroup, Text: subgroupIntro + " Direct certification is a measure of school poverty."}
	if subgroupYear == "" || subgroupYear != mobilityYear {
		return n
	}
	switch {
	case subgroupYear == directCertYear:
		n.Text = fmt.Sprintf("This graph shows the percentage of students in different subgroups during the %s school year. "+
			"Direct certification is a measure of school poverty.", subgroupYear)
	case directCertYear != "" && subgroupYear > directCertYear:
		n.Text = fmt.Sprintf("%s Direct certification is a measure of school poverty. Data is from the %s school year, "+
			"except direct certification, which is from %s.", subgroupIntro, subgroupYear, directCertYear)
	}
	return n
}

func RaceText(school, compare, year string) Narrative {
	who := school
	if compare != "" {
		who = school + " and " + compare
	}
	n := Narrative{Family: FamilyRace}
	if year == "" {
		n.Text = fmt.Sprintf("This graph shows the percentage of students by race/ethnicity at %s.", who)
		return n
	}
	n.Text = fmt.Sprintf("This graph shows the percentage of students by race/ethnicity at %s during the %s school year.", who, year)
	return n
}

const climateIntro = "Georgia administers an annual school climate survey."

// ClimateText takes the whole-number "I feel safe at school" rate.
func ClimateText(school string, safe Value, year string) Narrative {
	n := Narrative{Family: FamilyClimate, Text: climateIntro}
	if !safe.Valid {
		return n
	}
	n.Text = fmt.Sprintf(`%s In %s, %s of students at %s responded positively to the statement, "I feel safe at school."`,
		climateIntro, year, bold(safe.String()+"%"), school)
	return n
}

// Narratives is a keyed set of chart sentences.
type Narratives []Narrative

// Get returns the sentence for a family.
func (ns Narratives) Get(f Family) (Narrative, bool) {
	for _, n := range ns {
		if n.Family == f {
			return n, true
		}
	}
	return Narrative{}, false
}

// Markdown joins every sentence as a paragraph.
func (ns Narratives) Markdown() string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = n.Markdown()
	}
	return strings.Join(parts, "\n\n")
}
