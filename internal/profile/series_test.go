package profile

import (
	"reflect"
	"strings"
	"testing"
)

func TestSeriesMergerContinuity(t *testing.T) {
	_, level := fixtureLevel(t)

	s := level.Series(ELA, "Gamma Academy", "")

	if !reflect.DeepEqual(s.Years, []string{"2015", "2016", "2017"}) {
		t.Fatalf("Expected years 2015-2017, got %v", s.Years)
	}

	expected := []SeriesRow{
		{Name: "Gamma Old", Role: RoleSchool, Values: []Value{Some(0.40), Some(0.45), Null()}, Color: LinePalette[0]},
		{Name: "Gamma", Role: RoleSchool, Values: []Value{Null(), Null(), Some(0.50)}, Color: LinePalette[1]},
		{Name: "Atlanta", Role: RoleDistrict, Values: []Value{Null(), Some(0.30), Some(0.80)}, Color: DistrictColor},
		{Name: "Georgia", Role: RoleState, Values: []Value{Null(), Some(0.35), Some(0.75)}, Color: StateColor},
	}
	if !reflect.DeepEqual(s.Rows, expected) {
		t.Errorf("Expected rows %+v, got %+v", expected, s.Rows)
	}
}

func TestSeriesEnrollmentHasNoReferences(t *testing.T) {
	_, level := fixtureLevel(t)

	s := level.Series(Enrollment, "Alpha Elementary School", "Beta Elementary")

	names := make([]string, len(s.Rows))
	for i, r := range s.Rows {
		names[i] = r.Name
	}
	if !reflect.DeepEqual(names, []string{"Alpha", "Beta"}) {
		t.Errorf("Expected Alpha then Beta only, got %v", names)
	}
	if s.Rows[1].Role != RoleCompare {
		t.Errorf("Expected compare role, got %s", s.Rows[1].Role)
	}
	if s.Format != FormatInteger {
		t.Errorf("Expected %s, got %s", FormatInteger, s.Format)
	}

	n := EnrollmentText("Alpha", s)
	want := "Alpha had <b>432</b> students enrolled during the 2017 school year. This graph shows changes in enrollment over time."
	if n.Text != want {
		t.Errorf("Expected %q, got %q", want, n.Text)
	}
}

func TestSeriesPaletteCycles(t *testing.T) {
	var records []Record
	for i := 0; i < 11; i++ {
		short := string(rune('A' + i))
		records = append(records, rec("Big Merger", short, "2017", "Elementary", "9", map[Metric]string{ELA: "0.5"}))
	}
	level, err := NewDataset(records).Level("Elementary")
	if err != nil {
		t.Fatal(err)
	}

	s := level.Series(ELA, "Big Merger", "")
	if len(s.Rows) != 13 {
		t.Fatalf("Expected 11 identities plus references, got %d", len(s.Rows))
	}
	if s.Rows[9].Color != LinePalette[0] || s.Rows[10].Color != LinePalette[1] {
		t.Errorf("Expected palette to wrap, got %s and %s", s.Rows[9].Color, s.Rows[10].Color)
	}
	if s.Rows[11].Color != DistrictColor || s.Rows[12].Color != StateColor {
		t.Errorf("Expected grey reference lines, got %s and %s", s.Rows[11].Color, s.Rows[12].Color)
	}
}

func TestSupportUtilities(t *testing.T) {
	ds, level := fixtureLevel(t)

	if got := level.ShortName("Gamma Academy"); got != "Gamma" {
		t.Errorf("Expected last short name Gamma, got %s", got)
	}
	if got := level.ShortName("Nowhere"); got != "" {
		t.Errorf("Expected empty short name, got %s", got)
	}
	if got := level.MaxYear(CCRPIScore); got != "2017" {
		t.Errorf("Expected 2017 ignoring the 3 year average, got %s", got)
	}
	if got := level.MaxYear(LEP); got != "" {
		t.Errorf("Expected no year for an empty column, got %s", got)
	}
	if got := level.AvailableYears(CCRPIScore); !reflect.DeepEqual(got, []string{"2016", "2017", ThreeYearAvg}) {
		t.Errorf("Expected 2016, 2017, 3YearAvg, got %v", got)
	}
	if got := level.Schools(); !reflect.DeepEqual(got, []string{"Alpha Elementary School", "Beta Elementary", "Gamma Academy"}) {
		t.Errorf("Expected filter list without references, got %v", got)
	}
	if got := ds.GradeLevels(); !reflect.DeepEqual(got, []string{"Elementary", "Middle"}) {
		t.Errorf("Expected Elementary and Middle, got %v", got)
	}
	if _, err := ds.Level("Pre-K"); err == nil {
		t.Error("Expected error for unknown grade level")
	}
}

func TestMatchPrefix(t *testing.T) {
	options := []string{"Alpha Elementary School", "alpine Academy", "Beta Elementary"}

	testCases := []struct {
		term     string
		expected []string
	}{
		{"al", []string{"Alpha Elementary School", "alpine Academy"}},
		{"ALPH", []string{"Alpha Elementary School"}},
		{"elementary", nil},
		{"", options},
	}

	for _, tc := range testCases {
		t.Run(tc.term, func(t *testing.T) {
			if got := MatchPrefix(options, tc.term); !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestCheckMultiLevel(t *testing.T) {
	ds, _ := fixtureLevel(t)

	msg := ds.CheckMultiLevel("Alpha Elementary School", "Elementary")
	if !strings.HasPrefix(msg, "Alpha Elementary School contains multiple grade levels.") {
		t.Errorf("Expected multi-level advisory, got %q", msg)
	}
	if !strings.Contains(msg, "students at the Elementary level") {
		t.Errorf("Expected advisory to name the level, got %q", msg)
	}
	if got := ds.CheckMultiLevel("Beta Elementary", "Elementary"); got != "" {
		t.Errorf("Expected no advisory for a single-level school, got %q", got)
	}
}

func TestMessagesAdvisory(t *testing.T) {
	messages := Messages{"Gamma": "Gamma merged with Gamma Old in 2017.", "Beta": "  "}

	if msg, ok := messages.Advisory("Gamma"); !ok || msg == "" {
		t.Errorf("Expected Gamma message, got %q, %v", msg, ok)
	}
	if _, ok := messages.Advisory("Beta"); ok {
		t.Error("Expected blank message to be absent")
	}
	if _, ok := messages.Advisory("Alpha"); ok {
		t.Error("Expected no message for Alpha")
	}
}
