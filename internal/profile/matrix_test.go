package profile

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestComparisonOrderAndReferences(t *testing.T) {
	_, level := fixtureLevel(t)

	testCases := []struct {
		name    string
		metric  Metric
		compare string
		year    string
		names   []string
		roles   []Role
	}{
		{"general with compare", CCRPIScore, "Beta Elementary", "2017",
			[]string{"Alpha", "Beta", "Atlanta", "Georgia"},
			[]Role{RoleSchool, RoleCompare, RoleDistrict, RoleState}},
		{"general without compare", ELA, "", "2017",
			[]string{"Alpha", "Atlanta", "Georgia"},
			[]Role{RoleSchool, RoleDistrict, RoleState}},
		{"attendance drops state", Attendance, "", "2017",
			[]string{"Alpha", "Atlanta"},
			[]Role{RoleSchool, RoleDistrict}},
		{"climate drops state", SafeSchool, "Beta Elementary", "2017",
			[]string{"Alpha", "Beta", "Atlanta"},
			[]Role{RoleSchool, RoleCompare, RoleDistrict}},
		{"bto has no references", BTOScore, "Beta Elementary", "2017",
			[]string{"Alpha", "Beta"},
			[]Role{RoleSchool, RoleCompare}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := level.Comparison(tc.metric, "Alpha Elementary School", tc.compare, tc.year)
			if !reflect.DeepEqual(m.Names(), tc.names) {
				t.Errorf("Expected names %v, got %v", tc.names, m.Names())
			}
			roles := make([]Role, len(m.Entries))
			for i, e := range m.Entries {
				roles[i] = e.Role
			}
			if !reflect.DeepEqual(roles, tc.roles) {
				t.Errorf("Expected roles %v, got %v", tc.roles, roles)
			}
			if len(m.Colors()) != len(m.Values()) {
				t.Errorf("Expected parallel colours, got %d colours for %d values", len(m.Colors()), len(m.Values()))
			}
		})
	}
}

func TestComparisonColors(t *testing.T) {
	_, level := fixtureLevel(t)

	m := level.Comparison(CCRPIScore, "Alpha Elementary School", "Beta Elementary", "2017")
	expected := []string{AboveColor, BelowColor, DistrictColor, StateColor}
	if !reflect.DeepEqual(m.Colors(), expected) {
		t.Errorf("Expected colours %v, got %v", expected, m.Colors())
	}
	if m.Format != FormatFloat {
		t.Errorf("Expected %s, got %s", FormatFloat, m.Format)
	}

	att := level.Comparison(Attendance, "Alpha Elementary School", "", "2017")
	if att.Entries[0].Status != StatusAbove {
		t.Errorf("Expected attendance 0.87 vs district 0.85 to be Above, got %s", att.Entries[0].Status)
	}

	bto := level.Comparison(BTOScore, "Alpha Elementary School", "Beta Elementary", "2017")
	if got := bto.Colors(); !reflect.DeepEqual(got, []string{AboveColor, BelowColor}) {
		t.Errorf("Expected BTO colours from bto_status, got %v", got)
	}
	if bto.AxisLimit != BTOAxisLimit {
		t.Errorf("Expected axis limit %d, got %v", BTOAxisLimit, bto.AxisLimit)
	}
}

func TestComparisonMissingObservation(t *testing.T) {
	_, level := fixtureLevel(t)

	// Beta has an empty ela cell in 2017 and no row at all in 2016.
	testCases := []struct {
		name string
		year string
	}{
		{"empty cell", "2017"},
		{"missing year", "2016"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := level.Comparison(ELA, "Beta Elementary", "", tc.year)
			subject := m.Subject()
			if subject.Name != "Beta" {
				t.Errorf("Expected fallback name Beta, got %q", subject.Name)
			}
			if subject.Value.Valid {
				t.Errorf("Expected null value, got %v", subject.Value.Float64)
			}
			if subject.Status != StatusMissing {
				t.Errorf("Expected Missing status, got %s", subject.Status)
			}
			if got := m.MissingAnnotation(); got != "Beta did not receive a score." {
				t.Errorf("Expected annotation for Beta, got %q", got)
			}
			if len(m.Present().Entries) != len(m.Entries)-1 {
				t.Errorf("Expected Present to drop only the null entry, got %d of %d", len(m.Present().Entries), len(m.Entries))
			}
		})
	}
}

func TestComparisonZeroIsData(t *testing.T) {
	_, level := fixtureLevel(t)

	race := level.Race("Alpha Elementary School", "2017")
	for _, e := range race.Entries {
		if e.Label == "Hispanic" {
			if !e.Value.Valid || e.Value.Float64 != 0 {
				t.Errorf("Expected Hispanic to be a valid 0, got %+v", e.Value)
			}
			return
		}
	}
	t.Error("Expected Hispanic category with a 0 value")
}

func TestComparisonThreeYearAverage(t *testing.T) {
	_, level := fixtureLevel(t)

	m := level.Comparison(CCRPIScore, "Alpha Elementary School", "", "3 Year Avg")
	if m.Year != ThreeYearAvg {
		t.Errorf("Expected normalized year %s, got %s", ThreeYearAvg, m.Year)
	}
	expected := []Value{Some(77.3), Some(73), Some(71)}
	if !reflect.DeepEqual(m.Values(), expected) {
		t.Errorf("Expected %v, got %v", expected, m.Values())
	}
}

func TestComparisonIdempotent(t *testing.T) {
	_, level := fixtureLevel(t)

	first := level.Comparison(ELA, "Alpha Elementary School", "Gamma Academy", "2017")
	second := level.Comparison(ELA, "Alpha Elementary School", "Gamma Academy", "2017")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical matrices, got %+v and %+v", first, second)
	}
}

func TestRaceAndSubgroups(t *testing.T) {
	_, level := fixtureLevel(t)

	race := level.Race("Alpha Elementary School", "2017")
	if got := race.Labels(); !reflect.DeepEqual(got, []string{"Black", "Hispanic", "White"}) {
		t.Errorf("Expected Black, Hispanic, White, got %v", got)
	}
	for _, c := range race.Colors() {
		if c != NeutralColor {
			t.Errorf("Expected neutral colour, got %s", c)
		}
	}

	sub := level.Subgroups("Alpha Elementary School")
	labels := []string{"Direct Certification", "English Learners", "Mobile Students", "Students with Disabilities"}
	if !reflect.DeepEqual(sub.Labels(), labels) {
		t.Errorf("Expected %v, got %v", labels, sub.Labels())
	}
	if sub.Entries[0].Value.Valid || sub.Entries[1].Value.Valid {
		t.Errorf("Expected direct cert and EL to be null, got %+v", sub.Entries[:2])
	}
	if sub.Entries[3].Value != Some(0.12) {
		t.Errorf("Expected SWD 0.12, got %+v", sub.Entries[3].Value)
	}
	if sub.MissingAnnotation() != "Missing data." {
		t.Errorf("Expected Missing data. annotation, got %q", sub.MissingAnnotation())
	}
}

func TestCombineCategories(t *testing.T) {
	a := CategoryMatrix{Format: FormatPercent, Entries: []CategoryEntry{
		{Label: "White", Value: Some(0.3)},
		{Label: "Black", Value: Some(0.7)},
	}}
	b := CategoryMatrix{Format: FormatPercent, Entries: []CategoryEntry{
		{Label: "Black", Value: Some(0.6)},
		{Label: "Hispanic", Value: Some(0.4)},
	}}

	g := CombineCategories("A", "B", a, b)

	if !reflect.DeepEqual(g.Categories, []string{"Black", "Hispanic", "White"}) {
		t.Errorf("Expected sorted union, got %v", g.Categories)
	}
	expectedA := []Value{Some(0.7), Some(0), Some(0.3)}
	expectedB := []Value{Some(0.6), Some(0.4), Some(0)}
	if !reflect.DeepEqual(g.Series[0].Values, expectedA) {
		t.Errorf("Expected A values %v, got %v", expectedA, g.Series[0].Values)
	}
	if !reflect.DeepEqual(g.Series[1].Values, expectedB) {
		t.Errorf("Expected B values %v, got %v", expectedB, g.Series[1].Values)
	}
	if g.Series[0].Name != "A" || g.Series[1].Name != "B" {
		t.Errorf("Expected series A and B, got %s and %s", g.Series[0].Name, g.Series[1].Name)
	}
	if g.MissingAnnotation() != "" {
		t.Errorf("Expected no annotation, got %q", g.MissingAnnotation())
	}
}

func TestStrictMatching(t *testing.T) {
	records := fixtureRecords()
	records = append(records, rec("Beta Elementary", "Beta", "2017", "Elementary", "102", map[Metric]string{CCRPIScore: "61"}))
	ds := NewDataset(records)

	err := ds.Integrity()
	var integrity *DataIntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("Expected DataIntegrityError, got %v", err)
	}
	if !errors.Is(err, ErrAmbiguousMatch) {
		t.Errorf("Expected ErrAmbiguousMatch, got %v", err)
	}
	if len(integrity.Duplicates) != 2 {
		t.Errorf("Expected long and short key duplicates, got %+v", integrity.Duplicates)
	}
	for _, d := range integrity.Duplicates {
		if last := d.Rows[len(d.Rows)-1]; last != len(records)-1 {
			t.Errorf("Expected duplicate rows to index the input, got %v", d.Rows)
		}
	}

	level, _ := ds.Level("Elementary")
	if err := level.Resolve("Beta Elementary"); !errors.Is(err, ErrAmbiguousMatch) {
		t.Errorf("Expected Beta to fail resolution, got %v", err)
	}
	if err := level.Resolve("Alpha Elementary School"); err != nil {
		t.Errorf("Expected Alpha to resolve, got %v", err)
	}

	clean := NewDataset(fixtureRecords())
	if err := clean.Integrity(); err != nil {
		t.Errorf("Expected clean fixture, got %v", err)
	}
}

func TestResolveUnknown(t *testing.T) {
	_, level := fixtureLevel(t)

	err := level.Resolve("Nowhere High")
	var unknown *UnknownIdentityError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownIdentityError, got %v", err)
	}
	if unknown.Name != "Nowhere High" {
		t.Errorf("Expected name Nowhere High, got %s", unknown.Name)
	}
	if !errors.Is(err, ErrUnknownIdentity) {
		t.Errorf("Expected ErrUnknownIdentity, got %v", err)
	}
}

func TestDemographicsUseSchoolLatestYear(t *testing.T) {
	records := append(fixtureRecords(),
		rec("Old School", "Old", "2017", "Elementary", "104", map[Metric]string{SWD: "0.20", Black: "0.9", Mobility: "0.15"}),
		rec("Old School", "Old", "2018", "Elementary", "104", map[Metric]string{CCRPIScore: "64"}),
		rec("Atlanta", "Atlanta", "2018", "Elementary", "", map[Metric]string{CCRPIScore: "74", SWD: "0.10", Black: "0.7", Mobility: "0.18"}),
	)
	ds := NewDataset(records)
	level, err := ds.Level("Elementary")
	if err != nil {
		t.Fatal(err)
	}

	if got := level.RaceYear("Old School"); got != "2017" {
		t.Errorf("Expected race year 2017, got %q", got)
	}
	race := level.Race("Old School", level.RaceYear("Old School"))
	if len(race.Entries) != 1 || race.Entries[0].Value != Some(0.9) {
		t.Errorf("Expected Black 0.9, got %+v", race.Entries)
	}
	if race.MissingAnnotation() != "" {
		t.Errorf("Expected no annotation, got %q", race.MissingAnnotation())
	}

	sub := level.Subgroups("Old School")
	swd := sub.Entries[3]
	if swd.Value != Some(0.20) || swd.Year != "2017" {
		t.Errorf("Expected SWD 0.20 from 2017, got %+v", swd)
	}
	cert := sub.Entries[0]
	if cert.Value.Valid || cert.Year != "2017" {
		t.Errorf("Expected null direct cert at the level's latest year, got %+v", cert)
	}

	sel, err := NewSelection(level, "Old School")
	if err != nil {
		t.Fatal(err)
	}
	p, err := Build(ds, nil, sel)
	if err != nil {
		t.Fatal(err)
	}
	raceText, _ := p.Narratives.Get(FamilyRace)
	if !strings.Contains(raceText.Text, "2017 school year") {
		t.Errorf("Expected race narrative for 2017, got %q", raceText.Text)
	}
	subText, _ := p.Narratives.Get(FamilySubgroup)
	if !strings.Contains(subText.Text, "during the 2017 school year") {
		t.Errorf("Expected subgroup narrative for 2017, got %q", subText.Text)
	}
}
