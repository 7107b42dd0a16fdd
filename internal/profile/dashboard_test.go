package profile

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNewSelectionDefaults(t *testing.T) {
	_, level := fixtureLevel(t)

	sel, err := NewSelection(level, "Alpha Elementary School")
	if err != nil {
		t.Fatalf("Expected selection, got error: %v", err)
	}
	if sel.GradeLevel != "Elementary" {
		t.Errorf("Expected Elementary, got %s", sel.GradeLevel)
	}
	if got := sel.Year(FamilyCCRPI); got != "2017" {
		t.Errorf("Expected CCRPI default 2017, got %s", got)
	}
	if got := sel.Year(FamilyBTO); got != "2017" {
		t.Errorf("Expected BTO default 2017, got %s", got)
	}

	if _, err := NewSelection(level, "Nowhere"); !errors.Is(err, ErrUnknownIdentity) {
		t.Errorf("Expected ErrUnknownIdentity, got %v", err)
	}
}

func TestSelectionIsImmutable(t *testing.T) {
	_, level := fixtureLevel(t)
	sel, _ := NewSelection(level, "Alpha Elementary School")

	withYear, err := sel.WithYear(level, FamilyCCRPI, "3 Year Avg")
	if err != nil {
		t.Fatalf("Expected year change, got error: %v", err)
	}
	if withYear.Year(FamilyCCRPI) != ThreeYearAvg {
		t.Errorf("Expected 3YearAvg, got %s", withYear.Year(FamilyCCRPI))
	}
	if sel.Year(FamilyCCRPI) != "2017" {
		t.Errorf("Expected original selection unchanged, got %s", sel.Year(FamilyCCRPI))
	}

	withCompare, err := sel.WithCompare(level, "Beta Elementary")
	if err != nil {
		t.Fatalf("Expected compare, got error: %v", err)
	}
	if sel.Compare != "" || withCompare.Compare != "Beta Elementary" {
		t.Errorf("Expected compare on new value only, got %q and %q", sel.Compare, withCompare.Compare)
	}
	if withCompare.WithoutCompare().Compare != "" {
		t.Error("Expected compare removed")
	}

	if _, err := sel.WithYear(level, FamilyCCRPI, "1999"); !errors.Is(err, ErrUnknownYear) {
		t.Errorf("Expected ErrUnknownYear, got %v", err)
	}
	if _, err := sel.WithYear(level, FamilyRace, "2017"); !errors.Is(err, ErrUnknownYear) {
		t.Errorf("Expected ErrUnknownYear for a family without years, got %v", err)
	}
	if _, err := sel.WithCompare(level, "Nowhere"); !errors.Is(err, ErrUnknownIdentity) {
		t.Errorf("Expected ErrUnknownIdentity, got %v", err)
	}
}

func TestBuildProfile(t *testing.T) {
	ds, level := fixtureLevel(t)
	messages := Messages{"Beta": "Beta opened in 2017."}

	sel, _ := NewSelection(level, "Alpha Elementary School")
	sel, _ = sel.WithCompare(level, "Beta Elementary")

	p, err := Build(ds, messages, sel)
	if err != nil {
		t.Fatalf("Expected profile, got error: %v", err)
	}

	if p.Title != "Alpha Elementary School and Beta Elementary" {
		t.Errorf("Unexpected title %q", p.Title)
	}
	if len(p.Advisories) != 2 || p.Advisories[0] != "Beta opened in 2017." {
		t.Errorf("Expected compare message then multi-level advisory, got %v", p.Advisories)
	}
	if _, ok := p.Chart("grad"); ok {
		t.Error("Expected no graduation chart below high school")
	}
	if _, ok := p.Narratives.Get(FamilyGraduation); ok {
		t.Error("Expected no graduation narrative below high school")
	}

	race, ok := p.Chart("race")
	if !ok || race.Grouped == nil {
		t.Fatalf("Expected grouped race chart with a compare school, got %+v", race)
	}
	if !reflect.DeepEqual(race.Grouped.Categories, []string{"Asian", "Black", "Hispanic", "White"}) {
		t.Errorf("Unexpected race categories %v", race.Grouped.Categories)
	}

	ela, _ := p.Chart("ela")
	if ela.Annotation != "Beta did not receive a score." {
		t.Errorf("Expected Beta annotation, got %q", ela.Annotation)
	}

	miles, _ := p.Narratives.Get(FamilyMilestones)
	if !strings.Contains(miles.Text, "<b>82%</b>") {
		t.Errorf("Expected rounded English rate, got %q", miles.Text)
	}
	if _, ok := p.YearOptions[FamilyGraduation]; ok {
		t.Error("Expected no graduation year options")
	}
}

func TestBuildIdempotent(t *testing.T) {
	ds, level := fixtureLevel(t)
	sel, _ := NewSelection(level, "Gamma Academy")

	first, err := Build(ds, nil, sel)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Build(ds, nil, sel)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical profiles for identical input")
	}
}

func TestBuildErrors(t *testing.T) {
	ds, level := fixtureLevel(t)
	sel, _ := NewSelection(level, "Alpha Elementary School")

	bad := sel
	bad.GradeLevel = "Pre-K"
	if _, err := Build(ds, nil, bad); !errors.Is(err, ErrUnknownGradeLevel) {
		t.Errorf("Expected ErrUnknownGradeLevel, got %v", err)
	}

	bad = sel
	bad.Compare = "Nowhere"
	if _, err := Build(ds, nil, bad); !errors.Is(err, ErrUnknownIdentity) {
		t.Errorf("Expected ErrUnknownIdentity, got %v", err)
	}
}
