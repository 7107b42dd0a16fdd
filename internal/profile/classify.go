package profile

import (
	"fmt"
	"math"
)

// Status is the outcome of comparing a school value to its reference band.
type Status int

const (
	StatusAverage Status = iota
	StatusAbove
	StatusBelow
	StatusMissing
)

func (s Status) String() string {
	switch s {
	case StatusAbove:
		return "Above"
	case StatusBelow:
		return "Below"
	case StatusMissing:
		return "Missing"
	}
	return "Average"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Average":
		*s = StatusAverage
	case "Above":
		*s = StatusAbove
	case "Below":
		*s = StatusBelow
	case "Missing":
		*s = StatusMissing
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}

const (
	AboveColor    = "#51b364"
	AverageColor  = "#F0BD27"
	BelowColor    = "#E03531"
	MissingColor  = "#FFFFFF"
	DistrictColor = "#989CA3"
	StateColor    = "#D3D3D3"
	NeutralColor  = "#4E79A7"
)

// Color maps a status to its bar colour.
func (s Status) Color() string {
	switch s {
	case StatusAbove:
		return AboveColor
	case StatusBelow:
		return BelowColor
	case StatusMissing:
		return MissingColor
	}
	return AverageColor
}

// Input is what Classify accepts: Numeric or Categorical.
type Input interface {
	classify() Status
}

// Numeric compares a value to district and state references.
type Numeric struct {
	Value    Value
	District Value
	State    Value
}

// SingleReference compares against one reference used for both bounds.
func SingleReference(value, ref Value) Numeric {
	return Numeric{Value: value, District: ref, State: ref}
}

// Categorical carries a precomputed status string such as bto_status.
type Categorical struct {
	Status string
}

// Classify dispatches on the input variant.
func Classify(in Input) Status {
	if in == nil {
		return StatusMissing
	}
	return in.classify()
}

// Tolerance is 1 on raw-score scales and 0.01 on proportions. The scale is
// read from the district reference, or the state when the district is missing.
func Tolerance(district, state Value) float64 {
	scale := district
	if !scale.Valid {
		scale = state
	}
	if scale.Valid && scale.Float64 > 1 {
		return 1
	}
	return 0.01
}

func (n Numeric) classify() Status {
	if !n.Value.Valid {
		return StatusMissing
	}
	var refs []float64
	for _, r := range []Value{n.District, n.State} {
		if r.Valid {
			refs = append(refs, r.Float64)
		}
	}
	if len(refs) == 0 {
		return StatusAverage
	}
	hi, lo := refs[0], refs[0]
	for _, r := range refs[1:] {
		hi = math.Max(hi, r)
		lo = math.Min(lo, r)
	}
	tol := Tolerance(n.District, n.State)
	switch {
	case n.Value.Float64 > hi+tol:
		return StatusAbove
	case n.Value.Float64 < lo-tol:
		return StatusBelow
	}
	return StatusAverage
}

func (c Categorical) classify() Status {
	switch c.Status {
	case "Above":
		return StatusAbove
	case "Below":
		return StatusBelow
	}
	return StatusAverage
}
