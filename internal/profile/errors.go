package profile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownIdentity   = errors.New("unknown school")
	ErrAmbiguousMatch    = errors.New("ambiguous match")
	ErrUnknownGradeLevel = errors.New("unknown grade level")
	ErrUnknownYear       = errors.New("year not available")
)

// UnknownIdentityError is returned when a school name has no rows.
type UnknownIdentityError struct {
	Name string
}

func (e *UnknownIdentityError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownIdentity, e.Name)
}

func (e *UnknownIdentityError) Unwrap() error { return ErrUnknownIdentity }

// Duplicate is one key matched by more than one row. Rows index the
// records passed to NewDataset.
type Duplicate struct {
	GradeCluster string
	Field        string
	Name         string
	Year         string
	Rows         []int
}

// DataIntegrityError lists every key that breaks strict matching.
type DataIntegrityError struct {
	Duplicates []Duplicate
}

func (e *DataIntegrityError) Error() string {
	parts := make([]string, 0, len(e.Duplicates))
	for _, d := range e.Duplicates {
		parts = append(parts, fmt.Sprintf("%s %q year %q in %q (rows %v)", d.Field, d.Name, d.Year, d.GradeCluster, d.Rows))
	}
	return fmt.Sprintf("data integrity: %s: %s", ErrAmbiguousMatch, strings.Join(parts, "; "))
}

func (e *DataIntegrityError) Unwrap() error { return ErrAmbiguousMatch }
