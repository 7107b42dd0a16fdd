package main

import (
	"errors"
	"fmt"

	"schoolprofile/cmd"
	"schoolprofile/internal/profile"
)

var errNoDatabase = errors.New("no database attached")

// ProfileService serves profiles from a dataset loaded out of DuckDB.
type ProfileService struct {
	db       *DB
	rows     []Row
	dataset  *profile.Dataset
	messages profile.Messages
}

// NewProfileService loads rows and messages from db and indexes them.
func NewProfileService(db *DB, cfg cmd.Config) (*ProfileService, error) {
	rows, err := db.LoadRows()
	if err != nil {
		return nil, err
	}
	messages, err := db.LoadMessages()
	if err != nil {
		return nil, err
	}
	svc := newProfileService(rows, messages, cfg.DistrictName, cfg.StateName)
	svc.db = db

	if err := svc.dataset.Integrity(); err != nil && logger != nil {
		logger.Warn("School data has ambiguous rows", "error", err)
	}
	return svc, nil
}

func newProfileService(rows []Row, messages profile.Messages, district, state string) *ProfileService {
	var opts []profile.DatasetOption
	if district != "" || state != "" {
		opts = append(opts, profile.WithReferences(district, state))
	}
	return &ProfileService{
		rows:     rows,
		dataset:  profile.NewDataset(RecordsFromRows(rows), opts...),
		messages: messages,
	}
}

func (s *ProfileService) Dataset() *profile.Dataset { return s.dataset }

func (s *ProfileService) Messages() profile.Messages { return s.messages }

func (s *ProfileService) GradeLevels() []string {
	return s.dataset.GradeLevels()
}

func (s *ProfileService) Schools(gradeLevel, prefix string) ([]string, error) {
	level, err := s.dataset.Level(gradeLevel)
	if err != nil {
		return nil, err
	}
	schools := profile.MatchPrefix(level.Schools(), prefix)
	if schools == nil {
		schools = []string{}
	}
	return schools, nil
}

func (s *ProfileService) Years(gradeLevel string, metric profile.Metric) ([]string, error) {
	level, err := s.dataset.Level(gradeLevel)
	if err != nil {
		return nil, err
	}
	return level.AvailableYears(metric), nil
}

// Selection resolves a request into a selection with every requested year
// applied.
func (s *ProfileService) Selection(req cmd.ProfileRequest) (profile.Selection, error) {
	level, err := s.dataset.Level(req.GradeLevel)
	if err != nil {
		return profile.Selection{}, err
	}
	sel, err := profile.NewSelection(level, req.School)
	if err != nil {
		return profile.Selection{}, err
	}
	if req.Compare != "" {
		if sel, err = sel.WithCompare(level, req.Compare); err != nil {
			return profile.Selection{}, fmt.Errorf("compare school: %w", err)
		}
	}
	for key, year := range req.Years {
		family, ok := profile.ParseFamily(key)
		if !ok {
			return profile.Selection{}, fmt.Errorf("%w: unknown family %q", profile.ErrUnknownYear, key)
		}
		if sel, err = sel.WithYear(level, family, year); err != nil {
			return profile.Selection{}, err
		}
	}
	return sel, nil
}

func (s *ProfileService) Profile(req cmd.ProfileRequest) (*profile.Profile, error) {
	sel, err := s.Selection(req)
	if err != nil {
		profileBuilds.WithLabelValues(req.GradeLevel, resultLabel(err)).Inc()
		return nil, err
	}
	return s.Build(sel)
}

// Build renders a profile for an already resolved selection.
func (s *ProfileService) Build(sel profile.Selection) (*profile.Profile, error) {
	p, err := profile.Build(s.dataset, s.messages, sel)
	profileBuilds.WithLabelValues(sel.GradeLevel, resultLabel(err)).Inc()
	if err != nil {
		if logger != nil {
			logger.Warn("Failed to build profile", "error", err, "school", sel.School, "grade_level", sel.GradeLevel)
		}
		return nil, err
	}
	return p, nil
}

func (s *ProfileService) Trend(gradeLevel string, metric profile.Metric, school, compare string) (*profile.SeriesMatrix, error) {
	level, err := s.dataset.Level(gradeLevel)
	if err != nil {
		return nil, err
	}
	if err := level.Resolve(school); err != nil {
		return nil, err
	}
	if compare != "" {
		if err := level.Resolve(compare); err != nil {
			return nil, fmt.Errorf("compare school: %w", err)
		}
	}
	series := level.Series(metric, school, compare)
	return &series, nil
}

// Validate runs the row schema and the strict-matching check.
func (s *ProfileService) Validate() ([]cmd.ValidationIssue, error) {
	v, err := NewRowValidator()
	if err != nil {
		return nil, err
	}
	issues, err := v.Validate(s.rows)
	if err != nil {
		return nil, err
	}
	issues = append(issues, integrityIssues(s.dataset.Integrity(), s.rows)...)
	if issues == nil {
		issues = []cmd.ValidationIssue{}
	}
	return issues, nil
}

func (s *ProfileService) ExecuteQuery(query string) ([]map[string]interface{}, error) {
	if s.db == nil {
		return nil, errNoDatabase
	}
	return s.db.ExecuteQuery(query)
}

func (s *ProfileService) TableSchema(table string) ([]cmd.ColumnInfo, error) {
	if s.db == nil {
		return nil, errNoDatabase
	}
	return s.db.TableSchema(table)
}

func (s *ProfileService) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, profile.ErrUnknownIdentity):
		return "unknown_school"
	case errors.Is(err, profile.ErrAmbiguousMatch):
		return "ambiguous"
	case errors.Is(err, profile.ErrUnknownYear), errors.Is(err, profile.ErrUnknownGradeLevel):
		return "bad_request"
	}
	return "error"
}
