package profile

import (
	"fmt"
	"sort"
	"strings"
)

const (
	DefaultDistrict = "Atlanta"
	DefaultState    = "Georgia"
)

// References names the district and state baseline rows.
type References struct {
	District string
	State    string
}

// DatasetOption configures NewDataset.
type DatasetOption func(*Dataset)

// WithReferences overrides the district and state row names. Empty names
// keep the defaults.
func WithReferences(district, state string) DatasetOption {
	return func(d *Dataset) {
		if district != "" {
			d.refs.District = district
		}
		if state != "" {
			d.refs.State = state
		}
	}
}

// Dataset is the full school data file across every grade cluster. It is
// immutable once built.
type Dataset struct {
	records []Record
	refs    References
	levels  []string
	byLevel map[string]*Level
}

// NewDataset indexes records once. Duplicate keys do not fail construction;
// they surface through Integrity and when a selection touches them.
func NewDataset(records []Record, opts ...DatasetOption) *Dataset {
	d := &Dataset{
		records: append([]Record(nil), records...),
		refs:    References{District: DefaultDistrict, State: DefaultState},
		byLevel: make(map[string]*Level),
	}
	for _, opt := range opts {
		opt(d)
	}

	grouped := make(map[string][]int)
	for i, r := range d.records {
		if _, ok := grouped[r.GradeCluster]; !ok {
			d.levels = append(d.levels, r.GradeCluster)
		}
		grouped[r.GradeCluster] = append(grouped[r.GradeCluster], i)
	}
	for _, name := range d.levels {
		d.byLevel[name] = newLevel(name, d.refs, d.records, grouped[name])
	}
	return d
}

func (d *Dataset) Len() int { return len(d.records) }

func (d *Dataset) References() References { return d.refs }

// Records returns a copy of the rows in file order.
func (d *Dataset) Records() []Record {
	return append([]Record(nil), d.records...)
}

// GradeLevels lists grade clusters in first-seen order.
func (d *Dataset) GradeLevels() []string {
	return append([]string(nil), d.levels...)
}

// Level returns the rows of one grade cluster.
func (d *Dataset) Level(gradeCluster string) (*Level, error) {
	l, ok := d.byLevel[gradeCluster]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGradeLevel, gradeCluster)
	}
	return l, nil
}

// Integrity reports every duplicate key across all grade levels.
func (d *Dataset) Integrity() error {
	var dups []Duplicate
	for _, name := range d.levels {
		dups = append(dups, d.byLevel[name].duplicates(nil)...)
	}
	if len(dups) == 0 {
		return nil
	}
	return &DataIntegrityError{Duplicates: dups}
}

type key struct {
	name string
	year string
}

// Level is the dataset filtered to one grade cluster, indexed by long name,
// short name and normalized year.
type Level struct {
	name    string
	refs    References
	records []Record
	origin  []int

	byName      map[string][]int
	byNameYear  map[key][]int
	byShortYear map[key][]int
}

func newLevel(name string, refs References, all []Record, idx []int) *Level {
	l := &Level{
		name:        name,
		refs:        refs,
		records:     make([]Record, 0, len(idx)),
		origin:      make([]int, 0, len(idx)),
		byName:      make(map[string][]int),
		byNameYear:  make(map[key][]int),
		byShortYear: make(map[key][]int),
	}
	for _, i := range idx {
		r := all[i]
		pos := len(l.records)
		l.records = append(l.records, r)
		l.origin = append(l.origin, i)
		y := r.NormalizedYear()
		l.byName[r.SchoolName] = append(l.byName[r.SchoolName], pos)
		l.byNameYear[key{r.SchoolName, y}] = append(l.byNameYear[key{r.SchoolName, y}], pos)
		l.byShortYear[key{r.School, y}] = append(l.byShortYear[key{r.School, y}], pos)
	}
	return l
}

func (l *Level) Name() string { return l.name }

func (l *Level) References() References { return l.refs }

// Records returns the level's rows in file order.
func (l *Level) Records() []Record {
	return append([]Record(nil), l.records...)
}

// Resolve fails when a long name has no rows in the level, and when any of
// its (name, year) or (short name, year) keys match more than one row.
func (l *Level) Resolve(schoolName string) error {
	if len(l.byName[schoolName]) == 0 {
		return &UnknownIdentityError{Name: schoolName}
	}
	if dups := l.duplicates(map[string]bool{schoolName: true}); len(dups) > 0 {
		return &DataIntegrityError{Duplicates: dups}
	}
	return nil
}

// Has reports whether a long name has any row in the level.
func (l *Level) Has(schoolName string) bool {
	return len(l.byName[schoolName]) > 0
}

// duplicates collects ambiguous keys, restricted to the given long names
// when only is non-nil.
func (l *Level) duplicates(only map[string]bool) []Duplicate {
	var out []Duplicate
	shorts := make(map[string]bool)
	for _, r := range l.records {
		if only == nil || only[r.SchoolName] {
			shorts[r.School] = true
		}
	}
	collect := func(field string, index map[key][]int, keep func(key) bool) {
		var keys []key
		for k, rows := range index {
			if len(rows) > 1 && keep(k) {
				keys = append(keys, k)
			}
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].name != keys[j].name {
				return keys[i].name < keys[j].name
			}
			return keys[i].year < keys[j].year
		})
		for _, k := range keys {
			rows := make([]int, len(index[k]))
			for i, pos := range index[k] {
				rows[i] = l.origin[pos]
			}
			out = append(out, Duplicate{
				GradeCluster: l.name,
				Field:        field,
				Name:         k.name,
				Year:         k.year,
				Rows:         rows,
			})
		}
	}
	collect("schoolname", l.byNameYear, func(k key) bool { return only == nil || only[k.name] })
	collect("school", l.byShortYear, func(k key) bool { return only == nil || shorts[k.name] })
	return out
}

// row returns the matched row for (long name, year). Callers resolve the
// name first, so at most one row matches.
func (l *Level) row(schoolName, year string) (Record, bool) {
	rows := l.byNameYear[key{schoolName, NormalizeYear(year)}]
	if len(rows) == 0 {
		return Record{}, false
	}
	return l.records[rows[len(rows)-1]], true
}

func (l *Level) shortRow(school, year string) (Record, bool) {
	rows := l.byShortYear[key{school, NormalizeYear(year)}]
	if len(rows) == 0 {
		return Record{}, false
	}
	return l.records[rows[len(rows)-1]], true
}

func (l *Level) isReference(schoolName string) bool {
	return strings.EqualFold(schoolName, l.refs.District) || strings.EqualFold(schoolName, l.refs.State)
}
