package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList is an ordered sequence of strings persisted as JSONB.
type StringList []string

// Value marshals the list to JSON for persistence.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal string list: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the list.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringList", value)
	}
	if len(data) == 0 {
		*l = StringList{}
		return nil
	}
	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("unmarshal string list: %w", err)
	}
	return nil
}

// DataRows holds positional rows of heterogeneous scalar cells (numbers,
// strings, nulls) persisted as JSONB. Row/column correspondence is a caller
// convention, not enforced here.
type DataRows [][]interface{}

// Value marshals the rows to JSON for persistence.
func (r DataRows) Value() (driver.Value, error) {
	if r == nil {
		r = DataRows{}
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal data rows: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the rows.
func (r *DataRows) Scan(value interface{}) error {
	if value == nil {
		*r = DataRows{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for DataRows", value)
	}
	if len(data) == 0 {
		*r = DataRows{}
		return nil
	}
	if err := json.Unmarshal(data, r); err != nil {
		return fmt.Errorf("unmarshal data rows: %w", err)
	}
	return nil
}

// Dataset is a tabular data block scoped to one course and semester,
// accumulating one entry in AcademicYears per imported year. At most one
// dataset exists per (course, normalized sem) pair. Sem is stored normalized
// (trimmed, lowercased); year labels keep their original spelling.
type Dataset struct {
	ID            string     `db:"id" json:"id"`
	CourseID      string     `db:"course_id" json:"course"`
	Sem           string     `db:"sem" json:"sem"`
	AcademicYears StringList `db:"academic_years" json:"academicYear"`
	Columns       StringList `db:"columns" json:"columns"`
	Data          DataRows   `db:"data" json:"data"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// CourseRef is the resolved course reference embedded in filter results.
type CourseRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DatasetWithCourse is a dataset with its course reference resolved.
type DatasetWithCourse struct {
	ID            string     `json:"id"`
	Course        CourseRef  `json:"course"`
	Sem           string     `json:"sem"`
	AcademicYears StringList `json:"academicYear"`
	Columns       StringList `json:"columns"`
	Data          DataRows   `json:"data"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// DatasetFilter captures the optional equality filters for dataset queries.
// Values are matched exactly as stored; no normalization is applied at query
// time. AcademicYear matches datasets whose year list contains the literal
// value.
type DatasetFilter struct {
	CourseID     string
	Sem          string
	AcademicYear string
}
