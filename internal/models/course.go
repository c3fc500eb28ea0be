package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Assessment pairs an assessment name with its mark weight.
type Assessment struct {
	Assessment string  `json:"assessment"`
	Mark       float64 `json:"mark"`
}

// AssessmentList is an ordered assessment sequence persisted as JSONB.
// Insertion order carries display order; names are not deduplicated.
type AssessmentList []Assessment

// Value marshals the list to JSON for persistence.
func (l AssessmentList) Value() (driver.Value, error) {
	if l == nil {
		l = AssessmentList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal assessments: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the list.
func (l *AssessmentList) Scan(value interface{}) error {
	if value == nil {
		*l = AssessmentList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for AssessmentList", value)
	}
	if len(data) == 0 {
		*l = AssessmentList{}
		return nil
	}
	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("unmarshal assessments: %w", err)
	}
	return nil
}

// Course represents an academic course and its assessment breakdown.
type Course struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Code        string         `db:"code" json:"code"`
	Assessments AssessmentList `db:"assessments" json:"assessments"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
