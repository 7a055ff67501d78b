package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
)

// CategoryList is the grading schema of a course, stored as JSONB.
type CategoryList []gradecalc.Category

// Value marshals the categories for persistence.
func (l CategoryList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan decodes a JSONB column.
func (l *CategoryList) Scan(src interface{}) error {
	data, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan categories: %w", err)
	}
	if len(data) == 0 {
		*l = CategoryList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// LatePolicy is the course late policy, stored as JSONB.
type LatePolicy gradecalc.LatePolicy

// Value marshals the policy for persistence.
func (p LatePolicy) Value() (driver.Value, error) {
	if p.Type == "" {
		p.Type = gradecalc.LatePolicyNone
	}
	return json.Marshal(gradecalc.LatePolicy(p))
}

// Scan decodes a JSONB column.
func (p *LatePolicy) Scan(src interface{}) error {
	data, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan late policy: %w", err)
	}
	if len(data) == 0 {
		*p = LatePolicy{Type: gradecalc.LatePolicyNone}
		return nil
	}
	var policy gradecalc.LatePolicy
	if err := json.Unmarshal(data, &policy); err != nil {
		return err
	}
	*p = LatePolicy(policy)
	return nil
}

// Course is a course owned by one user together with its grading schema.
type Course struct {
	ID         string       `db:"id" json:"id"`
	OwnerID    string       `db:"owner_id" json:"owner_id"`
	Name       string       `db:"name" json:"name"`
	Code       string       `db:"code" json:"code"`
	Instructor string       `db:"instructor" json:"instructor"`
	Credits    float64      `db:"credits" json:"credits"`
	Categories CategoryList `db:"categories" json:"categories"`
	LatePolicy LatePolicy   `db:"late_policy" json:"late_policy"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// Schema converts the course to the engine's input.
func (c Course) Schema() gradecalc.Course {
	return gradecalc.Course{
		Categories: []gradecalc.Category(c.Categories),
		LatePolicy: gradecalc.LatePolicy(c.LatePolicy),
	}
}

// FindAssignment locates an assignment by ID across every category.
func (c Course) FindAssignment(assignmentID string) (gradecalc.Category, gradecalc.Assignment, bool) {
	for _, category := range c.Categories {
		for _, assignment := range category.Assignments {
			if assignment.ID == assignmentID {
				return category, assignment, true
			}
		}
	}
	return gradecalc.Category{}, gradecalc.Assignment{}, false
}

// Entries converts stored grades to engine entries, naming each one after
// the category and assignment it currently belongs to in the course schema.
// Grades whose assignment is no longer part of the schema keep their stored names.
func (c Course) Entries(grades []AssignmentGrade) []gradecalc.Entry {
	entries := Entries(grades)
	for i, g := range grades {
		if g.AssignmentID == "" {
			continue
		}
		if category, assignment, ok := c.FindAssignment(g.AssignmentID); ok {
			entries[i].CategoryName = category.Name
			entries[i].AssignmentName = assignment.Name
		}
	}
	return entries
}

// CourseFilter scopes course listings.
type CourseFilter struct {
	OwnerID  string
	Search   string
	Page     int
	PageSize int
}

func jsonBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", src)
	}
}
