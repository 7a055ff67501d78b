package models

import (
	"time"

	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
)

// PastGrade is a completed course recorded by the user for GPA purposes.
type PastGrade struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	CourseName   string    `db:"course_name" json:"course_name"`
	CourseCode   string    `db:"course_code" json:"course_code"`
	Semester     string    `db:"semester" json:"semester"`
	LetterGrade  string    `db:"letter_grade" json:"letter_grade"`
	NumericGrade *float64  `db:"numeric_grade" json:"numeric_grade,omitempty"`
	Credits      float64   `db:"credits" json:"credits"`
	GPAScale     float64   `db:"gpa_scale" json:"gpa_scale"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Record converts the row to the engine's input.
func (p PastGrade) Record() gradecalc.PastGrade {
	return gradecalc.PastGrade{
		CourseName:   p.CourseName,
		Semester:     p.Semester,
		LetterGrade:  p.LetterGrade,
		NumericGrade: p.NumericGrade,
		Credits:      p.Credits,
		GPAScale:     p.GPAScale,
	}
}

// Records converts a set of rows.
func Records(grades []PastGrade) []gradecalc.PastGrade {
	records := make([]gradecalc.PastGrade, 0, len(grades))
	for _, g := range grades {
		records = append(records, g.Record())
	}
	return records
}
