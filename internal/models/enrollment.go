package models

import (
	"time"

	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
)

// Enrollment links a user to a course for one semester. CurrentGrade is the
// last percentage persisted by the recalculation worker; FinalGrade is set
// when the enrollment is archived.
type Enrollment struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	CourseName   string    `db:"course_name" json:"course_name,omitempty"`
	Semester     string    `db:"semester" json:"semester"`
	Credits      float64   `db:"credits" json:"credits"`
	GPAScale     float64   `db:"gpa_scale" json:"gpa_scale"`
	Archived     bool      `db:"archived" json:"archived"`
	FinalGrade   *float64  `db:"final_grade" json:"final_grade,omitempty"`
	CurrentGrade *float64  `db:"current_grade" json:"current_grade,omitempty"`
	EnrolledAt   time.Time `db:"enrolled_at" json:"enrolled_at"`
	LastActivity time.Time `db:"last_activity" json:"last_activity"`
}

// Finalized converts the enrollment to a GPA input.
func (e Enrollment) Finalized() gradecalc.FinalizedEnrollment {
	return gradecalc.FinalizedEnrollment{FinalGrade: e.FinalGrade, Credits: e.Credits, GPAScale: e.GPAScale}
}

// EnrollmentFilter scopes enrollment listings.
type EnrollmentFilter struct {
	UserID   string
	Archived *bool
	Semester string
}

// AssignmentGrade is a recorded grade for one assignment of an enrollment.
type AssignmentGrade struct {
	ID             string           `db:"id" json:"id"`
	EnrollmentID   string           `db:"enrollment_id" json:"enrollment_id"`
	AssignmentID   string           `db:"assignment_id" json:"assignment_id"`
	CategoryName   string           `db:"category_name" json:"category_name"`
	AssignmentName string           `db:"assignment_name" json:"assignment_name"`
	Score          *float64         `db:"score" json:"score"`
	MaxScore       *float64         `db:"max_score" json:"max_score,omitempty"`
	Weight         *float64         `db:"weight" json:"weight,omitempty"`
	Status         gradecalc.Status `db:"status" json:"status"`
	GradedAt       *time.Time       `db:"graded_at" json:"graded_at,omitempty"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// Entry converts the stored grade to the engine's input.
func (g AssignmentGrade) Entry() gradecalc.Entry {
	entry := gradecalc.Entry{
		CategoryName:   g.CategoryName,
		AssignmentName: g.AssignmentName,
		Score:          g.Score,
		MaxScore:       g.MaxScore,
		Status:         g.Status,
	}
	if g.Weight != nil {
		entry.Weight = *g.Weight
	}
	return entry
}

// Entries converts a set of stored grades.
func Entries(grades []AssignmentGrade) []gradecalc.Entry {
	entries := make([]gradecalc.Entry, 0, len(grades))
	for _, g := range grades {
		entries = append(entries, g.Entry())
	}
	return entries
}
