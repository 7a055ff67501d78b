// Package gradecalc computes weighted course percentages, what-if projections
// and credit-weighted GPAs. Every function is pure: inputs are never mutated
// and malformed numbers are coerced to zero instead of producing errors.
package gradecalc

import "time"

// DefaultMaxScore is used when an entry or assignment does not declare one.
const DefaultMaxScore = 100.0

// Status mirrors the lifecycle of a recorded assignment grade.
type Status string

// Grade entry statuses.
const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusLate       Status = "late"
	StatusGraded     Status = "graded"
	StatusMissed     Status = "missed"
)

// Assignment is a single graded item declared by a category.
type Assignment struct {
	ID              string     `json:"id,omitempty"`
	Name            string     `json:"name"`
	Weight          float64    `json:"weight"`
	MaxScore        float64    `json:"max_score"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	IsParticipation bool       `json:"is_participation"`
}

// Category is a weighted grading bucket such as "Exams" or "Homework".
type Category struct {
	Name        string       `json:"name"`
	Weight      float64      `json:"weight"`
	DropLowest  int          `json:"drop_lowest"`
	Assignments []Assignment `json:"assignments"`
}

// Entry is a recorded student grade for one assignment.
type Entry struct {
	CategoryName   string   `json:"category_name"`
	AssignmentName string   `json:"assignment_name"`
	Score          *float64 `json:"score"`
	MaxScore       *float64 `json:"max_score,omitempty"`
	Weight         float64  `json:"weight,omitempty"`
	Status         Status   `json:"status,omitempty"`
}

// QuickStatusScore is the score recorded when a participation assignment's
// status is set directly: full marks when graded, nothing otherwise.
func QuickStatusScore(status Status, maxScore float64) float64 {
	if status == StatusGraded {
		return orDefault(maxScore, DefaultMaxScore)
	}
	return 0
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusSubmitted, StatusLate, StatusGraded, StatusMissed:
		return true
	}
	return false
}

// Graded reports whether the entry carries a score.
func (e Entry) Graded() bool {
	return e.Score != nil
}

// Item is the aggregator input: one scored item with its relative weight.
// A zero or negative weight means "equal share".
type Item struct {
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
	Weight   float64 `json:"weight"`
}

// Fraction returns score/maxScore, or 0 when maxScore is not positive.
func (i Item) Fraction() float64 {
	maxScore := Normalize(i.MaxScore)
	if maxScore <= 0 {
		return 0
	}
	return Normalize(i.Score) / maxScore
}

// LatePolicyType selects how late submissions are penalised.
type LatePolicyType string

// Late policy types.
const (
	LatePolicyNone       LatePolicyType = "none"
	LatePolicyPercentage LatePolicyType = "percentage"
	LatePolicyFixed      LatePolicyType = "fixed"
)

// LatePolicy describes the deduction applied to entries with StatusLate.
// Amount is a percentage of the entry's max score for LatePolicyPercentage and
// a number of points for LatePolicyFixed. MaxDeduction caps the deduction as a
// percentage of the max score; zero means 100.
type LatePolicy struct {
	Type         LatePolicyType `json:"type"`
	Amount       float64        `json:"value"`
	MaxDeduction float64        `json:"max_deduction"`
}

// PastGrade is a completed course record used for GPA.
type PastGrade struct {
	CourseName   string   `json:"course_name,omitempty"`
	Semester     string   `json:"semester,omitempty"`
	LetterGrade  string   `json:"letter_grade,omitempty"`
	NumericGrade *float64 `json:"numeric_grade,omitempty"`
	Credits      float64  `json:"credits"`
	GPAScale     float64  `json:"gpa_scale"`
}

// FinalizedEnrollment is a current or archived enrollment with a final
// percentage on the 0-100 scale.
type FinalizedEnrollment struct {
	FinalGrade *float64 `json:"final_grade,omitempty"`
	Credits    float64  `json:"credits"`
	GPAScale   float64  `json:"gpa_scale"`
}
