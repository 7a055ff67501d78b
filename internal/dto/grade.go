package dto

import (
	"time"

	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
)

// GradeBreakdown is the current grade of an enrollment with per-category
// detail.
type GradeBreakdown struct {
	EnrollmentID string              `json:"enrollment_id"`
	CourseID     string              `json:"course_id"`
	CourseName   string              `json:"course_name"`
	Result       gradecalc.Result    `json:"result"`
	Warnings     []gradecalc.Warning `json:"warnings,omitempty"`
	CalculatedAt time.Time           `json:"calculated_at"`
}

// SimulateRequest lists what-if scores.
type SimulateRequest struct {
	Hypotheticals []gradecalc.Hypothetical `json:"hypotheticals" validate:"required,min=1,dive"`
}

// SimulationResponse compares the current grade with the projected one.
type SimulationResponse struct {
	Current   gradecalc.Result `json:"current"`
	Projected gradecalc.Result `json:"projected"`
	Delta     float64          `json:"delta"`
}
