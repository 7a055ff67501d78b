package dto

import "github.com/noah-isme/gradetrack-api/pkg/gradecalc"

// CreateEnrollmentRequest enrolls the current user in a course.
type CreateEnrollmentRequest struct {
	CourseID string   `json:"course_id" validate:"required"`
	Semester string   `json:"semester" validate:"max=32"`
	Credits  *float64 `json:"credits" validate:"omitempty,gte=0,lte=30"`
	GPAScale float64  `json:"gpa_scale" validate:"gte=0,lte=10"`
}

// UpdateEnrollmentRequest patches enrollment fields. Setting a final grade
// marks the enrollment as counted towards GPA.
type UpdateEnrollmentRequest struct {
	Semester   *string  `json:"semester" validate:"omitempty,max=32"`
	Credits    *float64 `json:"credits" validate:"omitempty,gte=0,lte=30"`
	GPAScale   *float64 `json:"gpa_scale" validate:"omitempty,gte=0,lte=10"`
	Archived   *bool    `json:"archived"`
	FinalGrade *float64 `json:"final_grade" validate:"omitempty,gte=0"`
}

// EnrollmentQuery captures list filters from the query string.
type EnrollmentQuery struct {
	Archived *bool  `form:"archived"`
	Semester string `form:"semester"`
}

// UpsertGradeRequest records the score of one assignment.
type UpsertGradeRequest struct {
	AssignmentID string           `json:"assignment_id" validate:"required"`
	Score        *float64         `json:"score"`
	MaxScore     *float64         `json:"max_score" validate:"omitempty,gte=0"`
	Weight       *float64         `json:"weight" validate:"omitempty,gte=0"`
	Status       gradecalc.Status `json:"status"`
}

// GradeStatusRequest sets the status of an assignment without a score.
type GradeStatusRequest struct {
	Status gradecalc.Status `json:"status" validate:"required"`
}
