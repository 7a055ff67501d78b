package dto

import "github.com/noah-isme/gradetrack-api/pkg/gradecalc"

// PastGradeRequest creates or replaces a past grade.
type PastGradeRequest struct {
	CourseName   string   `json:"course_name" validate:"required,max=200"`
	CourseCode   string   `json:"course_code" validate:"max=32"`
	Semester     string   `json:"semester" validate:"max=32"`
	LetterGrade  string   `json:"letter_grade" validate:"max=3"`
	NumericGrade *float64 `json:"numeric_grade" validate:"omitempty,gte=0"`
	Credits      float64  `json:"credits" validate:"gte=0,lte=30"`
	GPAScale     float64  `json:"gpa_scale" validate:"gte=0,lte=10"`
}

// GPASummary is the cumulative GPA with a per-semester breakdown.
type GPASummary struct {
	GPA          float64                 `json:"gpa"`
	TotalPoints  float64                 `json:"total_points"`
	TotalCredits float64                 `json:"total_credits"`
	TotalCourses int                     `json:"total_courses"`
	BySemester   []gradecalc.SemesterGPA `json:"by_semester"`
}

// ImportRowError reports a rejected row of an import file.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarises a past grade import.
type ImportResult struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}
