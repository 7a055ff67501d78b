package dto

import "github.com/noah-isme/gradetrack-api/pkg/gradecalc"

// CourseRequest creates or replaces a course and its grading schema.
type CourseRequest struct {
	Name       string                `json:"name" validate:"required,max=200"`
	Code       string                `json:"code" validate:"max=32"`
	Instructor string                `json:"instructor" validate:"max=120"`
	Credits    float64               `json:"credits" validate:"gte=0,lte=30"`
	Categories []gradecalc.Category  `json:"categories"`
	LatePolicy *gradecalc.LatePolicy `json:"late_policy"`
}

// CourseQuery captures list filters from the query string.
type CourseQuery struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
