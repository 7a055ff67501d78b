package gradecalc

import (
	"sort"
	"strings"
)

const (
	// DefaultCredits applies to past grades recorded without credit hours.
	DefaultCredits = 3.0
	// DefaultGPAScale is the usual 4-point scale.
	DefaultGPAScale = 4.0
)

var letterPoints = map[string]float64{
	"A+": 4.0, "A": 4.0, "A-": 3.7,
	"B+": 3.3, "B": 3.0, "B-": 2.7,
	"C+": 2.3, "C": 2.0, "C-": 1.7,
	"D+": 1.3, "D": 1.0, "D-": 0.7,
	"F": 0.0,
}

// LetterPoints resolves a letter grade to grade points. Unknown letters
// resolve to 0.
func LetterPoints(letter string) float64 {
	return letterPoints[strings.ToUpper(strings.TrimSpace(letter))]
}

// KnownLetter reports whether the letter is in the grade table.
func KnownLetter(letter string) bool {
	_, ok := letterPoints[strings.ToUpper(strings.TrimSpace(letter))]
	return ok
}

// Points converts a past grade to grade points. A letter grade takes
// precedence over a numeric one.
func (g PastGrade) Points() float64 {
	if strings.TrimSpace(g.LetterGrade) != "" {
		return LetterPoints(g.LetterGrade)
	}
	if g.NumericGrade == nil {
		return 0
	}
	numeric := Normalize(*g.NumericGrade)
	scale := orDefault(g.GPAScale, DefaultGPAScale)
	if numeric <= 100 {
		return numeric / 100 * scale
	}
	return numeric / scale
}

// GPAResult carries the totals behind a GPA.
type GPAResult struct {
	GPA          float64 `json:"gpa"`
	TotalPoints  float64 `json:"total_points"`
	TotalCredits float64 `json:"total_credits"`
	Courses      int     `json:"courses"`
}

// ComputeGPA returns the credit-weighted GPA over past grades and finalized
// enrollments, rounded to 2 decimals.
func ComputeGPA(pastGrades []PastGrade, enrollments []FinalizedEnrollment) float64 {
	return CalculateGPA(pastGrades, enrollments).GPA
}

// CalculateGPA is ComputeGPA with its totals.
func CalculateGPA(pastGrades []PastGrade, enrollments []FinalizedEnrollment) GPAResult {
	var result GPAResult
	for _, grade := range pastGrades {
		credits := orDefault(grade.Credits, DefaultCredits)
		result.TotalPoints += grade.Points() * credits
		result.TotalCredits += credits
		result.Courses++
	}
	for _, enrollment := range enrollments {
		credits := Normalize(enrollment.Credits)
		if enrollment.FinalGrade == nil || credits == 0 {
			continue
		}
		scale := orDefault(enrollment.GPAScale, DefaultGPAScale)
		points := Normalize(*enrollment.FinalGrade) / 100 * scale
		result.TotalPoints += points * credits
		result.TotalCredits += credits
		result.Courses++
	}
	if result.TotalCredits > 0 {
		result.GPA = Round2(result.TotalPoints / result.TotalCredits)
	}
	return result
}

// SemesterGPA is the GPA of the past grades recorded for one semester.
type SemesterGPA struct {
	Semester string `json:"semester"`
	GPAResult
}

// GPABySemester groups past grades by semester and computes a GPA for each
// group. Groups are returned in descending semester order.
func GPABySemester(pastGrades []PastGrade) []SemesterGPA {
	groups := make(map[string][]PastGrade)
	for _, grade := range pastGrades {
		groups[grade.Semester] = append(groups[grade.Semester], grade)
	}
	semesters := make([]string, 0, len(groups))
	for semester := range groups {
		semesters = append(semesters, semester)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(semesters)))

	result := make([]SemesterGPA, 0, len(semesters))
	for _, semester := range semesters {
		result = append(result, SemesterGPA{Semester: semester, GPAResult: CalculateGPA(groups[semester], nil)})
	}
	return result
}
