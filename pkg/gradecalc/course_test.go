package gradecalc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func graded(category, assignment string, score, maxScore float64) Entry {
	return Entry{CategoryName: category, AssignmentName: assignment, Score: ptr(score), MaxScore: ptr(maxScore), Status: StatusGraded}
}

func examsAndHomework() ([]Category, []Entry) {
	categories := []Category{
		{Name: "Exams", Weight: 60},
		{Name: "HW", Weight: 40, DropLowest: 1},
	}
	entries := []Entry{
		graded("Exams", "Midterm", 90, 100),
		graded("HW", "HW1", 50, 100),
		graded("HW", "HW2", 100, 100),
		graded("HW", "HW3", 0, 100),
	}
	return categories, entries
}

func TestComputeCourseGradeScenario(t *testing.T) {
	categories, entries := examsAndHomework()
	assert.Equal(t, 84.00, ComputeCourseGrade(categories, entries))
}

func TestComputeCourseGradeIdempotentAndPure(t *testing.T) {
	categories, entries := examsAndHomework()
	snapshot := make([]Entry, len(entries))
	copy(snapshot, entries)

	first := Calculate(Course{Categories: categories}, entries)
	second := Calculate(Course{Categories: categories}, entries)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, entries)
	assert.Equal(t, "HW1", entries[1].AssignmentName)
}

func TestComputeCourseGradeAllCategoriesEmpty(t *testing.T) {
	categories := []Category{{Name: "Exams", Weight: 50}, {Name: "HW", Weight: 50}}
	result := Calculate(Course{Categories: categories}, nil)

	assert.Equal(t, 0.0, result.Percentage)
	assert.False(t, math.IsNaN(result.Percentage))
	assert.Equal(t, 100.0, result.WeightSeen)
	assert.Equal(t, 0.0, result.WeightGraded)
}

func TestComputeCourseGradeFullWeightIsDirectSum(t *testing.T) {
	categories := []Category{{Name: "A", Weight: 70}, {Name: "B", Weight: 30}}
	entries := []Entry{graded("A", "a1", 80, 100), graded("B", "b1", 60, 100)}

	assert.Equal(t, Round2((0.8*0.7+0.6*0.3)*100), ComputeCourseGrade(categories, entries))
	assert.Equal(t, 74.00, ComputeCourseGrade(categories, entries))
}

func TestComputeCourseGradePartialWeightRescales(t *testing.T) {
	categories := []Category{{Name: "Exams", Weight: 50}, {Name: "HW", Weight: 50}}
	entries := []Entry{graded("Exams", "Midterm", 100, 100)}

	result := Calculate(Course{Categories: categories}, entries)
	assert.Equal(t, 100.00, result.Percentage)
	assert.Equal(t, 100.0, result.WeightSeen)
	assert.Equal(t, 50.0, result.WeightGraded)
}

func TestComputeCourseGradeWeightsNotSummingTo100(t *testing.T) {
	categories := []Category{{Name: "Exams", Weight: 30}, {Name: "HW", Weight: 30}}
	entries := []Entry{graded("Exams", "e", 90, 100), graded("HW", "h", 60, 100)}

	assert.Equal(t, 75.00, ComputeCourseGrade(categories, entries))
}

func TestComputeCourseGradeDropLowest(t *testing.T) {
	categories := []Category{{Name: "Quizzes", Weight: 100, DropLowest: 1}}
	entries := []Entry{
		graded("Quizzes", "q1", 60, 100),
		graded("Quizzes", "q2", 80, 100),
		graded("Quizzes", "q3", 100, 100),
	}

	assert.Equal(t, 90.00, ComputeCourseGrade(categories, entries))
}

func TestComputeCourseGradeIgnoresUngradedAndZeroWeight(t *testing.T) {
	categories := []Category{{Name: "Exams", Weight: 100}, {Name: "Extra", Weight: 0}}
	entries := []Entry{
		graded("Exams", "Midterm", 70, 100),
		{CategoryName: "Exams", AssignmentName: "Final", Status: StatusNotStarted},
		graded("Extra", "Bonus", 0, 100),
	}

	result := Calculate(Course{Categories: categories}, entries)
	assert.Equal(t, 70.00, result.Percentage)
	require.Len(t, result.Categories, 1)
	assert.Equal(t, 1, result.Categories[0].Used)
}

func TestComputeCourseGradeZeroMaxScore(t *testing.T) {
	categories := []Category{{Name: "Labs", Weight: 100}}

	assert.NotPanics(t, func() {
		assert.Equal(t, 0.0, ComputeCourseGrade(categories, []Entry{graded("Labs", "l1", 10, 0)}))
	})

	entries := []Entry{graded("Labs", "l1", 10, 0), graded("Labs", "l2", 50, 100)}
	assert.Equal(t, 50.00, ComputeCourseGrade(categories, entries))
}

func TestComputeCourseGradeMissingMaxScoreDefaults(t *testing.T) {
	categories := []Category{
		{Name: "Projects", Weight: 100, Assignments: []Assignment{{Name: "p1", MaxScore: 50}}},
	}
	entries := []Entry{
		{CategoryName: "Projects", AssignmentName: "p1", Score: ptr(40)},
		{CategoryName: "Projects", AssignmentName: "p2", Score: ptr(80)},
	}

	// p1 resolves 50 from the schema, p2 falls back to 100.
	assert.Equal(t, Round2(120.0/150.0*100), ComputeCourseGrade(categories, entries))
}

func TestComputeCourseGradeCoercesMalformedNumbers(t *testing.T) {
	categories := []Category{{Name: "HW", Weight: 100}}
	entries := []Entry{
		graded("HW", "h1", math.NaN(), 100),
		graded("HW", "h2", -20, 100),
		graded("HW", "h3", 100, 100),
	}

	assert.Equal(t, Round2(100.0/300.0*100), ComputeCourseGrade(categories, entries))
}

func TestComputeCourseGradeResolvesWeights(t *testing.T) {
	tests := []struct {
		name       string
		categories []Category
		entries    []Entry
		expected   float64
	}{
		{
			name:       "entry weights",
			categories: []Category{{Name: "HW", Weight: 100}},
			entries: []Entry{
				{CategoryName: "HW", AssignmentName: "h1", Score: ptr(100), MaxScore: ptr(100), Weight: 0.25},
				{CategoryName: "HW", AssignmentName: "h2", Score: ptr(0), MaxScore: ptr(100), Weight: 0.75},
			},
			expected: 25.00,
		},
		{
			name: "assignment weights",
			categories: []Category{{Name: "Exams", Weight: 100, Assignments: []Assignment{
				{Name: "Midterm", Weight: 1, MaxScore: 100},
				{Name: "Final", Weight: 3, MaxScore: 100},
			}}},
			entries:  []Entry{graded("Exams", "Midterm", 100, 100), graded("Exams", "Final", 50, 100)},
			expected: 62.50,
		},
		{
			name:       "equal share",
			categories: []Category{{Name: "HW", Weight: 100}},
			entries:    []Entry{graded("HW", "h1", 100, 100), graded("HW", "h2", 0, 100)},
			expected:   50.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeCourseGrade(tt.categories, tt.entries))
		})
	}
}

func TestCalculateAppliesLatePolicy(t *testing.T) {
	categories := []Category{{Name: "HW", Weight: 100}}
	late := Entry{CategoryName: "HW", AssignmentName: "h1", Score: ptr(90), MaxScore: ptr(100), Status: StatusLate}
	onTime := graded("HW", "h1", 90, 100)

	tests := []struct {
		name     string
		policy   LatePolicy
		entry    Entry
		expected float64
	}{
		{name: "none", policy: LatePolicy{Type: LatePolicyNone, Amount: 10}, entry: late, expected: 90},
		{name: "percentage", policy: LatePolicy{Type: LatePolicyPercentage, Amount: 10}, entry: late, expected: 80},
		{name: "fixed", policy: LatePolicy{Type: LatePolicyFixed, Amount: 5}, entry: late, expected: 85},
		{name: "capped", policy: LatePolicy{Type: LatePolicyPercentage, Amount: 50, MaxDeduction: 20}, entry: late, expected: 70},
		{name: "not late", policy: LatePolicy{Type: LatePolicyFixed, Amount: 30}, entry: onTime, expected: 90},
		{name: "floor at zero", policy: LatePolicy{Type: LatePolicyFixed, Amount: 500}, entry: late, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Calculate(Course{Categories: categories, LatePolicy: tt.policy}, []Entry{tt.entry})
			assert.Equal(t, tt.expected, result.Percentage)
		})
	}
}

func TestCalculateBreakdown(t *testing.T) {
	categories, entries := examsAndHomework()
	categories = append(categories, Category{Name: "Project", Weight: 0})

	result := Calculate(Course{Categories: categories}, entries)
	require.Len(t, result.Categories, 2)

	hw := result.Categories[1]
	assert.Equal(t, "HW", hw.Name)
	assert.Equal(t, 75.00, hw.Percentage)
	assert.Equal(t, 2, hw.Used)
	assert.Equal(t, 1, hw.Dropped)
	assert.True(t, hw.Assessed)
}
