package gradecalc

import (
	"fmt"
	"math"
)

// Warning is an advisory finding about a grading schema. Warnings never
// change how a grade is computed.
type Warning struct {
	Code     string `json:"code"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

// Warning codes.
const (
	WarnWeightSum      = "WEIGHT_SUM"
	WarnNegativeWeight = "NEGATIVE_WEIGHT"
	WarnDuplicateName  = "DUPLICATE_CATEGORY"
	WarnDropExceeds    = "DROP_EXCEEDS_ASSIGNMENTS"
)

const weightTolerance = 0.01

// ValidateWeights inspects categories for weight sums other than 100,
// negative weights, duplicate names and drop policies that would drop every
// declared assignment.
func ValidateWeights(categories []Category) []Warning {
	var warnings []Warning
	seen := make(map[string]bool, len(categories))
	var sum float64
	for _, category := range categories {
		if seen[category.Name] {
			warnings = append(warnings, Warning{Code: WarnDuplicateName, Category: category.Name, Message: fmt.Sprintf("category %q is declared more than once", category.Name)})
		}
		seen[category.Name] = true

		if category.Weight < 0 || math.IsNaN(category.Weight) {
			warnings = append(warnings, Warning{Code: WarnNegativeWeight, Category: category.Name, Message: fmt.Sprintf("category %q has an invalid weight and is ignored", category.Name)})
		}
		sum += Normalize(category.Weight)

		if n := len(category.Assignments); n > 0 && category.DropLowest >= n {
			warnings = append(warnings, Warning{Code: WarnDropExceeds, Category: category.Name, Message: fmt.Sprintf("category %q drops %d of %d assignments; the highest score is kept", category.Name, category.DropLowest, n)})
		}
	}
	if len(categories) > 0 && math.Abs(sum-100) > weightTolerance {
		warnings = append(warnings, Warning{Code: WarnWeightSum, Message: fmt.Sprintf("category weights sum to %.2f instead of 100; grades are normalized", sum)})
	}
	return warnings
}
