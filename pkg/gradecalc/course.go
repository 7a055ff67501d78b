package gradecalc

// Course is the grading schema of a single course.
type Course struct {
	Categories []Category `json:"categories"`
	LatePolicy LatePolicy `json:"late_policy"`
}

// CategoryResult is the per-category part of a course calculation.
type CategoryResult struct {
	Aggregate
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	// Percentage is Fraction expressed on 0-100, rounded to 2 decimals.
	Percentage float64 `json:"percentage"`
}

// Result is the outcome of a course calculation.
type Result struct {
	Percentage float64 `json:"percentage"`
	// WeightSeen sums the weights of every weighted category, graded or not.
	WeightSeen float64 `json:"weight_seen"`
	// WeightGraded sums the weights of categories that had graded entries.
	WeightGraded float64          `json:"weight_graded"`
	Categories   []CategoryResult `json:"categories"`
}

// ComputeCourseGrade returns the current course percentage for the recorded
// entries.
func ComputeCourseGrade(categories []Category, entries []Entry) float64 {
	return Calculate(Course{Categories: categories}, entries).Percentage
}

// Calculate combines per-category fractions into one course percentage.
// Categories without graded entries do not dilute the result: the weighted
// sum is rescaled by the weight that actually has grades.
func Calculate(course Course, entries []Entry) Result {
	byCategory := make(map[string][]Entry, len(course.Categories))
	for _, entry := range entries {
		if !entry.Graded() {
			continue
		}
		byCategory[entry.CategoryName] = append(byCategory[entry.CategoryName], entry)
	}

	result := Result{Categories: make([]CategoryResult, 0, len(course.Categories))}
	var weighted float64
	for _, category := range course.Categories {
		weight := Normalize(category.Weight)
		if weight == 0 {
			continue
		}
		result.WeightSeen += weight

		items := categoryItems(category, byCategory[category.Name], course.LatePolicy)
		agg := AggregateCategory(items, category.DropLowest)
		result.Categories = append(result.Categories, CategoryResult{
			Aggregate:  agg,
			Name:       category.Name,
			Weight:     weight,
			Percentage: Round2(agg.Fraction * 100),
		})
		if !agg.Assessed {
			continue
		}
		weighted += agg.Fraction * (weight / 100)
		result.WeightGraded += weight
	}

	switch {
	case result.WeightGraded == 0:
		result.Percentage = 0
	case result.WeightGraded == 100:
		result.Percentage = Round2(weighted * 100)
	default:
		result.Percentage = Round2(weighted / result.WeightGraded * 100 * 100)
	}
	return result
}

func categoryItems(category Category, entries []Entry, policy LatePolicy) []Item {
	if len(entries) == 0 {
		return nil
	}
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		assignment, hasAssignment := findAssignment(category, entry.AssignmentName)

		maxScore := DefaultMaxScore
		switch {
		case entry.MaxScore != nil:
			maxScore = maxScoreOf(entry.MaxScore)
		case hasAssignment:
			maxScore = orDefault(assignment.MaxScore, DefaultMaxScore)
		}

		weight := Normalize(entry.Weight)
		if weight == 0 && hasAssignment {
			weight = Normalize(assignment.Weight)
		}

		items = append(items, Item{
			Score:    policy.Apply(scoreOf(entry.Score), maxScore, entry.Status),
			MaxScore: maxScore,
			Weight:   weight,
		})
	}
	return items
}

func findAssignment(category Category, name string) (Assignment, bool) {
	if name == "" {
		return Assignment{}, false
	}
	for _, assignment := range category.Assignments {
		if assignment.Name == name {
			return assignment, true
		}
	}
	return Assignment{}, false
}
