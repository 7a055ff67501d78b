package gradecalc

// Hypothetical is a what-if score for one assignment.
type Hypothetical struct {
	CategoryName   string  `json:"category_name"`
	AssignmentName string  `json:"assignment_name"`
	Score          float64 `json:"score"`
}

// Simulate substitutes hypothetical scores into the recorded entries and runs
// the regular course calculation over the result. A hypothetical replaces the
// recorded score for its assignment, or adds an entry using the assignment's
// declared max score when nothing was recorded.
func Simulate(course Course, entries []Entry, hypotheticals []Hypothetical) Result {
	merged := make([]Entry, len(entries), len(entries)+len(hypotheticals))
	copy(merged, entries)

	for _, h := range hypotheticals {
		score := Normalize(h.Score)
		if idx := indexOfEntry(merged, h.CategoryName, h.AssignmentName); idx >= 0 {
			entry := merged[idx]
			entry.Score = &score
			entry.Status = StatusGraded
			merged[idx] = entry
			continue
		}
		entry := Entry{
			CategoryName:   h.CategoryName,
			AssignmentName: h.AssignmentName,
			Score:          &score,
			Status:         StatusGraded,
		}
		for _, category := range course.Categories {
			if category.Name != h.CategoryName {
				continue
			}
			if assignment, ok := findAssignment(category, h.AssignmentName); ok {
				maxScore := orDefault(assignment.MaxScore, DefaultMaxScore)
				entry.MaxScore = &maxScore
			}
			break
		}
		merged = append(merged, entry)
	}

	return Calculate(course, merged)
}

func indexOfEntry(entries []Entry, categoryName, assignmentName string) int {
	for i, entry := range entries {
		if entry.CategoryName == categoryName && entry.AssignmentName == assignmentName {
			return i
		}
	}
	return -1
}
