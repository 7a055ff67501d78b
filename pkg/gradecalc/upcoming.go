package gradecalc

import (
	"math"
	"sort"
	"time"
)

// UpcomingCourse is the view of a course needed to rank its upcoming work.
type UpcomingCourse struct {
	ID         string
	Name       string
	Categories []Category
}

// Upcoming is one assignment that is due in the future.
type Upcoming struct {
	CourseID       string    `json:"course_id"`
	CourseName     string    `json:"course_name"`
	CategoryName   string    `json:"category_name"`
	AssignmentName string    `json:"assignment_name"`
	DueDate        time.Time `json:"due_date"`
	DaysUntil      int       `json:"days_until"`
	CategoryWeight float64   `json:"category_weight"`
	Importance     float64   `json:"importance"`
}

// RankUpcoming lists assignments due after now and orders them by
// categoryWeight / max(daysUntil, 1), most important first. Ties are ordered
// by due date.
func RankUpcoming(courses []UpcomingCourse, now time.Time) []Upcoming {
	type candidate struct {
		item       Upcoming
		importance float64
	}
	var candidates []candidate
	for _, course := range courses {
		for _, category := range course.Categories {
			weight := Normalize(category.Weight)
			for _, assignment := range category.Assignments {
				if assignment.DueDate == nil || !assignment.DueDate.After(now) {
					continue
				}
				days := int(math.Ceil(assignment.DueDate.Sub(now).Hours() / 24))
				importance := weight / math.Max(float64(days), 1)
				candidates = append(candidates, candidate{
					item: Upcoming{
						CourseID:       course.ID,
						CourseName:     course.Name,
						CategoryName:   category.Name,
						AssignmentName: assignment.Name,
						DueDate:        *assignment.DueDate,
						DaysUntil:      days,
						CategoryWeight: weight,
						Importance:     Round2(importance),
					},
					importance: importance,
				})
			}
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].importance != candidates[j].importance {
			return candidates[i].importance > candidates[j].importance
		}
		return candidates[i].item.DueDate.Before(candidates[j].item.DueDate)
	})

	var result []Upcoming
	for _, c := range candidates {
		result = append(result, c.item)
	}
	return result
}
