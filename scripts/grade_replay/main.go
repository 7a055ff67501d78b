// Command grade_replay runs recorded grading scenarios through the engine and
// reports every case whose result drifted from the recorded value.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
)

type courseCase struct {
	Name       string               `json:"name"`
	Critical   bool                 `json:"critical"`
	Categories []gradecalc.Category `json:"categories"`
	LatePolicy gradecalc.LatePolicy `json:"late_policy"`
	Entries    []gradecalc.Entry    `json:"entries"`
	Expected   float64              `json:"expected"`
}

type gpaCase struct {
	Name        string                          `json:"name"`
	Critical    bool                            `json:"critical"`
	PastGrades  []gradecalc.PastGrade           `json:"past_grades"`
	Enrollments []gradecalc.FinalizedEnrollment `json:"enrollments"`
	Expected    float64                         `json:"expected"`
}

type fixtures struct {
	Courses []courseCase `json:"courses"`
	GPA     []gpaCase    `json:"gpa"`
}

type outcome struct {
	Kind     string
	Name     string
	Critical bool
	Expected float64
	Actual   float64
}

func (o outcome) match(tolerance float64) bool {
	return math.Abs(o.Expected-o.Actual) <= tolerance
}

func main() {
	var (
		fixturesPath string
		tolerance    float64
	)
	flag.StringVar(&fixturesPath, "fixtures", filepath.Join("scripts", "grade_replay", "fixtures.json"), "Path to JSON fixtures file")
	flag.Float64Var(&tolerance, "tolerance", 0.005, "Allowed absolute difference")
	flag.Parse()

	cases, err := loadFixtures(fixturesPath)
	if err != nil {
		log.Fatalf("failed to load fixtures: %v", err)
	}

	results := replay(cases)
	breaking, optional := printReport(results, tolerance)

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadFixtures(path string) (fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixtures{}, err
	}
	var f fixtures
	if err := json.Unmarshal(data, &f); err != nil {
		return fixtures{}, err
	}
	if len(f.Courses)+len(f.GPA) == 0 {
		return fixtures{}, fmt.Errorf("no cases defined in %s", path)
	}
	return f, nil
}

func replay(f fixtures) []outcome {
	results := make([]outcome, 0, len(f.Courses)+len(f.GPA))
	for _, c := range f.Courses {
		actual := gradecalc.Calculate(gradecalc.Course{Categories: c.Categories, LatePolicy: c.LatePolicy}, c.Entries).Percentage
		results = append(results, outcome{Kind: "course", Name: c.Name, Critical: c.Critical, Expected: c.Expected, Actual: actual})
	}
	for _, c := range f.GPA {
		actual := gradecalc.ComputeGPA(c.PastGrades, c.Enrollments)
		results = append(results, outcome{Kind: "gpa", Name: c.Name, Critical: c.Critical, Expected: c.Expected, Actual: actual})
	}
	return results
}

func printReport(results []outcome, tolerance float64) (breaking, optional int) {
	fmt.Println("Grade Replay Report")
	fmt.Println("===================")
	for _, res := range results {
		status := "OK"
		if !res.match(tolerance) {
			status = "DIFF"
			if res.Critical {
				breaking++
			} else {
				optional++
			}
		}
		fmt.Printf("[%s] %s %s\n", status, res.Kind, res.Name)
		fmt.Printf("  Expected: %.2f | Actual: %.2f | Critical: %t\n", res.Expected, res.Actual, res.Critical)
	}
	return breaking, optional
}
