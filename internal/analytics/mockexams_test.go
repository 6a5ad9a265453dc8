package analytics

import (
	"encoding/json"
	"testing"

	"github.com/error-autopsy/backend/internal/models"
)

func TestMockExamTrajectory(t *testing.T) {
	exams := []models.MockExam{
		{ExamName: "ENEM 2", ExamType: "ENEM", Date: "01-03-2024", TotalScore: 75, MaxPossibleScore: 100},
		{ExamName: "SAT 1", ExamType: "SAT", Date: "01-02-2024", TotalScore: 50, MaxPossibleScore: 100},
		{ExamName: "ENEM 1", ExamType: "ENEM", Date: "01-01-2024", TotalScore: 60, MaxPossibleScore: 100},
		{ExamName: "Undated", ExamType: "ENEM", Date: "??", TotalScore: 40, MaxPossibleScore: 100},
	}

	points := MockExamTrajectory(exams)
	if len(points) != 4 {
		t.Fatalf("len = %d, want 4", len(points))
	}

	// Unparsable date sorts earliest, then chronological
	wantOrder := []string{"Undated", "ENEM 1", "SAT 1", "ENEM 2"}
	for i, name := range wantOrder {
		if points[i].ExamName != name {
			t.Errorf("points[%d] = %s, want %s", i, points[i].ExamName, name)
		}
	}

	// Attempt numbers run per exam type
	wantAttempts := []int{1, 2, 1, 3}
	for i, n := range wantAttempts {
		if points[i].AttemptNumber != n {
			t.Errorf("points[%d].AttemptNumber = %d, want %d", i, points[i].AttemptNumber, n)
		}
	}

	// Undated→ENEM 1 are consecutive ENEM entries: 60-40 = +20
	if points[1].Improvement == nil || !almostEqual(*points[1].Improvement, 20) {
		t.Errorf("points[1].Improvement = %v, want +20", points[1].Improvement)
	}
	// ENEM 1→SAT 1 switches type: no improvement
	if points[2].Improvement != nil {
		t.Errorf("points[2].Improvement = %v, want nil across a type switch", *points[2].Improvement)
	}
	// SAT 1→ENEM 2 also switches type, even though ENEM 2 is the third ENEM attempt
	if points[3].Improvement != nil {
		t.Errorf("points[3].Improvement = %v, want nil across a type switch", *points[3].Improvement)
	}

	if points[0].Improvement != nil {
		t.Errorf("first point can have no improvement")
	}
}

func TestCalculateMockExamStatistics(t *testing.T) {
	empty := CalculateMockExamStatistics(nil)
	if empty.TotalExams != 0 || empty.Trend != models.TrendNone {
		t.Errorf("empty input = %+v, want zeroes with trend —", empty)
	}

	one := CalculateMockExamStatistics([]models.MockExam{
		{Date: "01-01-2024", TotalScore: 70, MaxPossibleScore: 100},
	})
	if one.Trend != models.TrendNone {
		t.Errorf("single exam trend = %q, want — (needs 2+)", one.Trend)
	}
	if !almostEqual(one.AvgScore, 70) || !almostEqual(one.BestScore, 70) || !almostEqual(one.LatestScore, 70) {
		t.Errorf("single exam stats = %+v", one)
	}

	// Latest 75 vs mean of others 60: +15 clears the ±5 dead zone
	improving := CalculateMockExamStatistics([]models.MockExam{
		{Date: "01-01-2024", TotalScore: 60, MaxPossibleScore: 100},
		{Date: "01-02-2024", TotalScore: 75, MaxPossibleScore: 100},
	})
	if improving.Trend != models.TrendImproving {
		t.Errorf("trend = %q, want Improving", improving.Trend)
	}
	if !almostEqual(improving.LatestScore, 75) || !almostEqual(improving.BestScore, 75) {
		t.Errorf("stats = %+v", improving)
	}

	declining := CalculateMockExamStatistics([]models.MockExam{
		{Date: "01-01-2024", TotalScore: 80, MaxPossibleScore: 100},
		{Date: "01-02-2024", TotalScore: 85, MaxPossibleScore: 100},
		{Date: "01-03-2024", TotalScore: 70, MaxPossibleScore: 100},
	})
	// Latest 70 vs mean(80, 85) = 82.5: -12.5
	if declining.Trend != models.TrendDeclining {
		t.Errorf("trend = %q, want Declining", declining.Trend)
	}

	// Latest 72 vs mean(70, 75) = 72.5: within the dead zone
	stable := CalculateMockExamStatistics([]models.MockExam{
		{Date: "01-01-2024", TotalScore: 70, MaxPossibleScore: 100},
		{Date: "01-02-2024", TotalScore: 75, MaxPossibleScore: 100},
		{Date: "01-03-2024", TotalScore: 72, MaxPossibleScore: 100},
	})
	if stable.Trend != models.TrendStable {
		t.Errorf("trend = %q, want Stable", stable.Trend)
	}
}

func TestScorePercentageZeroMax(t *testing.T) {
	exam := models.MockExam{TotalScore: 50, MaxPossibleScore: 0}
	if got := exam.ScorePercentage(); got != 0 {
		t.Errorf("ScorePercentage with max=0 = %v, want 0", got)
	}
}

func enemBreakdown(mathScore float64) models.Breakdown {
	raw, _ := json.Marshal(models.BreakdownSection{Label: "Mathematics", Score: mathScore, Max: 45, Subject: "Mathematics"})
	essay, _ := json.Marshal(models.BreakdownSection{Label: "Essay", Score: 800, Max: 1000, Subject: "Essay"})
	return models.Breakdown{
		"math":      raw,
		"essay":     essay,
		"tri_score": json.RawMessage(`650.5`),
	}
}

func TestExtractSectionScores(t *testing.T) {
	exams := []models.MockExam{
		{ExamName: "Sim 1", ExamType: "ENEM", Date: "01-02-2024", Breakdown: enemBreakdown(30)},
		{ExamName: "SAT Run", ExamType: "SAT", Date: "01-02-2024", Breakdown: models.Breakdown{
			"math": json.RawMessage(`{"label":"Math","score":40,"max":44,"subject":"Math"}`),
		}},
		{ExamName: "No Breakdown", ExamType: "ENEM", Date: "05-02-2024"},
	}

	results := ExtractSectionScores(exams, "ENEM")
	// tri_score is a scalar extra, not a section; key order is essay, math
	if len(results) != 2 {
		t.Fatalf("len = %d, want 2", len(results))
	}
	if results[0].SectionKey != "essay" || results[1].SectionKey != "math" {
		t.Errorf("keys = %s, %s; want essay, math", results[0].SectionKey, results[1].SectionKey)
	}
	if !almostEqual(results[0].Percentage, 80) {
		t.Errorf("essay pct = %v, want 80", results[0].Percentage)
	}
	// 30/45
	if !almostEqual(results[1].Percentage, 100.0/1.5) {
		t.Errorf("math pct = %v, want 66.667", results[1].Percentage)
	}
	if results[1].Label != "Mathematics" || results[1].Subject != "Mathematics" {
		t.Errorf("section identity = %+v", results[1])
	}
}

func TestExtractSectionScoresSkipsNonObjectEntries(t *testing.T) {
	exams := []models.MockExam{
		{ExamName: "Sim 1", ExamType: "ENEM", Date: "01-02-2024", Breakdown: models.Breakdown{
			"math":      json.RawMessage(`{"label":"Mathematics","score":30,"max":45,"subject":"Mathematics"}`),
			"essay":     json.RawMessage(`null`),
			"tri_score": json.RawMessage(`650.5`),
			"note":      json.RawMessage(`"revisar"`),
		}},
	}

	results := ExtractSectionScores(exams, "ENEM")
	if len(results) != 1 {
		t.Fatalf("len = %d, want 1 (null and scalar entries skipped)", len(results))
	}
	if results[0].SectionKey != "math" {
		t.Errorf("section = %q, want math; a null entry must not surface as a zero-valued section", results[0].SectionKey)
	}
}

func TestExtractSectionScoresZeroMax(t *testing.T) {
	exams := []models.MockExam{
		{ExamName: "Broken", ExamType: "ENEM", Breakdown: models.Breakdown{
			"math": json.RawMessage(`{"label":"Math","score":10,"max":0,"subject":"Math"}`),
		}},
	}

	results := ExtractSectionScores(exams, "ENEM")
	if len(results) != 1 {
		t.Fatalf("len = %d, want 1", len(results))
	}
	if results[0].Percentage != 0 {
		t.Errorf("percentage with max=0 = %v, want 0", results[0].Percentage)
	}
}

func TestSectionTrendData(t *testing.T) {
	exams := []models.MockExam{
		{ExamName: "Later", ExamType: "ENEM", Date: "01-03-2024", Breakdown: enemBreakdown(40)},
		{ExamName: "Earlier", ExamType: "ENEM", Date: "01-01-2024", Breakdown: enemBreakdown(20)},
	}

	trend := SectionTrendData(exams, "ENEM")
	if len(trend) != 4 {
		t.Fatalf("len = %d, want 4", len(trend))
	}
	if trend[0].ExamName != "Earlier" || trend[2].ExamName != "Later" {
		t.Errorf("trend should be chronological: %s then %s", trend[0].ExamName, trend[2].ExamName)
	}
}

func TestScalarExtraTrajectory(t *testing.T) {
	exams := []models.MockExam{
		{ExamName: "Sim 2", ExamType: "ENEM", Date: "01-03-2024", Breakdown: enemBreakdown(40)},
		{ExamName: "Sim 1", ExamType: "ENEM", Date: "01-01-2024", Breakdown: enemBreakdown(20)},
		{ExamName: "No TRI", ExamType: "ENEM", Date: "01-02-2024", Breakdown: models.Breakdown{
			"math": json.RawMessage(`{"label":"Mathematics","score":25,"max":45,"subject":"Mathematics"}`),
		}},
		{ExamName: "SAT Run", ExamType: "SAT", Date: "01-02-2024"},
	}

	points := ScalarExtraTrajectory(exams, "ENEM", "tri_score")
	if len(points) != 2 {
		t.Fatalf("len = %d, want 2 (missing scalar skipped)", len(points))
	}
	if points[0].ExamName != "Sim 1" || points[1].ExamName != "Sim 2" {
		t.Errorf("order = %s, %s; want Sim 1, Sim 2", points[0].ExamName, points[1].ExamName)
	}
	if !almostEqual(points[0].Value, 650.5) {
		t.Errorf("value = %v, want 650.5", points[0].Value)
	}
}

func strPtr(s string) *string { return &s }

func TestMockExamErrorSummary(t *testing.T) {
	errors := []models.ErrorLog{
		{ID: "aaa", Subject: "Math", MockExamID: strPtr("exam-1"), Date: "15-06-2024"},
		{ID: "bbb", Subject: "Math", MockExamID: strPtr("exam-2"), Date: "15-06-2024"},
		{ID: "ccc", Subject: "Physics", Date: "15-06-2024"},
		{ID: "ddd", Subject: "Physics", Date: "16-06-2024"},
		{ID: "eee", Subject: "  ", Date: "15-06-2024"},
	}

	summary := MockExamErrorSummary(errors, "exam-1", "15-06-2024")

	// aaa by explicit link; ccc by same-day fallback; eee falls back under Unknown.
	// bbb is linked to another exam and must not be claimed by the fallback
	// even though the dates match. ddd is a different day.
	if len(summary["Math"]) != 1 || summary["Math"][0].ID != "aaa" {
		t.Errorf("Math = %+v, want just aaa", summary["Math"])
	}
	if len(summary["Physics"]) != 1 || summary["Physics"][0].ID != "ccc" {
		t.Errorf("Physics = %+v, want just ccc", summary["Physics"])
	}
	if len(summary["Unknown"]) != 1 || summary["Unknown"][0].ID != "eee" {
		t.Errorf("Unknown = %+v, want just eee", summary["Unknown"])
	}

	total := 0
	for _, group := range summary {
		total += len(group)
	}
	if total != 3 {
		t.Errorf("total matched = %d, want 3", total)
	}
}
