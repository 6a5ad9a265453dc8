package analytics

import (
	"math"
	"testing"

	"github.com/error-autopsy/backend/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func TestCalculateSessionStatisticsEmpty(t *testing.T) {
	stats := CalculateSessionStatistics(nil)
	if stats.TotalSessions != 0 || stats.AvgAccuracy != 0 || stats.AvgPace != 0 {
		t.Errorf("empty input should give a zeroed summary, got %+v", stats)
	}
}

func TestCalculateSessionStatisticsWeighted(t *testing.T) {
	sessions := []models.StudySession{
		{Subject: "Math", TotalQuestions: 10, CorrectCount: 9, DurationMinutes: 30},
		{Subject: "Physics", TotalQuestions: 40, CorrectCount: 10, DurationMinutes: 40},
	}

	stats := CalculateSessionStatistics(sessions)
	if stats.TotalSessions != 2 || stats.TotalQuestions != 50 || stats.TotalCorrect != 19 {
		t.Errorf("totals = %+v", stats)
	}

	// Weighted: 19/50 = 38%, not the naive (90+25)/2 = 57.5%
	if !almostEqual(stats.AvgAccuracy, 38.0) {
		t.Errorf("AvgAccuracy = %v, want 38.0", stats.AvgAccuracy)
	}
	// 70 minutes over 50 questions
	if !almostEqual(stats.AvgPace, 1.4) {
		t.Errorf("AvgPace = %v, want 1.4", stats.AvgPace)
	}
	if !almostEqual(stats.TotalStudyTimeHours, 70.0/60.0) {
		t.Errorf("TotalStudyTimeHours = %v, want %v", stats.TotalStudyTimeHours, 70.0/60.0)
	}

	if stats.BestSubject != "Math" {
		t.Errorf("BestSubject = %q, want Math (90%%)", stats.BestSubject)
	}
	// Physics at 25% is under the 60 threshold
	if stats.ImprovementNeeded != "Physics" {
		t.Errorf("ImprovementNeeded = %q, want Physics", stats.ImprovementNeeded)
	}
}

func TestCalculateSessionStatisticsNoWeakSubject(t *testing.T) {
	sessions := []models.StudySession{
		{Subject: "Math", TotalQuestions: 10, CorrectCount: 9, DurationMinutes: 20},
		{Subject: "Physics", TotalQuestions: 10, CorrectCount: 7, DurationMinutes: 25},
	}

	stats := CalculateSessionStatistics(sessions)
	if stats.ImprovementNeeded != "" {
		t.Errorf("ImprovementNeeded = %q, want empty when worst subject is at 70%%", stats.ImprovementNeeded)
	}
}

func TestCalculateSessionStatisticsZeroQuestions(t *testing.T) {
	sessions := []models.StudySession{
		{Subject: "Math", TotalQuestions: 0, CorrectCount: 0, DurationMinutes: 15},
	}

	stats := CalculateSessionStatistics(sessions)
	if stats.AvgAccuracy != 0 || stats.AvgPace != 0 {
		t.Errorf("zero questions must not divide, got %+v", stats)
	}
	if stats.BestSubject != "" {
		t.Errorf("BestSubject = %q, want empty with no answered questions", stats.BestSubject)
	}
}

func TestSpeedAccuracyData(t *testing.T) {
	sessions := []models.StudySession{
		{Subject: "Math", ExamType: "ENEM", Date: "10-01-2024", TotalQuestions: 20, CorrectCount: 15, DurationMinutes: 50},
		{Subject: "Physics", TotalQuestions: 0, CorrectCount: 0, DurationMinutes: 30},
		{Subject: "Chemistry", TotalQuestions: 10, CorrectCount: 5, DurationMinutes: 0},
	}

	points := SpeedAccuracyData(sessions)
	if len(points) != 1 {
		t.Fatalf("len = %d, want 1 (zero-pace sessions excluded, not zeroed)", len(points))
	}

	p := points[0]
	if !almostEqual(p.Pace, 2.5) {
		t.Errorf("Pace = %v, want 2.5", p.Pace)
	}
	if !almostEqual(p.Accuracy, 75.0) {
		t.Errorf("Accuracy = %v, want 75.0", p.Accuracy)
	}
	if p.Subject != "Math" || p.ExamType != "ENEM" || p.Date != "10-01-2024" || p.Questions != 20 {
		t.Errorf("point carries wrong identity fields: %+v", p)
	}
}

func TestPaceBySubject(t *testing.T) {
	sessions := []models.StudySession{
		{Subject: "Math", TotalQuestions: 10, DurationMinutes: 30},
		{Subject: "Math", TotalQuestions: 10, DurationMinutes: 10},
		{Subject: "Biology", TotalQuestions: 5, DurationMinutes: 20},
	}

	paces := PaceBySubject(sessions)
	if len(paces) != 2 {
		t.Fatalf("len = %d, want 2", len(paces))
	}
	// Sorted by subject name
	if paces[0].Subject != "Biology" || paces[1].Subject != "Math" {
		t.Errorf("order = %s, %s; want Biology, Math", paces[0].Subject, paces[1].Subject)
	}
	if !almostEqual(paces[0].AvgPace, 4.0) {
		t.Errorf("Biology pace = %v, want 4.0", paces[0].AvgPace)
	}
	// Math: 40 minutes over 20 questions
	if !almostEqual(paces[1].AvgPace, 2.0) {
		t.Errorf("Math pace = %v, want 2.0", paces[1].AvgPace)
	}
	if paces[1].TotalQuestions != 20 {
		t.Errorf("Math questions = %d, want 20", paces[1].TotalQuestions)
	}
}
