package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/error-autopsy/backend/internal/models"
)

func TestDashboardSummary(t *testing.T) {
	errors := []models.ErrorLog{
		{Subject: "Math", ErrorType: models.ErrorContentGap},
		{Subject: "Math", ErrorType: models.ErrorAttentionDetail},
		{Subject: "Physics", ErrorType: models.ErrorInterpretation},
		{Subject: "Math", ErrorType: models.ErrorFatigue},
	}
	sessions := []models.StudySession{
		{TotalQuestions: 10, CorrectCount: 9},
		{TotalQuestions: 40, CorrectCount: 10},
	}

	summary := DashboardSummary(errors, sessions)
	if summary.TotalErrors != 4 {
		t.Errorf("TotalErrors = %d, want 4", summary.TotalErrors)
	}
	// Attention Detail + Interpretation are the avoidable categories
	if summary.AvoidableErrors != 2 {
		t.Errorf("AvoidableErrors = %d, want 2", summary.AvoidableErrors)
	}
	if !almostEqual(summary.AvoidablePct, 50) {
		t.Errorf("AvoidablePct = %v, want 50", summary.AvoidablePct)
	}
	// Mean of per-session accuracies: (90 + 25) / 2, not question-weighted
	if !almostEqual(summary.AvgSessionAccuracy, 57.5) {
		t.Errorf("AvgSessionAccuracy = %v, want 57.5", summary.AvgSessionAccuracy)
	}
	if summary.TopSubject != "Math" {
		t.Errorf("TopSubject = %q, want Math", summary.TopSubject)
	}

	empty := DashboardSummary(nil, nil)
	if empty.TotalErrors != 0 || empty.AvoidablePct != 0 || empty.TopSubject != "" {
		t.Errorf("empty input = %+v, want zeros", empty)
	}
}

func TestMonthlyStats(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)

	errors := []models.ErrorLog{
		{Subject: "Math", ErrorType: models.ErrorContentGap, Date: "05-03-2024"},
		{Subject: "Math", ErrorType: models.ErrorFatigue, Date: "10-03-2024"},
		{Subject: "Physics", ErrorType: models.ErrorContentGap, Date: "15-03-2024"},
		{Subject: "Math", ErrorType: models.ErrorContentGap, Date: "20-02-2024"},
		{Subject: "Math", ErrorType: models.ErrorContentGap, Date: "01-01-2024"}, // older, ignored
		{Subject: "Math", ErrorType: models.ErrorContentGap, Date: "bad-date"},
	}

	stats := MonthlyStats(errors, now)
	if stats.CurrentMonthCount != 3 || stats.PreviousMonthCount != 1 {
		t.Errorf("counts = %d/%d, want 3/1", stats.CurrentMonthCount, stats.PreviousMonthCount)
	}
	// (3-1)/1 * 100
	if !almostEqual(stats.DeltaPct, 200) {
		t.Errorf("DeltaPct = %v, want 200", stats.DeltaPct)
	}
	if stats.TopSubject != "Math" {
		t.Errorf("TopSubject = %q, want Math", stats.TopSubject)
	}
	if stats.TopErrorType != string(models.ErrorContentGap) {
		t.Errorf("TopErrorType = %q, want Content Gap", stats.TopErrorType)
	}
}

func TestMonthlyStatsEmptyPreviousMonth(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)

	stats := MonthlyStats([]models.ErrorLog{
		{Subject: "Math", Date: "05-03-2024"},
	}, now)
	if !almostEqual(stats.DeltaPct, 100) {
		t.Errorf("DeltaPct with empty previous month = %v, want 100", stats.DeltaPct)
	}

	stats = MonthlyStats(nil, now)
	if stats.DeltaPct != 0 {
		t.Errorf("DeltaPct with no errors at all = %v, want 0", stats.DeltaPct)
	}
	if stats.TopSubject != models.NoData || stats.TopErrorType != models.NoData {
		t.Errorf("placeholders = %q/%q, want em-dashes", stats.TopSubject, stats.TopErrorType)
	}
}

func TestInsightFlagsFatigue(t *testing.T) {
	// 6 fatigue out of 12 recent: 50% share
	var errors []models.ErrorLog
	for i := 0; i < 6; i++ {
		errors = append(errors, models.ErrorLog{ErrorType: models.ErrorFatigue, Date: fmt.Sprintf("%02d-03-2024", i+1)})
	}
	for i := 0; i < 6; i++ {
		errors = append(errors, models.ErrorLog{ErrorType: models.ErrorContentGap, Date: fmt.Sprintf("%02d-03-2024", i+10)})
	}

	flags := InsightFlags(errors)
	if len(flags) != 1 {
		t.Fatalf("flags = %+v, want one fatigue warning", flags)
	}
	if flags[0].Kind != models.InsightFatigueWarning {
		t.Errorf("Kind = %q, want fatigue_warning", flags[0].Kind)
	}
	if flags[0].Count != 6 || !almostEqual(flags[0].Share, 50) {
		t.Errorf("flag = %+v, want count 6 share 50", flags[0])
	}
}

func TestInsightFlagsWindowLimit(t *testing.T) {
	// 6 fatigue errors exist overall, but only 4 fall inside the 20 most
	// recent: 4/20 = 20%, under the 25% bar.
	var errors []models.ErrorLog
	for i := 0; i < 4; i++ {
		errors = append(errors, models.ErrorLog{ErrorType: models.ErrorFatigue, Date: fmt.Sprintf("%02d-03-2024", 20+i)})
	}
	for i := 0; i < 16; i++ {
		errors = append(errors, models.ErrorLog{ErrorType: models.ErrorContentGap, Date: fmt.Sprintf("%02d-03-2024", 2+i)})
	}
	for i := 0; i < 2; i++ {
		errors = append(errors, models.ErrorLog{ErrorType: models.ErrorFatigue, Date: "01-01-2024"})
	}

	flags := InsightFlags(errors)
	if len(flags) != 0 {
		t.Errorf("flags = %+v, want none (old fatigue errors fall outside the window)", flags)
	}
}

func TestInsightFlagsRecurringTopic(t *testing.T) {
	var errors []models.ErrorLog
	for i := 0; i < 4; i++ {
		errors = append(errors, models.ErrorLog{Topic: "Quadratics", ErrorType: models.ErrorContentGap, Date: fmt.Sprintf("%02d-03-2024", i+1)})
	}
	errors = append(errors, models.ErrorLog{Topic: "Optics", ErrorType: models.ErrorContentGap, Date: "10-03-2024"})

	flags := InsightFlags(errors)
	if len(flags) != 1 {
		t.Fatalf("flags = %+v, want one recurring-topic flag", flags)
	}
	if flags[0].Kind != models.InsightRecurringTopic || flags[0].Topic != "Quadratics" || flags[0].Count != 4 {
		t.Errorf("flag = %+v, want Quadratics x4", flags[0])
	}
}

func TestInsightFlagsQuiet(t *testing.T) {
	// 3 occurrences is not yet recurring; 1 fatigue in 4 is 25%, not >25%
	errors := []models.ErrorLog{
		{Topic: "Optics", ErrorType: models.ErrorFatigue, Date: "01-03-2024"},
		{Topic: "Optics", ErrorType: models.ErrorContentGap, Date: "02-03-2024"},
		{Topic: "Optics", ErrorType: models.ErrorContentGap, Date: "03-03-2024"},
		{Topic: "Waves", ErrorType: models.ErrorContentGap, Date: "04-03-2024"},
	}

	flags := InsightFlags(errors)
	if len(flags) != 0 {
		t.Errorf("flags = %+v, want none at the thresholds", flags)
	}

	if flags := InsightFlags(nil); len(flags) != 0 {
		t.Errorf("no errors should give no flags, got %+v", flags)
	}

	// Undated errors carry no recency signal at all
	undated := []models.ErrorLog{
		{Topic: "Optics", ErrorType: models.ErrorFatigue},
		{Topic: "Optics", ErrorType: models.ErrorFatigue},
	}
	if flags := InsightFlags(undated); len(flags) != 0 {
		t.Errorf("undated errors should be excluded, got %+v", flags)
	}
}
