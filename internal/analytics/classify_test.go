package analytics

import (
	"testing"

	"github.com/error-autopsy/backend/internal/models"
)

func TestClassifyPace(t *testing.T) {
	tests := []struct {
		pace      float64
		benchmark float64
		want      models.PaceZone
	}{
		// benchmark 2.0: rushing below 1.0, optimal through 2.4
		{0.5, 2.0, models.PaceRushing},
		{0.99, 2.0, models.PaceRushing},
		{1.0, 2.0, models.PaceOptimal}, // lower bound is optimal
		{2.0, 2.0, models.PaceOptimal},
		{2.4, 2.0, models.PaceOptimal}, // upper bound is optimal
		{2.41, 2.0, models.PaceTooSlow},
		{10.0, 2.0, models.PaceTooSlow},
		// benchmark 1.5 (SAT-style)
		{0.7, 1.5, models.PaceRushing},
		{0.75, 1.5, models.PaceOptimal},
		{1.8, 1.5, models.PaceOptimal},
		{1.81, 1.5, models.PaceTooSlow},
		// degenerate benchmarks never divide or panic
		{1.0, 0, models.PaceTooSlow},
		{1.0, -3, models.PaceTooSlow},
		{0, 0, models.PaceTooSlow},
	}

	for _, tt := range tests {
		got := ClassifyPace(tt.pace, tt.benchmark)
		if got != tt.want {
			t.Errorf("ClassifyPace(%v, %v) = %q, want %q", tt.pace, tt.benchmark, got, tt.want)
		}
	}
}

func TestClassifyAccuracy(t *testing.T) {
	tests := []struct {
		pct  float64
		want models.AccuracyZone
	}{
		{100, models.AccuracyMastery},
		{80, models.AccuracyMastery},
		{79.9, models.AccuracyDeveloping},
		{60, models.AccuracyDeveloping},
		{59.9, models.AccuracyStruggling},
		{0, models.AccuracyStruggling},
	}

	for _, tt := range tests {
		got := ClassifyAccuracy(tt.pct)
		if got != tt.want {
			t.Errorf("ClassifyAccuracy(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestClassifyPerformanceZone(t *testing.T) {
	tests := []struct {
		pace     models.PaceZone
		accuracy float64
		want     string
	}{
		{models.PaceRushing, 59.9, models.ZoneRushingStruggling},
		{models.PaceRushing, 85, models.ZoneRushingAccurate},
		{models.PaceOptimal, 80, models.ZoneMastery},
		{models.PaceTooSlow, 90, models.ZoneSlowAccurate},
		// developing accuracy never escapes Needs Improvement
		{models.PaceRushing, 70, models.ZoneNeedsImprovement},
		{models.PaceOptimal, 70, models.ZoneNeedsImprovement},
		{models.PaceOptimal, 50, models.ZoneNeedsImprovement},
		{models.PaceTooSlow, 60, models.ZoneNeedsImprovement},
		{models.PaceTooSlow, 30, models.ZoneNeedsImprovement},
	}

	for _, tt := range tests {
		got := ClassifyPerformanceZone(tt.pace, tt.accuracy)
		if got != tt.want {
			t.Errorf("ClassifyPerformanceZone(%q, %v) = %q, want %q", tt.pace, tt.accuracy, got, tt.want)
		}
	}
}

func TestClassifyHeatmapIntensity(t *testing.T) {
	tests := []struct {
		questions int
		want      int
	}{
		{0, 0},
		{1, 1},
		{9, 1},
		{10, 2},
		{29, 2},
		{30, 3},
		{49, 3},
		{50, 4},
		{500, 4},
	}

	for _, tt := range tests {
		got := ClassifyHeatmapIntensity(tt.questions)
		if got != tt.want {
			t.Errorf("ClassifyHeatmapIntensity(%d) = %d, want %d", tt.questions, got, tt.want)
		}
	}
}
