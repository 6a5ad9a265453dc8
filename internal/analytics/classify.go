package analytics

import "github.com/error-autopsy/backend/internal/models"

// ClassifyPace buckets a pace (minutes per question) against an exam-type
// benchmark. Both threshold boundaries resolve to Optimal. A non-positive
// benchmark means the target is meaningless, so everything reads Too Slow.
func ClassifyPace(pace, benchmark float64) models.PaceZone {
	if benchmark <= 0 {
		return models.PaceTooSlow
	}
	if pace < benchmark*0.5 {
		return models.PaceRushing
	}
	if pace <= benchmark*1.2 {
		return models.PaceOptimal
	}
	return models.PaceTooSlow
}

// ClassifyAccuracy buckets an accuracy percentage.
//
// >= 80: Mastery
// 60-79: Developing
// < 60:  Struggling
func ClassifyAccuracy(pct float64) models.AccuracyZone {
	if pct >= 80 {
		return models.AccuracyMastery
	}
	if pct >= 60 {
		return models.AccuracyDeveloping
	}
	return models.AccuracyStruggling
}

// ClassifyPerformanceZone combines a pace zone and an accuracy percentage
// into one diagnostic label. Developing accuracy lands in Needs Improvement
// regardless of pace.
func ClassifyPerformanceZone(paceZone models.PaceZone, accuracy float64) string {
	switch {
	case paceZone == models.PaceRushing && accuracy < 60:
		return models.ZoneRushingStruggling
	case paceZone == models.PaceRushing && accuracy >= 80:
		return models.ZoneRushingAccurate
	case paceZone == models.PaceOptimal && accuracy >= 80:
		return models.ZoneMastery
	case paceZone == models.PaceTooSlow && accuracy >= 80:
		return models.ZoneSlowAccurate
	default:
		return models.ZoneNeedsImprovement
	}
}

// ClassifyHeatmapIntensity buckets a day's question volume into the 0-4
// shade used by the activity calendar.
func ClassifyHeatmapIntensity(questions int) int {
	switch {
	case questions <= 0:
		return 0
	case questions < 10:
		return 1
	case questions < 30:
		return 2
	case questions < 50:
		return 3
	default:
		return 4
	}
}
