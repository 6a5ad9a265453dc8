package analytics

import (
	"time"

	"github.com/error-autopsy/backend/internal/models"
)

// heatmapDayKey is the bucket key for a calendar day, ISO-formatted so the
// frontend can index it directly.
const heatmapDayKey = "2006-01-02"

// ActivityHeatmap builds one entry per calendar day from now-days through
// today inclusive, accumulating question and study-time volume from
// sessions, error counts, and exams taken. Inactive days stay present with
// zeros so the calendar renders dense.
func ActivityHeatmap(sessions []models.StudySession, errors []models.ErrorLog, exams []models.MockExam, days int, now time.Time) []models.HeatmapDay {
	if days < 0 {
		days = 0
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -days)

	index := make(map[string]int, days+1)
	heatmap := make([]models.HeatmapDay, 0, days+1)
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(heatmapDayKey)
		index[key] = len(heatmap)
		heatmap = append(heatmap, models.HeatmapDay{Date: key})
	}

	dayOf := func(textDate string) (int, bool) {
		d, ok := ParseDate(textDate)
		if !ok {
			return 0, false
		}
		i, present := index[d.Format(heatmapDayKey)]
		return i, present
	}

	for _, s := range sessions {
		if i, ok := dayOf(s.Date); ok {
			heatmap[i].QuestionsAnswered += s.TotalQuestions
			heatmap[i].StudyTimeMinutes += s.DurationMinutes
		}
	}
	for _, e := range errors {
		if i, ok := dayOf(e.Date); ok {
			heatmap[i].ErrorsLogged++
		}
	}
	for _, exam := range exams {
		if i, ok := dayOf(exam.Date); ok {
			heatmap[i].ExamsTaken++
		}
	}

	for i := range heatmap {
		heatmap[i].Intensity = ClassifyHeatmapIntensity(heatmap[i].QuestionsAnswered)
	}
	return heatmap
}

func dayActive(d models.HeatmapDay) bool {
	return d.QuestionsAnswered > 0 || d.StudyTimeMinutes > 0 || d.ErrorsLogged > 0 || d.ExamsTaken > 0
}

// ComputeStreaks derives streak counters from a chronological heatmap
// slice whose last entry is today. The current streak may end yesterday:
// a day without activity yet does not break a streak until it is over.
func ComputeStreaks(heatmap []models.HeatmapDay) models.StreakSummary {
	var summary models.StreakSummary

	run := 0
	for _, d := range heatmap {
		if dayActive(d) {
			run++
			summary.ActiveDays++
			if run > summary.LongestStreak {
				summary.LongestStreak = run
			}
		} else {
			run = 0
		}
	}

	end := len(heatmap) - 1
	if end >= 0 && !dayActive(heatmap[end]) {
		end--
	}
	for i := end; i >= 0; i-- {
		if !dayActive(heatmap[i]) {
			break
		}
		summary.CurrentStreak++
	}
	return summary
}
