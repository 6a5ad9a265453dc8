package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/error-autopsy/backend/internal/models"
)

// DashboardSummary condenses the headline numbers: error volume, how much
// of it was avoidable, mean session accuracy, and the subject producing
// the most errors.
func DashboardSummary(errors []models.ErrorLog, sessions []models.StudySession) models.DashboardSummary {
	summary := models.DashboardSummary{TotalErrors: len(errors)}

	for _, e := range errors {
		if models.AvoidableErrorTypes[e.ErrorType] {
			summary.AvoidableErrors++
		}
	}
	if summary.TotalErrors > 0 {
		summary.AvoidablePct = float64(summary.AvoidableErrors) / float64(summary.TotalErrors) * 100
		top := TopCounts(CountByField(errors, func(e models.ErrorLog) string { return e.Subject }), 1)
		summary.TopSubject = top[0].Name
	}

	if len(sessions) > 0 {
		var sum float64
		for _, s := range sessions {
			sum += s.Accuracy()
		}
		summary.AvgSessionAccuracy = sum / float64(len(sessions))
	}
	return summary
}

// MonthlyStats compares this calendar month's error volume against the
// previous month's. A previous month with no errors reads as +100% when
// anything was logged this month, 0% otherwise. Top subject and top error
// type cover the current month only and fall back to an em-dash.
func MonthlyStats(errors []models.ErrorLog, now time.Time) models.MonthlyStats {
	current, previous := CurrentAndPreviousMonth(now)

	var currentErrors []models.ErrorLog
	stats := models.MonthlyStats{TopSubject: models.NoData, TopErrorType: models.NoData}
	for _, e := range errors {
		d, ok := ParseDate(e.Date)
		if !ok {
			continue
		}
		switch {
		case d.Year() == current.Year() && d.Month() == current.Month():
			stats.CurrentMonthCount++
			currentErrors = append(currentErrors, e)
		case d.Year() == previous.Year() && d.Month() == previous.Month():
			stats.PreviousMonthCount++
		}
	}

	if stats.PreviousMonthCount == 0 {
		if stats.CurrentMonthCount > 0 {
			stats.DeltaPct = 100.0
		}
	} else {
		stats.DeltaPct = float64(stats.CurrentMonthCount-stats.PreviousMonthCount) / float64(stats.PreviousMonthCount) * 100
	}

	if len(currentErrors) > 0 {
		topSubject := TopCounts(CountByField(currentErrors, func(e models.ErrorLog) string { return e.Subject }), 1)
		stats.TopSubject = topSubject[0].Name
		topType := TopCounts(CountByField(currentErrors, func(e models.ErrorLog) string { return string(e.ErrorType) }), 1)
		stats.TopErrorType = topType[0].Name
	}
	return stats
}

// recentErrors returns up to limit errors ordered newest first. Undated
// errors carry no recency signal and are excluded.
func recentErrors(errors []models.ErrorLog, limit int) []models.ErrorLog {
	type datedError struct {
		err  models.ErrorLog
		date int64
	}
	dated := make([]datedError, 0, len(errors))
	for _, e := range errors {
		d, ok := ParseDate(e.Date)
		if !ok {
			continue
		}
		dated = append(dated, datedError{err: e, date: d.Unix()})
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].date > dated[j].date
	})

	if len(dated) > limit {
		dated = dated[:limit]
	}
	recent := make([]models.ErrorLog, len(dated))
	for i, de := range dated {
		recent[i] = de.err
	}
	return recent
}

const (
	recentWindow      = 20
	fatigueShareLimit = 25.0
	recurringMinCount = 3
)

// InsightFlags scans the most recent errors for actionable patterns and
// returns typed flags with their numeric evidence. No prose is generated
// here; wording belongs to whoever renders the flag.
func InsightFlags(errors []models.ErrorLog) []models.InsightFlag {
	flags := []models.InsightFlag{}

	recent := recentErrors(errors, recentWindow)
	if len(recent) == 0 {
		return flags
	}

	fatigue := 0
	for _, e := range recent {
		if e.ErrorType == models.ErrorFatigue {
			fatigue++
		}
	}
	share := float64(fatigue) / float64(len(recent)) * 100
	if share > fatigueShareLimit {
		flags = append(flags, models.InsightFlag{
			Kind:  models.InsightFatigueWarning,
			Count: fatigue,
			Share: share,
		})
	}

	topicCounts := make(map[string]int)
	for _, e := range recent {
		topic := strings.TrimSpace(e.Topic)
		if topic != "" {
			topicCounts[topic]++
		}
	}
	if len(topicCounts) > 0 {
		top := TopCounts(topicCounts, 1)[0]
		if top.Count > recurringMinCount {
			flags = append(flags, models.InsightFlag{
				Kind:  models.InsightRecurringTopic,
				Topic: top.Name,
				Count: top.Count,
			})
		}
	}
	return flags
}
