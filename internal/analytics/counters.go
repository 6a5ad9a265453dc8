package analytics

import (
	"sort"
	"time"

	"github.com/error-autopsy/backend/internal/models"
)

// CountByField tallies records by an extracted field value. Values are
// trimmed and blanks grouped under "Unknown". Always returns a non-nil map.
func CountByField[T any](records []T, key func(T) string) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[models.FieldOrUnknown(key(rec))]++
	}
	return counts
}

// CountByMonth tallies records by YYYY-MM month key, skipping records
// whose date cannot be parsed.
func CountByMonth[T Dated](records []T) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		d, ok := ParseDate(rec.EntryDate())
		if !ok {
			continue
		}
		counts[MonthKey(d)]++
	}
	return counts
}

// MonthSeries buckets records into calendar months and returns them in
// chronological order with display labels, ready for charting.
func MonthSeries[T Dated](records []T) []models.MonthCount {
	byMonth := make(map[time.Time]int)
	for _, rec := range records {
		d, ok := ParseDate(rec.EntryDate())
		if !ok {
			continue
		}
		first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
		byMonth[first]++
	}

	series := make([]models.MonthCount, 0, len(byMonth))
	for month, count := range byMonth {
		series = append(series, models.MonthCount{
			Date:  month,
			Key:   MonthKey(month),
			Label: MonthLabel(month),
			Count: count,
		})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}

// TopCounts orders a count map by count descending, name ascending on ties,
// and truncates to limit. A non-positive limit returns the full ordering.
func TopCounts(counts map[string]int, limit int) []models.FieldCount {
	ranked := make([]models.FieldCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, models.FieldCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// CountDifficulties tallies errors per difficulty in fixed Easy/Medium/Hard
// display order. All three levels are always present, zero counts included.
func CountDifficulties(errors []models.ErrorLog) []models.FieldCount {
	byLevel := make(map[models.Difficulty]int)
	for _, e := range errors {
		byLevel[e.Difficulty]++
	}

	levels := []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}
	counts := make([]models.FieldCount, 0, len(levels))
	for _, level := range levels {
		counts = append(counts, models.FieldCount{Name: string(level), Count: byLevel[level]})
	}
	return counts
}
