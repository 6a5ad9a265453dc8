package analytics

import (
	"sort"

	"github.com/error-autopsy/backend/internal/models"
)

// sortByDate orders exams by parsed date ascending without mutating the
// input. Unparsable dates read as the zero time and sort first; ties keep
// input order.
func sortByDate(exams []models.MockExam) []models.MockExam {
	sorted := make([]models.MockExam, len(exams))
	copy(sorted, exams)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, _ := ParseDate(sorted[i].Date)
		dj, _ := ParseDate(sorted[j].Date)
		return di.Before(dj)
	})
	return sorted
}

// MockExamTrajectory orders exams chronologically and numbers attempts per
// exam type starting at 1. Improvement is the percentage delta against the
// immediately preceding entry, set only when that entry shares the exam
// type; across a type switch it stays nil.
func MockExamTrajectory(exams []models.MockExam) []models.TrajectoryPoint {
	sorted := sortByDate(exams)

	attempts := make(map[string]int)
	points := make([]models.TrajectoryPoint, 0, len(sorted))
	for i, exam := range sorted {
		attempts[exam.ExamType]++
		point := models.TrajectoryPoint{
			ExamName:      exam.ExamName,
			ExamType:      exam.ExamType,
			Date:          exam.Date,
			AttemptNumber: attempts[exam.ExamType],
			Percentage:    exam.ScorePercentage(),
		}
		if i > 0 && sorted[i-1].ExamType == exam.ExamType {
			improvement := point.Percentage - points[i-1].Percentage
			point.Improvement = &improvement
		}
		points = append(points, point)
	}
	return points
}

// CalculateMockExamStatistics summarizes exam percentages. The trend
// compares the latest exam to the mean of all the others with a ±5-point
// dead zone; fewer than two exams cannot trend and read "—".
func CalculateMockExamStatistics(exams []models.MockExam) models.MockExamStatistics {
	if len(exams) == 0 {
		return models.MockExamStatistics{Trend: models.TrendNone}
	}

	var sum float64
	best := exams[0].ScorePercentage()
	latestIdx := 0
	latestDate, _ := ParseDate(exams[0].Date)
	for i, exam := range exams {
		pct := exam.ScorePercentage()
		sum += pct
		if pct > best {
			best = pct
		}
		d, _ := ParseDate(exam.Date)
		if !d.Before(latestDate) {
			latestDate = d
			latestIdx = i
		}
	}

	stats := models.MockExamStatistics{
		TotalExams:  len(exams),
		AvgScore:    sum / float64(len(exams)),
		BestScore:   best,
		LatestScore: exams[latestIdx].ScorePercentage(),
		Trend:       models.TrendNone,
	}
	if len(exams) < 2 {
		return stats
	}

	var othersSum float64
	for i, exam := range exams {
		if i != latestIdx {
			othersSum += exam.ScorePercentage()
		}
	}
	othersMean := othersSum / float64(len(exams)-1)

	switch diff := stats.LatestScore - othersMean; {
	case diff > 5:
		stats.Trend = models.TrendImproving
	case diff < -5:
		stats.Trend = models.TrendDeclining
	default:
		stats.Trend = models.TrendStable
	}
	return stats
}

// ExtractSectionScores flattens the section breakdowns of every exam of
// the given type. Breakdown values that do not decode as section entries
// (the scalar extras) are skipped. Sections within an exam come out in
// key order.
func ExtractSectionScores(exams []models.MockExam, examType string) []models.SectionResult {
	results := make([]models.SectionResult, 0, len(exams))
	for _, exam := range exams {
		if exam.ExamType != examType || len(exam.Breakdown) == 0 {
			continue
		}

		keys := make([]string, 0, len(exam.Breakdown))
		for key := range exam.Breakdown {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			sec, ok := exam.Breakdown.Section(key)
			if !ok {
				continue
			}
			var pct float64
			if sec.Max > 0 {
				pct = sec.Score / sec.Max * 100
			}
			results = append(results, models.SectionResult{
				ExamName:   exam.ExamName,
				Date:       exam.Date,
				SectionKey: key,
				Label:      sec.Label,
				Subject:    sec.Subject,
				Score:      sec.Score,
				Max:        sec.Max,
				Percentage: pct,
			})
		}
	}
	return results
}

// SectionTrendData is ExtractSectionScores over chronologically sorted
// exams, for multi-line trend charts.
func SectionTrendData(exams []models.MockExam, examType string) []models.SectionResult {
	return ExtractSectionScores(sortByDate(exams), examType)
}

// ScalarExtraTrajectory collects one breakdown scalar (a TRI score, a
// scaled score) across exams of a type in chronological order. Exams
// without the scalar are skipped.
func ScalarExtraTrajectory(exams []models.MockExam, examType, key string) []models.ScalarPoint {
	points := make([]models.ScalarPoint, 0, len(exams))
	for _, exam := range sortByDate(exams) {
		if exam.ExamType != examType {
			continue
		}
		value, ok := exam.Breakdown.Scalar(key)
		if !ok {
			continue
		}
		points = append(points, models.ScalarPoint{
			ExamName: exam.ExamName,
			Date:     exam.Date,
			Value:    value,
		})
	}
	return points
}

// MockExamErrorSummary groups the errors belonging to one exam by subject.
// An explicit mock_exam_id link is authoritative. Errors with no link at
// all fall back to same-day matching; an error linked to a different exam
// is never claimed by the fallback.
func MockExamErrorSummary(errors []models.ErrorLog, examID, examDate string) map[string][]models.ErrorLog {
	bySubject := make(map[string][]models.ErrorLog)
	for _, e := range errors {
		linked := e.MockExamID != nil && *e.MockExamID != ""
		match := false
		switch {
		case linked:
			match = *e.MockExamID == examID
		case e.Date == examDate && examDate != "":
			match = true
		}
		if !match {
			continue
		}
		subject := models.FieldOrUnknown(e.Subject)
		bySubject[subject] = append(bySubject[subject], e)
	}
	return bySubject
}
