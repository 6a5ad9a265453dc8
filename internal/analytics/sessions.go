package analytics

import (
	"sort"

	"github.com/error-autopsy/backend/internal/models"
)

// CalculateSessionStatistics aggregates study sessions into one summary.
// Averages are weighted by question count, not averaged per session, so a
// 100-question session moves the needle more than a 5-question one.
// BestSubject is the highest per-subject accuracy; ImprovementNeeded names
// the worst subject only when its accuracy is below 60.
func CalculateSessionStatistics(sessions []models.StudySession) models.SessionStatistics {
	if len(sessions) == 0 {
		return models.SessionStatistics{}
	}

	var totalQuestions, totalCorrect int
	var totalMinutes float64
	for _, s := range sessions {
		totalQuestions += s.TotalQuestions
		totalCorrect += s.CorrectCount
		totalMinutes += s.DurationMinutes
	}

	stats := models.SessionStatistics{
		TotalSessions:       len(sessions),
		TotalQuestions:      totalQuestions,
		TotalCorrect:        totalCorrect,
		TotalStudyTimeHours: totalMinutes / 60,
	}
	if totalQuestions > 0 {
		stats.AvgAccuracy = float64(totalCorrect) / float64(totalQuestions) * 100
		stats.AvgPace = totalMinutes / float64(totalQuestions)
	}

	best, worst, worstAccuracy := subjectExtremes(sessions)
	stats.BestSubject = best
	if worstAccuracy < 60 {
		stats.ImprovementNeeded = worst
	}
	return stats
}

// subjectExtremes finds the best and worst subjects by weighted accuracy
// among subjects with at least one question. Ties resolve to the
// alphabetically first subject so output is stable.
func subjectExtremes(sessions []models.StudySession) (best, worst string, worstAccuracy float64) {
	type tally struct {
		questions int
		correct   int
	}
	bySubject := make(map[string]*tally)
	for _, s := range sessions {
		subject := models.FieldOrUnknown(s.Subject)
		t := bySubject[subject]
		if t == nil {
			t = &tally{}
			bySubject[subject] = t
		}
		t.questions += s.TotalQuestions
		t.correct += s.CorrectCount
	}

	subjects := make([]string, 0, len(bySubject))
	for subject, t := range bySubject {
		if t.questions > 0 {
			subjects = append(subjects, subject)
		}
	}
	if len(subjects) == 0 {
		return "", "", 0
	}
	sort.Strings(subjects)

	var bestAccuracy float64 = -1
	worstAccuracy = 101
	for _, subject := range subjects {
		t := bySubject[subject]
		accuracy := float64(t.correct) / float64(t.questions) * 100
		if accuracy > bestAccuracy {
			bestAccuracy = accuracy
			best = subject
		}
		if accuracy < worstAccuracy {
			worstAccuracy = accuracy
			worst = subject
		}
	}
	return best, worst, worstAccuracy
}

// SpeedAccuracyData turns sessions into pace/accuracy scatter points, one
// per session. Sessions without a positive pace carry no signal and are
// excluded rather than plotted at zero.
func SpeedAccuracyData(sessions []models.StudySession) []models.SpeedAccuracyPoint {
	points := make([]models.SpeedAccuracyPoint, 0, len(sessions))
	for _, s := range sessions {
		pace := s.Pace()
		if pace <= 0 {
			continue
		}
		points = append(points, models.SpeedAccuracyPoint{
			Pace:      pace,
			Accuracy:  s.Accuracy(),
			Subject:   s.Subject,
			ExamType:  s.ExamType,
			Date:      s.Date,
			Questions: s.TotalQuestions,
		})
	}
	return points
}

// PaceBySubject computes the weighted pace per subject (total minutes over
// total questions), sorted by subject name.
func PaceBySubject(sessions []models.StudySession) []models.SubjectPace {
	type tally struct {
		questions int
		minutes   float64
	}
	bySubject := make(map[string]*tally)
	for _, s := range sessions {
		subject := models.FieldOrUnknown(s.Subject)
		t := bySubject[subject]
		if t == nil {
			t = &tally{}
			bySubject[subject] = t
		}
		t.questions += s.TotalQuestions
		t.minutes += s.DurationMinutes
	}

	paces := make([]models.SubjectPace, 0, len(bySubject))
	for subject, t := range bySubject {
		if t.questions <= 0 {
			continue
		}
		paces = append(paces, models.SubjectPace{
			Subject:        subject,
			AvgPace:        t.minutes / float64(t.questions),
			TotalQuestions: t.questions,
		})
	}
	sort.Slice(paces, func(i, j int) bool {
		return paces[i].Subject < paces[j].Subject
	})
	return paces
}
