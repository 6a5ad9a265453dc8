// Package dashboard is the read side of the analytics API: it feeds stored
// records through the aggregation engine and shapes the chart-ready
// responses, with optional Redis caching in front of the heavier views.
package dashboard

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/error-autopsy/backend/internal/analytics"
	"github.com/error-autopsy/backend/internal/cache"
	"github.com/error-autopsy/backend/internal/config"
	"github.com/error-autopsy/backend/internal/models"
)

// RecordSource supplies the raw records the dashboard aggregates.
// *telemetry.Store satisfies it.
type RecordSource interface {
	ListErrors(userID int64) ([]models.ErrorLog, error)
	ListSessions(userID int64) ([]models.StudySession, error)
	ListMockExams(userID int64) ([]models.MockExam, error)
	GetMockExam(userID int64, id string) (*models.MockExam, error)
}

type Service struct {
	source   RecordSource
	cache    *cache.Cache
	cacheTTL time.Duration
}

func NewService(source RecordSource, c *cache.Cache) *Service {
	// Summary and heatmap responses are cached for this long.
	cacheTTL := 5 * time.Minute
	if v := os.Getenv("DASHBOARD_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cacheTTL = time.Duration(n) * time.Second
		}
	}

	log.Printf("Dashboard: caching=%v ttl=%s", c != nil, cacheTTL)

	return &Service{source: source, cache: c, cacheTTL: cacheTTL}
}

// Summary bundles the headline cards, the calendar-month comparison, and the
// insight flags. The months window narrows the cards and the insight inputs;
// the month-over-month comparison always sees the full history so its
// previous-month leg is not emptied by the window.
func (s *Service) Summary(ctx context.Context, userID int64, months *int) (*models.SummaryResponse, error) {
	key := cache.DashboardKey("summary", userID, windowKey(months))
	var cached models.SummaryResponse
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	errorLogs, err := s.source.ListErrors(userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.source.ListSessions(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	windowedErrors := analytics.FilterByRange(errorLogs, months, now)
	windowedSessions := analytics.FilterByRange(sessions, months, now)

	resp := &models.SummaryResponse{
		Summary:  analytics.DashboardSummary(windowedErrors, windowedSessions),
		Monthly:  analytics.MonthlyStats(errorLogs, now),
		Insights: analytics.InsightFlags(windowedErrors),
	}
	s.cacheSet(ctx, key, resp)
	return resp, nil
}

func (s *Service) Distributions(userID int64, months *int, examType string) (*models.DistributionsResponse, error) {
	errorLogs, err := s.source.ListErrors(userID)
	if err != nil {
		return nil, err
	}
	errorLogs = analytics.FilterByRange(errorLogs, months, time.Now())
	if examType != "" {
		errorLogs = analytics.ApplyFilters(errorLogs, models.ErrorFilter{ExamTypes: []string{examType}})
	}

	bySubject := analytics.CountByField(errorLogs, func(e models.ErrorLog) string { return e.Subject })
	byTopic := analytics.CountByField(errorLogs, func(e models.ErrorLog) string { return e.Topic })

	return &models.DistributionsResponse{
		ByErrorType:     analytics.CountByField(errorLogs, func(e models.ErrorLog) string { return string(e.ErrorType) }),
		BySubject:       bySubject,
		ByDifficulty:    analytics.CountDifficulties(errorLogs),
		TopTopics:       analytics.TopCounts(byTopic, 10),
		WeakestSubjects: analytics.TopCounts(bySubject, 5),
	}, nil
}

func (s *Service) Timeline(userID int64, months *int) ([]models.MonthCount, error) {
	errorLogs, err := s.source.ListErrors(userID)
	if err != nil {
		return nil, err
	}
	errorLogs = analytics.FilterByRange(errorLogs, months, time.Now())
	return analytics.MonthSeries(errorLogs), nil
}

// Sessions computes the session statistics plus the speed/accuracy scatter.
// Each point is classified against its own exam type's pace benchmark.
func (s *Service) Sessions(userID int64, months *int) (*models.SessionDashboardResponse, error) {
	sessions, err := s.source.ListSessions(userID)
	if err != nil {
		return nil, err
	}
	sessions = analytics.FilterByRange(sessions, months, time.Now())

	points := analytics.SpeedAccuracyData(sessions)
	for i := range points {
		benchmark := config.PaceBenchmark(points[i].ExamType)
		points[i].PaceZone = analytics.ClassifyPace(points[i].Pace, benchmark)
		points[i].AccuracyZone = analytics.ClassifyAccuracy(points[i].Accuracy)
		points[i].PerformanceZone = analytics.ClassifyPerformanceZone(points[i].PaceZone, points[i].Accuracy)
	}

	return &models.SessionDashboardResponse{
		Statistics:    analytics.CalculateSessionStatistics(sessions),
		Points:        points,
		PaceBySubject: analytics.PaceBySubject(sessions),
	}, nil
}

// Heatmap builds the daily activity calendar over all three record kinds.
func (s *Service) Heatmap(ctx context.Context, userID int64, days int) (*models.HeatmapResponse, error) {
	key := cache.DashboardKey("heatmap", userID, strconv.Itoa(days))
	var cached models.HeatmapResponse
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	errorLogs, err := s.source.ListErrors(userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.source.ListSessions(userID)
	if err != nil {
		return nil, err
	}
	exams, err := s.source.ListMockExams(userID)
	if err != nil {
		return nil, err
	}

	heatmap := analytics.ActivityHeatmap(sessions, errorLogs, exams, days, time.Now())
	resp := &models.HeatmapResponse{
		Days:    heatmap,
		Streaks: analytics.ComputeStreaks(heatmap),
	}
	s.cacheSet(ctx, key, resp)
	return resp, nil
}

func (s *Service) Exams(userID int64, examType string) (*models.ExamDashboardResponse, error) {
	exams, err := s.source.ListMockExams(userID)
	if err != nil {
		return nil, err
	}
	exams = filterExamsByType(exams, examType)

	return &models.ExamDashboardResponse{
		Statistics: analytics.CalculateMockExamStatistics(exams),
		Trajectory: analytics.MockExamTrajectory(exams),
	}, nil
}

// ExamSections flattens section scores for one exam type, with the
// chronological trend and the type's scalar-extra trajectory when one is
// configured.
func (s *Service) ExamSections(userID int64, examType string) (*models.SectionAnalysisResponse, error) {
	exams, err := s.source.ListMockExams(userID)
	if err != nil {
		return nil, err
	}

	resp := &models.SectionAnalysisResponse{
		Sections: analytics.ExtractSectionScores(exams, examType),
		Trend:    analytics.SectionTrendData(exams, examType),
	}
	if extra, ok := config.ScalarExtraFor(examType); ok {
		resp.ScalarKey = extra.Key
		resp.ScalarTrend = analytics.ScalarExtraTrajectory(exams, examType, extra.Key)
	}
	return resp, nil
}

// ExamErrors groups the caller's error logs attributable to one mock exam.
// Returns nil when the exam does not exist or belongs to someone else.
func (s *Service) ExamErrors(userID int64, examID string) (*models.ExamErrorSummaryResponse, error) {
	exam, err := s.source.GetMockExam(userID, examID)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, nil
	}

	errorLogs, err := s.source.ListErrors(userID)
	if err != nil {
		return nil, err
	}

	bySubject := analytics.MockExamErrorSummary(errorLogs, exam.ID, exam.Date)
	total := 0
	for _, group := range bySubject {
		total += len(group)
	}

	return &models.ExamErrorSummaryResponse{
		ExamID:    exam.ID,
		BySubject: bySubject,
		Total:     total,
	}, nil
}

func (s *Service) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err != nil && err != cache.ErrCacheMiss {
		log.Printf("Dashboard: cache get %s: %v", key, err)
	}
	return err == nil
}

func (s *Service) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		log.Printf("Dashboard: cache set %s: %v", key, err)
	}
}

func filterExamsByType(exams []models.MockExam, examType string) []models.MockExam {
	if examType == "" {
		return exams
	}
	filtered := make([]models.MockExam, 0, len(exams))
	for _, exam := range exams {
		if exam.ExamType == examType {
			filtered = append(filtered, exam)
		}
	}
	return filtered
}

// windowKey flattens the months parameter into a cache key segment.
func windowKey(months *int) string {
	if months == nil {
		return "all"
	}
	return strconv.Itoa(*months)
}
