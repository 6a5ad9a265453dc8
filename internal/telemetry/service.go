package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/error-autopsy/backend/internal/analytics"
	"github.com/error-autopsy/backend/internal/cache"
	"github.com/error-autopsy/backend/internal/config"
	"github.com/error-autopsy/backend/internal/models"
)

type Service struct {
	store           *Store
	cache           *cache.Cache
	importMaxIssues int
}

func NewService(store *Store, c *cache.Cache) *Service {
	// Imports abort wholesale past this many bad rows.
	importMaxIssues := 5
	if v := os.Getenv("IMPORT_MAX_ISSUES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			importMaxIssues = n
		}
	}

	log.Printf("Telemetry: importMaxIssues=%d caching=%v", importMaxIssues, c != nil)

	return &Service{
		store:           store,
		cache:           c,
		importMaxIssues: importMaxIssues,
	}
}

// newID returns the first 8 hex characters of a fresh v4 UUID, the record ID
// format shared by all three record kinds.
func newID() string {
	return uuid.NewString()[:8]
}

// ── Error Logs ──────────────────────────────────────────

func (s *Service) LogError(ctx context.Context, userID int64, req models.LogErrorRequest) (*models.ErrorLog, error) {
	e := &models.ErrorLog{
		ID:          newID(),
		UserID:      userID,
		Subject:     req.Subject,
		Topic:       req.Topic,
		ErrorType:   models.ErrorType(req.ErrorType),
		Description: req.Description,
		Difficulty:  models.Difficulty(req.Difficulty),
		ExamType:    req.ExamType,
		Date:        req.Date,
		SessionID:   req.SessionID,
		MockExamID:  req.MockExamID,
	}
	if err := s.store.CreateError(e); err != nil {
		return nil, err
	}
	s.invalidateDashboards(ctx, userID)
	return e, nil
}

func (s *Service) UpdateError(ctx context.Context, userID int64, id string, req models.LogErrorRequest) (*models.ErrorLog, error) {
	e := &models.ErrorLog{
		ID:          id,
		UserID:      userID,
		Subject:     req.Subject,
		Topic:       req.Topic,
		ErrorType:   models.ErrorType(req.ErrorType),
		Description: req.Description,
		Difficulty:  models.Difficulty(req.Difficulty),
		ExamType:    req.ExamType,
		Date:        req.Date,
	}
	if err := s.store.UpdateError(userID, e); err != nil {
		return nil, err
	}
	s.invalidateDashboards(ctx, userID)
	return e, nil
}

func (s *Service) DeleteError(ctx context.Context, userID int64, id string) error {
	if err := s.store.DeleteError(userID, id); err != nil {
		return err
	}
	s.invalidateDashboards(ctx, userID)
	return nil
}

// ListErrors returns the user's logs newest-first, narrowed by the optional
// months window and the multi-criteria filter.
func (s *Service) ListErrors(userID int64, filter models.ErrorFilter, months *int) ([]models.ErrorLog, error) {
	errorLogs, err := s.store.ListErrors(userID)
	if err != nil {
		return nil, err
	}
	errorLogs = analytics.FilterByRange(errorLogs, months, time.Now())
	return analytics.ApplyFilters(errorLogs, filter), nil
}

// FilterOptions collects the distinct values the history page offers as
// filter dropdowns.
func (s *Service) FilterOptions(userID int64) (*models.FilterValues, error) {
	errorLogs, err := s.store.ListErrors(userID)
	if err != nil {
		return nil, err
	}
	return &models.FilterValues{
		Subjects:  analytics.UniqueValues(errorLogs, func(e models.ErrorLog) string { return e.Subject }),
		Topics:    analytics.UniqueValues(errorLogs, func(e models.ErrorLog) string { return e.Topic }),
		ExamTypes: analytics.UniqueValues(errorLogs, func(e models.ErrorLog) string { return e.ExamType }),
	}, nil
}

// ── Study Sessions ──────────────────────────────────────

func (s *Service) LogSession(ctx context.Context, userID int64, req models.LogSessionRequest) (*models.StudySession, error) {
	sess := &models.StudySession{
		ID:              newID(),
		UserID:          userID,
		ExamType:        req.ExamType,
		Subject:         req.Subject,
		TotalQuestions:  req.TotalQuestions,
		CorrectCount:    req.CorrectCount,
		DurationMinutes: req.DurationMinutes,
		Date:            req.Date,
		Notes:           req.Notes,
	}
	if err := s.store.CreateSession(sess); err != nil {
		return nil, err
	}
	s.invalidateDashboards(ctx, userID)
	return sess, nil
}

func (s *Service) DeleteSession(ctx context.Context, userID int64, id string) error {
	if err := s.store.DeleteSession(userID, id); err != nil {
		return err
	}
	s.invalidateDashboards(ctx, userID)
	return nil
}

func (s *Service) ListSessions(userID int64) ([]models.StudySession, error) {
	return s.store.ListSessions(userID)
}

// ── Mock Exams ──────────────────────────────────────────

func (s *Service) LogMockExam(ctx context.Context, userID int64, req models.LogMockExamRequest) (*models.MockExam, error) {
	breakdown, total, max, err := buildBreakdown(req)
	if err != nil {
		return nil, err
	}
	exam := &models.MockExam{
		ID:               newID(),
		UserID:           userID,
		ExamName:         req.ExamName,
		ExamType:         req.ExamType,
		TotalScore:       total,
		MaxPossibleScore: max,
		Date:             req.Date,
		Breakdown:        breakdown,
		Notes:            req.Notes,
	}
	if err := s.store.CreateMockExam(exam); err != nil {
		return nil, err
	}
	s.invalidateDashboards(ctx, userID)
	return exam, nil
}

func (s *Service) DeleteMockExam(ctx context.Context, userID int64, id string) error {
	if err := s.store.DeleteMockExam(userID, id); err != nil {
		return err
	}
	s.invalidateDashboards(ctx, userID)
	return nil
}

func (s *Service) ListMockExams(userID int64) ([]models.MockExam, error) {
	return s.store.ListMockExams(userID)
}

// invalidateDashboards drops the user's cached dashboard responses after a
// write. Cache failures are logged but never fail the write.
func (s *Service) invalidateDashboards(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, cache.UserPattern(userID)); err != nil {
		log.Printf("Telemetry: cache invalidation failed for user %d: %v", userID, err)
	}
}

// ── Request Validation ──────────────────────────────────

// validateErrorRequest normalizes an error-log payload in place: trims text,
// fills enum defaults, resolves the date. The analytics engine assumes these
// invariants hold for every stored record.
func validateErrorRequest(req *models.LogErrorRequest, now time.Time) error {
	req.Subject = strings.TrimSpace(req.Subject)
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if req.Topic == "" {
		return fmt.Errorf("topic is required")
	}

	if req.ErrorType == "" {
		req.ErrorType = string(models.DefaultErrorType)
	} else if !models.ValidErrorTypes[models.ErrorType(req.ErrorType)] {
		return fmt.Errorf("invalid error type %q", req.ErrorType)
	}
	if req.Difficulty == "" {
		req.Difficulty = string(models.DefaultDifficulty)
	} else if !models.ValidDifficulties[models.Difficulty(req.Difficulty)] {
		return fmt.Errorf("invalid difficulty %q", req.Difficulty)
	}
	if strings.TrimSpace(req.ExamType) == "" {
		req.ExamType = models.DefaultExamType
	}

	date, err := normalizeDate(req.Date, now)
	if err != nil {
		return err
	}
	req.Date = date
	req.Description = strings.TrimSpace(req.Description)
	req.SessionID = normalizeLink(req.SessionID)
	req.MockExamID = normalizeLink(req.MockExamID)
	return nil
}

func validateSessionRequest(req *models.LogSessionRequest, now time.Time) error {
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if req.TotalQuestions < 1 {
		return fmt.Errorf("total_questions must be at least 1")
	}
	if req.CorrectCount < 0 || req.CorrectCount > req.TotalQuestions {
		return fmt.Errorf("correct_count must be between 0 and total_questions")
	}
	if req.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive")
	}
	if strings.TrimSpace(req.ExamType) == "" {
		req.ExamType = models.DefaultExamType
	}

	date, err := normalizeDate(req.Date, now)
	if err != nil {
		return err
	}
	req.Date = date
	req.Notes = strings.TrimSpace(req.Notes)
	return nil
}

// validateMockExamRequest checks score bounds against the exam type's section
// table when section scores are supplied, and against the raw totals when not.
func validateMockExamRequest(req *models.LogMockExamRequest, now time.Time) error {
	req.ExamName = strings.TrimSpace(req.ExamName)
	if req.ExamName == "" {
		return fmt.Errorf("exam_name is required")
	}
	if strings.TrimSpace(req.ExamType) == "" {
		req.ExamType = models.DefaultExamType
	}

	sections := config.SectionsFor(req.ExamType)
	if len(sections) > 0 && len(req.SectionScores) > 0 {
		for _, sec := range sections {
			score := req.SectionScores[sec.Key]
			if score < sec.Min || score > sec.Max {
				return fmt.Errorf("%s score must be between %g and %g", sec.Label, sec.Min, sec.Max)
			}
		}
	} else {
		if req.MaxPossibleScore <= 0 {
			return fmt.Errorf("max_possible_score must be positive")
		}
		if req.TotalScore < 0 || req.TotalScore > req.MaxPossibleScore {
			return fmt.Errorf("total_score must be between 0 and max_possible_score")
		}
	}

	if extra, ok := config.ScalarExtraFor(req.ExamType); ok {
		if v, present := req.Extras[extra.Key]; present && v > 0 {
			if v < extra.Min || v > extra.Max {
				return fmt.Errorf("%s must be between %g and %g", extra.Label, extra.Min, extra.Max)
			}
		}
	}

	date, err := normalizeDate(req.Date, now)
	if err != nil {
		return err
	}
	req.Date = date
	req.Notes = strings.TrimSpace(req.Notes)
	return nil
}

// buildBreakdown assembles the stored breakdown document for a structured
// exam and recomputes the totals from its section scores. Unstructured exams
// keep the submitted totals and store no breakdown. Scalar extras are stored
// as bare numbers next to the section objects, and only when positive.
func buildBreakdown(req models.LogMockExamRequest) (models.Breakdown, float64, float64, error) {
	sections := config.SectionsFor(req.ExamType)
	total, max := req.TotalScore, req.MaxPossibleScore

	var breakdown models.Breakdown
	if len(sections) > 0 && len(req.SectionScores) > 0 {
		breakdown = models.Breakdown{}
		total, max = 0, 0
		for _, sec := range sections {
			score := req.SectionScores[sec.Key]
			raw, err := json.Marshal(models.BreakdownSection{
				Label:   sec.Label,
				Score:   score,
				Max:     sec.Max,
				Subject: sec.Subject,
			})
			if err != nil {
				return nil, 0, 0, fmt.Errorf("marshal section %s: %w", sec.Key, err)
			}
			breakdown[sec.Key] = raw
			total += score
			max += sec.Max
		}
	}

	if extra, ok := config.ScalarExtraFor(req.ExamType); ok {
		if v, present := req.Extras[extra.Key]; present && v > 0 {
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("marshal %s: %w", extra.Key, err)
			}
			if breakdown == nil {
				breakdown = models.Breakdown{}
			}
			breakdown[extra.Key] = raw
		}
	}

	return breakdown, total, max, nil
}

// normalizeDate resolves a submitted date to the canonical DD-MM-YYYY layout.
// Blank means today; ISO input is accepted and converted.
func normalizeDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.Format(models.DateLayout), nil
	}
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t.Format(models.DateLayout), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format(models.DateLayout), nil
	}
	return "", fmt.Errorf("invalid date %q, want DD-MM-YYYY", s)
}

// normalizeLink collapses blank link IDs to nil so unlinked records store a
// proper NULL.
func normalizeLink(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
