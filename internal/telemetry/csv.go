package telemetry

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/error-autopsy/backend/internal/models"
)

// ErrImportAborted is returned when a CSV file has more invalid rows than the
// configured limit. Nothing is inserted in that case.
var ErrImportAborted = errors.New("import aborted: too many invalid rows")

// Column alias tables for import header detection. Lookup is case-insensitive
// and the first alias present in the file wins. Portuguese spreadsheets are
// common enough to deserve first-class aliases.
var (
	errorAliases = map[string][]string{
		"subject":      {"subject", "materia", "matéria", "disciplina", "assunto"},
		"topic":        {"topic", "topico", "tópico", "tema", "assunto"},
		"error_type":   {"error_type", "type", "tipo", "error type", "tipo de erro", "category", "categoria"},
		"description":  {"description", "descrição", "descricao", "notes", "notas", "obs"},
		"difficulty":   {"difficulty", "dificuldade", "nivel", "nível", "level"},
		"exam_type":    {"exam_type", "exam type", "prova"},
		"date":         {"date", "data", "fecha", "when"},
		"session_id":   {"session_id"},
		"mock_exam_id": {"mock_exam_id"},
	}

	sessionAliases = map[string][]string{
		"subject":          {"subject", "materia", "matéria", "disciplina", "assunto"},
		"exam_type":        {"exam_type", "exam type", "prova"},
		"total_questions":  {"total_questions", "questions", "questoes", "questões", "total"},
		"correct_count":    {"correct_count", "correct", "acertos", "corretas"},
		"duration_minutes": {"duration_minutes", "duration", "duracao", "duração", "tempo", "minutes", "minutos"},
		"date":             {"date", "data", "fecha", "when"},
		"notes":            {"notes", "notas", "observacoes", "observações", "obs"},
	}

	examAliases = map[string][]string{
		"exam_name":          {"exam_name", "name", "nome", "simulado"},
		"exam_type":          {"exam_type", "exam type", "prova"},
		"total_score":        {"total_score", "score", "nota", "pontuacao", "pontuação"},
		"max_possible_score": {"max_possible_score", "max_score", "max", "maximo", "máximo", "nota maxima"},
		"date":               {"date", "data", "fecha", "when"},
		"notes":              {"notes", "notas", "observacoes", "observações", "obs"},
	}
)

// importDateLayouts are tried in order; day-first wins for ambiguous
// slash dates.
var importDateLayouts = []string{
	models.DateLayout,
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
}

// ── Export ──────────────────────────────────────────────

// ExportCSV writes every record of one kind as CSV. Internal columns
// (user_id, created_at) stay out of the file; dates are DD-MM-YYYY.
func (s *Service) ExportCSV(w io.Writer, userID int64, kind string) error {
	cw := csv.NewWriter(w)

	switch kind {
	case "errors":
		errorLogs, err := s.store.ListErrors(userID)
		if err != nil {
			return err
		}
		header := []string{"id", "subject", "topic", "error_type", "description",
			"difficulty", "exam_type", "date", "session_id", "mock_exam_id"}
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, e := range errorLogs {
			record := []string{e.ID, e.Subject, e.Topic, string(e.ErrorType), e.Description,
				string(e.Difficulty), e.ExamType, e.Date, deref(e.SessionID), deref(e.MockExamID)}
			if err := cw.Write(record); err != nil {
				return err
			}
		}

	case "sessions":
		sessions, err := s.store.ListSessions(userID)
		if err != nil {
			return err
		}
		header := []string{"id", "exam_type", "subject", "total_questions",
			"correct_count", "duration_minutes", "date", "notes"}
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, sess := range sessions {
			record := []string{sess.ID, sess.ExamType, sess.Subject,
				strconv.Itoa(sess.TotalQuestions), strconv.Itoa(sess.CorrectCount),
				formatFloat(sess.DurationMinutes), sess.Date, sess.Notes}
			if err := cw.Write(record); err != nil {
				return err
			}
		}

	case "exams":
		exams, err := s.store.ListMockExams(userID)
		if err != nil {
			return err
		}
		header := []string{"id", "exam_name", "exam_type", "total_score",
			"max_possible_score", "date", "breakdown", "notes"}
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, exam := range exams {
			breakdown, err := marshalBreakdown(exam.Breakdown)
			if err != nil {
				return err
			}
			record := []string{exam.ID, exam.ExamName, exam.ExamType,
				formatFloat(exam.TotalScore), formatFloat(exam.MaxPossibleScore),
				exam.Date, string(breakdown), exam.Notes}
			if err := cw.Write(record); err != nil {
				return err
			}
		}

	default:
		return fmt.Errorf("unknown export kind %q", kind)
	}

	cw.Flush()
	return cw.Error()
}

// ── Import ──────────────────────────────────────────────

// ImportCSV parses a CSV upload of one record kind, validates every row, and
// inserts the good ones in a single transaction. Rows that fail validation
// are skipped and reported; past the issue limit the whole file is rejected
// and ErrImportAborted returned alongside the partial result.
func (s *Service) ImportCSV(ctx context.Context, userID int64, kind string, r io.Reader) (*models.ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows found")
	}
	header, rows := rows[0], rows[1:]
	now := time.Now()

	switch kind {
	case "errors":
		return s.importErrors(ctx, userID, header, rows, now)
	case "sessions":
		return s.importSessions(ctx, userID, header, rows, now)
	case "exams":
		return s.importMockExams(ctx, userID, header, rows, now)
	}
	return nil, fmt.Errorf("unknown import kind %q", kind)
}

func (s *Service) importErrors(ctx context.Context, userID int64, header []string, rows [][]string, now time.Time) (*models.ImportResult, error) {
	cols := detectColumns(header, errorAliases)

	issues := []string{}
	var pending []models.ErrorLog
	for i, row := range rows {
		req := models.LogErrorRequest{
			Subject:     field(row, cols, "subject"),
			Topic:       field(row, cols, "topic"),
			ErrorType:   field(row, cols, "error_type"),
			Description: field(row, cols, "description"),
			Difficulty:  field(row, cols, "difficulty"),
			ExamType:    field(row, cols, "exam_type"),
			Date:        coerceDate(field(row, cols, "date"), now),
		}
		if v := field(row, cols, "session_id"); v != "" {
			req.SessionID = &v
		}
		if v := field(row, cols, "mock_exam_id"); v != "" {
			req.MockExamID = &v
		}
		if err := validateErrorRequest(&req, now); err != nil {
			issues = append(issues, fmt.Sprintf("error row %d: %v", i+1, err))
			continue
		}
		pending = append(pending, models.ErrorLog{
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
		})
	}

	if len(issues) > s.importMaxIssues {
		result := &models.ImportResult{Skipped: len(rows), Issues: truncateIssues(issues, s.importMaxIssues)}
		return result, ErrImportAborted
	}
	if err := s.store.ImportErrors(ctx, pending); err != nil {
		return nil, err
	}
	s.invalidateDashboards(ctx, userID)
	return &models.ImportResult{Imported: len(pending), Skipped: len(issues), Issues: issues}, nil
}

func (s *Service) importSessions(ctx context.Context, userID int64, header []string, rows [][]string, now time.Time) (*models.ImportResult, error) {
	cols := detectColumns(header, sessionAliases)

	issues := []string{}
	var pending []models.StudySession
	for i, row := range rows {
		req := models.LogSessionRequest{
			ExamType:        field(row, cols, "exam_type"),
			Subject:         field(row, cols, "subject"),
			TotalQuestions:  parseIntField(field(row, cols, "total_questions")),
			CorrectCount:    parseIntField(field(row, cols, "correct_count")),
			DurationMinutes: parseFloatField(field(row, cols, "duration_minutes")),
			Date:            coerceDate(field(row, cols, "date"), now),
			Notes:           field(row, cols, "notes"),
		}
		if err := validateSessionRequest(&req, now); err != nil {
			issues = append(issues, fmt.Sprintf("session row %d: %v", i+1, err))
			continue
		}
		pending = append(pending, models.StudySession{
			ID:              newID(),
			UserID:          userID,
			ExamType:        req.ExamType,
			Subject:         req.Subject,
			TotalQuestions:  req.TotalQuestions,
			CorrectCount:    req.CorrectCount,
			DurationMinutes: req.DurationMinutes,
			Date:            req.Date,
			Notes:           req.Notes,
		})
	}

	if len(issues) > s.importMaxIssues {
		result := &models.ImportResult{Skipped: len(rows), Issues: truncateIssues(issues, s.importMaxIssues)}
		return result, ErrImportAborted
	}
	if err := s.store.ImportSessions(ctx, pending); err != nil {
		return nil, err
	}
	s.invalidateDashboards(ctx, userID)
	return &models.ImportResult{Imported: len(pending), Skipped: len(issues), Issues: issues}, nil
}

func (s *Service) importMockExams(ctx context.Context, userID int64, header []string, rows [][]string, now time.Time) (*models.ImportResult, error) {
	cols := detectColumns(header, examAliases)
	_, hasName := cols["exam_name"]
	_, hasMax := cols["max_possible_score"]

	issues := []string{}
	var pending []models.MockExam
	for i, row := range rows {
		req := models.LogMockExamRequest{
			ExamName:         field(row, cols, "exam_name"),
			ExamType:         field(row, cols, "exam_type"),
			TotalScore:       parseFloatField(field(row, cols, "total_score")),
			MaxPossibleScore: parseFloatField(field(row, cols, "max_possible_score")),
			Date:             coerceDate(field(row, cols, "date"), now),
			Notes:            field(row, cols, "notes"),
		}
		// Files without these columns get the historical defaults instead
		// of a per-row issue.
		if !hasName {
			req.ExamName = "Untitled"
		}
		if !hasMax {
			req.MaxPossibleScore = 100
		}
		if err := validateMockExamRequest(&req, now); err != nil {
			issues = append(issues, fmt.Sprintf("exam row %d: %v", i+1, err))
			continue
		}
		pending = append(pending, models.MockExam{
			ID:               newID(),
			UserID:           userID,
			ExamName:         req.ExamName,
			ExamType:         req.ExamType,
			TotalScore:       req.TotalScore,
			MaxPossibleScore: req.MaxPossibleScore,
			Date:             req.Date,
			Notes:            req.Notes,
		})
	}

	if len(issues) > s.importMaxIssues {
		result := &models.ImportResult{Skipped: len(rows), Issues: truncateIssues(issues, s.importMaxIssues)}
		return result, ErrImportAborted
	}
	if err := s.store.ImportMockExams(ctx, pending); err != nil {
		return nil, err
	}
	s.invalidateDashboards(ctx, userID)
	return &models.ImportResult{Imported: len(pending), Skipped: len(issues), Issues: issues}, nil
}

// ── Helpers ─────────────────────────────────────────────

// detectColumns maps canonical field names to header positions using the
// alias table. Matching is case-insensitive on trimmed header cells.
func detectColumns(header []string, aliases map[string][]string) map[string]int {
	normalized := make(map[string]int, len(header))
	for i, col := range header {
		normalized[strings.ToLower(strings.TrimSpace(col))] = i
	}

	cols := make(map[string]int)
	for canonical, names := range aliases {
		for _, name := range names {
			if i, ok := normalized[name]; ok {
				cols[canonical] = i
				break
			}
		}
	}
	return cols
}

func field(row []string, cols map[string]int, key string) string {
	i, ok := cols[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// coerceDate accepts the layouts spreadsheets actually contain and falls
// back to today rather than rejecting the row.
func coerceDate(s string, now time.Time) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.Format(models.DateLayout)
	}
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(models.DateLayout)
		}
	}
	return now.Format(models.DateLayout)
}

func truncateIssues(issues []string, limit int) []string {
	if len(issues) <= limit {
		return issues
	}
	trimmed := make([]string, 0, limit+1)
	trimmed = append(trimmed, issues[:limit]...)
	return append(trimmed, fmt.Sprintf("...and %d more issues", len(issues)-limit))
}

func parseIntField(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseFloatField(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
