package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/error-autopsy/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Error Logs ──────────────────────────────────────────

func (s *Store) CreateError(e *models.ErrorLog) error {
	entryDate, err := parseEntryDate(e.Date)
	if err != nil {
		return err
	}
	err = s.db.QueryRow(
		`INSERT INTO error_logs
		 (id, user_id, subject, topic, error_type, description, difficulty, exam_type, entry_date, session_id, mock_exam_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`,
		e.ID, e.UserID, e.Subject, e.Topic, e.ErrorType, nullString(e.Description),
		e.Difficulty, e.ExamType, entryDate, e.SessionID, e.MockExamID,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create error log: %w", err)
	}
	return nil
}

// UpdateError rewrites the editable fields of one log. Links to sessions and
// mock exams are set at creation and survive edits untouched.
func (s *Store) UpdateError(userID int64, e *models.ErrorLog) error {
	entryDate, err := parseEntryDate(e.Date)
	if err != nil {
		return err
	}
	err = s.db.QueryRow(
		`UPDATE error_logs
		 SET subject = $1, topic = $2, error_type = $3, description = $4,
		     difficulty = $5, exam_type = $6, entry_date = $7
		 WHERE id = $8 AND user_id = $9
		 RETURNING created_at, session_id, mock_exam_id`,
		e.Subject, e.Topic, e.ErrorType, nullString(e.Description),
		e.Difficulty, e.ExamType, entryDate, e.ID, userID,
	).Scan(&e.CreatedAt, &e.SessionID, &e.MockExamID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("error log not found")
	}
	if err != nil {
		return fmt.Errorf("update error log: %w", err)
	}
	return nil
}

func (s *Store) DeleteError(userID int64, id string) error {
	result, err := s.db.Exec(
		`DELETE FROM error_logs WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete error log: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("error log not found")
	}
	return nil
}

func (s *Store) ListErrors(userID int64) ([]models.ErrorLog, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, subject, topic, error_type, COALESCE(description, ''),
		        difficulty, exam_type, entry_date, session_id, mock_exam_id, created_at
		 FROM error_logs WHERE user_id = $1
		 ORDER BY entry_date DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list error logs: %w", err)
	}
	defer rows.Close()

	var errorLogs []models.ErrorLog
	for rows.Next() {
		var e models.ErrorLog
		var entryDate time.Time
		if err := rows.Scan(&e.ID, &e.UserID, &e.Subject, &e.Topic, &e.ErrorType,
			&e.Description, &e.Difficulty, &e.ExamType, &entryDate,
			&e.SessionID, &e.MockExamID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error log: %w", err)
		}
		e.Date = entryDate.Format(models.DateLayout)
		errorLogs = append(errorLogs, e)
	}
	return errorLogs, rows.Err()
}

// ── Study Sessions ──────────────────────────────────────

func (s *Store) CreateSession(sess *models.StudySession) error {
	sessionDate, err := parseEntryDate(sess.Date)
	if err != nil {
		return err
	}
	err = s.db.QueryRow(
		`INSERT INTO study_sessions
		 (id, user_id, exam_type, subject, total_questions, correct_count, duration_minutes, session_date, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		sess.ID, sess.UserID, sess.ExamType, sess.Subject, sess.TotalQuestions,
		sess.CorrectCount, sess.DurationMinutes, sessionDate, nullString(sess.Notes),
	).Scan(&sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *Store) DeleteSession(userID int64, id string) error {
	result, err := s.db.Exec(
		`DELETE FROM study_sessions WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("session not found")
	}
	return nil
}

func (s *Store) ListSessions(userID int64) ([]models.StudySession, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, exam_type, subject, total_questions, correct_count,
		        duration_minutes, session_date, COALESCE(notes, ''), created_at
		 FROM study_sessions WHERE user_id = $1
		 ORDER BY session_date DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.StudySession
	for rows.Next() {
		var sess models.StudySession
		var sessionDate time.Time
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.ExamType, &sess.Subject,
			&sess.TotalQuestions, &sess.CorrectCount, &sess.DurationMinutes,
			&sessionDate, &sess.Notes, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.Date = sessionDate.Format(models.DateLayout)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// ── Mock Exams ──────────────────────────────────────────

func (s *Store) CreateMockExam(exam *models.MockExam) error {
	examDate, err := parseEntryDate(exam.Date)
	if err != nil {
		return err
	}
	breakdown, err := marshalBreakdown(exam.Breakdown)
	if err != nil {
		return err
	}
	err = s.db.QueryRow(
		`INSERT INTO mock_exams
		 (id, user_id, exam_name, exam_type, total_score, max_possible_score, exam_date, breakdown, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		exam.ID, exam.UserID, exam.ExamName, exam.ExamType, exam.TotalScore,
		exam.MaxPossibleScore, examDate, breakdown, nullString(exam.Notes),
	).Scan(&exam.CreatedAt)
	if err != nil {
		return fmt.Errorf("create mock exam: %w", err)
	}
	return nil
}

func (s *Store) DeleteMockExam(userID int64, id string) error {
	result, err := s.db.Exec(
		`DELETE FROM mock_exams WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete mock exam: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("mock exam not found")
	}
	return nil
}

func (s *Store) GetMockExam(userID int64, id string) (*models.MockExam, error) {
	var exam models.MockExam
	var examDate time.Time
	var breakdown []byte
	err := s.db.QueryRow(
		`SELECT id, user_id, exam_name, exam_type, total_score, max_possible_score,
		        exam_date, breakdown, COALESCE(notes, ''), created_at
		 FROM mock_exams WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&exam.ID, &exam.UserID, &exam.ExamName, &exam.ExamType, &exam.TotalScore,
		&exam.MaxPossibleScore, &examDate, &breakdown, &exam.Notes, &exam.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mock exam: %w", err)
	}
	exam.Date = examDate.Format(models.DateLayout)
	if exam.Breakdown, err = unmarshalBreakdown(breakdown); err != nil {
		return nil, err
	}
	return &exam, nil
}

func (s *Store) ListMockExams(userID int64) ([]models.MockExam, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, exam_name, exam_type, total_score, max_possible_score,
		        exam_date, breakdown, COALESCE(notes, ''), created_at
		 FROM mock_exams WHERE user_id = $1
		 ORDER BY exam_date DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list mock exams: %w", err)
	}
	defer rows.Close()

	var exams []models.MockExam
	for rows.Next() {
		var exam models.MockExam
		var examDate time.Time
		var breakdown []byte
		if err := rows.Scan(&exam.ID, &exam.UserID, &exam.ExamName, &exam.ExamType,
			&exam.TotalScore, &exam.MaxPossibleScore, &examDate, &breakdown,
			&exam.Notes, &exam.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mock exam: %w", err)
		}
		exam.Date = examDate.Format(models.DateLayout)
		if exam.Breakdown, err = unmarshalBreakdown(breakdown); err != nil {
			return nil, err
		}
		exams = append(exams, exam)
	}
	return exams, rows.Err()
}

// ── Bulk Import ─────────────────────────────────────────

// ImportErrors inserts a batch of error logs in one transaction so a
// spreadsheet import is all-or-nothing.
func (s *Store) ImportErrors(ctx context.Context, errorLogs []models.ErrorLog) error {
	if len(errorLogs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO error_logs
		 (id, user_id, subject, topic, error_type, description, difficulty, exam_type, entry_date, session_id, mock_exam_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)
	if err != nil {
		return fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	for _, e := range errorLogs {
		entryDate, err := parseEntryDate(e.Date)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.UserID, e.Subject, e.Topic, e.ErrorType, nullString(e.Description),
			e.Difficulty, e.ExamType, entryDate, e.SessionID, e.MockExamID); err != nil {
			return fmt.Errorf("import error log %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// ImportSessions is the session counterpart of ImportErrors.
func (s *Store) ImportSessions(ctx context.Context, sessions []models.StudySession) error {
	if len(sessions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO study_sessions
		 (id, user_id, exam_type, subject, total_questions, correct_count, duration_minutes, session_date, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	for _, sess := range sessions {
		sessionDate, err := parseEntryDate(sess.Date)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			sess.ID, sess.UserID, sess.ExamType, sess.Subject, sess.TotalQuestions,
			sess.CorrectCount, sess.DurationMinutes, sessionDate, nullString(sess.Notes)); err != nil {
			return fmt.Errorf("import session %s: %w", sess.ID, err)
		}
	}

	return tx.Commit()
}

// ImportMockExams is the mock-exam counterpart of ImportErrors. Imported
// exams carry no breakdown; section detail only enters through the API.
func (s *Store) ImportMockExams(ctx context.Context, exams []models.MockExam) error {
	if len(exams) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO mock_exams
		 (id, user_id, exam_name, exam_type, total_score, max_possible_score, exam_date, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	for _, exam := range exams {
		examDate, err := parseEntryDate(exam.Date)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			exam.ID, exam.UserID, exam.ExamName, exam.ExamType, exam.TotalScore,
			exam.MaxPossibleScore, examDate, nullString(exam.Notes)); err != nil {
			return fmt.Errorf("import mock exam %s: %w", exam.ID, err)
		}
	}

	return tx.Commit()
}

// ── Helpers ─────────────────────────────────────────────

func parseEntryDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func marshalBreakdown(b models.Breakdown) ([]byte, error) {
	if len(b) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshal breakdown: %w", err)
	}
	return data, nil
}

func unmarshalBreakdown(data []byte) (models.Breakdown, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var b models.Breakdown
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("unmarshal breakdown: %w", err)
	}
	return b, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
