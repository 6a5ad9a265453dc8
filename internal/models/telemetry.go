package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// ── Enums ────────────────────────────────────────────────

type ErrorType string

const (
	ErrorContentGap      ErrorType = "Content Gap"
	ErrorAttentionDetail ErrorType = "Attention Detail"
	ErrorTimeManagement  ErrorType = "Time Management"
	ErrorFatigue         ErrorType = "Fatigue"
	ErrorInterpretation  ErrorType = "Interpretation"
)

var ValidErrorTypes = map[ErrorType]bool{
	ErrorContentGap:      true,
	ErrorAttentionDetail: true,
	ErrorTimeManagement:  true,
	ErrorFatigue:         true,
	ErrorInterpretation:  true,
}

// AvoidableErrorTypes are the categories a focused test-taker could have
// prevented; the dashboard reports their share separately.
var AvoidableErrorTypes = map[ErrorType]bool{
	ErrorAttentionDetail: true,
	ErrorInterpretation:  true,
}

const DefaultErrorType = ErrorContentGap

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

const DefaultDifficulty = DifficultyMedium

const DefaultExamType = "General"

// FieldUnknown is substituted for blank grouping fields in every aggregation.
const FieldUnknown = "Unknown"

// FieldOrUnknown trims a grouping value and substitutes the Unknown literal
// for blanks. Aggregators must group through this, never on the raw field.
func FieldOrUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return FieldUnknown
	}
	return s
}

// ── Records ──────────────────────────────────────────────

// DateLayout is the textual day-month-year form every record's Date carries.
const DateLayout = "02-01-2006"

type ErrorLog struct {
	ID          string     `json:"id"`
	UserID      int64      `json:"user_id,omitempty"`
	Subject     string     `json:"subject"`
	Topic       string     `json:"topic"`
	ErrorType   ErrorType  `json:"error_type"`
	Description string     `json:"description,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
	ExamType    string     `json:"exam_type"`
	Date        string     `json:"date"`
	SessionID   *string    `json:"session_id,omitempty"`
	MockExamID  *string    `json:"mock_exam_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at,omitempty"`
}

func (e ErrorLog) EntryDate() string { return e.Date }

type StudySession struct {
	ID              string    `json:"id"`
	UserID          int64     `json:"user_id,omitempty"`
	ExamType        string    `json:"exam_type"`
	Subject         string    `json:"subject"`
	TotalQuestions  int       `json:"total_questions"`
	CorrectCount    int       `json:"correct_count"`
	DurationMinutes float64   `json:"duration_minutes"`
	Date            string    `json:"date"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

func (s StudySession) EntryDate() string { return s.Date }

// Accuracy is the percentage of questions answered correctly. Zero when the
// session has no questions.
func (s StudySession) Accuracy() float64 {
	if s.TotalQuestions <= 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.TotalQuestions) * 100
}

// Pace is minutes spent per question attempted.
func (s StudySession) Pace() float64 {
	if s.TotalQuestions <= 0 {
		return 0
	}
	return s.DurationMinutes / float64(s.TotalQuestions)
}

type MockExam struct {
	ID               string    `json:"id"`
	UserID           int64     `json:"user_id,omitempty"`
	ExamName         string    `json:"exam_name"`
	ExamType         string    `json:"exam_type"`
	TotalScore       float64   `json:"total_score"`
	MaxPossibleScore float64   `json:"max_possible_score"`
	Date             string    `json:"date"`
	Breakdown        Breakdown `json:"breakdown,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
}

func (m MockExam) EntryDate() string { return m.Date }

func (m MockExam) ScorePercentage() float64 {
	if m.MaxPossibleScore <= 0 {
		return 0
	}
	return m.TotalScore / m.MaxPossibleScore * 100
}

// ── Exam breakdown ───────────────────────────────────────

// Breakdown maps section key to a structured section entry, interleaved with
// scalar extras (tri_score, scaled_score). Section and Scalar are the only
// place the two shapes are told apart.
type Breakdown map[string]json.RawMessage

type BreakdownSection struct {
	Label   string  `json:"label"`
	Score   float64 `json:"score"`
	Max     float64 `json:"max"`
	Subject string  `json:"subject"`
}

// Section decodes the value under key as a structured section entry.
// Scalar extras and anything else non-object report false; unmarshal alone
// is not enough because a JSON null decodes into the struct untouched.
func (b Breakdown) Section(key string) (BreakdownSection, bool) {
	raw, ok := b[key]
	if !ok {
		return BreakdownSection{}, false
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return BreakdownSection{}, false
	}
	var sec BreakdownSection
	if err := json.Unmarshal(trimmed, &sec); err != nil {
		return BreakdownSection{}, false
	}
	return sec, true
}

// Scalar decodes the value under key as a bare number.
func (b Breakdown) Scalar(key string) (float64, bool) {
	raw, ok := b[key]
	if !ok {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// ── API Request Types ────────────────────────────────────

type LogErrorRequest struct {
	Subject     string  `json:"subject"`
	Topic       string  `json:"topic"`
	ErrorType   string  `json:"error_type"`
	Description string  `json:"description"`
	Difficulty  string  `json:"difficulty"`
	ExamType    string  `json:"exam_type"`
	Date        string  `json:"date"`
	SessionID   *string `json:"session_id,omitempty"`
	MockExamID  *string `json:"mock_exam_id,omitempty"`
}

type LogSessionRequest struct {
	ExamType        string  `json:"exam_type"`
	Subject         string  `json:"subject"`
	TotalQuestions  int     `json:"total_questions"`
	CorrectCount    int     `json:"correct_count"`
	DurationMinutes float64 `json:"duration_minutes"`
	Date            string  `json:"date"`
	Notes           string  `json:"notes"`
}

type LogMockExamRequest struct {
	ExamName         string             `json:"exam_name"`
	ExamType         string             `json:"exam_type"`
	TotalScore       float64            `json:"total_score"`
	MaxPossibleScore float64            `json:"max_possible_score"`
	Date             string             `json:"date"`
	SectionScores    map[string]float64 `json:"section_scores,omitempty"`
	Extras           map[string]float64 `json:"extras,omitempty"`
	Notes            string             `json:"notes"`
}

// ErrorFilter is the multi-criteria history filter. Criteria AND-combine;
// empty slices mean "no restriction on that field". Date bounds are inclusive
// and use the record date layout.
type ErrorFilter struct {
	Subjects     []string `json:"subjects,omitempty"`
	Topics       []string `json:"topics,omitempty"`
	ExamTypes    []string `json:"exam_types,omitempty"`
	ErrorTypes   []string `json:"error_types,omitempty"`
	Difficulties []string `json:"difficulties,omitempty"`
	DateFrom     string   `json:"date_from,omitempty"`
	DateTo       string   `json:"date_to,omitempty"`
}

type ErrorListResponse struct {
	Errors []ErrorLog `json:"errors"`
	Total  int        `json:"total"`
}

type SessionListResponse struct {
	Sessions []StudySession `json:"sessions"`
	Total    int            `json:"total"`
}

type MockExamListResponse struct {
	Exams []MockExam `json:"exams"`
	Total int        `json:"total"`
}

// FilterValues feeds the history page's filter dropdowns.
type FilterValues struct {
	Subjects  []string `json:"subjects"`
	Topics    []string `json:"topics"`
	ExamTypes []string `json:"exam_types"`
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Issues   []string `json:"issues"`
}
