package models

import "time"

// ── Zones ────────────────────────────────────────────────

type PaceZone string

const (
	PaceRushing PaceZone = "Rushing"
	PaceOptimal PaceZone = "Optimal"
	PaceTooSlow PaceZone = "Too Slow"
)

type AccuracyZone string

const (
	AccuracyMastery    AccuracyZone = "Mastery"
	AccuracyDeveloping AccuracyZone = "Developing"
	AccuracyStruggling AccuracyZone = "Struggling"
)

// Combined performance-zone labels.
const (
	ZoneRushingStruggling = "Rushing & Struggling"
	ZoneRushingAccurate   = "Rushing & Accurate (Risky)"
	ZoneMastery           = "Mastery Zone"
	ZoneSlowAccurate      = "Slow but Accurate"
	ZoneNeedsImprovement  = "Needs Improvement"
)

// NoData is the placeholder shown when a value cannot be computed.
const NoData = "—"

// Mock-exam trend labels. TrendNone is the sentinel for "not enough exams".
const (
	TrendImproving = "Improving"
	TrendDeclining = "Declining"
	TrendStable    = "Stable"
	TrendNone      = NoData
)

// ── Counter Series ───────────────────────────────────────

// MonthCount carries the real month date alongside its display label so
// callers sort on the date and format only at the boundary.
type MonthCount struct {
	Date  time.Time `json:"date"`
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

type FieldCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ── Session Aggregates ───────────────────────────────────

type SessionStatistics struct {
	TotalSessions       int     `json:"total_sessions"`
	TotalQuestions      int     `json:"total_questions"`
	TotalCorrect        int     `json:"total_correct"`
	AvgAccuracy         float64 `json:"avg_accuracy"`
	AvgPace             float64 `json:"avg_pace"`
	TotalStudyTimeHours float64 `json:"total_study_time_hours"`
	BestSubject         string  `json:"best_subject,omitempty"`
	ImprovementNeeded   string  `json:"improvement_needed,omitempty"`
}

type SpeedAccuracyPoint struct {
	Pace            float64      `json:"pace"`
	Accuracy        float64      `json:"accuracy"`
	Subject         string       `json:"subject"`
	ExamType        string       `json:"exam_type"`
	Date            string       `json:"date"`
	Questions       int          `json:"questions"`
	PaceZone        PaceZone     `json:"pace_zone,omitempty"`
	AccuracyZone    AccuracyZone `json:"accuracy_zone,omitempty"`
	PerformanceZone string       `json:"performance_zone,omitempty"`
}

type SubjectPace struct {
	Subject        string  `json:"subject"`
	AvgPace        float64 `json:"avg_pace"`
	TotalQuestions int     `json:"total_questions"`
}

// ── Mock-Exam Aggregates ─────────────────────────────────

type TrajectoryPoint struct {
	ExamName      string   `json:"exam_name"`
	ExamType      string   `json:"exam_type"`
	Date          string   `json:"date"`
	AttemptNumber int      `json:"attempt_number"`
	Percentage    float64  `json:"percentage"`
	Improvement   *float64 `json:"improvement,omitempty"`
}

type MockExamStatistics struct {
	TotalExams  int     `json:"total_exams"`
	AvgScore    float64 `json:"avg_score"`
	BestScore   float64 `json:"best_score"`
	LatestScore float64 `json:"latest_score"`
	Trend       string  `json:"trend"`
}

type SectionResult struct {
	ExamName   string  `json:"exam_name"`
	Date       string  `json:"date"`
	SectionKey string  `json:"section_key"`
	Label      string  `json:"label"`
	Subject    string  `json:"subject"`
	Score      float64 `json:"score"`
	Max        float64 `json:"max"`
	Percentage float64 `json:"percentage"`
}

type ScalarPoint struct {
	ExamName string  `json:"exam_name"`
	Date     string  `json:"date"`
	Value    float64 `json:"value"`
}

// ── Activity Heatmap ─────────────────────────────────────

type HeatmapDay struct {
	Date              string  `json:"date"`
	QuestionsAnswered int     `json:"questions_answered"`
	StudyTimeMinutes  float64 `json:"study_time_minutes"`
	ErrorsLogged      int     `json:"errors_logged"`
	ExamsTaken        int     `json:"exams_taken"`
	Intensity         int     `json:"intensity"`
}

type StreakSummary struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
	ActiveDays    int `json:"active_days"`
}

// ── Dashboard Summary ────────────────────────────────────

type DashboardSummary struct {
	TotalErrors        int     `json:"total_errors"`
	AvoidableErrors    int     `json:"avoidable_errors"`
	AvoidablePct       float64 `json:"avoidable_pct"`
	AvgSessionAccuracy float64 `json:"avg_session_accuracy"`
	TopSubject         string  `json:"top_subject,omitempty"`
}

type MonthlyStats struct {
	CurrentMonthCount  int     `json:"current_month_count"`
	PreviousMonthCount int     `json:"previous_month_count"`
	DeltaPct           float64 `json:"delta_pct"`
	TopSubject         string  `json:"top_subject"`
	TopErrorType       string  `json:"top_error_type"`
}

// InsightFlag kinds.
const (
	InsightFatigueWarning = "fatigue_warning"
	InsightRecurringTopic = "recurring_topic"
)

// InsightFlag is a structured alert derived from recent errors. It carries
// the numeric evidence only; rendering any message is the caller's problem.
type InsightFlag struct {
	Kind  string  `json:"kind"`
	Topic string  `json:"topic,omitempty"`
	Count int     `json:"count"`
	Share float64 `json:"share,omitempty"`
}

// ── Dashboard Endpoint Responses ─────────────────────────

type SummaryResponse struct {
	Summary  DashboardSummary `json:"summary"`
	Monthly  MonthlyStats     `json:"monthly"`
	Insights []InsightFlag    `json:"insights"`
}

type DistributionsResponse struct {
	ByErrorType     map[string]int `json:"by_error_type"`
	BySubject       map[string]int `json:"by_subject"`
	ByDifficulty    []FieldCount   `json:"by_difficulty"`
	TopTopics       []FieldCount   `json:"top_topics"`
	WeakestSubjects []FieldCount   `json:"weakest_subjects"`
}

type SessionDashboardResponse struct {
	Statistics    SessionStatistics    `json:"statistics"`
	Points        []SpeedAccuracyPoint `json:"points"`
	PaceBySubject []SubjectPace        `json:"pace_by_subject"`
}

type HeatmapResponse struct {
	Days    []HeatmapDay  `json:"days"`
	Streaks StreakSummary `json:"streaks"`
}

type ExamDashboardResponse struct {
	Statistics MockExamStatistics `json:"statistics"`
	Trajectory []TrajectoryPoint  `json:"trajectory"`
}

type SectionAnalysisResponse struct {
	Sections    []SectionResult `json:"sections"`
	Trend       []SectionResult `json:"trend"`
	ScalarKey   string          `json:"scalar_key,omitempty"`
	ScalarTrend []ScalarPoint   `json:"scalar_trend,omitempty"`
}

type ExamErrorSummaryResponse struct {
	ExamID    string                `json:"exam_id"`
	BySubject map[string][]ErrorLog `json:"by_subject"`
	Total     int                   `json:"total"`
}
