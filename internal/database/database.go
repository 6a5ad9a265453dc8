package database

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "autopsy_user")
	password := getEnv("DB_PASSWORD", "autopsy_password")
	dbname := getEnv("DB_NAME", "error_autopsy")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		username VARCHAR(50) UNIQUE,
		password VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS error_logs (
		id           VARCHAR(8) PRIMARY KEY,
		user_id      BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		subject      VARCHAR(100) NOT NULL,
		topic        VARCHAR(150) NOT NULL,
		error_type   VARCHAR(30) NOT NULL,
		description  TEXT,
		difficulty   VARCHAR(10) NOT NULL DEFAULT 'Medium',
		exam_type    VARCHAR(30) NOT NULL DEFAULT 'General',
		entry_date   DATE NOT NULL,
		session_id   VARCHAR(8),
		mock_exam_id VARCHAR(8),
		created_at   TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS study_sessions (
		id               VARCHAR(8) PRIMARY KEY,
		user_id          BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		exam_type        VARCHAR(30) NOT NULL DEFAULT 'General',
		subject          VARCHAR(100) NOT NULL,
		total_questions  INT NOT NULL DEFAULT 0,
		correct_count    INT NOT NULL DEFAULT 0,
		duration_minutes DOUBLE PRECISION NOT NULL DEFAULT 0,
		session_date     DATE NOT NULL,
		notes            TEXT,
		created_at       TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS mock_exams (
		id                 VARCHAR(8) PRIMARY KEY,
		user_id            BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		exam_name          VARCHAR(200) NOT NULL,
		exam_type          VARCHAR(30) NOT NULL DEFAULT 'General',
		total_score        DOUBLE PRECISION NOT NULL DEFAULT 0,
		max_possible_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		exam_date          DATE NOT NULL,
		breakdown          JSONB,
		notes              TEXT,
		created_at         TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`

	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Run ALTER TABLE statements to add columns to existing tables.
	// Linking fields and exam breakdowns arrived after the base tables,
	// so these are idempotent for databases created before them.
	alterStatements := []string{
		`ALTER TABLE error_logs ADD COLUMN IF NOT EXISTS description TEXT`,
		`ALTER TABLE error_logs ADD COLUMN IF NOT EXISTS session_id VARCHAR(8)`,
		`ALTER TABLE error_logs ADD COLUMN IF NOT EXISTS mock_exam_id VARCHAR(8)`,
		`ALTER TABLE error_logs ADD COLUMN IF NOT EXISTS difficulty VARCHAR(10) DEFAULT 'Medium'`,
		`ALTER TABLE error_logs ADD COLUMN IF NOT EXISTS exam_type VARCHAR(30) DEFAULT 'General'`,
		`ALTER TABLE study_sessions ADD COLUMN IF NOT EXISTS notes TEXT`,
		`ALTER TABLE mock_exams ADD COLUMN IF NOT EXISTS breakdown JSONB`,
		`ALTER TABLE mock_exams ADD COLUMN IF NOT EXISTS notes TEXT`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS username VARCHAR(50) UNIQUE`,
	}

	for _, stmt := range alterStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("alter table failed: %w", err)
		}
	}

	// Backfill classification defaults on rows that predate the columns
	db.Exec(`UPDATE error_logs SET difficulty = 'Medium' WHERE difficulty IS NULL`)
	db.Exec(`UPDATE error_logs SET exam_type = 'General' WHERE exam_type IS NULL`)
	db.Exec(`DO $$ BEGIN ALTER TABLE error_logs ALTER COLUMN difficulty SET NOT NULL; EXCEPTION WHEN others THEN NULL; END $$`)
	db.Exec(`DO $$ BEGIN ALTER TABLE error_logs ALTER COLUMN exam_type SET NOT NULL; EXCEPTION WHEN others THEN NULL; END $$`)

	// Create indexes on new columns (must run after ALTER TABLE)
	newIndexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_errors_user_date ON error_logs(user_id, entry_date)`,
		`CREATE INDEX IF NOT EXISTS idx_errors_user_subject ON error_logs(user_id, subject)`,
		`CREATE INDEX IF NOT EXISTS idx_errors_session ON error_logs(session_id) WHERE session_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_errors_mock_exam ON error_logs(mock_exam_id) WHERE mock_exam_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_date ON study_sessions(user_id, session_date)`,
		`CREATE INDEX IF NOT EXISTS idx_exams_user_date ON mock_exams(user_id, exam_date)`,
		`CREATE INDEX IF NOT EXISTS idx_exams_user_type ON mock_exams(user_id, exam_type)`,
	}
	for _, stmt := range newIndexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index failed: %w", err)
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// generateUsernameBase creates a lowercase alphanumeric base from a user's name.
func generateUsernameBase(name string) string {
	var result []byte
	for _, c := range strings.ToLower(name) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			result = append(result, byte(c))
		}
	}
	if len(result) == 0 {
		return "user"
	}
	if len(result) > 12 {
		result = result[:12]
	}
	return string(result)
}

// rng is a seeded random source for username generation.
var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// randomInt returns a random integer in [0, max).
func randomInt(max int) int {
	return rng.Intn(max)
}

// GenerateUsername creates a unique username from a name by appending random digits.
// It tries up to 10 times to find a unique one. Caller should handle the unique constraint.
func GenerateUsername(name string) string {
	base := generateUsernameBase(name)
	return fmt.Sprintf("%s%04d", base, randomInt(10000))
}
