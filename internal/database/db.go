package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Config holds database configuration
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            5432,
		User:            "postgres",
		Password:        "postgres",
		Database:        "inspection_console",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DB wraps the sql.DB connection
type DB struct {
	*sql.DB
	config Config
}

// New creates a new database connection
func New(config Config) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.Database, config.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, config: config}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Migrate creates the two log tables when absent. Existing tables are never
// altered; the logs are append-only history.
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		migrationCases,
		migrationImages,
		migrationIndexes,
	}

	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// Migration SQL statements. Column order mirrors the spreadsheet schema.
const migrationCases = `
CREATE TABLE IF NOT EXISTS cases (
    case_id VARCHAR(50) PRIMARY KEY,
    brand VARCHAR(100) NOT NULL,
    item VARCHAR(50) NOT NULL,
    judge_person VARCHAR(255) NOT NULL,
    memo TEXT,
    images_count INTEGER NOT NULL,
    overall_judge VARCHAR(50) NOT NULL DEFAULT '',
    overall_reason_choices TEXT NOT NULL DEFAULT '',
    overall_reason_free TEXT NOT NULL DEFAULT '',
    overall_learn_yn VARCHAR(10) NOT NULL DEFAULT '',
    overall_learn_no_reason TEXT NOT NULL DEFAULT '',
    weight_version VARCHAR(100) NOT NULL,
    created_at VARCHAR(30) NOT NULL
);
`

const migrationImages = `
CREATE TABLE IF NOT EXISTS images (
    id BIGSERIAL PRIMARY KEY,
    case_id VARCHAR(50) NOT NULL,
    image_type VARCHAR(50) NOT NULL,
    drive_file_id VARCHAR(255) NOT NULL,
    drive_view_url VARCHAR(1024) NOT NULL,
    judge VARCHAR(50) NOT NULL,
    reason_choices TEXT NOT NULL DEFAULT '',
    reason_free TEXT NOT NULL DEFAULT '',
    learn_yn VARCHAR(10) NOT NULL,
    learn_no_reason TEXT NOT NULL DEFAULT '',
    created_at VARCHAR(30) NOT NULL
);
`

const migrationIndexes = `
CREATE INDEX IF NOT EXISTS idx_images_case ON images(case_id);
CREATE INDEX IF NOT EXISTS idx_cases_created ON cases(created_at);
`
