package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/coursemate/coursemate/config"
	coursemateerrors "github.com/coursemate/coursemate/errors"
	"github.com/coursemate/coursemate/escalation"
	"github.com/coursemate/coursemate/passage"
)

// PostgresStore implements escalation.Store using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultPostgresConfig returns default PostgreSQL configuration
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		DBName:   "coursemate",
		SSLMode:  "disable",
	}
}

// NewPostgresStore creates a new PostgreSQL-based escalation store
func NewPostgresStore(cfg *PostgresConfig) (*PostgresStore, error) {
	if cfg == nil {
		cfg = DefaultPostgresConfig()
	}
	if err := config.ValidatePostgresConfig(cfg.Host, cfg.Port, cfg.User, cfg.Password,
		cfg.DBName, cfg.SSLMode); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store := &PostgresStore{db: db}

	if err := store.createTable(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return store, nil
}

// createTable creates the escalations table if it doesn't exist
func (s *PostgresStore) createTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS escalations (
		id VARCHAR(36) PRIMARY KEY,
		course_id VARCHAR(255) NOT NULL,
		student_id VARCHAR(255) NOT NULL,
		query TEXT NOT NULL,
		category VARCHAR(32),
		status VARCHAR(16) NOT NULL,
		response TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		resolved_at TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_escalations_course_status ON escalations(course_id, status);
	CREATE INDEX IF NOT EXISTS idx_escalations_created_at ON escalations(created_at);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Insert persists a new escalation record.
func (s *PostgresStore) Insert(ctx context.Context, esc *escalation.Escalation) error {
	if esc == nil {
		return fmt.Errorf("escalation cannot be nil")
	}
	if esc.ID == "" {
		return fmt.Errorf("escalation ID cannot be empty")
	}

	query := `
	INSERT INTO escalations (id, course_id, student_id, query, category, status, response, created_at, resolved_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		esc.ID, esc.CourseID, esc.StudentID, esc.Query,
		nullString(string(esc.Category)), string(esc.Status),
		nullString(esc.Response), esc.CreatedAt, esc.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert escalation: %w", err)
	}
	return nil
}

// Get retrieves an escalation by ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (*escalation.Escalation, error) {
	query := `
	SELECT id, course_id, student_id, query, category, status, response, created_at, resolved_at
	FROM escalations WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, query, id)
	esc, err := scanEscalation(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("escalation %s: %w", id, coursemateerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get escalation: %w", err)
	}
	return esc, nil
}

// ListByCourse lists escalations for a course, newest first.
func (s *PostgresStore) ListByCourse(ctx context.Context, courseID string, status escalation.Status) ([]*escalation.Escalation, error) {
	query := `
	SELECT id, course_id, student_id, query, category, status, response, created_at, resolved_at
	FROM escalations WHERE course_id = $1
	`
	args := []any{courseID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list escalations: %w", err)
	}
	defer rows.Close()

	var escalations []*escalation.Escalation
	for rows.Next() {
		esc, err := scanEscalation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan escalation: %w", err)
		}
		escalations = append(escalations, esc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating escalations: %w", err)
	}
	return escalations, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEscalation(row rowScanner) (*escalation.Escalation, error) {
	var esc escalation.Escalation
	var category, response sql.NullString
	var resolvedAt sql.NullTime
	var status string

	err := row.Scan(&esc.ID, &esc.CourseID, &esc.StudentID, &esc.Query,
		&category, &status, &response, &esc.CreatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}

	esc.Category = passage.ContentType(category.String)
	esc.Status = escalation.Status(status)
	esc.Response = response.String
	if resolvedAt.Valid {
		t := resolvedAt.Time
		esc.ResolvedAt = &t
	}
	return &esc, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
