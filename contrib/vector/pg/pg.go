package pg

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/lib/pq"

	"github.com/coursemate/coursemate/config"
	"github.com/coursemate/coursemate/passage"
	"github.com/coursemate/coursemate/pkg/logging"
	"github.com/coursemate/coursemate/vector"
)

// PGContentStore implements vector.ContentStore using PostgreSQL with the
// pgvector extension. When the extension cannot be provisioned the store
// still persists passages (embeddings serialized as text) and reports
// vector.ErrSimilarityUnavailable from SimilaritySearch, which pushes callers
// onto the unranked scan path.
type PGContentStore struct {
	db        *sql.DB
	dimension int
	tableName string
	ranked    bool
	logger    *slog.Logger
}

// PGConfig holds pgvector configuration
type PGConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	SSLMode   string
	Dimension int    // Embedding dimension (default: 1536 for OpenAI)
	TableName string // Table name (default: passages)
}

// DefaultPGConfig returns default pgvector configuration
func DefaultPGConfig() *PGConfig {
	return &PGConfig{
		Host:      "127.0.0.1",
		Port:      5432,
		User:      "postgres",
		Password:  "postgres",
		DBName:    "coursemate",
		SSLMode:   "disable",
		Dimension: 1536,
		TableName: "passages",
	}
}

// NewPGContentStore creates a new pgvector-based content store
func NewPGContentStore(cfg *PGConfig) (*PGContentStore, error) {
	if cfg == nil {
		cfg = DefaultPGConfig()
	}
	if err := config.ValidateContentStoreConfig(cfg.Host, cfg.Port, cfg.User, cfg.Password,
		cfg.DBName, cfg.SSLMode, cfg.Dimension, cfg.TableName); err != nil {
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

	store := &PGContentStore{
		db:        db,
		dimension: cfg.Dimension,
		tableName: cfg.TableName,
		logger:    logging.WithComponent("pg_content_store"),
	}

	if err := store.setup(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to setup content store: %w", err)
	}

	return store, nil
}

// setup provisions pgvector and the passages table. A missing extension is
// not fatal: the store degrades to unranked scans.
func (s *PGContentStore) setup(ctx context.Context) error {
	embeddingColumn := fmt.Sprintf("vector(%d)", s.dimension)
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		s.logger.Warn("pgvector extension unavailable, similarity search disabled", "error", err)
		s.ranked = false
		embeddingColumn = "TEXT"
	} else {
		s.ranked = true
	}

	createTableSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(255) PRIMARY KEY,
		course_id VARCHAR(255) NOT NULL,
		content_type VARCHAR(32) NOT NULL,
		content TEXT NOT NULL,
		page_number INT,
		week_number INT,
		topic TEXT,
		embedding %s NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_%s_course_type ON %s(course_id, content_type)`,
		s.tableName, embeddingColumn, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

// AddPassage stores a passage with its embedding. Rows are insert-only:
// embeddings are immutable, so re-ingestion must use fresh IDs.
func (s *PGContentStore) AddPassage(ctx context.Context, p passage.Passage) error {
	if p.ID == "" {
		return fmt.Errorf("passage ID cannot be empty")
	}
	if !p.ContentType.Valid() {
		return fmt.Errorf("invalid content type %q", p.ContentType)
	}
	if s.ranked && len(p.Embedding) != s.dimension {
		return fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.dimension, len(p.Embedding))
	}

	cast := ""
	if s.ranked {
		cast = "::vector"
	}
	query := fmt.Sprintf(`
	INSERT INTO %s (id, course_id, content_type, content, page_number, week_number, topic, embedding)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8%s)
	`, s.tableName, cast)

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.CourseID, string(p.ContentType), p.Content,
		p.PageNumber, p.WeekNumber, nullString(p.Topic),
		vectorToString(p.Embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to add passage: %w", err)
	}
	return nil
}

// SimilaritySearch finds passages similar to the query vector, scored with
// cosine similarity in [0,1].
func (s *PGContentStore) SimilaritySearch(ctx context.Context, queryVector []float32, filter vector.Filter, limit int) ([]vector.Match, error) {
	if !s.ranked {
		return nil, vector.ErrSimilarityUnavailable
	}
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if len(queryVector) != s.dimension {
		return nil, fmt.Errorf("query vector dimension mismatch: expected %d, got %d", s.dimension, len(queryVector))
	}
	if limit <= 0 {
		limit = 10
	}

	where, args := filterClause(filter, 2)
	args = append([]any{vectorToString(queryVector)}, args...)
	args = append(args, limit)

	query := fmt.Sprintf(`
	SELECT id, course_id, content_type, content, page_number, week_number, topic,
	       1 - (embedding <=> $1::vector) AS score
	FROM %s
	%s
	ORDER BY embedding <=> $1::vector
	LIMIT $%d
	`, s.tableName, where, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search passages: %w", err)
	}
	defer rows.Close()

	matches := make([]vector.Match, 0, limit)
	for rows.Next() {
		var p passage.Passage
		var contentType, topic sql.NullString
		var page, week sql.NullInt64
		var score float64

		if err := rows.Scan(&p.ID, &p.CourseID, &contentType, &p.Content, &page, &week, &topic, &score); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		fillPassage(&p, contentType, topic, page, week)
		matches = append(matches, vector.Match{Passage: p, Score: clampScore(score)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating passages: %w", err)
	}
	return matches, nil
}

// ScanFilter returns passages under the filter with no ranking.
func (s *PGContentStore) ScanFilter(ctx context.Context, filter vector.Filter, limit int) ([]passage.Passage, error) {
	if limit <= 0 {
		limit = 10
	}

	where, args := filterClause(filter, 1)
	args = append(args, limit)

	query := fmt.Sprintf(`
	SELECT id, course_id, content_type, content, page_number, week_number, topic
	FROM %s
	%s
	ORDER BY created_at
	LIMIT $%d
	`, s.tableName, where, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan passages: %w", err)
	}
	defer rows.Close()

	passages := make([]passage.Passage, 0, limit)
	for rows.Next() {
		var p passage.Passage
		var contentType, topic sql.NullString
		var page, week sql.NullInt64

		if err := rows.Scan(&p.ID, &p.CourseID, &contentType, &p.Content, &page, &week, &topic); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		fillPassage(&p, contentType, topic, page, week)
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating passages: %w", err)
	}
	return passages, nil
}

// Count returns the number of stored passages under the filter.
func (s *PGContentStore) Count(ctx context.Context, filter vector.Filter) (int, error) {
	where, args := filterClause(filter, 1)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", s.tableName, where)

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count passages: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (s *PGContentStore) Close() error {
	return s.db.Close()
}

// Helper functions

// filterClause builds a WHERE clause from the filter with placeholders
// starting at the given index.
func filterClause(filter vector.Filter, start int) (string, []any) {
	var conds []string
	var args []any
	if filter.CourseID != "" {
		conds = append(conds, fmt.Sprintf("course_id = $%d", start+len(args)))
		args = append(args, filter.CourseID)
	}
	if filter.ContentType != "" {
		conds = append(conds, fmt.Sprintf("content_type = $%d", start+len(args)))
		args = append(args, string(filter.ContentType))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func fillPassage(p *passage.Passage, contentType, topic sql.NullString, page, week sql.NullInt64) {
	p.ContentType = passage.ContentType(contentType.String)
	p.Topic = topic.String
	if page.Valid {
		v := int(page.Int64)
		p.PageNumber = &v
	}
	if week.Valid {
		v := int(week.Int64)
		p.WeekNumber = &v
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func vectorToString(vec []float32) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = fmt.Sprintf("%f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
