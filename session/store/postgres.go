package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	cfg "github.com/fairlabor/pobot/config"
	"github.com/fairlabor/pobot/errors"
	"github.com/fairlabor/pobot/message"
	"github.com/fairlabor/pobot/pkg/env"
	"github.com/fairlabor/pobot/session"
)

// PostgresStore implements session storage using PostgreSQL. Sessions,
// messages, buyers, and reports live in separate tables; child tables
// cascade-delete with their session.
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

// PostgresConfigFromEnv loads PostgreSQL configuration from environment variables
func PostgresConfigFromEnv() *PostgresConfig {
	return &PostgresConfig{
		Host:     env.GetEnv("POSTGRES_HOST", "localhost"),
		Port:     env.GetEnvInt("POSTGRES_PORT", 5432),
		User:     env.GetEnv("POSTGRES_USER", "postgres"),
		Password: env.GetEnv("POSTGRES_PASSWORD", ""),
		DBName:   env.GetEnv("POSTGRES_DB", "pobot"),
		SSLMode:  env.GetEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// DefaultPostgresConfig returns default PostgreSQL configuration
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		DBName:   "pobot",
		SSLMode:  "disable",
	}
}

// NewPostgresStore creates a new PostgreSQL-based session store
func NewPostgresStore(config *PostgresConfig) (*PostgresStore, error) {
	if config == nil {
		config = PostgresConfigFromEnv()
	}

	if err := cfg.ValidatePostgresConfig(config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode); err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL configuration: %w", err)
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store := &PostgresStore{db: db}

	if err := store.createTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) createTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		id VARCHAR(255) PRIMARY KEY,
		language VARCHAR(100),
		location VARCHAR(255),
		gender VARCHAR(50),
		nationality VARCHAR(100),
		factory_name VARCHAR(255),
		industrial_sector VARCHAR(255),
		case_type VARCHAR(100),
		incident_description TEXT,
		stage VARCHAR(50) NOT NULL,
		current_node VARCHAR(100),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS messages (
		id VARCHAR(255) PRIMARY KEY,
		session_id VARCHAR(255) NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		role VARCHAR(20) NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session_created ON messages(session_id, created_at);
	CREATE TABLE IF NOT EXISTS buyer_companies (
		session_id VARCHAR(255) NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (session_id, name)
	);
	CREATE TABLE IF NOT EXISTS violation_reports (
		id VARCHAR(255) PRIMARY KEY,
		session_id VARCHAR(255) NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		buyer_company VARCHAR(255) NOT NULL,
		raw_text TEXT NOT NULL,
		complaint_summary TEXT,
		incidents JSONB,
		policy_violations JSONB,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_session ON violation_reports(session_id);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Save upserts the session record (slots, stage, graph position).
func (s *PostgresStore) Save(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session record cannot be nil")
	}

	sess.UpdatedAt = time.Now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = sess.UpdatedAt
	}

	query := `
	INSERT INTO sessions (id, language, location, gender, nationality, factory_name,
		industrial_sector, case_type, incident_description, stage, current_node, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (id) DO UPDATE SET
		language = EXCLUDED.language,
		location = EXCLUDED.location,
		gender = EXCLUDED.gender,
		nationality = EXCLUDED.nationality,
		factory_name = EXCLUDED.factory_name,
		industrial_sector = EXCLUDED.industrial_sector,
		case_type = EXCLUDED.case_type,
		incident_description = EXCLUDED.incident_description,
		stage = EXCLUDED.stage,
		current_node = EXCLUDED.current_node,
		updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		sess.ID, sess.Language, sess.Location, sess.Gender, sess.Nationality,
		sess.FactoryName, sess.IndustrialSector, sess.CaseType, sess.IncidentDescription,
		string(sess.Stage), sess.CurrentNode, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load loads a full session record including messages, buyers, and reports.
func (s *PostgresStore) Load(ctx context.Context, id string) (*session.Session, error) {
	query := `
	SELECT id, language, location, gender, nationality, factory_name,
		industrial_sector, case_type, incident_description, stage, current_node, created_at, updated_at
	FROM sessions WHERE id = $1
	`
	sess := &session.Session{}
	var stage string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sess.ID, &sess.Language, &sess.Location, &sess.Gender, &sess.Nationality,
		&sess.FactoryName, &sess.IndustrialSector, &sess.CaseType, &sess.IncidentDescription,
		&stage, &sess.CurrentNode, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	sess.Stage = session.Stage(stage)

	if sess.Messages, err = s.loadMessages(ctx, id); err != nil {
		return nil, err
	}
	if sess.BuyerCompanies, err = s.loadBuyers(ctx, id); err != nil {
		return nil, err
	}
	if sess.Reports, err = s.loadReports(ctx, id); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *PostgresStore) loadMessages(ctx context.Context, sessionID string) ([]*message.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, created_at FROM messages WHERE session_id = $1 ORDER BY created_at, id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	var msgs []*message.Message
	for rows.Next() {
		msg := &message.Message{}
		var role string
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = message.Role(role)
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// The query orders by the column's truncated precision; reassert the
	// full-precision order of the original timestamps.
	message.SortChronological(msgs)
	return msgs, nil
}

func (s *PostgresStore) loadBuyers(ctx context.Context, sessionID string) ([]session.BuyerCompany, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, created_at FROM buyer_companies WHERE session_id = $1 ORDER BY created_at`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load buyer companies: %w", err)
	}
	defer rows.Close()

	var buyers []session.BuyerCompany
	for rows.Next() {
		var bc session.BuyerCompany
		if err := rows.Scan(&bc.Name, &bc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan buyer company: %w", err)
		}
		buyers = append(buyers, bc)
	}
	return buyers, rows.Err()
}

func (s *PostgresStore) loadReports(ctx context.Context, sessionID string) ([]*session.ViolationReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, buyer_company, raw_text, complaint_summary, incidents, policy_violations, created_at
		 FROM violation_reports WHERE session_id = $1 ORDER BY created_at`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	defer rows.Close()

	var reports []*session.ViolationReport
	for rows.Next() {
		rep := &session.ViolationReport{}
		var summary sql.NullString
		var incidents, violations []byte
		if err := rows.Scan(&rep.ID, &rep.BuyerCompany, &rep.RawText, &summary, &incidents, &violations, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		rep.ComplaintSummary = summary.String
		if len(incidents) > 0 {
			if err := json.Unmarshal(incidents, &rep.Incidents); err != nil {
				return nil, fmt.Errorf("failed to decode incidents: %w", err)
			}
		}
		if len(violations) > 0 {
			if err := json.Unmarshal(violations, &rep.PolicyViolations); err != nil {
				return nil, fmt.Errorf("failed to decode policy violations: %w", err)
			}
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// Delete removes a session; child rows cascade.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s: %w", id, errors.ErrNotFound)
	}
	return nil
}

// List returns all session IDs.
func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of stored sessions.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// Exists checks if a session exists.
func (s *PostgresStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sessions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}
	return exists, nil
}

// AppendMessage adds a message to the session's ordered log.
func (s *PostgresStore) AppendMessage(ctx context.Context, sessionID string, msg *message.Message) error {
	if msg == nil {
		return fmt.Errorf("message cannot be nil")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, role, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, sessionID, string(msg.Role), msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// AddBuyerCompany records a resolved buyer; duplicates within a session
// are ignored by the primary key.
func (s *PostgresStore) AddBuyerCompany(ctx context.Context, sessionID, name string) error {
	if name == "" {
		return fmt.Errorf("buyer company name cannot be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO buyer_companies (session_id, name, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (session_id, name) DO NOTHING`,
		sessionID, name, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add buyer company: %w", err)
	}
	return nil
}

// AddReport appends a violation report.
func (s *PostgresStore) AddReport(ctx context.Context, sessionID string, report *session.ViolationReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	incidents, err := json.Marshal(report.Incidents)
	if err != nil {
		return fmt.Errorf("failed to encode incidents: %w", err)
	}
	violations, err := json.Marshal(report.PolicyViolations)
	if err != nil {
		return fmt.Errorf("failed to encode policy violations: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO violation_reports (id, session_id, buyer_company, raw_text, complaint_summary, incidents, policy_violations, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		report.ID, sessionID, report.BuyerCompany, report.RawText, report.ComplaintSummary, incidents, violations, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add report: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
