package policy

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	cfg "github.com/fairlabor/pobot/config"
	"github.com/fairlabor/pobot/pkg/env"
)

// PostgresStore implements Store against two tables: supplier_links
// (factory -> buyer) and company_policies (company, category, policy text,
// source document, url). Both are read-only lookup tables maintained by
// surrounding data-loading code.
type PostgresStore struct {
	db *sql.DB
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PostgresConfigFromEnv loads PostgreSQL configuration from environment
// variables. The policy tables usually live next to the session tables, so
// the same variables drive both.
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

// NewPostgresStore creates a PostgreSQL-backed policy store.
func NewPostgresStore(config *PostgresConfig) (*PostgresStore, error) {
	if config == nil {
		return nil, fmt.Errorf("postgres config cannot be nil")
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

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
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
	CREATE TABLE IF NOT EXISTS supplier_links (
		factory VARCHAR(255) NOT NULL,
		buyer VARCHAR(255) NOT NULL,
		PRIMARY KEY (factory, buyer)
	);
	CREATE INDEX IF NOT EXISTS idx_supplier_links_factory ON supplier_links(LOWER(factory));
	CREATE TABLE IF NOT EXISTS company_policies (
		company VARCHAR(255) NOT NULL,
		category VARCHAR(100) NOT NULL,
		policy_text TEXT NOT NULL,
		document_name VARCHAR(255),
		document_url TEXT,
		PRIMARY KEY (company, category)
	);
	CREATE INDEX IF NOT EXISTS idx_company_policies_company ON company_policies(LOWER(company));
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// BuyersForFactory resolves buyers by exact and/or partial factory-name
// match, deduplicated.
func (s *PostgresStore) BuyersForFactory(ctx context.Context, factoryName string, mode MatchMode) ([]string, error) {
	normalized := NormalizeName(factoryName)

	var query string
	var args []any
	switch mode {
	case MatchExact:
		query = `SELECT DISTINCT buyer FROM supplier_links
			WHERE TRIM(TRAILING '.,;: ' FROM LOWER(factory)) = $1 ORDER BY buyer`
		args = []any{normalized}
	case MatchPartial:
		query = `SELECT DISTINCT buyer FROM supplier_links
			WHERE LOWER(factory) LIKE '%' || LOWER($1) || '%' ORDER BY buyer`
		args = []any{factoryName}
	default:
		query = `SELECT DISTINCT buyer FROM supplier_links
			WHERE TRIM(TRAILING '.,;: ' FROM LOWER(factory)) = $1
			   OR LOWER(factory) LIKE '%' || LOWER($2) || '%' ORDER BY buyer`
		args = []any{normalized, factoryName}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve buyers: %w", err)
	}
	defer rows.Close()

	var buyers []string
	for rows.Next() {
		var buyer string
		if err := rows.Scan(&buyer); err != nil {
			return nil, fmt.Errorf("failed to scan buyer: %w", err)
		}
		buyers = append(buyers, buyer)
	}
	return buyers, rows.Err()
}

// PoliciesForCompany returns the company's documented policies by category.
func (s *PostgresStore) PoliciesForCompany(ctx context.Context, companyName string) (map[string]Ref, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, policy_text, COALESCE(document_name, ''), COALESCE(document_url, '')
		 FROM company_policies WHERE LOWER(company) = LOWER($1)`,
		companyName)
	if err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}
	defer rows.Close()

	refs := make(map[string]Ref)
	for rows.Next() {
		var category string
		var ref Ref
		if err := rows.Scan(&category, &ref.Text, &ref.DocumentName, &ref.DocumentURL); err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		refs[category] = ref
	}
	return refs, rows.Err()
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
