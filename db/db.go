package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"liquipedia-scraper/logging"

	_ "github.com/lib/pq"
)

// Schema holds every table written by the scraper
const Schema = "liquipedia"

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection. An empty connStr is built from
// the DB_* environment variables.
func NewDB(ctx context.Context, connStr string) (*DB, error) {
	if connStr == "" {
		connStr = connStringFromEnv()
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func connStringFromEnv() string {
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "")
	dbname := getEnvOrDefault("DB_NAME", "liquipedia")
	sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables if they don't exist
func (db *DB) initSchema(ctx context.Context) error {
	// The schema may be provisioned by an admin without CREATE rights for us
	_, err := db.conn.ExecContext(ctx, `CREATE SCHEMA IF NOT EXISTS `+Schema)
	if err != nil {
		logging.L().Infof("Note: Could not create schema (may already exist): %v", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+Schema+`.scrape_runs (
			id SERIAL PRIMARY KEY,
			regions_count INTEGER NOT NULL,
			links_count INTEGER NOT NULL,
			teams_count INTEGER NOT NULL,
			skipped_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create scrape_runs table: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+Schema+`.teams (
			id SERIAL PRIMARY KEY,
			run_id INTEGER NOT NULL REFERENCES `+Schema+`.scrape_runs(id) ON DELETE CASCADE,
			region TEXT NOT NULL,
			region_position INTEGER NOT NULL,
			unique_id UUID NOT NULL,
			display_name TEXT NOT NULL,
			profile JSONB NOT NULL DEFAULT '{}',
			logo_url TEXT NOT NULL,
			source_url TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create teams table: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+Schema+`.team_roster (
			team_id INTEGER NOT NULL REFERENCES `+Schema+`.teams(id) ON DELETE CASCADE,
			position TEXT NOT NULL,
			player_id TEXT NOT NULL,
			name TEXT NOT NULL,
			join_date TEXT NOT NULL,
			PRIMARY KEY (team_id, position)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create team_roster table: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_teams_run_id ON `+Schema+`.teams(run_id)`)
	if err != nil {
		logging.L().Warnf("Failed to create index on teams.run_id: %v", err)
	}

	_, err = db.conn.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_teams_display_name ON `+Schema+`.teams(display_name)`)
	if err != nil {
		logging.L().Warnf("Failed to create index on teams.display_name: %v", err)
	}

	logging.L().Infof("Database schema initialized successfully")
	return nil
}

// GetConn returns the underlying database connection
func (db *DB) GetConn() *sql.DB {
	return db.conn
}
