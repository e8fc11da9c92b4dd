// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect names the SQL engine behind a connection.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect maps a configured database type to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case Postgres, SQLite:
		return Dialect(s), nil
	}
	return "", fmt.Errorf("unsupported database type %q", s)
}

// Open connects to the database and verifies the connection.
func Open(dialect Dialect, url string) (*sql.DB, error) {
	conn, err := sql.Open(string(dialect), url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	if dialect == SQLite {
		// SQLite allows a single writer; a single connection turns every
		// transaction into a serialized one and keeps :memory: databases alive.
		conn.SetMaxOpenConns(1)
		if _, err := conn.Exec(`PRAGMA busy_timeout = 5000; PRAGMA foreign_keys = ON;`); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to configure sqlite: %w", err)
		}
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// DropSchema removes every application table. Used by tests.
func DropSchema(db *sql.DB) error {
	_, err := db.Exec(`
		DROP TABLE IF EXISTS mqr_strata;
		DROP TABLE IF EXISTS clinic_code;
		DROP TABLE IF EXISTS mqr_baseline_survey_result;
	`)
	if err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}

const schema = `
-- Randomisation strata: one live row per (province, weeks bucket, age bucket)
CREATE TABLE IF NOT EXISTS mqr_strata (
    province TEXT NOT NULL,
    weeks_pregnant_bucket TEXT NOT NULL,
    age_bucket TEXT NOT NULL,
    arm_order TEXT NOT NULL,
    next_index INTEGER NOT NULL DEFAULT 0 CHECK (next_index >= 0),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (province, weeks_pregnant_bucket, age_bucket)
);

-- Facility codes and the province they belong to
CREATE TABLE IF NOT EXISTS clinic_code (
    code TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    province TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clinic_code_value ON clinic_code(value);

-- Baseline survey answers, one row per participant
CREATE TABLE IF NOT EXISTS mqr_baseline_survey_result (
    msisdn TEXT PRIMARY KEY,
    breastfeed TEXT,
    breastfeed_period TEXT,
    vaccine_importance TEXT,
    vaccine_benefits TEXT,
    clinic_visit_frequency TEXT,
    vegetables TEXT,
    fruit TEXT,
    dairy TEXT,
    liver_frequency TEXT,
    danger_sign1 TEXT,
    danger_sign2 TEXT,
    marital_status TEXT,
    education_level TEXT,
    pregnancy_support TEXT,
    created_by TEXT NOT NULL DEFAULT '',
    airtime_sent BOOLEAN NOT NULL DEFAULT FALSE,
    airtime_sent_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
