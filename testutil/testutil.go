// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/mqr-hub/auth"
	"github.com/danielhkuo/mqr-hub/cliparse"
	"github.com/danielhkuo/mqr-hub/db"
)

// TestJWTSecret signs tokens in tests.
const TestJWTSecret = "test-jwt-secret-0123456789"

// SetupTestDB returns a private in-memory SQLite database with the full schema.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.SQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// SetupTestDBFile is SetupTestDB backed by a file in a temp dir, so other
// connections can share it. Busy waits are disabled: a locked database fails
// immediately with SQLITE_BUSY.
func SetupTestDBFile(t *testing.T) (*sql.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mqr.db")
	conn, err := db.Open(db.SQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if _, err := conn.Exec(`PRAGMA busy_timeout = 0`); err != nil {
		t.Fatalf("Failed to disable busy timeout: %v", err)
	}
	return conn, path
}

// HoldWriteLock opens a second connection to the SQLite file at path and
// keeps a write transaction open on it until the returned func is called.
func HoldWriteLock(t *testing.T, path string) (release func()) {
	t.Helper()

	conn, err := db.Open(db.SQLite, path)
	if err != nil {
		t.Fatalf("Failed to open locking connection: %v", err)
	}
	tx, err := conn.Begin()
	if err != nil {
		conn.Close()
		t.Fatalf("Failed to begin locking transaction: %v", err)
	}
	_, err = tx.Exec(`
		INSERT INTO clinic_code (code, value, name, province)
		VALUES ('lock-holder', 'lock-holder', '', 'EC')
	`)
	if err != nil {
		tx.Rollback()
		conn.Close()
		t.Fatalf("Failed to take write lock: %v", err)
	}

	var once sync.Once
	release = func() {
		once.Do(func() {
			tx.Rollback()
			conn.Close()
		})
	}
	t.Cleanup(release)
	return release
}

// SetupPostgresDB connects to the database named by TEST_DATABASE_URL and
// recreates the schema. The test is skipped when the variable is unset.
func SetupPostgresDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := db.Open(db.Postgres, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Clean up tables before each test
	if err := db.DropSchema(conn); err != nil {
		t.Fatalf("Failed to clean database: %v", err)
	}
	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	cfg := cliparse.Default()
	cfg.DatabaseURL = ":memory:"
	cfg.JWTSecret = TestJWTSecret
	cfg.ContentRepoURL = "http://content.test"
	cfg.ContentCacheTTL = 0
	return cfg
}

// TestToken returns a valid bearer token for the test secret.
func TestToken(t *testing.T) string {
	t.Helper()

	token, err := auth.New(TestJWTSecret, time.Hour).GenerateToken("test-client")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

// AuthHeaders returns request headers carrying a valid bearer token.
func AuthHeaders(t *testing.T) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + TestToken(t)}
}

// CreateTestClinic registers a facility code in the given province.
func CreateTestClinic(t *testing.T, conn *sql.DB, code, province string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO clinic_code (code, value, name, province)
		VALUES ($1, $2, $3, $4)
	`, code, code, "Clinic "+code, province)
	if err != nil {
		t.Fatalf("Failed to create test clinic: %v", err)
	}
}

// CountStrata returns the number of live stratum rows.
func CountStrata(t *testing.T, conn *sql.DB) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM mqr_strata`).Scan(&n); err != nil {
		t.Fatalf("Failed to count strata: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
