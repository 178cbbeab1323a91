// Package sqlite_test contains integration tests for SQLite repositories.
//
// This file is the single point where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() so tests run against the
// authoritative schema. Do not declare tables in test files; use setupTestDB()
// and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/odkupload/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedForm inserts a test form.
func seedForm(t *testing.T, db *sql.DB, formID, version string) {
	t.Helper()
	if formID == "" {
		formID = "household"
	}
	_, err := db.Exec("INSERT INTO forms (form_id, version, display_name) VALUES (?, ?, ?)", formID, version, formID)
	if err != nil {
		t.Fatalf("failed to seed form: %v", err)
	}
}

// seedInstance inserts a test instance and returns its ID.
func seedInstance(t *testing.T, db *sql.DB, formID, path, status string) int64 {
	t.Helper()
	if formID == "" {
		formID = "household"
	}
	if status == "" {
		status = "complete"
	}
	res, err := db.Exec(
		"INSERT INTO instances (form_id, display_name, instance_file_path, status) VALUES (?, ?, ?, ?)",
		formID, formID+" instance", path, status,
	)
	if err != nil {
		t.Fatalf("failed to seed instance: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read seeded instance ID: %v", err)
	}
	return id
}
