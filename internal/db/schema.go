package db

import "database/sql"

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the single source of truth for the database schema. Repository tests
// load it through GetSchemaSQL() instead of declaring their own tables, so a
// column referenced by repository code but missing here fails with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Blank form definitions (read-only to the submission subsystem)
CREATE TABLE IF NOT EXISTS forms (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	form_id TEXT NOT NULL,
	version TEXT,
	display_name TEXT NOT NULL,
	auto_send INTEGER CHECK(auto_send IN (0, 1)),
	auto_delete INTEGER CHECK(auto_delete IN (0, 1)),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(form_id, version)
);

CREATE INDEX IF NOT EXISTS idx_forms_form_id ON forms(form_id);

-- Filled-in form instances
CREATE TABLE IF NOT EXISTS instances (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	form_id TEXT NOT NULL,
	form_version TEXT,
	display_name TEXT NOT NULL,
	instance_file_path TEXT NOT NULL UNIQUE,
	submission_uri TEXT,
	status TEXT NOT NULL CHECK(status IN ('incomplete', 'complete', 'submitted', 'submissionFailed')) DEFAULT 'incomplete',
	last_status_change DATETIME DEFAULT CURRENT_TIMESTAMP,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_instances_status ON instances(status);
CREATE INDEX IF NOT EXISTS idx_instances_form ON instances(form_id);

-- Server credentials, one row per host
CREATE TABLE IF NOT EXISTS credentials (
	host TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	password TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// InitSchema creates the schema on a fresh database and runs pending migrations otherwise.
func InitSchema(db *sql.DB) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(db)
	}

	// Fresh install: create the modern schema and mark every migration as applied.
	if _, err := db.Exec(SchemaSQL); err != nil {
		return err
	}
	if err := createVersionTable(db); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
