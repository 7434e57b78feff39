package workspace

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// schemaStatements are executed in order to create the database schema.
// All use IF NOT EXISTS for idempotent re-application.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS authenticated_workspaces (
		enabled                INTEGER NOT NULL DEFAULT 1,
		workspace_type         TEXT    NOT NULL,
		token                  TEXT    NOT NULL DEFAULT '',
		bot_token              TEXT    NOT NULL,
		bot_user_id            TEXT    NOT NULL DEFAULT '',
		name                   TEXT    NOT NULL,
		workspace_id           TEXT    NOT NULL,
		allow_single_delimiter INTEGER NOT NULL DEFAULT 0,
		created_at             TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	)`,

	`CREATE INDEX IF NOT EXISTS idx_workspaces_enabled ON authenticated_workspaces(enabled)`,
}

// migrate creates or updates the database schema to the latest version.
func migrate(db *sql.DB) error {
	ctx := context.TODO()

	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("workspace: create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("workspace: read schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("workspace: apply schema: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("workspace: record schema version: %w", err)
	}
	return nil
}
