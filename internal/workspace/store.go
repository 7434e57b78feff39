package workspace

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const defaultBusyTimeout = 5000 // milliseconds

// Store is the read-mostly SQLite table of authorized workspaces. Rows are
// inserted by the OAuth handshake and read at startup and on refresh.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the workspace database at path. The
// database uses WAL mode, a 5 s busy timeout, and a single connection
// (SQLite serialises writes). The schema is migrated automatically.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("workspace: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("workspace: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.TODO()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("workspace: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("workspace: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListEnabled returns every enabled workspace in insertion order.
func (s *Store) ListEnabled(ctx context.Context) ([]Workspace, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT workspace_type, workspace_id, name, bot_token, allow_single_delimiter
		FROM authenticated_workspaces
		WHERE enabled = 1
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("workspace: list: %w", err)
	}
	defer rows.Close()

	var out []Workspace
	for rows.Next() {
		var (
			ws       Workspace
			platform string
		)
		ws.Enabled = true
		if err := rows.Scan(&platform, &ws.ID, &ws.Name, &ws.BotToken, &ws.AllowSingleDelimiter); err != nil {
			return nil, fmt.Errorf("workspace: scan: %w", err)
		}
		ws.Platform = Platform(platform)
		out = append(out, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workspace: list: %w", err)
	}
	return out, nil
}

// Insert persists a newly authorized workspace. accessToken and botUserID
// come from the OAuth exchange and are stored alongside the bot token for
// operational reference; only the bot token is used at runtime.
func (s *Store) Insert(ctx context.Context, ws Workspace, accessToken, botUserID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authenticated_workspaces
			(enabled, workspace_type, token, bot_token, bot_user_id, name, workspace_id, allow_single_delimiter)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ws.Enabled, string(ws.Platform), accessToken, ws.BotToken, botUserID, ws.Name, ws.ID, ws.AllowSingleDelimiter,
	)
	if err != nil {
		return fmt.Errorf("workspace: insert %s: %w", ws.ID, err)
	}
	return nil
}
