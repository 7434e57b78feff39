package workspace

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tutor.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_InsertAndList(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	first := Workspace{
		Enabled:  true,
		Platform: PlatformSlack,
		ID:       "T123",
		Name:     "First Workspace",
		BotToken: "xoxb-1",
	}
	second := Workspace{
		Enabled:              true,
		Platform:             PlatformDiscord,
		ID:                   "G456",
		Name:                 "Second Workspace",
		BotToken:             "discord-token",
		AllowSingleDelimiter: true,
	}

	if err := s.Insert(ctx, first, "xoxp-access", "U0BOT"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(ctx, second, "", ""); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := s.ListEnabled(ctx)
	if err != nil {
		t.Fatalf("ListEnabled: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d workspaces, want 2", len(got))
	}

	// Insertion order is preserved.
	if got[0].ID != "T123" || got[0].Platform != PlatformSlack || got[0].BotToken != "xoxb-1" {
		t.Errorf("first = %+v", got[0])
	}
	if got[0].AllowSingleDelimiter {
		t.Error("first workspace should not allow single delimiters")
	}
	if got[1].ID != "G456" || got[1].Platform != PlatformDiscord || !got[1].AllowSingleDelimiter {
		t.Errorf("second = %+v", got[1])
	}
}

func TestStore_ListSkipsDisabled(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	enabled := Workspace{Enabled: true, Platform: PlatformSlack, ID: "T1", Name: "On", BotToken: "tok"}
	disabled := Workspace{Enabled: false, Platform: PlatformSlack, ID: "T2", Name: "Off", BotToken: "tok"}

	if err := s.Insert(ctx, enabled, "", ""); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(ctx, disabled, "", ""); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := s.ListEnabled(ctx)
	if err != nil {
		t.Fatalf("ListEnabled: %v", err)
	}
	if len(got) != 1 || got[0].ID != "T1" {
		t.Errorf("got %+v, want only the enabled workspace", got)
	}
}

func TestStore_EmptyDatabase(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	got, err := s.ListEnabled(context.Background())
	if err != nil {
		t.Fatalf("ListEnabled: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %+v, want none", got)
	}
}

func TestOpen_MigrationIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tutor.sqlite")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := s.Insert(context.Background(), Workspace{Enabled: true, Platform: PlatformSlack, ID: "T1", Name: "WS", BotToken: "tok"}, "", ""); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Re-opening migrates again without disturbing existing rows.
	s, err = Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer s.Close()

	got, err := s.ListEnabled(context.Background())
	if err != nil {
		t.Fatalf("ListEnabled: %v", err)
	}
	if len(got) != 1 || got[0].ID != "T1" {
		t.Errorf("got %+v, want the row from the first session", got)
	}
}

func TestWorkspace_Label(t *testing.T) {
	t.Parallel()

	ws := Workspace{Name: "Acme", ID: "T123"}
	if got := ws.Label(); got != "Acme (T123)" {
		t.Errorf("Label = %q", got)
	}
}
