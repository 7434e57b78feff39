package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tutorbot/tutor/internal/config"
	"github.com/tutorbot/tutor/internal/workspace"
)

// fakeStarter records the workspaces admitted into the session layer.
type fakeStarter struct {
	started []workspace.Workspace
	err     error
}

var _ WorkspaceStarter = (*fakeStarter)(nil)

func (f *fakeStarter) StartWorkspace(ws workspace.Workspace) error {
	f.started = append(f.started, ws)
	return f.err
}

func testGateway(t *testing.T, exchange ExchangeFunc, starter *fakeStarter) (*Gateway, *workspace.Store) {
	t.Helper()
	store, err := workspace.Open(filepath.Join(t.TempDir(), "tutor.sqlite"))
	if err != nil {
		t.Fatalf("Open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.GatewayConfig{
		Listen: ":0",
		OAuth: config.OAuthConfig{
			ClientID:     "abc",
			ClientSecret: "shh",
			RedirectURL:  "https://tutor.example/auth",
		},
	}
	return New(cfg, store, starter, exchange, nil), store
}

func TestHandleAuth(t *testing.T) {
	t.Parallel()

	t.Run("successful handshake", func(t *testing.T) {
		t.Parallel()
		exchange := func(_ context.Context, code string) (*OAuthGrant, error) {
			if code != "tmpcode" {
				t.Errorf("code = %q", code)
			}
			return &OAuthGrant{
				AccessToken:    "xoxp-access",
				TeamID:         "T123",
				TeamName:       "Acme",
				BotUserID:      "U0BOT",
				BotAccessToken: "xoxb-bot",
			}, nil
		}
		starter := &fakeStarter{}
		g, store := testGateway(t, exchange, starter)

		rec := httptest.NewRecorder()
		g.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth?code=tmpcode", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		body, _ := io.ReadAll(rec.Body)
		if got := string(body); got != "Successfully added Tutor to the Acme workspace!" {
			t.Errorf("body = %q", got)
		}

		if len(starter.started) != 1 || starter.started[0].ID != "T123" || starter.started[0].BotToken != "xoxb-bot" {
			t.Errorf("started = %+v", starter.started)
		}

		listed, err := store.ListEnabled(context.Background())
		if err != nil {
			t.Fatalf("ListEnabled: %v", err)
		}
		if len(listed) != 1 || listed[0].Name != "Acme" || listed[0].Platform != workspace.PlatformSlack {
			t.Errorf("listed = %+v", listed)
		}
	})

	t.Run("missing code is a 404", func(t *testing.T) {
		t.Parallel()
		g, _ := testGateway(t, func(context.Context, string) (*OAuthGrant, error) {
			t.Error("exchange called without a code")
			return nil, nil
		}, &fakeStarter{})

		rec := httptest.NewRecorder()
		g.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("failed exchange reports bad gateway", func(t *testing.T) {
		t.Parallel()
		starter := &fakeStarter{}
		g, store := testGateway(t, func(context.Context, string) (*OAuthGrant, error) {
			return nil, errors.New("slack said no")
		}, starter)

		rec := httptest.NewRecorder()
		g.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth?code=bad", nil))

		if rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", rec.Code)
		}
		if len(starter.started) != 0 {
			t.Errorf("started = %+v, want none", starter.started)
		}
		listed, _ := store.ListEnabled(context.Background())
		if len(listed) != 0 {
			t.Errorf("listed = %+v, want none", listed)
		}
	})

	t.Run("session start failure still succeeds", func(t *testing.T) {
		t.Parallel()
		// The workspace is persisted; the refresh job will pick it up.
		starter := &fakeStarter{err: errors.New("socket refused")}
		g, store := testGateway(t, func(context.Context, string) (*OAuthGrant, error) {
			return &OAuthGrant{TeamID: "T123", TeamName: "Acme", BotAccessToken: "xoxb-bot"}, nil
		}, starter)

		rec := httptest.NewRecorder()
		g.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth?code=tmpcode", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
		listed, _ := store.ListEnabled(context.Background())
		if len(listed) != 1 {
			t.Errorf("listed = %+v, want the workspace persisted", listed)
		}
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()

	t.Run("health", func(t *testing.T) {
		t.Parallel()
		g, _ := testGateway(t, nil, &fakeStarter{})
		rec := httptest.NewRecorder()
		g.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Errorf("health = %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("auth unmounted without an exchanger", func(t *testing.T) {
		t.Parallel()
		g, _ := testGateway(t, nil, &fakeStarter{})
		rec := httptest.NewRecorder()
		g.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth?code=tmpcode", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("metrics endpoint responds", func(t *testing.T) {
		t.Parallel()
		g, _ := testGateway(t, nil, &fakeStarter{})
		rec := httptest.NewRecorder()
		g.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	})
}
