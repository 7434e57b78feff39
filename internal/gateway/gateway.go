// Package gateway runs the bot's HTTP surface: health, Prometheus
// metrics, and the Slack OAuth handshake that admits new workspaces.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/tutorbot/tutor/internal/config"
	"github.com/tutorbot/tutor/internal/workspace"
)

// OAuthGrant is the result of a completed OAuth code exchange, in
// transport-neutral form.
type OAuthGrant struct {
	AccessToken    string
	TeamID         string
	TeamName       string
	BotUserID      string
	BotAccessToken string
}

// ExchangeFunc exchanges an OAuth code for workspace credentials. The
// Slack adapter supplies the real implementation; tests supply fakes.
type ExchangeFunc func(ctx context.Context, code string) (*OAuthGrant, error)

// WorkspaceStarter admits a newly authorized workspace into the running
// process. *session.Manager satisfies it.
type WorkspaceStarter interface {
	StartWorkspace(ws workspace.Workspace) error
}

// Gateway is the HTTP server.
type Gateway struct {
	cfg      config.GatewayConfig
	exchange ExchangeFunc
	store    *workspace.Store
	sessions WorkspaceStarter
	logger   *slog.Logger

	srv *http.Server
}

// New creates a Gateway. exchange may be nil when OAuth is not configured.
func New(cfg config.GatewayConfig, store *workspace.Store, sessions WorkspaceStarter, exchange ExchangeFunc, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		cfg:      cfg,
		exchange: exchange,
		store:    store,
		sessions: sessions,
		logger:   logger.With("component", "gateway"),
	}
}

// Start binds the listen address and serves in the background.
func (g *Gateway) Start() error {
	if g.cfg.Listen == "" {
		g.logger.Info("gateway disabled, no listen address")
		return nil
	}

	ln, err := net.Listen("tcp", g.cfg.Listen)
	if err != nil {
		return fmt.Errorf("gateway: listen on %s: %w", g.cfg.Listen, err)
	}

	g.srv = &http.Server{
		Handler:           g.buildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := g.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway server error", "error", err)
		}
	}()

	g.logger.Info("gateway listening", "addr", g.cfg.Listen)
	return nil
}

// Stop shuts the server down gracefully.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.srv == nil {
		return nil
	}
	return g.srv.Shutdown(ctx)
}
