// Package app wires the bot together and runs it until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tutorbot/tutor/internal/catalog"
	"github.com/tutorbot/tutor/internal/config"
	"github.com/tutorbot/tutor/internal/gateway"
	"github.com/tutorbot/tutor/internal/history"
	"github.com/tutorbot/tutor/internal/interpret"
	"github.com/tutorbot/tutor/internal/reconcile"
	"github.com/tutorbot/tutor/internal/session"
	"github.com/tutorbot/tutor/internal/telemetry"
	"github.com/tutorbot/tutor/internal/workspace"
	"github.com/tutorbot/tutor/modules/channel/discord"
	"github.com/tutorbot/tutor/modules/channel/slack"
)

const shutdownTimeout = 30 * time.Second

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is the path to the YAML configuration file.
	ConfigPath string

	// Version is injected at build time via ldflags.
	Version string
}

// Run loads configuration, starts the gateway and a session per enabled
// workspace, and blocks until a shutdown signal is received.
func Run(params RunParams) error {
	cfg, err := config.Load(params.ConfigPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	logger.Info("starting tutor", "version", params.Version)

	store, err := workspace.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	cat := catalog.NewClient(cfg.Catalog.BaseURL, logger)
	analytics := telemetry.NewAnalytics(cfg.Analytics.TrackingID, cfg.Analytics.Endpoint, logger)
	interp := interpret.New(cat, analytics, logger)
	reconciler := reconcile.New(history.NewInMemoryStore(), logger)

	factory := func(ws workspace.Workspace) (session.Listener, error) {
		switch ws.Platform {
		case workspace.PlatformSlack:
			return slack.NewListener(ws, "", interp, reconciler, logger), nil
		case workspace.PlatformDiscord:
			return discord.NewListener(ws, "", interp, reconciler, logger), nil
		default:
			return nil, fmt.Errorf("app: unknown platform %q", ws.Platform)
		}
	}
	manager := session.NewManager(store, factory, logger)

	var exchange gateway.ExchangeFunc
	if cfg.Gateway.OAuth.IsConfigured() {
		oauth := cfg.Gateway.OAuth
		exchange = func(ctx context.Context, code string) (*gateway.OAuthGrant, error) {
			grant, err := slack.OAuthAccess(ctx, "", oauth.ClientID, oauth.ClientSecret, oauth.RedirectURL, code)
			if err != nil {
				return nil, err
			}
			return &gateway.OAuthGrant{
				AccessToken:    grant.AccessToken,
				TeamID:         grant.TeamID,
				TeamName:       grant.TeamName,
				BotUserID:      grant.BotUserID,
				BotAccessToken: grant.BotAccessToken,
			}, nil
		}
	}
	gw := gateway.New(cfg.Gateway, store, manager, exchange, logger)

	if err := gw.Start(); err != nil {
		return err
	}
	startCtx, cancelStart := context.WithTimeout(context.Background(), time.Minute)
	err = manager.StartAll(startCtx)
	cancelStart()
	if err != nil {
		return err
	}
	if err := manager.ScheduleRefresh(cfg.Session.RefreshSchedule); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	logger.Info("shutting down", "signal", s.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	manager.Stop(ctx)
	if err := gw.Stop(ctx); err != nil {
		logger.Error("gateway stop error", "error", err)
	}
	return nil
}
