// Package session starts and supervises one platform listener per
// authorized workspace.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tutorbot/tutor/internal/workspace"
)

// Listener is one live platform session. The slack and discord adapters
// implement it.
type Listener interface {
	Start() error
	Stop(ctx context.Context) error
}

// Factory builds a listener for a workspace, dispatching on its platform.
type Factory func(ws workspace.Workspace) (Listener, error)

// Manager keeps one running listener per workspace. New workspaces can be
// admitted at runtime, either by the OAuth handshake or by the periodic
// store refresh; existing sessions are never restarted by a refresh.
type Manager struct {
	store   *workspace.Store
	factory Factory
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]Listener

	cron *cron.Cron
}

// NewManager creates a Manager over the given workspace store.
func NewManager(store *workspace.Store, factory Factory, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    store,
		factory:  factory,
		logger:   logger.With("component", "session"),
		sessions: make(map[string]Listener),
	}
}

func sessionKey(ws workspace.Workspace) string {
	return string(ws.Platform) + "/" + ws.ID
}

// StartAll starts a session for every enabled workspace in the store.
// Individual startup failures are logged and skipped so one bad token
// cannot keep the rest of the fleet down.
func (m *Manager) StartAll(ctx context.Context) error {
	workspaces, err := m.store.ListEnabled(ctx)
	if err != nil {
		return err
	}
	for _, ws := range workspaces {
		if err := m.StartWorkspace(ws); err != nil {
			m.logger.Error("workspace session failed to start",
				"workspace", ws.ID,
				"platform", string(ws.Platform),
				"error", err,
			)
		}
	}
	return nil
}

// StartWorkspace starts a session for ws. Starting an already-running
// workspace is a no-op.
func (m *Manager) StartWorkspace(ws workspace.Workspace) error {
	key := sessionKey(ws)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, running := m.sessions[key]; running {
		return nil
	}

	l, err := m.factory(ws)
	if err != nil {
		return fmt.Errorf("session: build listener for %s: %w", ws.ID, err)
	}
	if err := l.Start(); err != nil {
		return fmt.Errorf("session: start %s: %w", ws.ID, err)
	}
	m.sessions[key] = l
	m.logger.Info("workspace session started",
		"workspace", ws.ID,
		"name", ws.Name,
		"platform", string(ws.Platform),
	)
	return nil
}

// ScheduleRefresh registers a cron job re-reading the store on the given
// schedule and starting sessions for rows added since startup (for
// example by /auth on another instance).
func (m *Manager) ScheduleRefresh(spec string) error {
	if spec == "" {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, m.refresh); err != nil {
		return fmt.Errorf("session: bad refresh schedule %q: %w", spec, err)
	}
	c.Start()
	m.cron = c
	return nil
}

func (m *Manager) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workspaces, err := m.store.ListEnabled(ctx)
	if err != nil {
		m.logger.Error("workspace refresh failed", "error", err)
		return
	}
	for _, ws := range workspaces {
		if err := m.StartWorkspace(ws); err != nil {
			m.logger.Error("workspace session failed to start",
				"workspace", ws.ID,
				"error", err,
			)
		}
	}
}

// Stop halts the refresh job and every running session, in no particular
// order.
func (m *Manager) Stop(ctx context.Context) {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]Listener)
	m.mu.Unlock()

	for key, l := range sessions {
		if err := l.Stop(ctx); err != nil {
			m.logger.Error("session stop error", "session", key, "error", err)
		}
	}
}
