package gateway

import (
	"fmt"
	"net/http"

	"github.com/tutorbot/tutor/internal/workspace"
)

// handleAuth completes the OAuth handshake: it exchanges the callback
// code for workspace credentials, persists the workspace, and starts a
// live session for it immediately.
func (g *Gateway) handleAuth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.NotFound(w, r)
			return
		}

		grant, err := g.exchange(r.Context(), code)
		if err != nil {
			g.logger.Error("oauth exchange failed", "error", err)
			http.Error(w, "authorization failed", http.StatusBadGateway)
			return
		}

		ws := workspace.Workspace{
			Enabled:  true,
			Platform: workspace.PlatformSlack,
			ID:       grant.TeamID,
			Name:     grant.TeamName,
			BotToken: grant.BotAccessToken,
		}
		if err := g.store.Insert(r.Context(), ws, grant.AccessToken, grant.BotUserID); err != nil {
			g.logger.Error("workspace insert failed", "workspace", ws.ID, "error", err)
			http.Error(w, "authorization failed", http.StatusInternalServerError)
			return
		}

		if err := g.sessions.StartWorkspace(ws); err != nil {
			g.logger.Error("workspace session failed to start", "workspace", ws.ID, "error", err)
		}

		fmt.Fprintf(w, "Successfully added Tutor to the %s workspace!", ws.Name)
	}
}
