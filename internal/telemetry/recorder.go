// Package telemetry provides fire-and-forget analytics event recording and
// the process's Prometheus counters.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tutorbot/tutor/internal/workspace"
)

// DefaultEndpoint is the Measurement Protocol collection endpoint.
const DefaultEndpoint = "https://www.google-analytics.com"

const analyticsVersion = "1"

// Analytics records usage events via the Google Analytics Measurement
// Protocol. Recording is fire-and-forget: it never blocks the caller and
// failures are ignored. A nil Analytics, or one with no tracking id,
// records nothing.
type Analytics struct {
	trackingID string
	endpoint   string
	http       *http.Client
	logger     *slog.Logger
}

// NewAnalytics creates a recorder for the given tracking id. An empty
// endpoint selects the public collection endpoint.
func NewAnalytics(trackingID, endpoint string, logger *slog.Logger) *Analytics {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		trackingID: trackingID,
		endpoint:   endpoint,
		http:       &http.Client{Timeout: 5 * time.Second},
		logger:     logger.With("component", "telemetry"),
	}
}

// Record emits one event. The sender id is the client id, the workspace
// label is the event label, and the action carries the matched reference
// text when present.
func (a *Analytics) Record(ws workspace.Workspace, senderID, category, action string) {
	if a == nil || a.trackingID == "" {
		return
	}
	q := url.Values{}
	q.Set("v", analyticsVersion)
	q.Set("tid", a.trackingID)
	q.Set("cid", senderID)
	q.Set("ec", category)
	if action != "" {
		q.Set("ea", action)
	}
	q.Set("el", ws.Label())
	q.Set("t", "event")

	go a.send(a.endpoint + "/collect?" + q.Encode())
}

func (a *Analytics) send(rawURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, nil)
	if err != nil {
		return
	}
	resp, err := a.http.Do(req)
	if err != nil {
		a.logger.Debug("analytics event dropped", "error", err)
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
