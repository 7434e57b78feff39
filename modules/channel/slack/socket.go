package slack

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	readLimit         = 1 << 20
	pingInterval      = 30 * time.Second
	reconnectBackoff    = 5 * time.Second
	reconnectBackoffMax = time.Minute
)

// socket runs one RTM websocket session: it dials the URL handed out by
// rtm.connect, keeps the connection alive with pings, and hands every
// decoded event to the listener. On any failure it returns so the caller
// can reconnect with a fresh URL.
type socket struct {
	url     string
	handler func(ctx context.Context, ev rtmEvent)
	logger  *slog.Logger
}

// run reads events until the connection drops or ctx is canceled.
func (s *socket) run(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, s.url, nil)
	if err != nil {
		return err
	}
	conn.SetReadLimit(readLimit)
	defer conn.Close(websocket.StatusNormalClosure, "")

	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go s.keepAlive(pingCtx, conn)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var ev rtmEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.logger.Debug("undecodable rtm frame", "error", err)
			continue
		}
		ev.Raw = data
		s.handler(ctx, ev)
	}
}

// keepAlive pings the server on an interval so idle connections are not
// reaped.
func (s *socket) keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Debug("rtm ping failed", "error", err)
				return
			}
		}
	}
}
