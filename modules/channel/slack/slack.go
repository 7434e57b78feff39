package slack

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tutorbot/tutor/internal/interpret"
	"github.com/tutorbot/tutor/internal/reconcile"
	"github.com/tutorbot/tutor/internal/telemetry"
	"github.com/tutorbot/tutor/internal/workspace"
	"github.com/tutorbot/tutor/pkg/reply"
)

// Compile-time interface guard.
var _ reconcile.Sink = (*Listener)(nil)

// Listener runs one Slack workspace session: it consumes RTM events,
// feeds message text through the interpretation engine, and posts,
// updates, and deletes replies through the Web API. It is the
// reconciler's Sink for this workspace.
type Listener struct {
	ws         workspace.Workspace
	client     *Client
	interp     *interpret.Interpreter
	reconciler *reconcile.Reconciler
	logger     *slog.Logger

	selfID string

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewListener creates a listener for one workspace. apiURL is empty
// outside tests.
func NewListener(ws workspace.Workspace, apiURL string, interp *interpret.Interpreter, rec *reconcile.Reconciler, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		ws:         ws,
		client:     NewClient(ws.BotToken, apiURL),
		interp:     interp,
		reconciler: rec,
		logger:     logger.With("component", "slack", "workspace", ws.ID),
	}
}

// Start connects the RTM session and begins consuming events. The session
// reconnects with backoff until Stop is called.
func (l *Listener) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})

	go l.sessionLoop(ctx)
	return nil
}

// Stop tears the session down.
func (l *Listener) Stop(ctx context.Context) error {
	l.once.Do(func() {
		if l.cancel != nil {
			l.cancel()
		}
	})
	if l.done == nil {
		return nil
	}
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sessionLoop dials RTM sessions until ctx is canceled. Every reconnect
// fetches a fresh websocket URL.
func (l *Listener) sessionLoop(ctx context.Context) {
	defer close(l.done)

	backoff := reconnectBackoff
	for ctx.Err() == nil {
		wsURL, selfID, err := l.client.RTMConnect(ctx)
		if err != nil {
			l.logger.Error("rtm.connect failed", "error", err)
		} else {
			l.selfID = selfID
			l.logger.Info("rtm session connected", "self", selfID)
			backoff = reconnectBackoff

			s := &socket{url: wsURL, handler: l.handleEvent, logger: l.logger}
			if err := s.run(ctx); err != nil && ctx.Err() == nil {
				l.logger.Error("rtm session dropped", "error", err)
				telemetry.SessionRestarts.WithLabelValues(string(workspace.PlatformSlack)).Inc()
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < reconnectBackoffMax {
			backoff *= 2
		}
	}
}

// handleEvent dispatches one RTM event. Fresh messages run the pipeline
// and post; edits and deletions reconcile against prior replies.
func (l *Listener) handleEvent(ctx context.Context, ev rtmEvent) {
	if ev.Type != "message" {
		return
	}
	telemetry.InboundMessages.WithLabelValues(string(workspace.PlatformSlack)).Inc()

	switch ev.Subtype {
	case "":
		l.onPosted(ctx, ev)
	case "message_changed":
		l.onEdited(ctx, ev)
	case "message_deleted":
		l.onDeleted(ctx, ev)
	}
}

func (l *Listener) onPosted(ctx context.Context, ev rtmEvent) {
	if ev.BotID != "" || ev.User == "" || ev.User == l.selfID {
		return
	}
	inbound := reply.MessageRef{Timestamp: ev.TS, Channel: ev.Channel, ThreadID: ev.ThreadTS}
	replies := l.interp.Interpret(ctx, decodeEntities(ev.Text), l.ws, ev.User, isDirectChannel(ev.Channel))
	l.reconciler.PostNew(ctx, inbound, replies, l)
}

func (l *Listener) onEdited(ctx context.Context, ev rtmEvent) {
	if ev.Message == nil || ev.Message.BotID != "" {
		return
	}
	inbound := reply.MessageRef{Timestamp: ev.Message.TS, Channel: ev.Channel}
	text := decodeEntities(ev.Message.Text)
	l.reconciler.OnEdit(ctx, inbound, func(ctx context.Context) []reply.Reply {
		return l.interp.Interpret(ctx, text, l.ws, "", isDirectChannel(ev.Channel))
	}, l)
}

func (l *Listener) onDeleted(ctx context.Context, ev rtmEvent) {
	inbound := reply.MessageRef{Timestamp: ev.DeletedTS, Channel: ev.Channel}
	l.reconciler.OnDelete(ctx, inbound, l)
}

// Post implements reconcile.Sink.
func (l *Listener) Post(ctx context.Context, channel, threadID string, rep reply.Reply) (reply.MessageRef, error) {
	ts, err := l.client.PostMessage(ctx, channel, threadID, rep.Text, renderAttachments(rep.Attachments))
	if err != nil {
		return reply.MessageRef{}, err
	}
	telemetry.RepliesPosted.WithLabelValues(string(workspace.PlatformSlack)).Inc()
	return reply.MessageRef{Timestamp: ts, Channel: channel}, nil
}

// Update implements reconcile.Sink.
func (l *Listener) Update(ctx context.Context, ref reply.MessageRef, rep reply.Reply) error {
	if err := l.client.UpdateMessage(ctx, ref.Channel, ref.Timestamp, rep.Text, renderAttachments(rep.Attachments)); err != nil {
		return err
	}
	telemetry.RepliesUpdated.WithLabelValues(string(workspace.PlatformSlack)).Inc()
	return nil
}

// Delete implements reconcile.Sink.
func (l *Listener) Delete(ctx context.Context, ref reply.MessageRef) error {
	if err := l.client.DeleteMessage(ctx, ref.Channel, ref.Timestamp); err != nil {
		return err
	}
	telemetry.RepliesDeleted.WithLabelValues(string(workspace.PlatformSlack)).Inc()
	return nil
}

// decodeEntities undoes the HTML escaping Slack applies to angle brackets,
// which would otherwise break sort specifiers like {{query}}<usd.
func decodeEntities(text string) string {
	text = strings.ReplaceAll(text, "&gt;", ">")
	return strings.ReplaceAll(text, "&lt;", "<")
}

// isDirectChannel reports whether a channel id names a direct-message
// conversation.
func isDirectChannel(id string) bool {
	return strings.HasPrefix(id, "D")
}
