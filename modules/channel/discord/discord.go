package discord

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tutorbot/tutor/internal/interpret"
	"github.com/tutorbot/tutor/internal/reconcile"
	"github.com/tutorbot/tutor/internal/telemetry"
	"github.com/tutorbot/tutor/internal/workspace"
	"github.com/tutorbot/tutor/pkg/reply"
)

const (
	reconnectBackoff    = 5 * time.Second
	reconnectBackoffMax = time.Minute
)

// Compile-time interface guard.
var _ reconcile.Sink = (*Listener)(nil)

// Listener runs one Discord bot session: it consumes gateway events, feeds
// message text through the interpretation engine, and posts, updates, and
// deletes replies through the REST API. It is the reconciler's Sink for
// this workspace.
type Listener struct {
	ws         workspace.Workspace
	client     *Client
	interp     *interpret.Interpreter
	reconciler *reconcile.Reconciler
	logger     *slog.Logger

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
		logger:     logger.With("component", "discord", "workspace", ws.ID),
	}
}

// Start connects the gateway session and begins consuming events.
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

func (l *Listener) sessionLoop(ctx context.Context) {
	defer close(l.done)

	backoff := reconnectBackoff
	for ctx.Err() == nil {
		wsURL, err := l.client.GatewayURL(ctx)
		if err != nil {
			l.logger.Error("gateway url fetch failed", "error", err)
		} else {
			l.logger.Info("gateway session connecting")
			backoff = reconnectBackoff

			s := &gatewaySession{url: wsURL, token: l.ws.BotToken, handler: l.handleEvent, logger: l.logger}
			if err := s.run(ctx); err != nil && ctx.Err() == nil {
				l.logger.Error("gateway session dropped", "error", err)
				telemetry.SessionRestarts.WithLabelValues(string(workspace.PlatformDiscord)).Inc()
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

// handleEvent dispatches one gateway event. Message ids are stable across
// edits, so they serve as the timestamp half of the message identity.
func (l *Listener) handleEvent(ctx context.Context, event string, msg gatewayMessage) {
	telemetry.InboundMessages.WithLabelValues(string(workspace.PlatformDiscord)).Inc()

	inbound := reply.MessageRef{Timestamp: msg.ID, Channel: msg.ChannelID}
	isPrivate := msg.GuildID == ""

	switch event {
	case "MESSAGE_CREATE":
		if msg.Author.Bot {
			return
		}
		replies := l.interp.Interpret(ctx, msg.Content, l.ws, msg.Author.ID, isPrivate)
		l.reconciler.PostNew(ctx, inbound, replies, l)

	case "MESSAGE_UPDATE":
		if msg.Author.Bot {
			return
		}
		text := msg.Content
		l.reconciler.OnEdit(ctx, inbound, func(ctx context.Context) []reply.Reply {
			return l.interp.Interpret(ctx, text, l.ws, "", isPrivate)
		}, l)

	case "MESSAGE_DELETE":
		l.reconciler.OnDelete(ctx, inbound, l)
	}
}

// Post implements reconcile.Sink. Discord has no thread timestamp
// threading; threads are channels of their own, so threadID is unused.
func (l *Listener) Post(ctx context.Context, channel, _ string, rep reply.Reply) (reply.MessageRef, error) {
	id, err := l.client.CreateMessage(ctx, channel, renderPayload(rep))
	if err != nil {
		return reply.MessageRef{}, err
	}
	telemetry.RepliesPosted.WithLabelValues(string(workspace.PlatformDiscord)).Inc()
	return reply.MessageRef{Timestamp: id, Channel: channel}, nil
}

// Update implements reconcile.Sink.
func (l *Listener) Update(ctx context.Context, ref reply.MessageRef, rep reply.Reply) error {
	if err := l.client.EditMessage(ctx, ref.Channel, ref.Timestamp, renderPayload(rep)); err != nil {
		return err
	}
	telemetry.RepliesUpdated.WithLabelValues(string(workspace.PlatformDiscord)).Inc()
	return nil
}

// Delete implements reconcile.Sink.
func (l *Listener) Delete(ctx context.Context, ref reply.MessageRef) error {
	if err := l.client.DeleteMessage(ctx, ref.Channel, ref.Timestamp); err != nil {
		return err
	}
	telemetry.RepliesDeleted.WithLabelValues(string(workspace.PlatformDiscord)).Inc()
	return nil
}
