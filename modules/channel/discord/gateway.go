package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

// Gateway opcodes the adapter handles.
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatAck   = 11
)

// intents: guild messages, direct messages, message content.
const gatewayIntents = (1 << 9) | (1 << 12) | (1 << 15)

const readLimit = 1 << 20

// gatewayPayload is one frame on the gateway socket.
type gatewayPayload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
	S  *int64          `json:"s"`
	T  string          `json:"t"`
}

type helloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// gatewayMessage is the subset of the dispatched message object the
// adapter needs. An empty GuildID means the message arrived in a DM.
type gatewayMessage struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	Content   string `json:"content"`
	Author    struct {
		ID  string `json:"id"`
		Bot bool   `json:"bot"`
	} `json:"author"`
}

// gatewaySession runs one websocket session against the Discord gateway:
// hello, identify, heartbeats, and event dispatch. It returns when the
// connection drops or the server asks for a reconnect.
type gatewaySession struct {
	url     string
	token   string
	handler func(ctx context.Context, event string, msg gatewayMessage)
	logger  *slog.Logger
}

func (s *gatewaySession) run(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, s.url+"?v=10&encoding=json", nil)
	if err != nil {
		return err
	}
	conn.SetReadLimit(readLimit)
	defer conn.Close(websocket.StatusNormalClosure, "")

	hello, err := s.readPayload(ctx, conn)
	if err != nil {
		return err
	}
	if hello.Op != opHello {
		return fmt.Errorf("discord: expected hello, got op %d", hello.Op)
	}
	var hd helloData
	if err := json.Unmarshal(hello.D, &hd); err != nil {
		return fmt.Errorf("discord: decode hello: %w", err)
	}

	if err := s.identify(ctx, conn); err != nil {
		return err
	}

	var lastSeq atomic.Int64
	hbCtx, cancelHB := context.WithCancel(ctx)
	defer cancelHB()
	go s.heartbeat(hbCtx, conn, time.Duration(hd.HeartbeatInterval)*time.Millisecond, &lastSeq)

	for {
		payload, err := s.readPayload(ctx, conn)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if payload.S != nil {
			lastSeq.Store(*payload.S)
		}

		switch payload.Op {
		case opDispatch:
			switch payload.T {
			case "MESSAGE_CREATE", "MESSAGE_UPDATE", "MESSAGE_DELETE":
				var msg gatewayMessage
				if err := json.Unmarshal(payload.D, &msg); err != nil {
					s.logger.Debug("undecodable dispatch", "event", payload.T, "error", err)
					continue
				}
				s.handler(ctx, payload.T, msg)
			}
		case opReconnect, opInvalidSession:
			return fmt.Errorf("discord: server requested reconnect (op %d)", payload.Op)
		case opHeartbeatAck:
			// nothing to do
		}
	}
}

func (s *gatewaySession) readPayload(ctx context.Context, conn *websocket.Conn) (*gatewayPayload, error) {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	var payload gatewayPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("discord: decode frame: %w", err)
	}
	return &payload, nil
}

func (s *gatewaySession) identify(ctx context.Context, conn *websocket.Conn) error {
	type properties struct {
		OS      string `json:"os"`
		Browser string `json:"browser"`
		Device  string `json:"device"`
	}
	identify := struct {
		Op int `json:"op"`
		D  struct {
			Token      string     `json:"token"`
			Intents    int        `json:"intents"`
			Properties properties `json:"properties"`
		} `json:"d"`
	}{Op: opIdentify}
	identify.D.Token = s.token
	identify.D.Intents = gatewayIntents
	identify.D.Properties = properties{OS: "linux", Browser: "tutor", Device: "tutor"}

	data, err := json.Marshal(identify)
	if err != nil {
		return fmt.Errorf("discord: marshal identify: %w", err)
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

func (s *gatewaySession) heartbeat(ctx context.Context, conn *websocket.Conn, interval time.Duration, lastSeq *atomic.Int64) {
	if interval <= 0 {
		interval = 41250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			beat := struct {
				Op int   `json:"op"`
				D  int64 `json:"d"`
			}{Op: opHeartbeat, D: lastSeq.Load()}
			data, _ := json.Marshal(beat)
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				s.logger.Debug("heartbeat failed", "error", err)
				return
			}
		}
	}
}
