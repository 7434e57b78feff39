// Package discord implements the Discord channel adapter: a REST client,
// a gateway websocket listener, and embed rendering of the engine's
// attachment union.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultAPIURL    = "https://discord.com/api/v10"
	maxRetries       = 3
	initialBackoff   = time.Second
	maxResponseBytes = 10 << 20
)

// Client is a thin HTTP wrapper around the Discord REST API.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a REST client for the given bot token. An empty
// baseURL selects the public API.
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	return &Client{
		token:   token,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// restMessage is the subset of Discord's message object the adapter needs.
type restMessage struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

// do issues one REST call with retry on 429.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("discord: marshal %s %s: %w", method, path, err)
		}
	}

	backoff := initialBackoff
	for attempt := range maxRetries {
		var body io.Reader
		if data != nil {
			body = bytes.NewReader(data)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return fmt.Errorf("discord: create %s %s: %w", method, path, err)
		}
		req.Header.Set("Authorization", "Bot "+c.token)
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("discord: %s %s failed: %w", method, path, err)
		}
		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("discord: read %s %s response: %w", method, path, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries-1 {
			if after, err := strconv.ParseFloat(resp.Header.Get("Retry-After"), 64); err == nil && after > 0 {
				backoff = time.Duration(after * float64(time.Second))
			}
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("discord: %s %s: unexpected status %d", method, path, resp.StatusCode)
		}
		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("discord: decode %s %s response: %w", method, path, err)
			}
		}
		return nil
	}
	return fmt.Errorf("discord: %s %s: retries exhausted", method, path)
}

// GatewayURL asks the API for the websocket URL bots should connect to.
func (c *Client) GatewayURL(ctx context.Context) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, "/gateway/bot", nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// CreateMessage posts a message to a channel and returns its id.
func (c *Client) CreateMessage(ctx context.Context, channelID string, payload messagePayload) (string, error) {
	var out restMessage
	if err := c.do(ctx, http.MethodPost, "/channels/"+channelID+"/messages", payload, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// EditMessage replaces a posted message's content.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID string, payload messagePayload) error {
	return c.do(ctx, http.MethodPatch, "/channels/"+channelID+"/messages/"+messageID, payload, nil)
}

// DeleteMessage removes a posted message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return c.do(ctx, http.MethodDelete, "/channels/"+channelID+"/messages/"+messageID, nil, nil)
}
