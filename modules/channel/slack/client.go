// Package slack implements the Slack channel adapter: a Web API client,
// an RTM websocket listener, and the rendering of the engine's attachment
// union into Slack's legacy attachment shape.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultAPIURL    = "https://slack.com/api"
	maxRetries       = 3
	initialBackoff   = time.Second
	maxResponseBytes = 10 << 20
)

// Client is a thin HTTP wrapper around the Slack Web API.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Web API client for the given bot token. An empty
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

// do sends a JSON POST to the given Web API method and decodes the
// response envelope. 429 responses honor Retry-After with bounded retries.
func do[T any](ctx context.Context, c *Client, method string, payload any) (*T, error) {
	reqURL := c.baseURL + "/" + method

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("slack: marshal %s request: %w", method, err)
	}

	backoff := initialBackoff
	for attempt := range maxRetries {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("slack: create %s request: %w", method, err)
		}
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("slack: %s request failed: %w", method, err)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("slack: read %s response: %w", method, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries-1 {
			if after, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && after > 0 {
				backoff = time.Duration(after) * time.Second
			}
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
			continue
		}

		var out T
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("slack: decode %s response: %w", method, err)
		}
		return &out, checkOK(method, any(&out))
	}
	return nil, fmt.Errorf("slack: %s: retries exhausted", method)
}

// checkOK surfaces the envelope error of any response embedding apiResponse.
func checkOK(method string, v any) error {
	type oker interface{ ok() (bool, string) }
	if r, is := v.(oker); is {
		if ok, msg := r.ok(); !ok {
			return fmt.Errorf("slack: %s: %s", method, msg)
		}
	}
	return nil
}

func (r *apiResponse) ok() (bool, string) { return r.OK, r.Error }

// AuthTest validates the token and returns the bot's own identity.
func (c *Client) AuthTest(ctx context.Context) (string, string, error) {
	resp, err := do[authTestResponse](ctx, c, "auth.test", struct{}{})
	if err != nil {
		return "", "", err
	}
	return resp.UserID, resp.User, nil
}

// RTMConnect opens an RTM session and returns the websocket URL and the
// bot's user id.
func (c *Client) RTMConnect(ctx context.Context) (wsURL, selfID string, err error) {
	resp, err := do[rtmConnectResponse](ctx, c, "rtm.connect", struct{}{})
	if err != nil {
		return "", "", err
	}
	return resp.URL, resp.Self.ID, nil
}

type postMessageRequest struct {
	Channel     string       `json:"channel"`
	Text        string       `json:"text"`
	ThreadTS    string       `json:"thread_ts,omitempty"`
	Attachments []attachment `json:"attachments,omitempty"`
	UnfurlLinks bool         `json:"unfurl_links"`
	UnfurlMedia bool         `json:"unfurl_media"`
}

// PostMessage posts a message and returns its timestamp.
func (c *Client) PostMessage(ctx context.Context, channel, threadTS, text string, atts []attachment) (string, error) {
	resp, err := do[postMessageResponse](ctx, c, "chat.postMessage", postMessageRequest{
		Channel:     channel,
		Text:        text,
		ThreadTS:    threadTS,
		Attachments: atts,
	})
	if err != nil {
		return "", err
	}
	return resp.TS, nil
}

type updateMessageRequest struct {
	Channel     string       `json:"channel"`
	TS          string       `json:"ts"`
	Text        string       `json:"text"`
	Attachments []attachment `json:"attachments"`
}

// UpdateMessage replaces a posted message's content in place.
func (c *Client) UpdateMessage(ctx context.Context, channel, ts, text string, atts []attachment) error {
	if atts == nil {
		atts = []attachment{}
	}
	_, err := do[postMessageResponse](ctx, c, "chat.update", updateMessageRequest{
		Channel:     channel,
		TS:          ts,
		Text:        text,
		Attachments: atts,
	})
	return err
}

type deleteMessageRequest struct {
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

// DeleteMessage removes a posted message.
func (c *Client) DeleteMessage(ctx context.Context, channel, ts string) error {
	_, err := do[postMessageResponse](ctx, c, "chat.delete", deleteMessageRequest{
		Channel: channel,
		TS:      ts,
	})
	return err
}

// OAuthGrant is the result of a completed OAuth exchange.
type OAuthGrant struct {
	AccessToken    string
	TeamID         string
	TeamName       string
	BotUserID      string
	BotAccessToken string
}

// OAuthAccess exchanges an OAuth code for workspace credentials. It is a
// standalone call because it authenticates with the application's client
// credentials rather than a bot token.
func OAuthAccess(ctx context.Context, baseURL, clientID, clientSecret, redirectURL, code string) (*OAuthGrant, error) {
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("client_secret", clientSecret)
	q.Set("redirect_uri", redirectURL)
	q.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/oauth.access?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("slack: create oauth request: %w", err)
	}
	httpClient := &http.Client{Timeout: 30 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("slack: oauth request failed: %w", err)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("slack: read oauth response: %w", err)
	}

	var out oauthAccessResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("slack: decode oauth response: %w", err)
	}
	if !out.OK {
		return nil, fmt.Errorf("slack: oauth.access: %s", out.Error)
	}
	return &OAuthGrant{
		AccessToken:    out.AccessToken,
		TeamID:         out.TeamID,
		TeamName:       out.TeamName,
		BotUserID:      out.Bot.BotUserID,
		BotAccessToken: out.Bot.BotAccessToken,
	}, nil
}
