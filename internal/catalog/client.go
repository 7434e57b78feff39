// Package catalog provides typed HTTP access to the Scryfall card catalog.
// It exposes name lookup, search, and printings retrieval, and maps the
// catalog's structured error payloads onto a small resolution taxonomy.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public catalog endpoint.
	DefaultBaseURL = "https://api.scryfall.com"

	// DefaultSort is the popularity ranking the catalog sorts by when the
	// caller does not ask for anything else.
	DefaultSort = "edhrec"

	maxRetries       = 3
	maxResponseBytes = 10 << 20 // guard against unbounded reads
	userAgent        = "tutor (+https://github.com/tutorbot/tutor)"
)

// Client is a thin HTTP wrapper around the catalog API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a catalog client. An empty baseURL selects the public
// endpoint.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With("component", "catalog"),
	}
}

// FindByName resolves a card by fuzzy name match. It returns ErrAmbiguous
// when the catalog reports multiple equally valid matches and ErrNotFound
// when none match.
func (c *Client) FindByName(ctx context.Context, name string) (*Card, error) {
	q := url.Values{}
	q.Set("fuzzy", name)
	return do[Card](ctx, c, c.baseURL+"/cards/named", q)
}

// Search runs a full-syntax catalog search. dir is "asc", "desc", or empty
// for the service default; order is the sort key, defaulting to the
// popularity ranking. Non-default sort keys request one result per
// printing so that printing-level sorts (price, release) behave sensibly.
func (c *Client) Search(ctx context.Context, query, dir, order string) (*ResultSet, error) {
	if order == "" {
		order = DefaultSort
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("order", order)
	if dir != "" {
		q.Set("dir", dir)
	}
	if order != DefaultSort {
		q.Set("unique", "prints")
	}
	return do[ResultSet](ctx, c, c.baseURL+"/cards/search", q)
}

// SearchAllPrintings runs a search returning every printing matching the
// query, oldest first.
func (c *Client) SearchAllPrintings(ctx context.Context, query string) (*ResultSet, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("order", "released")
	q.Set("unique", "prints")
	return do[ResultSet](ctx, c, c.baseURL+"/cards/search", q)
}

// FetchPrintings follows a card's printing-history link, which is an
// absolute URL supplied by the catalog itself.
func (c *Client) FetchPrintings(ctx context.Context, printingsURL string) (*ResultSet, error) {
	return do[ResultSet](ctx, c, printingsURL, nil)
}

// do issues a GET request and decodes the response. Server errors are
// retried up to maxRetries times before the last response is inspected.
// Non-2xx responses carrying a structured error payload are classified
// into the resolution taxonomy; everything else surfaces as a generic
// transport error.
func do[T any](ctx context.Context, c *Client, rawURL string, query url.Values) (*T, error) {
	if query != nil {
		rawURL += "?" + query.Encode()
	}

	var resp *http.Response
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("catalog: create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err = c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("catalog: request failed: %w", err)
		}

		if resp.StatusCode < 500 || attempt >= maxRetries {
			break
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		c.logger.Debug("catalog request failed, retrying",
			"status", resp.StatusCode,
			"attempt", attempt+1,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("catalog: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Code == "" {
			return nil, fmt.Errorf("catalog: unexpected status %d", resp.StatusCode)
		}
		return nil, apiErr.classify()
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("catalog: decode response: %w", err)
	}
	return &out, nil
}
