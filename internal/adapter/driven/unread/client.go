// Package unread implements the UnreadCounter port against the remote
// messaging service's unread-count endpoint.
package unread

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/unreadwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UnreadCounter = (*Client)(nil)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 64 << 10

// Client fetches unread counts over HTTP.
type Client struct {
	http    *http.Client
	baseURL *url.URL
}

// NewClient creates a Client whose transport is an in-memory httpcache
// (conditional request caching) bounded by timeout.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	httpClient := &http.Client{
		Transport: httpcache.NewMemoryCacheTransport(),
		Timeout:   timeout,
	}
	return NewClientWithHTTPClient(httpClient, baseURL)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	return &Client{http: httpClient, baseURL: u}, nil
}

// FetchUnreadCount returns the unread count for identity. Negative counts are
// reported as zero.
func (c *Client) FetchUnreadCount(ctx context.Context, credential, identity string) (int, error) {
	endpoint := c.baseURL.String() + "/v1/get_unread_cnt/" + url.PathEscape(identity)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("creating unread count request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)
	// Every poll must reach the origin, even when a cached reply is still fresh.
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching unread count: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, fmt.Errorf("reading unread count response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("unread count request returned status %d", resp.StatusCode)
	}

	n, err := parseCount(body)
	if err != nil {
		return 0, fmt.Errorf("decoding unread count: %w", err)
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

// countFields are the object keys accepted as the count, in lookup order.
var countFields = []string{"count", "unread", "unread_count", "unreadCount"}

// parseCount accepts a bare JSON number, a JSON string holding an integer, or
// an object carrying the count under one of countFields.
func parseCount(body []byte) (int, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return 0, fmt.Errorf("empty body")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}

	switch val := v.(type) {
	case json.Number:
		return numberToInt(val)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("string %q is not an integer", val)
		}
		return n, nil
	case map[string]any:
		for _, key := range countFields {
			raw, ok := val[key]
			if !ok {
				continue
			}
			if num, ok := raw.(json.Number); ok {
				return numberToInt(num)
			}
			return 0, fmt.Errorf("field %q is not numeric", key)
		}
		return 0, fmt.Errorf("object has no count field")
	default:
		return 0, fmt.Errorf("unexpected JSON value %T", v)
	}
}

func numberToInt(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("count %s is not an integer", n)
	}
	return int(f), nil
}
