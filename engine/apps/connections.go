package apps

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Connection is an app account a user has linked.
type Connection struct {
	ID          string `json:"id"`
	ServiceName string `json:"service_name"`
	Status      string `json:"status"`
}

// ConnectionLister returns the active connections of a user.
type ConnectionLister interface {
	ListActiveConnections(ctx context.Context, userID string) ([]Connection, error)
}

// StaticConnections serves a fixed set of connections per user, for local runs.
type StaticConnections map[string][]Connection

func (s StaticConnections) ListActiveConnections(_ context.Context, userID string) ([]Connection, error) {
	return s[userID], nil
}

type HTTPConnectionLister struct {
	client *resty.Client
}

// NewHTTPConnectionLister talks to the connection service at baseURL.
func NewHTTPConnectionLister(baseURL, apiKey string, timeout time.Duration) (*HTTPConnectionLister, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("connection service URL is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid connection service URL: %w", err)
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return r != nil && (r.StatusCode() >= 500 || r.StatusCode() == http.StatusTooManyRequests)
	})
	return &HTTPConnectionLister{client: client}, nil
}

type connectionsResponse struct {
	Data []Connection `json:"data"`
}

func (l *HTTPConnectionLister) ListActiveConnections(ctx context.Context, userID string) ([]Connection, error) {
	var body connectionsResponse
	resp, err := l.client.R().
		SetContext(ctx).
		SetPathParam("user", userID).
		SetQueryParam("status", "active").
		SetResult(&body).
		Get("/users/{user}/connections")
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to list connections: status %d", resp.StatusCode())
	}
	active := make([]Connection, 0, len(body.Data))
	for _, c := range body.Data {
		if c.Status == "" || c.Status == "active" {
			active = append(active, c)
		}
	}
	return active, nil
}

// CachedConnectionLister memoizes a lister per user for a bounded time.
type CachedConnectionLister struct {
	next  ConnectionLister
	cache *expirable.LRU[string, []Connection]
}

func NewCachedConnectionLister(next ConnectionLister, size int, ttl time.Duration) *CachedConnectionLister {
	if size <= 0 {
		size = 1024
	}
	return &CachedConnectionLister{next: next, cache: expirable.NewLRU[string, []Connection](size, nil, ttl)}
}

func (c *CachedConnectionLister) ListActiveConnections(ctx context.Context, userID string) ([]Connection, error) {
	if hit, ok := c.cache.Get(userID); ok {
		return hit, nil
	}
	conns, err := c.next.ListActiveConnections(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.cache.Add(userID, conns)
	return conns, nil
}

// Invalidate drops the cached connections of userID, e.g. after an OAuth callback.
func (c *CachedConnectionLister) Invalidate(userID string) {
	c.cache.Remove(userID)
}
