// Package n8n implements the runtime client against the n8n public REST API.
package n8n

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/compozy/autoflow/engine/compiler"
	"github.com/compozy/autoflow/engine/runtime"
	"github.com/go-resty/resty/v2"
)

const apiKeyHeader = "X-N8N-API-KEY"

// Config is built once at startup and handed to NewClient; the client never reads the environment.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
}

var (
	ErrMissingBaseURL = errors.New("runtime base URL is required")
	ErrMissingAPIKey  = errors.New("runtime API key is required")
)

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrMissingBaseURL
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid runtime base URL: %w", err)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.RetryCount < 0 {
		return fmt.Errorf("retry count must not be negative")
	}
	return nil
}

// Client retries create and activate calls; executions are not idempotent and go out once.
type Client struct {
	http *resty.Client
	exec *resty.Client
}

var _ runtime.Client = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := newRestyClient(cfg, timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	client.AddRetryCondition(retryCondition)
	return &Client{http: client, exec: newRestyClient(cfg, timeout)}, nil
}

func newRestyClient(cfg Config, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/api/v1").
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader(apiKeyHeader, cfg.APIKey)
}

func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

type workflowResponse struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

func (c *Client) CreateWorkflow(ctx context.Context, graph *compiler.Graph) (*runtime.WorkflowRef, error) {
	if graph == nil {
		return nil, fmt.Errorf("graph is required")
	}
	var out workflowResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(graph).
		SetResult(&out).
		Post("/workflows")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("failed to create workflow: runtime returned no id")
	}
	return &runtime.WorkflowRef{ID: out.ID, Active: out.Active}, nil
}

func (c *Client) SetActive(ctx context.Context, workflowID string, active bool) error {
	action := "deactivate"
	if active {
		action = "activate"
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", workflowID).
		Post("/workflows/{id}/" + action)
	if err := check(resp, err); err != nil {
		return fmt.Errorf("failed to %s workflow %s: %w", action, workflowID, err)
	}
	return nil
}

// Execute returns the raw execution body for runtime.Normalize.
func (c *Client) Execute(ctx context.Context, workflowID string, input map[string]any) ([]byte, error) {
	if input == nil {
		input = map[string]any{}
	}
	resp, err := c.exec.R().
		SetContext(ctx).
		SetPathParam("id", workflowID).
		SetBody(map[string]any{"data": input}).
		Post("/workflows/{id}/execute")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &runtime.ProviderError{StatusCode: resp.StatusCode(), Body: truncate(resp.String(), 512)}
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
