// Package api is the HTTP client for the remote task service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ayetkin/todoterm/internal/model"
)

// DefaultTimeout bounds every request; past it the call is aborted
// and surfaced as a timeout error.
const DefaultTimeout = 15 * time.Second

// Patch carries the mutable task fields for an update. Nil fields are
// left out of the request body entirely.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Client talks to one task service. It holds no task state; every
// call is an independent request/response exchange.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken attaches a bearer token to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger enables debug logging of requests and responses.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches every task. The service may answer with a bare array
// or wrap it under "items" or "todos"; anything else is an error.
// Records that don't normalize to a usable task are dropped.
func (c *Client) List(ctx context.Context) ([]model.Task, error) {
	body, err := c.do(ctx, http.MethodGet, "/todos", nil)
	if err != nil {
		return nil, err
	}
	records, err := decodeListBody(body)
	if err != nil {
		return nil, err
	}
	tasks := make([]model.Task, 0, len(records))
	for _, rec := range records {
		if t, ok := model.Normalize(rec); ok {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// Create submits a new task and returns the authoritative record.
func (c *Client) Create(ctx context.Context, title string) (model.Task, error) {
	body, err := c.do(ctx, http.MethodPost, "/todos", map[string]string{"title": title})
	if err != nil {
		return model.Task{}, err
	}
	return normalizeRecord(body)
}

// Update submits a partial mutation and returns the updated record.
func (c *Client) Update(ctx context.Context, id string, patch Patch) (model.Task, error) {
	body, err := c.do(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), patch)
	if err != nil {
		return model.Task{}, err
	}
	return normalizeRecord(body)
}

// Delete removes a task. The response body, if any, is ignored.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if c.log != nil {
		c.log.Debug("request", "method", method, "path", path)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: "read response: " + err.Error()}
	}

	if c.log != nil {
		c.log.Debug("response", "status", resp.StatusCode, "bytes", len(body))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail detailBody
		_ = json.Unmarshal(body, &detail)
		return nil, statusError(resp.StatusCode, body, detail.Detail)
	}
	return body, nil
}

func transportError(err error) *Error {
	var uerr *url.Error
	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &uerr) && uerr.Timeout())
	return &Error{Message: err.Error(), Timeout: timedOut}
}

// decodeListBody accepts the three list shapes seen in the wild.
func decodeListBody(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, &Error{Message: "decode list: " + err.Error()}
		}
		return records, nil
	}

	var wrapped struct {
		Items []json.RawMessage `json:"items"`
		Todos []json.RawMessage `json:"todos"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err == nil {
		if wrapped.Items != nil {
			return wrapped.Items, nil
		}
		if wrapped.Todos != nil {
			return wrapped.Todos, nil
		}
	}
	return nil, &Error{Message: "unexpected list response shape"}
}

func normalizeRecord(body []byte) (model.Task, error) {
	t, ok := model.Normalize(body)
	if !ok {
		return model.Task{}, &Error{Message: "malformed task record in response", Payload: body}
	}
	return t, nil
}
