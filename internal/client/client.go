package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rogersnm/taskmanager/internal/model"
	"github.com/rogersnm/taskmanager/internal/store"
)

// Client implements store.Store against a running task API.
type Client struct {
	baseURL string
	http    *http.Client
}

// compile-time check
var _ store.Store = (*Client)(nil)

func New(baseURL string) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: 30 * time.Second})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error %d", e.StatusCode)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// Is lets a 404 match store.ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == store.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// --- HTTP helpers ---

func (c *Client) doJSON(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func decodeResponse[T any](resp *http.Response) (T, error) {
	defer resp.Body.Close()
	var zero T

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return zero, &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return zero, fmt.Errorf("decoding response: %w", err)
	}
	return v, nil
}

func taskPath(taskID string) string {
	return "/api/tasks/" + url.PathEscape(taskID)
}

// --- Tasks ---

func (c *Client) Create(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	resp, err := c.doJSON(ctx, "POST", "/api/tasks", in)
	if err != nil {
		return nil, err
	}
	t, err := decodeResponse[model.Task](resp)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) Find(ctx context.Context, filter store.Filter) ([]model.Task, error) {
	q := url.Values{}
	if filter.Keyword != "" {
		q.Set("keyword", filter.Keyword)
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	path := "/api/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	resp, err := c.doJSON(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	tasks, err := decodeResponse[[]model.Task](resp)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (c *Client) FindByID(ctx context.Context, taskID string) (*model.Task, error) {
	resp, err := c.doJSON(ctx, "GET", taskPath(taskID), nil)
	if err != nil {
		return nil, err
	}
	t, err := decodeResponse[model.Task](resp)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateByID(ctx context.Context, taskID string, upd model.TaskUpdate) (*model.Task, error) {
	resp, err := c.doJSON(ctx, "PUT", taskPath(taskID), upd)
	if err != nil {
		return nil, err
	}
	t, err := decodeResponse[model.Task](resp)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteByID(ctx context.Context, taskID string) error {
	resp, err := c.doJSON(ctx, "DELETE", taskPath(taskID), nil)
	if err != nil {
		return err
	}
	_, err = decodeResponse[struct {
		Message string `json:"message"`
	}](resp)
	return err
}

// Ping checks that the API answers on its root route.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.doJSON(ctx, "GET", "/", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
