package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tradehand/tradehand/internal/contacts"
	"github.com/tradehand/tradehand/internal/errors"
	"github.com/tradehand/tradehand/internal/task"
)

// Client drives the review flow against the HTTP API. Fetches fall back to
// the snapshot cache; mutations refresh it so the cache never trails the
// server by more than one round trip.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cache   *Cache
	logger  *zap.Logger
}

// NewClient creates an API client with its cache rooted at baseDir.
func NewClient(baseURL, token, baseDir string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		cache:   NewCache(baseDir),
		logger:  logger,
	}
}

type listResponse struct {
	Active   []task.Task `json:"active"`
	Archived []task.Task `json:"archived"`
}

// FetchPending returns the owner's pending tasks. On a live-fetch failure
// the last cached snapshot is served instead, so the flow opens on stale
// data rather than an empty screen.
func (c *Client) FetchPending(ctx context.Context) ([]task.Task, error) {
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks", nil, &resp); err != nil {
		c.logger.Warn("live fetch failed, serving cached tasks", zap.Error(err))
		cached, cacheErr := c.cache.Load()
		if cacheErr != nil {
			return nil, err
		}
		return cached, nil
	}

	pending := make([]task.Task, 0, len(resp.Active))
	for _, t := range resp.Active {
		if t.Status == task.StatusPending {
			pending = append(pending, t)
		}
	}
	if err := c.cache.Save(pending); err != nil {
		c.logger.Warn("task cache refresh failed", zap.Error(err))
	}
	return pending, nil
}

type directoryResponse struct {
	Contacts []contacts.Contact `json:"contacts"`
}

// Directory fetches the owner's full contact directory for disambiguation.
func (c *Client) Directory(ctx context.Context) ([]contacts.Contact, error) {
	var resp directoryResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/contacts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Contacts, nil
}

// CreateContact persists a fresh contact chosen via "create new".
func (c *Client) CreateContact(ctx context.Context, name, phone, email string) (*contacts.Contact, error) {
	body := map[string]any{"name": name}
	if phone != "" {
		body["phone"] = phone
	}
	if email != "" {
		body["email"] = email
	}
	var created contacts.Contact
	if err := c.do(ctx, http.MethodPost, "/api/v1/contacts", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Execute performs the lifecycle transition for a finished review and
// refreshes the cache from the server afterwards.
func (c *Client) Execute(ctx context.Context, a Action) (*task.Task, error) {
	body := map[string]any{}
	switch a.Kind {
	case ActionApprove:
		body["status"] = string(task.StatusApproved)
		if a.CreateNew && a.ContactID == nil && a.ContactName != nil {
			created, err := c.CreateContact(ctx, *a.ContactName, deref(a.ContactPhone), deref(a.ContactEmail))
			if err != nil {
				return nil, err
			}
			a.ContactID = &created.ID
		}
		if a.ContactID != nil {
			body["contactId"] = *a.ContactID
		}
		if a.ContactPhone != nil {
			body["contactPhone"] = *a.ContactPhone
		}
		if a.ContactEmail != nil {
			body["contactEmail"] = *a.ContactEmail
		}
		if a.Message != nil {
			body["message"] = *a.Message
		}
		if a.Timing != nil {
			body["timing"] = *a.Timing
		}
	case ActionSkip:
		body["status"] = string(task.StatusSkipped)
	default:
		return nil, errors.NewValidation(fmt.Sprintf("unknown action kind %q", a.Kind))
	}

	var updated task.Task
	if err := c.do(ctx, http.MethodPatch, "/api/v1/tasks/"+a.TaskID, body, &updated); err != nil {
		return nil, err
	}

	if _, err := c.FetchPending(ctx); err != nil {
		c.logger.Warn("cache refresh after transition failed", zap.Error(err))
	}
	return &updated, nil
}

// do performs one JSON request and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.NewInternal(err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.NewInternal(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewInternal(err)
	}
	if resp.StatusCode >= 400 {
		return decodeAPIError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// decodeAPIError rebuilds a structured error from an API error body.
func decodeAPIError(status int, data []byte) error {
	var wire struct {
		Error struct {
			Code    errors.ErrorCode `json:"code"`
			Message string           `json:"message"`
			Details map[string]any   `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &wire); err == nil && wire.Error.Code != "" {
		return &errors.Error{
			Code:    wire.Error.Code,
			Status:  status,
			Message: wire.Error.Message,
			Details: wire.Error.Details,
		}
	}
	return errors.NewInternal(fmt.Errorf("api returned status %d", status))
}
