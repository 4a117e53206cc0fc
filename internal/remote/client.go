// Package remote talks to the hosted dashboard API that owns the persisted ledger
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
)

// DefaultTimeout bounds every remote call
const DefaultTimeout = 30 * time.Second

const maxErrorBody = 4 << 10

// Client is an HTTP implementation of the dashboard store and the transaction history reader
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var (
	_ domain.DashboardStore           = (*Client)(nil)
	_ domain.TransactionHistoryReader = (*Client)(nil)
)

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// StatusError is a non-2xx response from the remote API
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote api returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("remote api returned %d", e.Status)
}

// Unwrap maps well-known statuses onto domain errors
func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return domain.ErrInvalidInput
	default:
		return nil
	}
}

// LoadDashboard fetches the persisted snapshot
func (c *Client) LoadDashboard(ctx context.Context, cred domain.Credential) (*domain.DashboardDocument, error) {
	var doc domain.DashboardDocument
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", cred.Token, nil, &doc); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}
	return &doc, nil
}

// SaveDashboard replaces the persisted snapshot
func (c *Client) SaveDashboard(ctx context.Context, cred domain.Credential, doc *domain.DashboardDocument) error {
	if err := c.do(ctx, http.MethodPost, "/api/dashboard", cred.Token, doc, nil); err != nil {
		return fmt.Errorf("save dashboard: %w", err)
	}
	return nil
}

// LoadTransactionHistory fetches the transaction list. A body that is not a JSON array yields an empty list.
func (c *Client) LoadTransactionHistory(ctx context.Context, cred domain.Credential) ([]json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/transactions", cred.Token, nil, &raw); err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return []json.RawMessage{}, nil
	}
	return items, nil
}

// LoginRequest holds sign-in credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful sign-in
type LoginResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user,omitempty"`
}

// RegisterRequest holds the fields of a new account
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email and password for a bearer token
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login: %w", domain.ErrUnauthorized)
	}
	return &resp, nil
}

// Register creates an account
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", req, nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &StatusError{Status: res.StatusCode, Message: errorMessage(b)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage pulls {message} or {error} out of an error body
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}
