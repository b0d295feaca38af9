// Package analysis is a client for the lease analysis backend.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/unveil/internal/logging"
	"github.com/aretw0/unveil/pkg/findings"
	"github.com/aretw0/unveil/pkg/gate"
)

// DefaultBaseURL points at a locally running backend.
const DefaultBaseURL = "http://localhost:8000"

// maxBody bounds how much of a response we read.
const maxBody = 4 << 20

var (
	// ErrUnauthorized is returned when the backend rejects the token or credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRejected is returned when the backend answers success=false.
	ErrRejected = errors.New("request rejected")
)

// APIError is returned for unexpected HTTP statuses.
type APIError struct {
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("analysis failed: %s", e.Status)
}

// Client talks to the analysis backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session is the result of a login or registration.
type Session struct {
	Token string    `json:"token"`
	User  gate.User `json:"user"`
}

// envelope is the backend's auth response wrapper.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Token string     `json:"token"`
		User  *gate.User `json:"user"`
	} `json:"data"`
}

// Analyze submits lease text and normalizes the findings.
func (c *Client) Analyze(ctx context.Context, token, text string) (findings.Report, error) {
	body, err := c.do(ctx, http.MethodPost, "/analyze", token, map[string]string{"contract_text": text})
	if err != nil {
		return findings.Report{}, err
	}
	rep := findings.Extract(body)
	c.logger.Debug("analysis received", "findings", len(rep.Findings))
	return rep, nil
}

// Me returns the signed-in user for token.
func (c *Client) Me(ctx context.Context, token string) (*gate.User, error) {
	env, err := c.auth(ctx, http.MethodGet, "/api/auth/me", token, nil)
	if err != nil {
		return nil, err
	}
	if env.Data.User == nil {
		return nil, fmt.Errorf("%w: missing user", ErrRejected)
	}
	return env.Data.User, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.credentials(ctx, "/api/auth/login", email, password)
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, email, password string) (*Session, error) {
	return c.credentials(ctx, "/api/auth/register", email, password)
}

func (c *Client) credentials(ctx context.Context, path, email, password string) (*Session, error) {
	email, password = strings.TrimSpace(email), strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	env, err := c.auth(ctx, http.MethodPost, path, "", map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	if env.Data.Token == "" || env.Data.User == nil {
		return nil, fmt.Errorf("%w: incomplete session", ErrRejected)
	}
	return &Session{Token: env.Data.Token, User: *env.Data.User}, nil
}

func (c *Client) auth(ctx context.Context, method, path, token string, payload any) (*envelope, error) {
	body, err := c.do(ctx, method, path, token, payload)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "invalid credentials"
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	return &env, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Warn("analysis backend error", "path", path, "status", resp.StatusCode)
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return body, nil
}
