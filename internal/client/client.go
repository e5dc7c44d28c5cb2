// Package client is a Go SDK for the veo3store HTTP API: customer checkout,
// admin review and session tracking.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	cookiejar "github.com/juju/persistent-cookiejar"
)

const defaultTimeout = 10 * time.Second

// Client calls the storefront API on behalf of one user.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	auth       *AuthState
	logger     *slog.Logger

	jar        *cookiejar.Jar
	cookieFile string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. Its cookie jar carries the session
// cookie unless WithCookieFile is also given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCookieFile keeps the session cookie in a file so that Restore works
// across process restarts.
func WithCookieFile(path string) Option {
	return func(c *Client) { c.cookieFile = path }
}

// WithSessionDir stores the session marker and the cookie jar under dir.
func WithSessionDir(dir string) Option {
	return func(c *Client) {
		c.auth = NewAuthState(FileMarkerStore{Path: filepath.Join(dir, "had_session")})
		c.cookieFile = filepath.Join(dir, "cookies.json")
	}
}

func WithAuthState(state *AuthState) Option {
	return func(c *Client) { c.auth = state }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("api url must be absolute")
	}

	c := &Client{
		baseURL: parsed,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cookieFile != "" {
		if err := os.MkdirAll(filepath.Dir(c.cookieFile), 0o700); err != nil {
			return nil, fmt.Errorf("create cookie dir: %w", err)
		}
	}
	if c.httpClient == nil || c.cookieFile != "" {
		jar, err := cookiejar.New(&cookiejar.Options{Filename: c.cookieFile, NoPersist: c.cookieFile == ""})
		if err != nil {
			return nil, fmt.Errorf("open cookie jar: %w", err)
		}
		hc := &http.Client{Timeout: defaultTimeout}
		if c.httpClient != nil {
			copied := *c.httpClient
			hc = &copied
		}
		hc.Jar = jar
		c.httpClient, c.jar = hc, jar
	}
	if c.auth == nil {
		c.auth = NewAuthState(nil)
	}
	return c, nil
}

// Auth exposes the session state of the client.
func (c *Client) Auth() *AuthState {
	return c.auth
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) endpoint(p string, query url.Values) string {
	u := *c.baseURL
	u.Path = path.Join(u.Path, "/api", p)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends the request and decodes the envelope data into out. An explicit
// session rejection clears the auth state the request was made under.
func (c *Client) do(ctx context.Context, method, p string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(p, query), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	gen := c.auth.Generation()
	if token := c.auth.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Err: fmt.Errorf("%w: %w", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	c.saveCookies(resp)

	var env envelope
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env)
	if decodeErr != nil && resp.StatusCode < http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode, Code: "INVALID_RESPONSE", Message: decodeErr.Error()}
	}

	// Error statuses are classified by status even when the body is not an
	// envelope, e.g. a proxy answering 401 in plain text.
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		switch {
		case decodeErr != nil:
			apiErr.Message = http.StatusText(resp.StatusCode)
		case env.Error != nil:
			apiErr.Code, apiErr.Message = env.Error.Code, env.Error.Message
		}
		if errors.Is(apiErr, ErrSessionInvalid) {
			if cleared, _ := c.auth.ClearIf(gen); cleared {
				apiErr.signedOut = true
				c.logger.Info("session rejected by server, signed out", slog.String("path", p))
			}
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", p, err)
	}
	return nil
}

// saveCookies writes the jar back to its file when the server changed a cookie.
func (c *Client) saveCookies(resp *http.Response) {
	if c.cookieFile == "" || c.jar == nil || len(resp.Header.Values("Set-Cookie")) == 0 {
		return
	}
	if err := c.jar.Save(); err != nil {
		c.logger.Warn("save cookie jar failed", slog.String("file", c.cookieFile), slog.String("error", err.Error()))
	}
}
