// Package client is the Go client for the TaleSoul API. It owns the session
// lifecycle (durable credential, cached identity) and a gateway through which
// every call travels: the gateway attaches the bearer token, classifies every
// failure into an apperr kind exactly once, and demotes the session when the
// server rejects the credential. It enforces no business rules itself.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"talesoul-backend/apperr"
	"talesoul-backend/models/users"
)

// Client is the API gateway plus its typed resource clients.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *SessionStore

	Auth      *AuthClient
	Bookings  *BookingsClient
	Courses   *CoursesClient
	Payments  *PaymentsClient
	Community *CommunityClient
	Admin     *AdminClient
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSessionPath moves the durable token file.
func WithSessionPath(path string) Option {
	return func(c *Client) { c.session = NewSessionStore(path) }
}

// New builds a client against baseURL (e.g. "http://localhost:8080/api/v1").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		session:    NewSessionStore(""),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Auth = &AuthClient{c: c}
	c.Bookings = &BookingsClient{c: c}
	c.Courses = &CoursesClient{c: c}
	c.Payments = &PaymentsClient{c: c}
	c.Community = &CommunityClient{c: c}
	c.Admin = &AdminClient{c: c}
	return c
}

// Session exposes the session store for status and identity queries.
func (c *Client) Session() *SessionStore {
	return c.session
}

// Login exchanges credentials for a token, persists it and resolves the
// identity. On failure the session stays unauthenticated.
func (c *Client) Login(email, password string) (*users.User, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	err := c.do(http.MethodPost, "/auth/login",
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return nil, err
	}

	c.session.setLoading(resp.AccessToken)
	identity, err := c.Auth.Me()
	if err != nil {
		c.session.Clear()
		return nil, err
	}
	if err := c.session.setAuthenticated(resp.AccessToken, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// Logout clears the credential and identity. Idempotent.
func (c *Client) Logout() {
	c.session.Clear()
}

// Restore picks up a persisted token on process start and resolves the
// identity behind it once. A rejected or expired token is cleared and the
// session settles unauthenticated; there is deliberately no retry here so a
// dead token can never wedge startup in a loop. A transport failure is not a
// verdict on the token: the file stays put and the error surfaces, so the
// caller can restore again once the network is back.
func (c *Client) Restore() error {
	token := c.session.loadTokenFile()
	if token == "" {
		c.session.Clear()
		return nil
	}

	c.session.setLoading(token)
	identity, err := c.Auth.Me()
	if err != nil {
		if apperr.IsKind(err, apperr.Unauthorized) {
			c.session.Clear()
			return nil
		}
		c.session.reset()
		return err
	}
	return c.session.setAuthenticated(token, identity)
}

// do performs one request/response round trip. Every non-2xx response is
// classified into an apperr kind here and nowhere else; an Unauthorized
// result additionally demotes the session, it is never retried with the same
// token.
func (c *Client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures stay distinguishable from business rejections
		// so callers can offer a retry only where it is safe.
		return apperr.New(apperr.Internal, "network error: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.New(apperr.Internal, "reading response: %v", err)
	}

	if resp.StatusCode >= 400 {
		ae := apperr.FromResponse(resp.StatusCode, data)
		if ae.Kind == apperr.Unauthorized && c.session.Status() == StatusAuthenticated {
			c.session.Clear()
		}
		return ae
	}

	if out != nil && resp.StatusCode != http.StatusNoContent && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return apperr.New(apperr.Internal, "decoding response: %v", err)
		}
	}
	return nil
}

func pathf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
