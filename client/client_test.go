package client_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"talesoul-backend/apperr"
	"talesoul-backend/client"
	"talesoul-backend/models/community"
	"talesoul-backend/models/users"
)

const testToken = "test-token-123"

// fakeAPI is a minimal stand-in for the real server: it honours exactly the
// routes the tests exercise and treats testToken as the only valid credential.
func fakeAPI(t *testing.T) (*httptest.Server, *requestLog) {
	t.Helper()
	log := &requestLog{}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "hunter22" {
			writeErr(w, http.StatusUnauthorized, apperr.InvalidCredentials, "incorrect email or password")
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": testToken})
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if log.revoked || r.Header.Get("Authorization") != "Bearer "+testToken {
			writeErr(w, http.StatusUnauthorized, apperr.Unauthorized, "invalid or expired token")
			return
		}
		json.NewEncoder(w).Encode(users.User{Email: "user@example.com", Role: users.RoleUser})
	})
	mux.HandleFunc("/community/posts", func(w http.ResponseWriter, r *http.Request) {
		log.record(r.URL.String())
		json.NewEncoder(w).Encode([]community.Post{})
	})
	mux.HandleFunc("/bookings/9999", func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusNotFound, apperr.NotFound, "booking not found")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, log
}

type requestLog struct {
	urls    []string
	revoked bool
}

func (l *requestLog) record(url string) { l.urls = append(l.urls, url) }

func writeErr(w http.ResponseWriter, status int, kind apperr.Kind, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apperr.Error{Kind: kind, Message: msg})
}

func newClient(t *testing.T, baseURL string) (*client.Client, string) {
	t.Helper()
	tokenPath := filepath.Join(t.TempDir(), "token")
	return client.New(baseURL, client.WithSessionPath(tokenPath)), tokenPath
}

func TestLoginPersistsTokenAndIdentity(t *testing.T) {
	srv, _ := fakeAPI(t)
	c, tokenPath := newClient(t, srv.URL)

	identity, err := c.Login("user@example.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, "user@example.com", identity.Email)
	require.Equal(t, client.StatusAuthenticated, c.Session().Status())
	require.Equal(t, "user@example.com", c.Session().CurrentIdentity().Email)

	data, err := os.ReadFile(tokenPath)
	require.NoError(t, err)
	require.Equal(t, testToken, string(data))
}

func TestLoginBadPasswordStaysUnauthenticated(t *testing.T) {
	srv, _ := fakeAPI(t)
	c, tokenPath := newClient(t, srv.URL)

	_, err := c.Login("user@example.com", "wrong")
	require.True(t, apperr.IsKind(err, apperr.InvalidCredentials))
	require.Equal(t, client.StatusUnauthenticated, c.Session().Status())

	_, statErr := os.Stat(tokenPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestRestoreWithValidToken(t *testing.T) {
	srv, _ := fakeAPI(t)
	c, tokenPath := newClient(t, srv.URL)
	require.NoError(t, os.WriteFile(tokenPath, []byte(testToken), 0o600))

	require.NoError(t, c.Restore())
	require.Equal(t, client.StatusAuthenticated, c.Session().Status())
	require.Equal(t, "user@example.com", c.Session().CurrentIdentity().Email)
}

func TestRestoreWithDeadTokenClearsFile(t *testing.T) {
	srv, _ := fakeAPI(t)
	c, tokenPath := newClient(t, srv.URL)
	require.NoError(t, os.WriteFile(tokenPath, []byte("expired-token"), 0o600))

	// A rejected token is not an error from the caller's point of view: the
	// session settles unauthenticated and the dead credential is removed.
	require.NoError(t, c.Restore())
	require.Equal(t, client.StatusUnauthenticated, c.Session().Status())
	require.Empty(t, c.Session().Token())

	_, statErr := os.Stat(tokenPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestRestoreKeepsTokenOnNetworkFailure(t *testing.T) {
	c, tokenPath := newClient(t, "http://127.0.0.1:1") // nothing listens here
	require.NoError(t, os.WriteFile(tokenPath, []byte(testToken), 0o600))

	// A network blip is not a token rejection: the error surfaces, the session
	// settles unauthenticated, and the durable credential survives so the next
	// restore can try again.
	err := c.Restore()
	require.True(t, apperr.IsKind(err, apperr.Internal))
	require.Equal(t, client.StatusUnauthenticated, c.Session().Status())

	data, readErr := os.ReadFile(tokenPath)
	require.NoError(t, readErr)
	require.Equal(t, testToken, string(data))
}

func TestRestoreWithNoTokenFile(t *testing.T) {
	srv, _ := fakeAPI(t)
	c, _ := newClient(t, srv.URL)

	require.NoError(t, c.Restore())
	require.Equal(t, client.StatusUnauthenticated, c.Session().Status())
}

func TestLogoutIdempotent(t *testing.T) {
	srv, _ := fakeAPI(t)
	c, tokenPath := newClient(t, srv.URL)

	_, err := c.Login("user@example.com", "hunter22")
	require.NoError(t, err)

	c.Logout()
	require.Equal(t, client.StatusUnauthenticated, c.Session().Status())
	_, statErr := os.Stat(tokenPath)
	require.True(t, os.IsNotExist(statErr))

	c.Logout()
	require.Equal(t, client.StatusUnauthenticated, c.Session().Status())
}

func TestGatewayClassifiesServerErrors(t *testing.T) {
	srv, _ := fakeAPI(t)
	c, _ := newClient(t, srv.URL)

	_, err := c.Bookings.Get(9999)
	require.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestGatewayClassifiesNetworkErrors(t *testing.T) {
	c, _ := newClient(t, "http://127.0.0.1:1") // nothing listens here
	_, err := c.Community.Groups()
	require.True(t, apperr.IsKind(err, apperr.Internal))
}

func TestUnauthorizedResponseDemotesSession(t *testing.T) {
	srv, log := fakeAPI(t)
	c, tokenPath := newClient(t, srv.URL)

	_, err := c.Login("user@example.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, client.StatusAuthenticated, c.Session().Status())

	// Server-side revocation: the next authenticated call fails and the
	// session drops back to unauthenticated without a retry.
	log.revoked = true
	_, err = c.Auth.Me()
	require.True(t, apperr.IsKind(err, apperr.Unauthorized))
	require.Equal(t, client.StatusUnauthenticated, c.Session().Status())
	require.Empty(t, c.Session().Token())

	_, statErr := os.Stat(tokenPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestCommunityFilterToggle(t *testing.T) {
	srv, log := fakeAPI(t)
	c, _ := newClient(t, srv.URL)

	_, err := c.Community.Posts()
	require.NoError(t, err)

	c.Community.SelectGroup(7)
	_, err = c.Community.Posts()
	require.NoError(t, err)

	// Selecting another group replaces the previous filter.
	c.Community.SelectGroup(12)
	_, err = c.Community.Posts()
	require.NoError(t, err)

	c.Community.SelectAll()
	_, err = c.Community.Posts()
	require.NoError(t, err)

	require.Equal(t, []string{
		"/community/posts",
		"/community/posts?group_id=7",
		"/community/posts?group_id=12",
		"/community/posts",
	}, log.urls)
}
