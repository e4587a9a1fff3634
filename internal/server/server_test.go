// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"codeberg.org/oliverandrich/go-newsletter/internal/auth"
	"codeberg.org/oliverandrich/go-newsletter/internal/config"
	"codeberg.org/oliverandrich/go-newsletter/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:      config.ServerConfig{Host: "127.0.0.1", Port: 8080, BaseURL: "http://localhost:8080", MaxBodySize: 1},
		Database:    config.DatabaseConfig{URL: ":memory:"},
		Auth:        config.AuthConfig{Secret: testutil.TestSecret, TokenTTL: time.Hour},
		Unsubscribe: config.UnsubscribeConfig{LinkTTL: time.Hour},
	}
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	db, _ := testutil.NewTestDB(t)
	e, err := New(context.Background(), testConfig(), db)
	require.NoError(t, err)
	return e
}

func do(t *testing.T, e *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// signUp registers and logs in a user, returning the ID and token.
func signUp(t *testing.T, e *echo.Echo, name, email string) (int64, string) {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/auth/register", "",
		`{"name":"`+name+`","email":"`+email+`","password":"Tr0ub4dor&3-sunrise"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reg struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	rec = do(t, e, http.MethodPost, "/auth/login", "", `{"email":"`+email+`","password":"Tr0ub4dor&3-sunrise"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	return reg.ID, login.Token
}

func TestNew_InvalidSecret(t *testing.T) {
	db, _ := testutil.NewTestDB(t)
	cfg := testConfig()
	cfg.Auth.Secret = ""

	_, err := New(context.Background(), cfg, db)

	assert.ErrorIs(t, err, auth.ErrNoSecret)
}

func TestHealthAndPing(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","streams":0,"listeners":0}`, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/ping/newsletter", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Hello newsletter!"}`, rec.Body.String())
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	e := newTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/user/get-user"},
		{http.MethodGet, "/user/all-users"},
		{http.MethodPost, "/secure/article/create"},
		{http.MethodGet, "/secure/article/my-article"},
		{http.MethodPost, "/secure/article/image-upload"},
		{http.MethodGet, "/secure/article/events"},
		{http.MethodPost, "/secure/subscription/subscribe-user"},
		{http.MethodGet, "/secure/subscription/unsubscribe-user"},
		{http.MethodGet, "/secure/subscription/my-subscriptions"},
		{http.MethodGet, "/secure/subscription/my-subscribers"},
	}

	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := do(t, e, r.method, r.path, "", "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

			rec = do(t, e, r.method, r.path, "not-a-jwt", "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"Invalid token"}`, rec.Body.String())
		})
	}
}

func TestGetUser_EndToEnd(t *testing.T) {
	e := newTestServer(t)
	_, token := signUp(t, e, "Ada", "ada@example.com")

	rec := do(t, e, http.MethodGet, "/user/get-user", token, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Ada","email":"ada@example.com"}`, rec.Body.String())
}

func TestTrailingSlashIsIgnored(t *testing.T) {
	e := newTestServer(t)
	_, token := signUp(t, e, "Ada", "ada@example.com")

	rec := do(t, e, http.MethodGet, "/user/get-user/", token, "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/nope", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}

func TestPublishFlow(t *testing.T) {
	e := newTestServer(t)
	adaID, adaToken := signUp(t, e, "Ada", "ada@example.com")
	_, graceToken := signUp(t, e, "Grace", "grace@example.com")

	rec := do(t, e, http.MethodPost, "/secure/subscription/subscribe-user", graceToken,
		`{"user_id":`+strconv.FormatInt(adaID, 10)+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodPost, "/secure/article/create", adaToken,
		`{"title":"Issue 1","content":"The first issue."}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created struct {
		UUID     string `json:"uuid"`
		Notified int    `json:"notified"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Zero(t, created.Notified, "no SMTP configured")

	rec = do(t, e, http.MethodGet, "/article/get-by-uuid/"+created.UUID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Title string `json:"title"`
		User  struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Issue 1", detail.Title)
	assert.Equal(t, "Ada", detail.User.Name)

	rec = do(t, e, http.MethodGet, "/secure/subscription/my-subscriptions", graceToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada@example.com")

	rec = do(t, e, http.MethodGet, "/secure/subscription/unsubscribe-user?user_id="+strconv.FormatInt(adaID, 10), graceToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodGet, "/secure/subscription/my-subscriptions", graceToken, "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestImageUpload_StorageDisabled(t *testing.T) {
	e := newTestServer(t)
	_, token := signUp(t, e, "Ada", "ada@example.com")

	rec := do(t, e, http.MethodPost, "/secure/article/image-upload", token, `{"content_type":"image/png"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLocaleFromAcceptLanguage(t *testing.T) {
	e := newTestServer(t)
	_, token := signUp(t, e, "Ada", "ada@example.com")

	req := httptest.NewRequest(http.MethodPost, "/secure/article/create", strings.NewReader(`{"title":"Hallo","content":"Erste Ausgabe."}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Abonnenten")
}

func TestBodyLimit(t *testing.T) {
	assert.Equal(t, "1M", bodyLimit(0))
	assert.Equal(t, "5M", bodyLimit(5))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("token_invalid", "error", "signature is invalid")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &entry))
	assert.Equal(t, "token_invalid", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
}
