// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/oliverandrich/go-newsletter/internal/auth"
	"codeberg.org/oliverandrich/go-newsletter/internal/database"
	"codeberg.org/oliverandrich/go-newsletter/internal/models"
	"codeberg.org/oliverandrich/go-newsletter/internal/repository"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// TestSecret signs the tokens issued by NewTestCodec.
const TestSecret = "test-secret"

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, repository.New(db)
}

// NewTestUser creates a user whose password is "password-" + name.
func NewTestUser(t *testing.T, repo *repository.Repository, name, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password-"+name), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := repo.CreateUser(context.Background(), name, email, string(hash))
	require.NoError(t, err)
	return user
}

// NewTestArticle stores an article written by userID.
func NewTestArticle(t *testing.T, repo *repository.Repository, userID int64, title string) *models.Article {
	t.Helper()
	article := &models.Article{
		Title:     title,
		Content:   "Content of " + title,
		UUID:      uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateArticle(context.Background(), article))
	return article
}

// NewTestSubscription subscribes subscriberID to authorID.
func NewTestSubscription(t *testing.T, repo *repository.Repository, authorID, subscriberID int64) {
	t.Helper()
	_, err := repo.CreateSubscription(context.Background(), authorID, subscriberID)
	require.NoError(t, err)
}

// NewTestCodec returns a token codec signing with TestSecret.
func NewTestCodec(t *testing.T) *auth.Codec {
	t.Helper()
	codec, err := auth.NewCodec(TestSecret, auth.DefaultTokenTTL)
	require.NoError(t, err)
	return codec
}

// BearerFor returns an Authorization header value for user.
func BearerFor(t *testing.T, codec *auth.Codec, user *models.User) string {
	t.Helper()
	token, err := codec.Encode(user.Email, user.ID)
	require.NoError(t, err)
	return "Bearer " + token
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
