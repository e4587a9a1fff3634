// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package appcontext_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/oliverandrich/go-newsletter/internal/appcontext"
	"codeberg.org/oliverandrich/go-newsletter/internal/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEchoContext() echo.Context {
	e := echo.New()
	return e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
}

func TestClaimsFrom(t *testing.T) {
	cc := appcontext.WithClaims(newEchoContext(), auth.Claims{Email: "ada@example.com", UserID: 7})

	claims, err := appcontext.ClaimsFrom(cc)

	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestClaimsFrom_ReturnsCopy(t *testing.T) {
	cc := appcontext.WithClaims(newEchoContext(), auth.Claims{Email: "ada@example.com", UserID: 7})

	claims, err := appcontext.ClaimsFrom(cc)
	require.NoError(t, err)
	claims.UserID = 99

	again, err := appcontext.ClaimsFrom(cc)
	require.NoError(t, err)
	assert.Equal(t, int64(7), again.UserID)
}

func TestClaimsFrom_PlainContext(t *testing.T) {
	_, err := appcontext.ClaimsFrom(newEchoContext())

	assert.ErrorIs(t, err, appcontext.ErrMissingClaims)
}

func TestClaimsFrom_WrapperWithoutClaims(t *testing.T) {
	cc := &appcontext.Context{Context: newEchoContext()}

	_, err := appcontext.ClaimsFrom(cc)

	assert.ErrorIs(t, err, appcontext.ErrMissingClaims)
}

func TestWithClaims_ReusesWrapper(t *testing.T) {
	cc := &appcontext.Context{Context: newEchoContext()}

	wrapped := appcontext.WithClaims(cc, auth.Claims{Email: "b@example.com", UserID: 2})

	assert.Same(t, cc, wrapped)
	assert.Equal(t, int64(2), cc.Claims.UserID)
}
