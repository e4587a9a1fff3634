// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware holds the Echo middleware shared by the API routes.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/go-newsletter/internal/appcontext"
	"codeberg.org/oliverandrich/go-newsletter/internal/auth"
	"github.com/labstack/echo/v4"
)

// TokenDecoder verifies a bearer token.
type TokenDecoder interface {
	Decode(token string) (auth.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and hands the
// verified claims to the next handler through appcontext.Context.
func RequireAuth(codec TokenDecoder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			values := c.Request().Header.Values(echo.HeaderAuthorization)
			if len(values) == 0 {
				slog.Debug("token_missing", "path", c.Request().URL.Path, "error", auth.ErrMissingCredentials)
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized").SetInternal(auth.ErrMissingCredentials)
			}

			// A present but empty header is a bad token, not a missing one.
			token := strings.TrimSpace(strings.TrimPrefix(values[0], "Bearer"))
			claims, err := codec.Decode(token)
			if err != nil {
				slog.Warn("token_invalid", "path", c.Request().URL.Path, "reason", err.Error())
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token").SetInternal(err)
			}

			return next(appcontext.WithClaims(c, claims))
		}
	}
}
