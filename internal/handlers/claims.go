// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/go-newsletter/internal/appcontext"
	"codeberg.org/oliverandrich/go-newsletter/internal/auth"
	"github.com/labstack/echo/v4"
)

// ClaimsHandlerFunc is a handler that needs the caller's verified identity.
type ClaimsHandlerFunc func(c echo.Context, claims auth.Claims) error

// WithClaims adapts fn to Echo. A route that was registered without the
// auth middleware answers 400 "Bad Claims".
func WithClaims(fn ClaimsHandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := appcontext.ClaimsFrom(c)
		if err != nil {
			slog.Error("claims_missing", "route", c.Path(), "error", err)
			return errorJSON(c, http.StatusBadRequest, "Bad Claims")
		}
		return fn(c, claims)
	}
}
