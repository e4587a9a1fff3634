// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/go-newsletter/internal/auth"
	authsvc "codeberg.org/oliverandrich/go-newsletter/internal/services/auth"
	"github.com/labstack/echo/v4"
)

// UserResponse is the public profile of the caller.
type UserResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GetUser returns the profile the token was issued to.
func (h *Handlers) GetUser(c echo.Context, claims auth.Claims) error {
	user, err := h.auth.CurrentUser(c.Request().Context(), claims.UserID)
	if errors.Is(err, authsvc.ErrUserNotFound) {
		return errorJSON(c, http.StatusNotFound, "User not found")
	}
	if err != nil {
		slog.Error("failed to load user", "user_id", claims.UserID, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to load user")
	}
	return c.JSON(http.StatusOK, UserResponse{Name: user.Name, Email: user.Email})
}

// AllUsers lists every account.
func (h *Handlers) AllUsers(c echo.Context, _ auth.Claims) error {
	users, err := h.auth.ListUsers(c.Request().Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to list users")
	}
	return c.JSON(http.StatusOK, users)
}
