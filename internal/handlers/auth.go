// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	authsvc "codeberg.org/oliverandrich/go-newsletter/internal/services/auth"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"
)

// RegisterRequest is the request body for creating an account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the shape of the request. Password strength is judged
// by the auth service.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.EmailFormat),
		validation.Field(&r.Password, validation.Required, validation.Length(0, 128)),
	)
}

// RegisterResponse carries the ID of the new account.
type RegisterResponse struct {
	ID int64 `json:"id"`
}

// LoginRequest is the request body for obtaining a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginResponse carries a fresh access token and its lifetime in seconds.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// Register creates an account.
func (h *Handlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return invalid(c, err)
	}

	user, err := h.auth.Register(c.Request().Context(), authsvc.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var pwErr *authsvc.PasswordValidationError
		switch {
		case errors.Is(err, authsvc.ErrUserExists):
			return errorJSON(c, http.StatusConflict, "user already exists")
		case errors.Is(err, authsvc.ErrInvalidEmail):
			return invalid(c, validation.Errors{"email": err})
		case errors.As(err, &pwErr):
			return invalid(c, validation.Errors{"password": pwErr})
		}
		slog.Error("register_failed", "email", req.Email, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to create user")
	}

	return c.JSON(http.StatusOK, RegisterResponse{ID: user.ID})
}

// Login exchanges credentials for an access token.
func (h *Handlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return invalid(c, err)
	}

	token, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if errors.Is(err, authsvc.ErrInvalidCredentials) {
		return errorJSON(c, http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		slog.Error("login_error", "email", req.Email, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "login failed")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.auth.TokenTTL().Seconds()),
	})
}
