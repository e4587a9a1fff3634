// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"codeberg.org/oliverandrich/go-newsletter/internal/auth"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/subscriptions"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/unsubscribe"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
)

// SubscribeRequest names the author to follow.
type SubscribeRequest struct {
	UserID int64 `json:"user_id"`
}

func (r SubscribeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, validation.Min(int64(1))),
	)
}

// Subscribe makes the caller follow another user.
func (h *Handlers) Subscribe(c echo.Context, claims auth.Claims) error {
	var req SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return invalid(c, err)
	}

	err := h.subscriptions.Subscribe(c.Request().Context(), claims.UserID, req.UserID)
	switch {
	case errors.Is(err, subscriptions.ErrSelfSubscription):
		return errorJSON(c, http.StatusBadRequest, "You cannot subscribe to yourself")
	case errors.Is(err, subscriptions.ErrUserNotFound):
		return errorJSON(c, http.StatusNotFound, "User not found")
	case errors.Is(err, subscriptions.ErrAlreadySubscribed):
		return errorJSON(c, http.StatusBadRequest, "Already subscribed")
	case err != nil:
		slog.Error("failed to subscribe", "subscriber_id", claims.UserID, "author_id", req.UserID, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to subscribe")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Subscribed"})
}

// Unsubscribe ends the caller's subscription to ?user_id.
func (h *Handlers) Unsubscribe(c echo.Context, claims auth.Claims) error {
	authorID, err := strconv.ParseInt(c.QueryParam("user_id"), 10, 64)
	if err != nil || authorID < 1 {
		return errorJSON(c, http.StatusBadRequest, "user_id must be a positive integer")
	}

	err = h.subscriptions.Unsubscribe(c.Request().Context(), claims.UserID, authorID)
	if errors.Is(err, subscriptions.ErrNotSubscribed) {
		return errorJSON(c, http.StatusNotFound, "Subscription not found")
	}
	if err != nil {
		slog.Error("failed to unsubscribe", "subscriber_id", claims.UserID, "author_id", authorID, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to unsubscribe")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Unsubscribed"})
}

// UnsubscribeFromEmail follows the signed link at the bottom of a newsletter.
func (h *Handlers) UnsubscribeFromEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return errorJSON(c, http.StatusBadRequest, "Invalid unsubscribe link")
	}

	err := h.subscriptions.UnsubscribeByToken(c.Request().Context(), token)
	switch {
	case errors.Is(err, unsubscribe.ErrInvalidLink):
		slog.Warn("unsubscribe_link_invalid", "error", err)
		return errorJSON(c, http.StatusBadRequest, "Invalid unsubscribe link")
	case errors.Is(err, subscriptions.ErrNotSubscribed):
		// Following the same link twice is not an error for the reader.
		return c.JSON(http.StatusOK, MessageResponse{Message: "Unsubscribed"})
	case err != nil:
		slog.Error("failed to unsubscribe from email", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to unsubscribe")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Unsubscribed"})
}

// MySubscriptions lists the authors the caller follows.
func (h *Handlers) MySubscriptions(c echo.Context, claims auth.Claims) error {
	list, err := h.subscriptions.Subscriptions(c.Request().Context(), claims.UserID)
	if err != nil {
		slog.Error("failed to list subscriptions", "user_id", claims.UserID, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to list subscriptions")
	}
	return c.JSON(http.StatusOK, list)
}

// MySubscribers lists the users following the caller.
func (h *Handlers) MySubscribers(c echo.Context, claims auth.Claims) error {
	list, err := h.subscriptions.Subscribers(c.Request().Context(), claims.UserID)
	if err != nil {
		slog.Error("failed to list subscribers", "user_id", claims.UserID, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to list subscribers")
	}
	return c.JSON(http.StatusOK, list)
}
