// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/oliverandrich/go-newsletter/internal/services/articles"
	authsvc "codeberg.org/oliverandrich/go-newsletter/internal/services/auth"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/images"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/subscriptions"
	"codeberg.org/oliverandrich/go-newsletter/internal/sse"
	"github.com/labstack/echo/v4"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ImageUploader presigns image uploads.
type ImageUploader interface {
	PresignUpload(ctx context.Context, userID int64, contentType string) (*images.Upload, error)
}

// Deps are the services the handlers call into. Images may be nil when
// no bucket is configured.
type Deps struct {
	DB            Pinger
	Auth          *authsvc.Service
	Articles      *articles.Service
	Subscriptions *subscriptions.Service
	Images        ImageUploader
	Hub           *sse.Hub
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	db            Pinger
	auth          *authsvc.Service
	articles      *articles.Service
	subscriptions *subscriptions.Service
	images        ImageUploader
	hub           *sse.Hub
	heartbeat     time.Duration
	retry         time.Duration
}

// New creates a new Handlers instance.
func New(d Deps) *Handlers {
	return &Handlers{
		db:            d.DB,
		auth:          d.Auth,
		articles:      d.Articles,
		subscriptions: d.Subscriptions,
		images:        d.Images,
		hub:           d.Hub,
		heartbeat:     30 * time.Second,
		retry:         5 * time.Second,
	}
}

// HealthResponse reports database state and live feed load.
type HealthResponse struct {
	Status    string `json:"status"`
	Streams   int    `json:"streams"`
	Listeners int    `json:"listeners"`
}

// Health reports whether the database answers, plus the number of open
// event streams and of distinct users holding them.
func (h *Handlers) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
	}

	resp := HealthResponse{Status: "ok"}
	if h.hub != nil {
		resp.Streams = h.hub.ClientCount()
		resp.Listeners = h.hub.UserCount()
	}
	return c.JSON(http.StatusOK, resp)
}

// Ping greets name.
func (h *Handlers) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: "Hello " + c.Param("name") + "!"})
}
