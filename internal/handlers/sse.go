// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	"codeberg.org/oliverandrich/go-newsletter/internal/auth"
	"codeberg.org/oliverandrich/go-newsletter/internal/sse"
	"github.com/labstack/echo/v4"
)

// Events streams new articles from the authors the caller follows.
func (h *Handlers) Events(c echo.Context, claims auth.Claims) error {
	w := c.Response()
	flusher, ok := w.Writer.(http.Flusher)
	if !ok {
		return errorJSON(c, http.StatusInternalServerError, "SSE not supported")
	}

	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)

	id, ch := h.hub.Register(claims.UserID)
	defer h.hub.Unregister(claims.UserID, id)

	connected := sse.Event{Name: "connected", Data: id, Retry: h.retry}
	if _, err := w.Write([]byte(connected.String())); err != nil {
		return nil
	}
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Write([]byte(sse.Heartbeat)); err != nil {
				return nil // Client disconnected
			}
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if _, err := w.Write([]byte(msg)); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}
