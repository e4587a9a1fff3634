// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields validation.Errors `json:"fields,omitempty"`
}

// MessageResponse is the body of requests that only report success.
type MessageResponse struct {
	Message string `json:"message"`
}

func errorJSON(c echo.Context, code int, message string) error {
	return c.JSON(code, ErrorResponse{Error: message})
}

// invalid answers 422 with per-field messages when err came from ozzo.
func invalid(c echo.Context, err error) error {
	var fields validation.Errors
	if errors.As(err, &fields) {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Fields: fields})
	}
	return errorJSON(c, http.StatusUnprocessableEntity, err.Error())
}

// ErrorHandler renders errors that reach Echo as ErrorResponse. HTTP errors
// keep their status and message; anything else becomes a 500 whose cause
// is only logged.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	} else {
		slog.Error("unhandled error",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = errorJSON(c, code, message)
	}
	if err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
