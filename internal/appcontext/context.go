// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context that carries the
// authenticated caller.
package appcontext

import (
	"errors"

	"codeberg.org/oliverandrich/go-newsletter/internal/auth"
	"github.com/labstack/echo/v4"
)

// ErrMissingClaims means a handler asked for claims on a route that the
// auth middleware does not guard.
var ErrMissingClaims = errors.New("request carries no verified claims")

// Context is a custom Echo context with the verified token claims.
type Context struct {
	echo.Context
	Claims *auth.Claims // nil until the auth middleware ran
}

// WithClaims wraps c so downstream handlers can read claims.
func WithClaims(c echo.Context, claims auth.Claims) *Context {
	if cc, ok := c.(*Context); ok {
		cc.Claims = &claims
		return cc
	}
	return &Context{Context: c, Claims: &claims}
}

// ClaimsFrom returns a copy of the claims attached to c.
func ClaimsFrom(c echo.Context) (auth.Claims, error) {
	cc, ok := c.(*Context)
	if !ok || cc.Claims == nil {
		return auth.Claims{}, ErrMissingClaims
	}
	return *cc.Claims, nil
}
