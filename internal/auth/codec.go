// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth issues and verifies the signed access tokens that carry a
// user's identity between requests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an access token stays valid.
const DefaultTokenTTL = 24 * time.Hour

var (
	// ErrMissingCredentials means the request carried no Authorization header.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidToken covers every reason a token is rejected. The cause is
	// wrapped alongside for logging.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNoSecret is returned when a codec is built without a signing key.
	ErrNoSecret = errors.New("signing secret is empty")

	errIncompleteClaims = errors.New("token payload is incomplete")
)

// Claims is the payload of an access token.
type Claims struct {
	Email  string `json:"email"`
	UserID int64  `json:"id"`
	jwt.RegisteredClaims
}

// payload is the decoding side of Claims. Pointers tell an absent field
// apart from a zero value, so whatever Encode signs decodes again.
type payload struct {
	Email  *string `json:"email"`
	UserID *int64  `json:"id"`
	jwt.RegisteredClaims
}

// Validate is called by the parser after the registered claims passed.
func (p payload) Validate() error {
	if p.Email == nil || p.UserID == nil || p.IssuedAt == nil {
		return errIncompleteClaims
	}
	return nil
}

// Codec signs and verifies access tokens with a shared HMAC secret.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	now    func() time.Time
	secret []byte
	ttl    time.Duration
}

// NewCodec returns a codec for secret. A ttl of zero selects DefaultTokenTTL.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Codec{
		now:    time.Now,
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// WithClock returns a copy of c that reads the current time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

// TTL returns the validity window of issued tokens.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode issues a token for the user, valid from now until now + TTL.
func (c *Codec) Encode(email string, userID int64) (string, error) {
	now := c.now()
	claims := Claims{
		Email:  email,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Decode verifies token and returns its claims. Any failure, be it a bad
// signature, an expired token or a malformed payload, matches
// ErrInvalidToken.
func (c *Codec) Decode(token string) (Claims, error) {
	var p payload
	_, err := jwt.ParseWithClaims(token, &p,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return Claims{Email: *p.Email, UserID: *p.UserID, RegisteredClaims: p.RegisteredClaims}, nil
}
