// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package unsubscribe signs the one-click unsubscribe links put into
// newsletter mails.
package unsubscribe

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"
)

// Path is the public route that consumes unsubscribe tokens.
const Path = "/subscription/unsubscribe-user-from-email"

const tokenName = "unsubscribe"

// ErrInvalidLink covers tampered, expired and malformed tokens.
var ErrInvalidLink = errors.New("invalid or expired unsubscribe link")

// Target names the subscription a link cancels.
type Target struct {
	AuthorID     int64 `json:"a"`
	SubscriberID int64 `json:"s"`
}

// Signer issues and verifies unsubscribe tokens.
type Signer struct {
	codec   *securecookie.SecureCookie
	baseURL string
}

// NewSigner derives signing and encryption keys from secret. Tokens stay
// valid for ttl.
func NewSigner(secret, baseURL string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("unsubscribe: secret is empty")
	}

	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("newsletter unsubscribe links"))
	hashKey := make([]byte, 32)
	blockKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, hashKey); err != nil {
		return nil, fmt.Errorf("derive hash key: %w", err)
	}
	if _, err := io.ReadFull(kdf, blockKey); err != nil {
		return nil, fmt.Errorf("derive block key: %w", err)
	}

	codec := securecookie.New(hashKey, blockKey).SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(max(int(ttl/time.Second), 1))

	return &Signer{codec: codec, baseURL: baseURL}, nil
}

// Token returns a signed token for target.
func (s *Signer) Token(target Target) (string, error) {
	token, err := s.codec.Encode(tokenName, target)
	if err != nil {
		return "", fmt.Errorf("sign unsubscribe token: %w", err)
	}
	return token, nil
}

// Link returns the absolute unsubscribe URL for target.
func (s *Signer) Link(target Target) (string, error) {
	token, err := s.Token(target)
	if err != nil {
		return "", err
	}
	return s.baseURL + Path + "?" + url.Values{"token": {token}}.Encode(), nil
}

// Verify checks token and returns the subscription it names.
func (s *Signer) Verify(token string) (Target, error) {
	var target Target
	if err := s.codec.Decode(tokenName, token, &target); err != nil {
		return Target{}, fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}
	if target.AuthorID <= 0 || target.SubscriberID <= 0 {
		return Target{}, ErrInvalidLink
	}
	return target, nil
}
