// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package unsubscribe_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"codeberg.org/oliverandrich/go-newsletter/internal/services/unsubscribe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSigner(t *testing.T, secret string, ttl time.Duration) *unsubscribe.Signer {
	t.Helper()
	s, err := unsubscribe.NewSigner(secret, "https://news.example.com", ttl)
	require.NoError(t, err)
	return s
}

func TestNewSigner_EmptySecret(t *testing.T) {
	_, err := unsubscribe.NewSigner("", "https://news.example.com", time.Hour)

	assert.Error(t, err)
}

func TestSigner_RoundTrip(t *testing.T) {
	s := newSigner(t, "secret", time.Hour)

	token, err := s.Token(unsubscribe.Target{AuthorID: 1, SubscriberID: 2})
	require.NoError(t, err)

	target, err := s.Verify(token)

	require.NoError(t, err)
	assert.Equal(t, unsubscribe.Target{AuthorID: 1, SubscriberID: 2}, target)
}

func TestSigner_Link(t *testing.T) {
	s := newSigner(t, "secret", time.Hour)

	link, err := s.Link(unsubscribe.Target{AuthorID: 3, SubscriberID: 4})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://news.example.com"+unsubscribe.Path+"?token="))

	u, err := url.Parse(link)
	require.NoError(t, err)
	target, err := s.Verify(u.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), target.AuthorID)
}

func TestSigner_OtherSecret(t *testing.T) {
	token, err := newSigner(t, "secret-a", time.Hour).Token(unsubscribe.Target{AuthorID: 1, SubscriberID: 2})
	require.NoError(t, err)

	_, err = newSigner(t, "secret-b", time.Hour).Verify(token)

	assert.ErrorIs(t, err, unsubscribe.ErrInvalidLink)
}

func TestSigner_Garbage(t *testing.T) {
	s := newSigner(t, "secret", time.Hour)

	for _, token := range []string{"", "garbage", "a|b|c"} {
		_, err := s.Verify(token)
		assert.ErrorIs(t, err, unsubscribe.ErrInvalidLink, token)
	}
}

func TestSigner_Expired(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the token to expire")
	}
	s := newSigner(t, "secret", time.Second)

	token, err := s.Token(unsubscribe.Target{AuthorID: 1, SubscriberID: 2})
	require.NoError(t, err)

	time.Sleep(2100 * time.Millisecond)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, unsubscribe.ErrInvalidLink)
}
