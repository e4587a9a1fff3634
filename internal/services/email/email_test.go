// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"codeberg.org/oliverandrich/go-newsletter/internal/config"
	"codeberg.org/oliverandrich/go-newsletter/internal/i18n"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"golang.org/x/text/language"
)

type recordingSender struct {
	err  error
	msgs []*mail.Msg
}

func (r *recordingSender) DialAndSendWithContext(_ context.Context, msgs ...*mail.Msg) error {
	r.msgs = append(r.msgs, msgs...)
	return r.err
}

func validSMTPConfig() *config.SMTPConfig {
	return &config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "testuser",
		Password: "testpass",
		From:     "news@example.com",
		FromName: "Newsletter",
		TLS:      true,
	}
}

func testNewsletter() email.Newsletter {
	return email.Newsletter{
		RecipientName:  "Grace",
		RecipientEmail: "grace@example.com",
		AuthorName:     "Ada",
		Title:          "Engines & <Looms>",
		Snippet:        "On the analytical engine",
		ArticleURL:     "https://news.example.com/article/get-by-uuid/abc",
		UnsubscribeURL: "https://news.example.com/subscription/unsubscribe-user-from-email?token=t",
	}
}

func render(t *testing.T, msg *mail.Msg) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestNewService(t *testing.T) {
	svc, err := email.NewService(validSMTPConfig())

	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestNewService_MissingHost(t *testing.T) {
	cfg := validSMTPConfig()
	cfg.Host = ""

	_, err := email.NewService(cfg)

	assert.ErrorIs(t, err, email.ErrNoHost)
}

func TestNewService_MissingFrom(t *testing.T) {
	cfg := validSMTPConfig()
	cfg.From = ""

	_, err := email.NewService(cfg)

	assert.ErrorIs(t, err, email.ErrNoFrom)
}

func TestSendNewsletter(t *testing.T) {
	svc, err := email.NewService(validSMTPConfig())
	require.NoError(t, err)
	sender := &recordingSender{}
	svc = svc.WithSender(sender)

	ctx := i18n.WithLocale(context.Background(), language.English)
	require.NoError(t, svc.SendNewsletter(ctx, testNewsletter()))

	require.Len(t, sender.msgs, 1)
	msg := sender.msgs[0]

	to, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"grace@example.com"}, to)
	assert.Equal(t, []string{"New article from Ada: Engines & <Looms>"}, msg.GetGenHeader(mail.HeaderSubject))
	assert.Equal(t,
		[]string{"<https://news.example.com/subscription/unsubscribe-user-from-email?token=t>"},
		msg.GetGenHeader(mail.HeaderListUnsubscribe))

	raw := render(t, msg)
	assert.Contains(t, raw, "On the analytical engine")
	assert.Contains(t, raw, "Engines & <Looms>")
	assert.Contains(t, raw, "text/html")
}

func TestSendNewsletter_German(t *testing.T) {
	svc, err := email.NewService(validSMTPConfig())
	require.NoError(t, err)
	sender := &recordingSender{}
	svc = svc.WithSender(sender)

	ctx := i18n.WithLocale(context.Background(), language.German)
	require.NoError(t, svc.SendNewsletter(ctx, testNewsletter()))

	require.Len(t, sender.msgs, 1)
	assert.Equal(t,
		[]string{"Neuer Artikel von Ada: Engines & <Looms>"},
		sender.msgs[0].GetGenHeader(mail.HeaderSubject))
}

func TestSendNewsletter_SenderError(t *testing.T) {
	svc, err := email.NewService(validSMTPConfig())
	require.NoError(t, err)
	boom := errors.New("connection refused")
	svc = svc.WithSender(&recordingSender{err: boom})

	err = svc.SendNewsletter(context.Background(), testNewsletter())

	assert.ErrorIs(t, err, boom)
}

func TestSendNewsletter_InvalidRecipient(t *testing.T) {
	svc, err := email.NewService(validSMTPConfig())
	require.NoError(t, err)
	sender := &recordingSender{}
	svc = svc.WithSender(sender)

	n := testNewsletter()
	n.RecipientEmail = "not an address"

	assert.Error(t, svc.SendNewsletter(context.Background(), n))
	assert.Empty(t, sender.msgs)
}
