// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email delivers newsletter mails over SMTP.
package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/oliverandrich/go-newsletter/internal/config"
	"codeberg.org/oliverandrich/go-newsletter/internal/i18n"
	"github.com/a-h/templ"
	"github.com/wneessen/go-mail"
)

var (
	ErrNoHost = errors.New("SMTP host is required")
	ErrNoFrom = errors.New("SMTP from address is required")
)

// Sender delivers prepared messages. *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Newsletter is one mail announcing an article to one subscriber.
type Newsletter struct {
	RecipientName  string
	RecipientEmail string
	AuthorName     string
	Title          string
	Snippet        string
	ArticleURL     string
	UnsubscribeURL string
}

// Service renders and sends newsletter mails.
type Service struct {
	cfg    *config.SMTPConfig
	sender Sender
}

// NewService creates a new email service backed by an SMTP client.
// The client connects lazily, once per send.
func NewService(cfg *config.SMTPConfig) (*Service, error) {
	if cfg.Host == "" {
		return nil, ErrNoHost
	}
	if cfg.From == "" {
		return nil, ErrNoFrom
	}

	client, err := mail.NewClient(cfg.Host, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("creating mail client: %w", err)
	}

	return &Service{cfg: cfg, sender: client}, nil
}

// WithSender returns a copy of s that hands messages to sender.
func (s *Service) WithSender(sender Sender) *Service {
	cp := *s
	cp.sender = sender
	return &cp
}

// SendNewsletter renders n in the locale of ctx and sends it.
func (s *Service) SendNewsletter(ctx context.Context, n Newsletter) error {
	msg, err := s.buildNewsletter(ctx, n)
	if err != nil {
		return err
	}
	if err := s.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

func (s *Service) buildNewsletter(ctx context.Context, n Newsletter) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("setting from address: %w", err)
	}

	if err := msg.AddToFormat(n.RecipientName, n.RecipientEmail); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(i18n.TData(ctx, "newsletter_subject", map[string]any{
		"Author": n.AuthorName,
		"Title":  n.Title,
	}))
	msg.SetDate()
	msg.SetMessageID()
	if n.UnsubscribeURL != "" {
		msg.SetGenHeader(mail.HeaderListUnsubscribe, "<"+n.UnsubscribeURL+">")
	}

	text := newsletterText(ctx, n)
	msg.SetBodyString(mail.TypeTextPlain, text)

	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)
	if err := newsletterHTML(n).Render(ctx, buf); err != nil {
		return nil, fmt.Errorf("rendering newsletter: %w", err)
	}
	msg.AddAlternativeString(mail.TypeTextHTML, buf.String())

	return msg, nil
}

func clientOptions(cfg *config.SMTPConfig) []mail.Option {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(15 * time.Second),
	}

	// Implicit TLS on 465, STARTTLS elsewhere
	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	return opts
}
