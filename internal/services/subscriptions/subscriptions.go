// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/go-newsletter/internal/models"
	"codeberg.org/oliverandrich/go-newsletter/internal/repository"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/unsubscribe"
)

var (
	ErrSelfSubscription  = errors.New("cannot subscribe to yourself")
	ErrUserNotFound      = errors.New("user not found")
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrNotSubscribed     = errors.New("not subscribed")
)

// LinkVerifier checks signed unsubscribe tokens.
type LinkVerifier interface {
	Verify(token string) (unsubscribe.Target, error)
}

type Service struct {
	repo  *repository.Repository
	links LinkVerifier
}

func NewService(repo *repository.Repository, links LinkVerifier) *Service {
	return &Service{repo: repo, links: links}
}

// Subscribe makes subscriberID follow authorID.
func (s *Service) Subscribe(ctx context.Context, subscriberID, authorID int64) error {
	if subscriberID == authorID {
		return ErrSelfSubscription
	}

	exists, err := s.repo.UserExists(ctx, authorID)
	if err != nil {
		return fmt.Errorf("failed to look up author: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}

	_, err = s.repo.CreateSubscription(ctx, authorID, subscriberID)
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrAlreadySubscribed
	}
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	slog.Info("subscribed", "author_id", authorID, "subscriber_id", subscriberID)
	return nil
}

// Unsubscribe ends the subscription of subscriberID to authorID.
func (s *Service) Unsubscribe(ctx context.Context, subscriberID, authorID int64) error {
	err := s.repo.DeleteSubscription(ctx, authorID, subscriberID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotSubscribed
	}
	if err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	slog.Info("unsubscribed", "author_id", authorID, "subscriber_id", subscriberID)
	return nil
}

// UnsubscribeByToken ends the subscription named by a signed mail link.
// An invalid link matches unsubscribe.ErrInvalidLink.
func (s *Service) UnsubscribeByToken(ctx context.Context, token string) error {
	if s.links == nil {
		return unsubscribe.ErrInvalidLink
	}
	target, err := s.links.Verify(token)
	if err != nil {
		return err
	}
	return s.Unsubscribe(ctx, target.SubscriberID, target.AuthorID)
}

// Subscriptions lists the authors subscriberID follows.
func (s *Service) Subscriptions(ctx context.Context, subscriberID int64) ([]models.UserSummary, error) {
	return s.repo.ListSubscriptions(ctx, subscriberID)
}

// Subscribers lists the users following authorID.
func (s *Service) Subscribers(ctx context.Context, authorID int64) ([]models.UserSummary, error) {
	return s.repo.ListSubscribers(ctx, authorID)
}
