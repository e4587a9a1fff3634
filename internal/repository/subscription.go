// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/go-newsletter/internal/models"
)

// CreateSubscription subscribes subscriberID to authorID. An existing
// subscription yields ErrDuplicate.
func (r *Repository) CreateSubscription(ctx context.Context, authorID, subscriberID int64) (*models.Subscription, error) {
	sub := &models.Subscription{
		SubscribedUserID: authorID,
		SubscriberUserID: subscriberID,
		CreatedAt:        time.Now().UTC(),
	}
	err := r.db.GetContext(ctx, &sub.ID,
		r.q(`INSERT INTO subscriptions (subscribed_user_id, subscriber_user_id, created_at) VALUES (?, ?, ?) RETURNING id`),
		sub.SubscribedUserID, sub.SubscriberUserID, sub.CreatedAt)
	if err != nil {
		return nil, wrapError(err)
	}
	return sub, nil
}

// DeleteSubscription removes the subscription of subscriberID to authorID.
// It returns ErrNotFound when there was none.
func (r *Repository) DeleteSubscription(ctx context.Context, authorID, subscriberID int64) error {
	res, err := r.db.ExecContext(ctx,
		r.q(`DELETE FROM subscriptions WHERE subscribed_user_id = ? AND subscriber_user_id = ?`),
		authorID, subscriberID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSubscriptions returns the authors subscriberID follows.
func (r *Repository) ListSubscriptions(ctx context.Context, subscriberID int64) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	err := r.db.SelectContext(ctx, &users,
		r.q(`SELECT u.id, u.name, u.email FROM subscriptions s
			JOIN users u ON u.id = s.subscribed_user_id
			WHERE s.subscriber_user_id = ? ORDER BY s.id`),
		subscriberID)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListSubscribers returns the users following authorID.
func (r *Repository) ListSubscribers(ctx context.Context, authorID int64) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	err := r.db.SelectContext(ctx, &users,
		r.q(`SELECT u.id, u.name, u.email FROM subscriptions s
			JOIN users u ON u.id = s.subscriber_user_id
			WHERE s.subscribed_user_id = ? ORDER BY s.id`),
		authorID)
	if err != nil {
		return nil, err
	}
	return users, nil
}
