// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Subscription links a subscriber to the author whose articles they follow.
type Subscription struct {
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	ID               int64     `db:"id" json:"id"`
	SubscribedUserID int64     `db:"subscribed_user_id" json:"subscribed_user_id"`
	SubscriberUserID int64     `db:"subscriber_user_id" json:"subscriber_user_id"`
}
