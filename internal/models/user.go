// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

type User struct {
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	ID           int64     `db:"id" json:"id"`
}

// UserSummary is the public view of a user in listings.
type UserSummary struct {
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
	ID    int64  `db:"id" json:"id"`
}

// Summary strips the credentials from u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
