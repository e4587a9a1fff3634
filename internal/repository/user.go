// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/go-newsletter/internal/models"
)

// CreateUser creates a new user. A taken email yields ErrDuplicate.
func (r *Repository) CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	err := r.db.GetContext(ctx, &user.ID,
		r.q(`INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?) RETURNING id`),
		user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return nil, wrapError(err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, r.q(`SELECT * FROM users WHERE id = ?`), id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, r.q(`SELECT * FROM users WHERE email = ?`), email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// ListUsers returns every user ordered by ID.
func (r *Repository) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	if err := r.db.SelectContext(ctx, &users, `SELECT id, name, email FROM users ORDER BY id`); err != nil {
		return nil, err
	}
	return users, nil
}

// UserExists checks if a user with the given ID exists.
func (r *Repository) UserExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, r.q(`SELECT count(*) FROM users WHERE id = ?`), id); err != nil {
		return false, err
	}
	return count > 0, nil
}
