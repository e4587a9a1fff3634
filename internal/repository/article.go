// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"github.com/google/uuid"

	"codeberg.org/oliverandrich/go-newsletter/internal/models"
)

const articleColumns = `a.id, a.title, a.content, a.uuid, a.user_id, a.created_at, a.image`

// CreateArticle inserts article and fills in its ID.
func (r *Repository) CreateArticle(ctx context.Context, article *models.Article) error {
	err := r.db.GetContext(ctx, &article.ID,
		r.q(`INSERT INTO articles (title, content, uuid, user_id, created_at, image)
			VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		article.Title, article.Content, article.UUID, article.UserID, article.CreatedAt, article.Image)
	return wrapError(err)
}

// ListArticles returns all articles, newest first.
func (r *Repository) ListArticles(ctx context.Context) ([]models.Article, error) {
	articles := []models.Article{}
	err := r.db.SelectContext(ctx, &articles,
		`SELECT `+articleColumns+` FROM articles a ORDER BY a.created_at DESC, a.id DESC`)
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// ListArticlesByUser returns the articles written by userID, newest first.
func (r *Repository) ListArticlesByUser(ctx context.Context, userID int64) ([]models.Article, error) {
	articles := []models.Article{}
	err := r.db.SelectContext(ctx, &articles,
		r.q(`SELECT `+articleColumns+` FROM articles a WHERE a.user_id = ? ORDER BY a.created_at DESC, a.id DESC`),
		userID)
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// GetArticleByUUID retrieves one article together with its author.
func (r *Repository) GetArticleByUUID(ctx context.Context, id uuid.UUID) (*models.ArticleWithAuthor, error) {
	var article models.ArticleWithAuthor
	err := r.db.GetContext(ctx, &article,
		r.q(`SELECT `+articleColumns+`, u.name AS author_name, u.email AS author_email
			FROM articles a JOIN users u ON u.id = a.user_id
			WHERE a.uuid = ?`),
		id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &article, nil
}
