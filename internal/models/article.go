// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// SnippetLength is the number of characters of an article quoted in
// newsletter mails.
const SnippetLength = 50

type Article struct { //nolint:govet // fieldalignment not critical for models
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	UUID      uuid.UUID `db:"uuid" json:"uuid"`
	UserID    int64     `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Image     *string   `db:"image" json:"image,omitempty"`
}

// Snippet returns the first SnippetLength characters of the content.
// Multi-byte characters are never split.
func (a *Article) Snippet() string {
	if utf8.RuneCountInString(a.Content) <= SnippetLength {
		return a.Content
	}
	runes := []rune(a.Content)
	return string(runes[:SnippetLength])
}

// ArticleWithAuthor is an article joined with its author's public data.
type ArticleWithAuthor struct { //nolint:govet // fieldalignment not critical for models
	Article
	AuthorName  string `db:"author_name" json:"-"`
	AuthorEmail string `db:"author_email" json:"-"`
}
