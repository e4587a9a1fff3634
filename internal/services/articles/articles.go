// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package articles publishes articles and notifies the author's
// subscribers.
package articles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"codeberg.org/oliverandrich/go-newsletter/internal/models"
	"codeberg.org/oliverandrich/go-newsletter/internal/repository"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/email"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/images"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/unsubscribe"
	"codeberg.org/oliverandrich/go-newsletter/internal/sse"
	"github.com/google/uuid"
)

// EventArticle is the SSE event name for newly published articles.
const EventArticle = "article"

var (
	ErrAuthorNotFound  = errors.New("author not found")
	ErrArticleNotFound = errors.New("article not found")
	ErrForeignImage    = errors.New("image was not uploaded by the author")
)

// Mailer sends one newsletter mail.
type Mailer interface {
	SendNewsletter(ctx context.Context, n email.Newsletter) error
}

// ImageStore resolves stored image keys to downloadable URLs.
type ImageStore interface {
	PresignDownload(ctx context.Context, key string) (string, error)
}

// Service creates and reads articles.
type Service struct {
	repo    *repository.Repository
	hub     *sse.Hub
	mailer  Mailer
	links   *unsubscribe.Signer
	images  ImageStore
	now     func() time.Time
	baseURL string
}

// Options holds the optional collaborators. A nil Mailer disables
// newsletter mails and a nil ImageStore serves image keys as stored.
type Options struct {
	Mailer Mailer
	Links  *unsubscribe.Signer
	Images ImageStore
}

func NewService(repo *repository.Repository, hub *sse.Hub, baseURL string, opts Options) *Service {
	return &Service{
		repo:    repo,
		hub:     hub,
		mailer:  opts.Mailer,
		links:   opts.Links,
		images:  opts.Images,
		now:     time.Now,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// CreateParams describes a new article.
type CreateParams struct {
	Image     *string
	Title     string
	Content   string
	AuthorID  int64
	SendEmail bool
}

// CreateResult reports what happened after the article was stored.
type CreateResult struct {
	Article  *models.Article
	Streamed int // live event streams that received the article
	Emailed  int // newsletter mails handed to the SMTP server
	Failed   int // newsletter mails that could not be sent
}

// ArticleEvent is the payload of EventArticle.
type ArticleEvent struct {
	UUID       uuid.UUID `json:"uuid"`
	Title      string    `json:"title"`
	Snippet    string    `json:"snippet"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	URL        string    `json:"url"`
}

// ArticleURL returns the public link of an article.
func (s *Service) ArticleURL(id uuid.UUID) string {
	return s.baseURL + "/article/get-by-uuid/" + id.String()
}

// Create stores the article and notifies the author's subscribers. Mail
// failures are logged per recipient and never undo the article.
func (s *Service) Create(ctx context.Context, p CreateParams) (*CreateResult, error) {
	author, err := s.repo.GetUserByID(ctx, p.AuthorID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load author: %w", err)
	}

	if p.Image != nil && s.images != nil && !images.OwnsKey(author.ID, *p.Image) {
		return nil, ErrForeignImage
	}

	article := &models.Article{
		Title:     p.Title,
		Content:   p.Content,
		UUID:      uuid.New(),
		UserID:    author.ID,
		CreatedAt: s.now().UTC(),
		Image:     p.Image,
	}
	if err := s.repo.CreateArticle(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}
	slog.Info("article_created", "article_uuid", article.UUID, "author_id", author.ID)

	subscribers, err := s.repo.ListSubscribers(ctx, author.ID)
	if err != nil {
		// The article is stored; a failed lookup only costs the notifications.
		slog.Error("failed to load subscribers", "author_id", author.ID, "error", err)
		return &CreateResult{Article: article}, nil
	}

	result := &CreateResult{Article: article}
	result.Streamed = s.stream(article, author, subscribers)
	if p.SendEmail && s.mailer != nil {
		// Delivery outlives the publishing request; the locale stays on ctx.
		result.Emailed, result.Failed = s.mail(context.WithoutCancel(ctx), article, author, subscribers)
	}

	return result, nil
}

func (s *Service) stream(article *models.Article, author *models.User, subscribers []models.UserSummary) int {
	if s.hub == nil || len(subscribers) == 0 {
		return 0
	}

	event, err := sse.NewJSONEvent(EventArticle, ArticleEvent{
		UUID:       article.UUID,
		Title:      article.Title,
		Snippet:    article.Snippet(),
		AuthorID:   author.ID,
		AuthorName: author.Name,
		URL:        s.ArticleURL(article.UUID),
	})
	if err != nil {
		slog.Error("failed to encode article event", "error", err)
		return 0
	}
	event.ID = article.UUID.String()

	ids := make([]int64, len(subscribers))
	for i, sub := range subscribers {
		ids[i] = sub.ID
	}
	return s.hub.SendToUsers(ids, event.String())
}

func (s *Service) mail(ctx context.Context, article *models.Article, author *models.User, subscribers []models.UserSummary) (sent, failed int) {
	for _, sub := range subscribers {
		n := email.Newsletter{
			RecipientName:  sub.Name,
			RecipientEmail: sub.Email,
			AuthorName:     author.Name,
			Title:          article.Title,
			Snippet:        article.Snippet(),
			ArticleURL:     s.ArticleURL(article.UUID),
		}
		if s.links != nil {
			link, err := s.links.Link(unsubscribe.Target{AuthorID: author.ID, SubscriberID: sub.ID})
			if err != nil {
				slog.Error("failed to sign unsubscribe link", "subscriber_id", sub.ID, "error", err)
			}
			n.UnsubscribeURL = link
		}

		if err := s.mailer.SendNewsletter(ctx, n); err != nil {
			failed++
			slog.Warn("newsletter_failed", "article_uuid", article.UUID, "subscriber_id", sub.ID, "error", err)
			continue
		}
		sent++
	}

	slog.Info("newsletter_sent", "article_uuid", article.UUID, "sent", sent, "failed", failed)
	return sent, failed
}

// Author is the public part of an article's author.
type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Detail is a single article with its author and a fetchable image URL.
type Detail struct {
	models.Article
	User     Author `json:"user"`
	ImageURL string `json:"image_url,omitempty"`
}

// Get returns the article with the given UUID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	article, err := s.repo.GetArticleByUUID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load article: %w", err)
	}

	detail := &Detail{
		Article: article.Article,
		User:    Author{Name: article.AuthorName, Email: article.AuthorEmail},
	}
	if article.Image != nil {
		detail.ImageURL = s.imageURL(ctx, *article.Image)
	}
	return detail, nil
}

func (s *Service) imageURL(ctx context.Context, key string) string {
	if s.images == nil {
		return key
	}
	link, err := s.images.PresignDownload(ctx, key)
	if err != nil {
		slog.Warn("failed to presign image", "key", key, "error", err)
		return ""
	}
	return link
}

// List returns every article, newest first.
func (s *Service) List(ctx context.Context) ([]models.Article, error) {
	return s.repo.ListArticles(ctx)
}

// ListByAuthor returns the articles of one author, newest first.
func (s *Service) ListByAuthor(ctx context.Context, authorID int64) ([]models.Article, error) {
	return s.repo.ListArticlesByUser(ctx, authorID)
}
