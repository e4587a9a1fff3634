// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/go-newsletter/internal/auth"
	"codeberg.org/oliverandrich/go-newsletter/internal/i18n"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/articles"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/images"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// CreateArticleRequest is the request body for publishing an article.
type CreateArticleRequest struct {
	Image   *string `json:"image"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
}

func (r CreateArticleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Image, validation.NilOrNotEmpty),
	)
}

// CreateArticleResponse reports the new article. Notified counts the
// newsletter mails sent, Streamed the live feeds that got the event.
type CreateArticleResponse struct {
	Message  string    `json:"message"`
	UUID     uuid.UUID `json:"uuid"`
	Notified int       `json:"notified"`
	Streamed int       `json:"streamed"`
}

// ImageUploadRequest names the type of the image about to be uploaded.
type ImageUploadRequest struct {
	ContentType string `json:"content_type"`
}

func (r ImageUploadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ContentType, validation.Required, validation.In(lo.ToAnySlice(lo.Keys(images.ContentTypes))...)),
	)
}

// CreateArticle publishes an article and notifies the caller's subscribers.
// Mails are sent unless send_email=false.
func (h *Handlers) CreateArticle(c echo.Context, claims auth.Claims) error {
	sendEmail := true
	if v := c.QueryParam("send_email"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "send_email must be true or false")
		}
		sendEmail = b
	}

	var req CreateArticleRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := req.Validate(); err != nil {
		return invalid(c, err)
	}

	result, err := h.articles.Create(c.Request().Context(), articles.CreateParams{
		Image:     req.Image,
		Title:     req.Title,
		Content:   req.Content,
		AuthorID:  claims.UserID,
		SendEmail: sendEmail,
	})
	switch {
	case errors.Is(err, articles.ErrAuthorNotFound):
		return errorJSON(c, http.StatusNotFound, "User not found")
	case errors.Is(err, articles.ErrForeignImage):
		return invalid(c, validation.Errors{"image": err})
	case err != nil:
		slog.Error("failed to create article", "user_id", claims.UserID, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to create article")
	}

	return c.JSON(http.StatusOK, CreateArticleResponse{
		Message:  i18n.TPlural(c.Request().Context(), "subscribers_notified", result.Emailed),
		UUID:     result.Article.UUID,
		Notified: result.Emailed,
		Streamed: result.Streamed,
	})
}

// MyArticles lists the caller's articles, newest first.
func (h *Handlers) MyArticles(c echo.Context, claims auth.Claims) error {
	list, err := h.articles.ListByAuthor(c.Request().Context(), claims.UserID)
	if err != nil {
		slog.Error("failed to list articles", "user_id", claims.UserID, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to list articles")
	}
	return c.JSON(http.StatusOK, list)
}

// ImageUpload hands out a presigned URL the caller can PUT an image to.
func (h *Handlers) ImageUpload(c echo.Context, claims auth.Claims) error {
	if h.images == nil {
		return errorJSON(c, http.StatusServiceUnavailable, images.ErrDisabled.Error())
	}

	var req ImageUploadRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return invalid(c, err)
	}

	upload, err := h.images.PresignUpload(c.Request().Context(), claims.UserID, req.ContentType)
	switch {
	case errors.Is(err, images.ErrUnsupportedType):
		return invalid(c, validation.Errors{"content_type": err})
	case err != nil:
		slog.Error("failed to presign upload", "user_id", claims.UserID, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to prepare upload")
	}

	return c.JSON(http.StatusOK, upload)
}

// AllArticles lists every article, newest first.
func (h *Handlers) AllArticles(c echo.Context) error {
	list, err := h.articles.List(c.Request().Context())
	if err != nil {
		slog.Error("failed to list articles", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to list articles")
	}
	return c.JSON(http.StatusOK, list)
}

// ArticleByUUID returns one article with its author.
func (h *Handlers) ArticleByUUID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid article id")
	}

	detail, err := h.articles.Get(c.Request().Context(), id)
	if errors.Is(err, articles.ErrArticleNotFound) {
		return errorJSON(c, http.StatusNotFound, "Article not found")
	}
	if err != nil {
		slog.Error("failed to load article", "article_uuid", id, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to load article")
	}
	return c.JSON(http.StatusOK, detail)
}
