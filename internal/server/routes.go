// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"codeberg.org/oliverandrich/go-newsletter/internal/handlers"
	"codeberg.org/oliverandrich/go-newsletter/internal/middleware"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/unsubscribe"
	"github.com/labstack/echo/v4"
)

func setupRoutes(e *echo.Echo, h *handlers.Handlers, codec middleware.TokenDecoder) {
	requireAuth := middleware.RequireAuth(codec)
	withClaims := handlers.WithClaims

	e.GET("/health", h.Health)
	e.GET("/ping/:name", h.Ping)

	authGroup := e.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)

	user := e.Group("/user", requireAuth)
	user.GET("/get-user", withClaims(h.GetUser))
	user.GET("/all-users", withClaims(h.AllUsers))

	secureArticle := e.Group("/secure/article", requireAuth)
	secureArticle.POST("/create", withClaims(h.CreateArticle))
	secureArticle.GET("/my-article", withClaims(h.MyArticles))
	secureArticle.POST("/image-upload", withClaims(h.ImageUpload))
	secureArticle.GET("/events", withClaims(h.Events))

	article := e.Group("/article")
	article.GET("/all-article", h.AllArticles)
	article.GET("/get-by-uuid/:uuid", h.ArticleByUUID)

	secureSub := e.Group("/secure/subscription", requireAuth)
	secureSub.POST("/subscribe-user", withClaims(h.Subscribe))
	secureSub.GET("/unsubscribe-user", withClaims(h.Unsubscribe))
	secureSub.GET("/my-subscriptions", withClaims(h.MySubscriptions))
	secureSub.GET("/my-subscribers", withClaims(h.MySubscribers))

	e.GET(unsubscribe.Path, h.UnsubscribeFromEmail)
}
