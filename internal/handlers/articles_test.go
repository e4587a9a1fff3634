// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"codeberg.org/oliverandrich/go-newsletter/internal/services/articles"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/images"
	"codeberg.org/oliverandrich/go-newsletter/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateArticle(t *testing.T) {
	f := newFixture(t)
	testutil.NewTestSubscription(t, f.repo, f.ada.ID, f.grace.ID)

	code, body := f.call(t, f.ada, f.h.CreateArticle, http.MethodPost, "/secure/article/create",
		`{"title":"Hello","content":"First issue of the newsletter."}`)

	require.Equal(t, http.StatusOK, code, string(body))
	var resp CreateArticleResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.NotEqual(t, uuid.Nil, resp.UUID)
	assert.Equal(t, 1, resp.Notified)
	assert.Equal(t, "1 subscriber notified", resp.Message)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "grace@example.com", f.mailer.sent[0].RecipientEmail)
	assert.Contains(t, f.mailer.sent[0].ArticleURL, resp.UUID.String())

	list, err := f.repo.ListArticlesByUser(t.Context(), f.ada.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, resp.UUID, list[0].UUID)
}

func TestCreateArticle_SendEmailFalse(t *testing.T) {
	f := newFixture(t)
	testutil.NewTestSubscription(t, f.repo, f.ada.ID, f.grace.ID)

	code, body := f.call(t, f.ada, f.h.CreateArticle, http.MethodPost, "/secure/article/create?send_email=false",
		`{"title":"Quiet","content":"No mail for this one."}`)

	require.Equal(t, http.StatusOK, code, string(body))
	assert.Empty(t, f.mailer.sent)
}

func TestCreateArticle_Failures(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		body     string
		wantCode int
	}{
		{"bad send_email", "/secure/article/create?send_email=maybe", `{"title":"a","content":"b"}`, http.StatusBadRequest},
		{"missing title", "/secure/article/create", `{"content":"b"}`, http.StatusUnprocessableEntity},
		{"blank title", "/secure/article/create", `{"title":"   ","content":"b"}`, http.StatusUnprocessableEntity},
		{"missing content", "/secure/article/create", `{"title":"a"}`, http.StatusUnprocessableEntity},
		{"empty image", "/secure/article/create", `{"title":"a","content":"b","image":""}`, http.StatusUnprocessableEntity},
		{"malformed json", "/secure/article/create", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			code, body := f.call(t, f.ada, f.h.CreateArticle, http.MethodPost, tt.target, tt.body)

			assert.Equal(t, tt.wantCode, code, string(body))
			assert.NotEmpty(t, decodeError(t, body).Error)
		})
	}
}

func TestMyArticles(t *testing.T) {
	f := newFixture(t)
	testutil.NewTestArticle(t, f.repo, f.ada.ID, "Ada one")
	testutil.NewTestArticle(t, f.repo, f.grace.ID, "Grace one")

	code, body := f.call(t, f.ada, f.h.MyArticles, http.MethodGet, "/secure/article/my-article", "")

	require.Equal(t, http.StatusOK, code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Ada one", list[0]["title"])
}

func TestAllArticles(t *testing.T) {
	f := newFixture(t)

	code, body := f.callPublic(t, f.h.AllArticles, http.MethodGet, "/article/all-article", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(body))

	testutil.NewTestArticle(t, f.repo, f.ada.ID, "Ada one")
	testutil.NewTestArticle(t, f.repo, f.grace.ID, "Grace one")

	code, body = f.callPublic(t, f.h.AllArticles, http.MethodGet, "/article/all-article", "")
	require.Equal(t, http.StatusOK, code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 2)
}

func TestArticleByUUID(t *testing.T) {
	f := newFixture(t)
	article := testutil.NewTestArticle(t, f.repo, f.ada.ID, "Hello")

	get := func(id string) (int, []byte) {
		c, rec := testutil.NewEchoContext(f.e, http.MethodGet, "/article/get-by-uuid/"+id, nil)
		c.SetParamNames("uuid")
		c.SetParamValues(id)
		require.NoError(t, f.h.ArticleByUUID(c))
		return rec.Code, rec.Body.Bytes()
	}

	t.Run("found", func(t *testing.T) {
		code, body := get(article.UUID.String())

		require.Equal(t, http.StatusOK, code)
		var detail articles.Detail
		require.NoError(t, json.Unmarshal(body, &detail))
		assert.Equal(t, "Hello", detail.Title)
		assert.Equal(t, article.UUID, detail.UUID)
		assert.Equal(t, "Ada", detail.User.Name)
		assert.Equal(t, "ada@example.com", detail.User.Email)
	})

	t.Run("malformed", func(t *testing.T) {
		code, _ := get("not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("missing", func(t *testing.T) {
		code, body := get(uuid.NewString())
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "Article not found", decodeError(t, body).Error)
	})
}

func TestImageUpload(t *testing.T) {
	t.Run("storage disabled", func(t *testing.T) {
		f := newFixture(t)

		code, _ := f.call(t, f.ada, f.h.ImageUpload, http.MethodPost, "/secure/article/image-upload",
			`{"content_type":"image/png"}`)

		assert.Equal(t, http.StatusServiceUnavailable, code)
	})

	t.Run("presigned", func(t *testing.T) {
		f := newFixture(t)
		f.h.images = stubUploader{}

		code, body := f.call(t, f.ada, f.h.ImageUpload, http.MethodPost, "/secure/article/image-upload",
			`{"content_type":"image/png"}`)

		require.Equal(t, http.StatusOK, code, string(body))
		var upload images.Upload
		require.NoError(t, json.Unmarshal(body, &upload))
		assert.True(t, images.OwnsKey(f.ada.ID, upload.Key))
		assert.NotEmpty(t, upload.URL)
	})

	t.Run("unsupported type", func(t *testing.T) {
		f := newFixture(t)
		f.h.images = stubUploader{}

		code, body := f.call(t, f.ada, f.h.ImageUpload, http.MethodPost, "/secure/article/image-upload",
			`{"content_type":"application/pdf"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Contains(t, decodeError(t, body).Fields, "content_type")
	})

	t.Run("presign failure", func(t *testing.T) {
		f := newFixture(t)
		f.h.images = stubUploader{err: errors.New("no credentials")}

		code, _ := f.call(t, f.ada, f.h.ImageUpload, http.MethodPost, "/secure/article/image-upload",
			`{"content_type":"image/jpeg"}`)

		assert.Equal(t, http.StatusInternalServerError, code)
	})
}
