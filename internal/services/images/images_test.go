// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package images_test

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"codeberg.org/oliverandrich/go-newsletter/internal/config"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *images.Service {
	t.Helper()
	svc, err := images.NewService(context.Background(), &config.StorageConfig{
		Endpoint:  "http://localhost:9000",
		Region:    "us-east-1",
		Bucket:    "newsletter",
		AccessKey: "minio",
		SecretKey: "minio-secret",
	})
	require.NoError(t, err)
	return svc
}

func TestNewService_Disabled(t *testing.T) {
	_, err := images.NewService(context.Background(), &config.StorageConfig{})

	assert.ErrorIs(t, err, images.ErrDisabled)
}

func TestPresignUpload(t *testing.T) {
	svc := newService(t)

	upload, err := svc.PresignUpload(context.Background(), 7, "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(upload.Key, "articles/7/"))
	assert.True(t, strings.HasSuffix(upload.Key, ".png"))
	assert.True(t, images.OwnsKey(7, upload.Key))

	u, err := url.Parse(upload.URL)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/newsletter/"+upload.Key, u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}

func TestPresignUpload_UnsupportedType(t *testing.T) {
	svc := newService(t)

	_, err := svc.PresignUpload(context.Background(), 7, "application/pdf")

	assert.ErrorIs(t, err, images.ErrUnsupportedType)
}

func TestPresignDownload(t *testing.T) {
	svc := newService(t)

	link, err := svc.PresignDownload(context.Background(), "articles/7/2025/01/cover.png")
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/newsletter/articles/7/2025/01/cover.png", u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestOwnsKey(t *testing.T) {
	assert.True(t, images.OwnsKey(7, "articles/7/2025/01/a.png"))
	assert.False(t, images.OwnsKey(7, "articles/8/2025/01/a.png"))
	assert.False(t, images.OwnsKey(7, "articles/7/"))
	assert.False(t, images.OwnsKey(7, "articles/7/../8/a.png"))
	assert.False(t, images.OwnsKey(7, "articles/70/a.png"))
}
