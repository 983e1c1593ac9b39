package blob

import (
	"context"
	"strings"
	"testing"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3_DisabledWithoutBucket(t *testing.T) {
	deps, err := NewS3(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, deps)

	_, err = deps.Put(context.Background(), "videos/x.mp4", "video/mp4", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, deps.Delete(context.Background(), "videos/x.mp4"), ErrNotConfigured)
	assert.Equal(t, "", deps.ObjectURL("videos/x.mp4"))
}

func TestObjectURLRoundTrip(t *testing.T) {
	s := &S3Deps{Bucket: "media", PublicURL: "https://cdn.example.com/media"}

	url := s.ObjectURL("videos/abc.mp4")
	assert.Equal(t, "https://cdn.example.com/media/videos/abc.mp4", url)

	key, ok := s.KeyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "videos/abc.mp4", key)

	_, ok = s.KeyFromURL("https://elsewhere.example.com/videos/abc.mp4")
	assert.False(t, ok)
}

func TestNewS3_StaticCredentials(t *testing.T) {
	cfg := &config.Config{S3: config.S3Cfg{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		Bucket:          "media",
		AccessKey:       "minio",
		SecretKey:       "minio123",
		UsePathStyle:    true,
		PublicURLPrefix: "http://localhost:9000/media/",
	}}
	deps, err := NewS3(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, deps)
	assert.Equal(t, "media", deps.Bucket)
	assert.Equal(t, "http://localhost:9000/media", deps.PublicURL)
	assert.NotNil(t, deps.Uploader)
	assert.NotNil(t, deps.Presigner)
}
