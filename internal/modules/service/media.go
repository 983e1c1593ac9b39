package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/infra/blob"
	"github.com/glitch-app/glitch/internal/pkg/utils/mime"
	"github.com/google/uuid"
)

const videoKeyPrefix = "videos/"

// MediaStore is satisfied by *blob.S3Deps.
type MediaStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (*blob.ObjectMeta, error)
	Delete(ctx context.Context, key string) error
}

type MediaService interface {
	UploadVideo(ctx context.Context, fh *multipart.FileHeader) (*blob.ObjectMeta, error)
	DeleteVideo(ctx context.Context, key string) error
}

type mediaService struct {
	store MediaStore
	cfg   *config.Config
}

// NewMediaService accepts a nil store, in which case every call reports ErrUnavailable.
func NewMediaService(store MediaStore, cfg *config.Config) MediaService {
	return &mediaService{store: store, cfg: cfg}
}

func (s *mediaService) maxBytes() int64 {
	mb := s.cfg.S3.MaxVideoMB
	if mb <= 0 {
		mb = 50
	}
	return mb << 20
}

func (s *mediaService) UploadVideo(ctx context.Context, fh *multipart.FileHeader) (*blob.ObjectMeta, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: media storage is not configured", ErrUnavailable)
	}
	if fh == nil {
		return nil, validationErr("video file is required")
	}
	if fh.Size > s.maxBytes() {
		return nil, validationErr("video exceeds %d MB", s.maxBytes()>>20)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	mimeType, body, err := mime.DetectReader(f, fh.Filename)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	ext, ok := mime.VideoExt(mimeType)
	if !ok {
		return nil, validationErr("unsupported video type %s, use mp4, mov or m4v", mimeType)
	}

	key := videoKeyPrefix + uuid.NewString() + ext
	return s.store.Put(ctx, key, mimeType, body, fh.Size)
}

func (s *mediaService) DeleteVideo(ctx context.Context, key string) error {
	if s.store == nil {
		return fmt.Errorf("%w: media storage is not configured", ErrUnavailable)
	}
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, videoKeyPrefix) || strings.Contains(key, "..") || len(key) == len(videoKeyPrefix) {
		return validationErr("invalid video key")
	}
	return s.store.Delete(ctx, key)
}
