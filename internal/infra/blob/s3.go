package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/glitch-app/glitch/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
)

var ErrNotConfigured = errors.New("object storage is not configured")

type S3Deps struct {
	Client    *s3.Client
	Uploader  *manager.Uploader
	Presigner *s3.PresignClient
	Bucket    string
	PublicURL string
}

type ObjectMeta struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	ETag   string `json:"etag"`
	SHA256 string `json:"sha256"`
	MIME   string `json:"mime"`
	SizeB  int64  `json:"size_b"`
	URL    string `json:"url"`
}

// NewS3 returns (nil, nil) when no bucket is configured so media endpoints can
// report the feature as unavailable instead of failing startup.
func NewS3(ctx context.Context, cfg *config.Config) (*S3Deps, error) {
	if cfg.S3.Bucket == "" {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3.Region),
	}
	if cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		o.UsePathStyle = cfg.S3.UsePathStyle
	})

	return &S3Deps{
		Client:    client,
		Uploader:  manager.NewUploader(client),
		Presigner: s3.NewPresignClient(client),
		Bucket:    cfg.S3.Bucket,
		PublicURL: strings.TrimRight(cfg.S3.PublicURLPrefix, "/"),
	}, nil
}

// Put streams r to key and returns the stored object's metadata.
func (s *S3Deps) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (*ObjectMeta, error) {
	if s == nil {
		return nil, ErrNotConfigured
	}

	h := sha256.New()
	out, err := s.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        io.TeeReader(r, h),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	meta := &ObjectMeta{
		Bucket: s.Bucket,
		Key:    key,
		SHA256: hex.EncodeToString(h.Sum(nil)),
		MIME:   contentType,
		SizeB:  size,
		URL:    s.ObjectURL(key),
	}
	if out.ETag != nil {
		meta.ETag = strings.Trim(*out.ETag, `"`)
	}
	return meta, nil
}

func (s *S3Deps) Delete(ctx context.Context, key string) error {
	if s == nil {
		return ErrNotConfigured
	}
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Deps) PresignGet(ctx context.Context, key string, expire time.Duration) (string, error) {
	if s == nil {
		return "", ErrNotConfigured
	}
	req, err := s.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expire))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// ObjectURL is the public URL of key, or "" when no public prefix is configured.
func (s *S3Deps) ObjectURL(key string) string {
	if s == nil || s.PublicURL == "" {
		return ""
	}
	return s.PublicURL + "/" + key
}

// KeyFromURL reverses ObjectURL. ok is false for URLs outside the public prefix.
func (s *S3Deps) KeyFromURL(url string) (string, bool) {
	if s == nil || s.PublicURL == "" {
		return "", false
	}
	key, ok := strings.CutPrefix(url, s.PublicURL+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
