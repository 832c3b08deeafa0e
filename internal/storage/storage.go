// Package storage saves uploaded images to S3, or to a local directory when no
// AWS credentials are configured.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
)

const MaxUploadSize = 5 << 20

var (
	ErrTooLarge        = errors.New("file exceeds the 5 MB limit")
	ErrUnsupportedType = errors.New("only JPEG, PNG, GIF and WebP images are accepted")
	ErrInvalidFolder   = errors.New("unknown upload folder")
)

// Folders lists the accepted upload prefixes.
var Folders = []string{"services", "blog", "trip-plans"}

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UploadDir       string
	PublicBaseURL   string
}

func (c Config) s3Configured() bool {
	return c.Region != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.Bucket != ""
}

// Backend persists one object and returns its public URL.
type Backend interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type Storage struct {
	backend Backend
}

// New picks S3 when fully configured and falls back to local disk otherwise.
func New(cfg Config) (*Storage, error) {
	if cfg.s3Configured() {
		backend, err := NewS3Backend(cfg)
		if err != nil {
			return nil, err
		}
		slog.Info("Using S3 object storage", "bucket", cfg.Bucket, "region", cfg.Region)
		return &Storage{backend: backend}, nil
	}

	backend, err := NewLocalBackend(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, err
	}
	slog.Warn("AWS S3 not configured, storing uploads on local disk", "dir", cfg.UploadDir)
	return &Storage{backend: backend}, nil
}

func NewWithBackend(backend Backend) *Storage {
	return &Storage{backend: backend}
}

// SaveImage validates the image and stores it under folder with a generated name.
func (s *Storage) SaveImage(ctx context.Context, folder string, r io.Reader) (string, error) {
	if !validFolder(folder) {
		return "", ErrInvalidFolder
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return "", ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}

	key := path.Join(folder, uuid.NewString()+ext)
	return s.backend.Put(ctx, key, contentType, bytes.NewReader(data))
}

func validFolder(folder string) bool {
	for _, f := range Folders {
		if f == folder {
			return true
		}
	}
	return false
}

type S3Backend struct {
	uploader *s3manager.Uploader
	bucket   string
	region   string
}

func NewS3Backend(cfg Config) (*S3Backend, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3Backend{uploader: s3manager.NewUploader(sess), bucket: cfg.Bucket, region: cfg.Region}, nil
}

func (b *S3Backend) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := b.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.bucket, b.region, key), nil
}

// LocalBackend writes files below dir; they are served under /uploads.
type LocalBackend struct {
	dir     string
	baseURL string
}

func NewLocalBackend(dir, baseURL string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalBackend{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (b *LocalBackend) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	target := filepath.Join(b.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder directory: %w", err)
	}

	dst, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, body); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return b.baseURL + "/uploads/" + key, nil
}
