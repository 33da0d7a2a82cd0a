package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

const MaxSize = 5 * 1024 * 1024

var (
	ErrStorageDisabled = errors.New("photo storage is not configured")
	ErrTooLarge        = errors.New("photo exceeds 5MB")
	ErrUnsupportedType = errors.New("photo must be an image")
	ErrForeignURL      = errors.New("photo url does not belong to this bucket")
)

// ObjectStore is the subset of *minio.Client used for owner photos.
type ObjectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type Config struct {
	Bucket         string
	PublicEndpoint string
	PublicUseSSL   bool
}

// File is an uploaded photo as received from a multipart form.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

type Service interface {
	// Upload stores an owner photo and returns its public URL.
	Upload(ctx context.Context, file File) (string, error)
	// Remove deletes a photo previously returned by Upload.
	Remove(ctx context.Context, publicURL string) error
}

type service struct {
	store ObjectStore
	cfg   Config
}

func NewService(store ObjectStore, cfg Config) Service {
	return &service{store: store, cfg: cfg}
}

func (s *service) Upload(ctx context.Context, file File) (string, error) {
	if s.store == nil {
		return "", ErrStorageDisabled
	}
	if file.Size > MaxSize {
		return "", ErrTooLarge
	}
	if !strings.HasPrefix(file.ContentType, "image/") {
		return "", ErrUnsupportedType
	}

	ext := strings.ToLower(path.Ext(file.Name))
	if ext == "" {
		ext = ".jpg"
	}
	objectName := fmt.Sprintf("photos/%s/%s%s", time.Now().Format("2006/01"), uuid.New().String(), ext)

	_, err := s.store.PutObject(ctx, s.cfg.Bucket, objectName, file.Reader, file.Size, minio.PutObjectOptions{
		ContentType: file.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	return s.publicURL(objectName), nil
}

func (s *service) Remove(ctx context.Context, publicURL string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}

	escaped, ok := strings.CutPrefix(publicURL, s.publicURL(""))
	if !ok || escaped == "" {
		return ErrForeignURL
	}
	objectName, err := url.PathUnescape(escaped)
	if err != nil {
		return ErrForeignURL
	}

	if err := s.store.RemoveObject(ctx, s.cfg.Bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove photo: %w", err)
	}
	return nil
}

func (s *service) publicURL(objectName string) string {
	scheme := "http"
	if s.cfg.PublicUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.PublicEndpoint, s.cfg.Bucket, (&url.URL{Path: objectName}).EscapedPath())
}
