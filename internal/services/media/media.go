package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/anuragpatel/minisocial-service/internal/config"
)

// Service stores profile pictures in a MinIO bucket under
// users/{userID}/profile/{uuid}{ext}.
type Service struct {
	client     *minio.Client
	bucketName string
	config     *config.Media
	useSSL     bool
}

// NewService creates a new media service instance
func NewService(cfg *config.Config) (*Service, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKeyID, cfg.MinIO.SecretAccessKey, ""),
		Secure: cfg.MinIO.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	service := &Service{
		client:     client,
		bucketName: cfg.MinIO.BucketName,
		config:     &cfg.Media,
		useSSL:     cfg.MinIO.UseSSL,
	}

	if err := service.ensureBucket(); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return service, nil
}

// ensureBucket creates the bucket if it doesn't exist
func (s *Service) ensureBucket() error {
	ctx := context.Background()

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// ValidateContentType checks if the content type is allowed
func (s *Service) ValidateContentType(contentType string) bool {
	for _, allowed := range s.config.AllowedMimeTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

// MaxFileSize returns the configured upload size limit in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.config.MaxFileSize
}

func (s *Service) objectKey(userID, contentType string) string {
	extensions, err := mime.ExtensionsByType(contentType)
	var ext string
	if err == nil && len(extensions) > 0 {
		ext = extensions[0]
	} else {
		switch contentType {
		case "image/jpeg":
			ext = ".jpg"
		case "image/png":
			ext = ".png"
		case "image/gif":
			ext = ".gif"
		default:
			ext = ""
		}
	}

	return fmt.Sprintf("users/%s/profile/%s%s", userID, uuid.New().String(), ext)
}

// UploadProfilePic streams an uploaded file into the bucket and returns the
// object key to store on the user record.
func (s *Service) UploadProfilePic(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (string, error) {
	if !s.ValidateContentType(contentType) {
		return "", fmt.Errorf("content type %s is not allowed", contentType)
	}
	if size > s.config.MaxFileSize {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", s.config.MaxFileSize)
	}

	objectKey := s.objectKey(userID, contentType)

	_, err := s.client.PutObject(ctx, s.bucketName, objectKey, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload profile picture: %w", err)
	}

	return objectKey, nil
}

// PresignedDownloadURL creates a time-limited URL for fetching an object.
func (s *Service) PresignedDownloadURL(ctx context.Context, objectKey string) (*url.URL, error) {
	expiry := time.Duration(s.config.PresignedURLTTL) * time.Second
	return s.client.PresignedGetObject(ctx, s.bucketName, objectKey, expiry, nil)
}

// PublicURL returns the direct URL for accessing an object in the bucket.
func (s *Service) PublicURL(objectKey string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}

	endpoint := strings.TrimPrefix(s.client.EndpointURL().String(), scheme+"://")
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, s.bucketName, objectKey)
}

// DeleteObject removes an object from storage
func (s *Service) DeleteObject(ctx context.Context, objectKey string) error {
	return s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{})
}

// ListProfilePics lists every stored profile picture object across users.
func (s *Service) ListProfilePics(ctx context.Context) ([]minio.ObjectInfo, error) {
	var objects []minio.ObjectInfo
	objectsCh := s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    "users/",
		Recursive: true,
	})

	for object := range objectsCh {
		if object.Err != nil {
			return nil, object.Err
		}
		if !strings.Contains(object.Key, "/profile/") {
			continue
		}
		objects = append(objects, object)
	}

	return objects, nil
}
