// Package storage keeps issue photos in an S3 compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// AllowedContentType reports whether uploads of contentType are accepted.
func AllowedContentType(contentType string) bool {
	return allowedContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
}

// Options configures an ImageStore.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// PublicURL is the base under which objects are served. Defaults to
	// <scheme>://<endpoint>/<bucket>.
	PublicURL string
}

// ImageStore uploads issue images and resolves their public URLs.
type ImageStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	now       func() time.Time
}

func NewImageStore(opts Options) (*ImageStore, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	publicURL := opts.PublicURL
	if publicURL == "" {
		scheme := "http"
		if opts.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, opts.Endpoint, opts.Bucket)
	}

	return &ImageStore{
		client:    client,
		bucket:    opts.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}, nil
}

// EnsureBucket creates the bucket with a public-read policy when missing.
func (s *ImageStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	if err := s.client.SetBucketPolicy(ctx, s.bucket, fmt.Sprintf(publicReadPolicy, s.bucket)); err != nil {
		return fmt.Errorf("set bucket policy: %w", err)
	}
	return nil
}

// Upload stores an image under a unique path scoped to userID and returns the path.
func (s *ImageStore) Upload(ctx context.Context, userID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if !AllowedContentType(contentType) {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}

	name := ObjectName(userID, filename, s.now())
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return name, nil
}

// Remove deletes stored images. Missing objects are not an error.
func (s *ImageStore) Remove(ctx context.Context, paths []string) error {
	for _, p := range paths {
		if err := s.client.RemoveObject(ctx, s.bucket, p, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

// PublicURL returns the URL an image path is served from.
func (s *ImageStore) PublicURL(path string) string {
	if path == "" {
		return ""
	}
	return s.publicURL + "/" + strings.TrimLeft(path, "/")
}

// ObjectName builds "<userID>/<unix millis>-<uuid><ext>".
func ObjectName(userID, filename string, at time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%d-%s%s", userID, at.UnixMilli(), uuid.NewString(), ext)
}
