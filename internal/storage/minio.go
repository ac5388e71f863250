package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"time"

	"github.com/harryzhoudev/portfolio-api/internal/content"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectInfo is the subset of stored-object metadata the reconcile sweep needs.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// MinIOStorage is the asset store backed by a MinIO (or any S3-compatible) bucket.
type MinIOStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinIOStorage creates a new MinIO storage client and ensures the bucket exists.
func NewMinIOStorage(ctx context.Context, cfg *MinIOConfig) (*MinIOStorage, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStorage{client: mc, bucket: cfg.Bucket, baseURL: cfg.BaseURL()}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := mc.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("minio bucket create: %w", err)
		}
	}
	return s, nil
}

// ObjectURL builds the browser-facing URL of key.
func ObjectURL(baseURL, bucket, key string) string {
	return baseURL + "/" + url.PathEscape(bucket) + "/" + escapeKey(key)
}

func escapeKey(key string) string {
	u := url.URL{Path: key}
	return u.EscapedPath()
}

// Upload stores the reader under key, replacing any object already there.
func (s *MinIOStorage) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (content.AssetRef, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return content.AssetRef{}, err
	}
	return content.AssetRef{AssetID: key, URL: ObjectURL(s.baseURL, s.bucket, key)}, nil
}

// Delete removes the object. Deleting a missing object is not an error.
func (s *MinIOStorage) Delete(ctx context.Context, assetID string) error {
	return s.client.RemoveObject(ctx, s.bucket, assetID, minio.RemoveObjectOptions{})
}

// List returns every object under prefix.
func (s *MinIOStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		out = append(out, ObjectInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return out, nil
}

// PresignDownload returns a presigned GET URL that makes browsers save the
// object as filename instead of rendering it inline.
func (s *MinIOStorage) PresignDownload(ctx context.Context, assetID, filename string, expires time.Duration) (string, error) {
	if filename == "" {
		filename = path.Base(assetID)
	}
	params := make(url.Values)
	params.Set("response-content-disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, assetID, expires, params)
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}

// Ping checks the bucket is reachable; used by the /ready endpoint.
func (s *MinIOStorage) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q missing", s.bucket)
	}
	return nil
}
