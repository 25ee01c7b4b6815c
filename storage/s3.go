package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/medvolt/airawat-backend/config"
)

// GatewayError wraps any storage-side failure (network, permission,
// missing object) so callers can decide whether to degrade
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("storage gateway: %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// ObjectInfo describes one listed object
type ObjectInfo struct {
	Key  string
	Size int64
}

// Client wraps the S3-compatible object store
type Client struct {
	mc     *minio.Client
	bucket string
}

// NewClient creates a storage client with explicit configuration
func NewClient(cfg config.StorageConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage client: %w", err)
	}

	return &Client{
		mc:     mc,
		bucket: cfg.Bucket,
	}, nil
}

// Bucket returns the default bucket new uploads and job outputs go to
func (c *Client) Bucket() string {
	return c.bucket
}

// ParseS3URI splits an s3://bucket/key URI. Validation happens before any
// network call; no normalization of the key is performed.
func ParseS3URI(s3URI string) (bucket, key string, err error) {
	parsed, err := url.Parse(s3URI)
	if err != nil {
		return "", "", fmt.Errorf("invalid S3 URI %q: %w", s3URI, err)
	}
	if parsed.Scheme != "s3" {
		return "", "", fmt.Errorf("invalid S3 URI %q: expected format s3://bucket/key", s3URI)
	}

	bucket = parsed.Host
	key = strings.TrimPrefix(parsed.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 URI %q: bucket or key missing", s3URI)
	}

	return bucket, key, nil
}

// PresignUpload issues a time-limited URL for a client-side direct PUT
// with a pinned Content-Type
func (c *Client) PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	headers := http.Header{}
	headers.Set("Content-Type", contentType)

	u, err := c.mc.PresignHeader(ctx, http.MethodPut, c.bucket, key, ttl, url.Values{}, headers)
	if err != nil {
		return "", &GatewayError{Op: "presign upload", Err: err}
	}
	return u.String(), nil
}

// PresignDownload issues a time-limited GET URL for one object
func (c *Client) PresignDownload(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	u, err := c.mc.PresignedGetObject(ctx, bucket, key, ttl, url.Values{})
	if err != nil {
		return "", &GatewayError{Op: "presign download", Err: err}
	}
	return u.String(), nil
}

// ListPrefix lists every object under a prefix. Pagination is drained
// fully before returning; callers always see a complete listing.
func (c *Client) ListPrefix(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for obj := range c.mc.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, &GatewayError{Op: "list objects", Err: obj.Err}
		}
		objects = append(objects, ObjectInfo{Key: obj.Key, Size: obj.Size})
	}
	return objects, nil
}

// FetchObject reads one object fully into memory. Intended for small text
// artifacts (CSV, PDB) that must be parsed rather than linked.
func (c *Client) FetchObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := c.mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, &GatewayError{Op: "get object", Err: err}
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, &GatewayError{Op: "read object", Err: err}
	}
	return data, nil
}
