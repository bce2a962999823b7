// Package storage wraps the MinIO SDK for the object-storage access the
// image pipeline needs: fetching originals by URL or bucket/key, and
// writing compressed copies back.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gdefombelle/pytune-helpers-images/internal/logger"
)

// Config represents the configuration for an object storage client.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Client represents an object storage client.
type Client struct {
	client *minio.Client
	config Config
}

// New creates a new object storage client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage access key and secret key are required")
	}

	// Remove protocol prefix if present
	endpoint := cfg.Endpoint
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	logger.Debug("Created storage client for endpoint %s", endpoint)

	return &Client{client: client, config: cfg}, nil
}

// ParseObjectURL splits an object URL such as
// http://minio:9000/piano-identification-sessions/xxx.jpg into its
// bucket and object key.
func ParseObjectURL(rawURL string) (bucket, key string, err error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid object URL %q: %w", rawURL, err)
	}

	parts := strings.SplitN(strings.TrimPrefix(parsed.Path, "/"), "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid object URL %q: expected /bucket/key path", rawURL)
	}

	return parts[0], parts[1], nil
}

// Download retrieves an object's bytes.
func (c *Client) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := c.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s/%s: %w", bucket, key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s/%s: %w", bucket, key, err)
	}

	logger.Debug("Downloaded object %s/%s (%d bytes)", bucket, key, len(data))
	return data, nil
}

// DownloadURL retrieves an object's bytes, addressing it by URL.
func (c *Client) DownloadURL(ctx context.Context, rawURL string) ([]byte, error) {
	bucket, key, err := ParseObjectURL(rawURL)
	if err != nil {
		return nil, err
	}
	return c.Download(ctx, bucket, key)
}

// DownloadToFile downloads an object, addressed by URL, to a temporary
// local file and returns its path. The caller owns the file.
func (c *Client) DownloadToFile(ctx context.Context, rawURL string) (string, error) {
	bucket, key, err := ParseObjectURL(rawURL)
	if err != nil {
		return "", err
	}

	ext := path.Ext(key)
	if ext == "" {
		ext = ".jpg"
	}

	tmp, err := os.CreateTemp("", "pytune-image-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := c.client.FGetObject(ctx, bucket, key, tmpPath, minio.GetObjectOptions{}); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to download %s/%s: %w", bucket, key, err)
	}

	logger.Debug("Downloaded object %s/%s to %s", bucket, key, tmpPath)
	return tmpPath, nil
}

// Upload writes data to the given bucket and key.
func (c *Client) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := c.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s/%s: %w", bucket, key, err)
	}

	logger.Debug("Uploaded object %s/%s (%d bytes, etag: %s)", bucket, key, info.Size, info.ETag)
	return nil
}

// ObjectExists checks if an object exists in the bucket.
func (c *Client) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if object exists: %w", err)
	}
	return true, nil
}
