package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Cover images land under this prefix inside the bucket.
const folder = "blog_posts"

// MaxImageSize is the largest upload accepted, in bytes.
const MaxImageSize = 10 << 20

// ErrUnsupportedFormat is returned for content types other than JPEG or PNG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Config holds object storage connection details.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base under which uploaded objects are served. When
	// empty it is derived from Endpoint and Bucket.
	PublicURL string
}

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, contentType string, r io.Reader, size int64) (string, error)
}

// Internal adapter interface to enable mocking without a real object store.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Client relays uploaded images to an S3-compatible object store.
type Client struct {
	api       objectAPI
	bucket    string
	publicURL string
}

// NewClient connects to the object store and ensures the bucket exists.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to object store: %w", err)
	}
	return newClientWithAPI(ctx, mc, cfg)
}

// newClientWithAPI allows injecting a mockable API (used in tests).
func newClientWithAPI(ctx context.Context, api objectAPI, cfg Config) (*Client, error) {
	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	c := &Client{
		api:       api,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
	}

	if err := c.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	log.Printf("Image store connected, bucket %q ready", cfg.Bucket)
	return c, nil
}

// ensureBucketExists creates the bucket if it doesn't exist.
func (c *Client) ensureBucketExists(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// Upload stores the image under a fresh key and returns its public URL.
func (c *Client) Upload(ctx context.Context, contentType string, r io.Reader, size int64) (string, error) {
	ext, ok := extByContentType[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)
	_, err := c.api.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return c.publicURL + "/" + key, nil
}
