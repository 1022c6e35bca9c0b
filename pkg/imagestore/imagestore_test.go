package imagestore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI implements objectAPI in memory.
type fakeAPI struct {
	bucketExists bool
	madeBucket   bool
	putKey       string
	putType      string
	putErr       error
}

func (f *fakeAPI) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, nil
}

func (f *fakeAPI) MakeBucket(_ context.Context, _ string, _ minio.MakeBucketOptions) error {
	f.madeBucket = true
	return nil
}

func (f *fakeAPI) PutObject(_ context.Context, _, objectName string, reader io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	f.putKey = objectName
	f.putType = opts.ContentType
	_, _ = io.Copy(io.Discard, reader)
	return minio.UploadInfo{Key: objectName}, nil
}

func testConfig() Config {
	return Config{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "blog-images",
	}
}

func TestNewClient_CreatesMissingBucket(t *testing.T) {
	api := &fakeAPI{bucketExists: false}
	_, err := newClientWithAPI(context.Background(), api, testConfig())
	require.NoError(t, err)
	assert.True(t, api.madeBucket)

	api = &fakeAPI{bucketExists: true}
	_, err = newClientWithAPI(context.Background(), api, testConfig())
	require.NoError(t, err)
	assert.False(t, api.madeBucket)
}

func TestUpload(t *testing.T) {
	api := &fakeAPI{bucketExists: true}
	client, err := newClientWithAPI(context.Background(), api, testConfig())
	require.NoError(t, err)

	data := []byte("fake-png-bytes")
	url, err := client.Upload(context.Background(), "image/png", bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	// Objects land under the blog_posts prefix with an extension derived
	// from the content type, served from the derived public URL.
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/blog-images/blog_posts/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)
	assert.True(t, strings.HasPrefix(api.putKey, "blog_posts/"), api.putKey)
	assert.Equal(t, "image/png", api.putType)
}

func TestUpload_CustomPublicURL(t *testing.T) {
	api := &fakeAPI{bucketExists: true}
	cfg := testConfig()
	cfg.PublicURL = "https://cdn.example.com"
	client, err := newClientWithAPI(context.Background(), api, cfg)
	require.NoError(t, err)

	url, err := client.Upload(context.Background(), "image/jpeg", strings.NewReader("x"), 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/blog_posts/"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)
}

func TestUpload_UnsupportedFormat(t *testing.T) {
	api := &fakeAPI{bucketExists: true}
	client, err := newClientWithAPI(context.Background(), api, testConfig())
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), "text/plain", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Empty(t, api.putKey)
}

func TestUpload_UpstreamError(t *testing.T) {
	api := &fakeAPI{bucketExists: true, putErr: errors.New("connection refused")}
	client, err := newClientWithAPI(context.Background(), api, testConfig())
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), "image/png", strings.NewReader("x"), 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload object")
}
