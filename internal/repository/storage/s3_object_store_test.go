package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(endpoint string) *S3ObjectStore {
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("key", "secret", ""),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
	})
	return &S3ObjectStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    "exports",
	}
}

func TestS3ObjectStore_GeneratePresignedURL(t *testing.T) {
	store := newTestStore("http://localhost:9000")

	url, err := store.GeneratePresignedURL(context.Background(), "exports/u-1/snap.json", 15*time.Minute)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/exports/exports/u-1/snap.json?"), url)
	assert.Contains(t, url, "X-Amz-Expires=900")
	assert.Contains(t, url, "X-Amz-Signature=")
}

func TestS3ObjectStore_Upload(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, body = r.Method, r.URL.Path, b
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := newTestStore(srv.URL)
	key, err := store.Upload(context.Background(), "u-1/snap.json", bytes.NewReader([]byte(`{"a":1}`)), "application/json", -1)
	require.NoError(t, err)
	assert.Equal(t, "u-1/snap.json", key)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/exports/u-1/snap.json", path)
	assert.Contains(t, string(body), `{"a":1}`)
}

func TestS3ObjectStore_EnsureBucketExisting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestStore(srv.URL).ensureBucket(context.Background()))
}
