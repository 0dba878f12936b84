package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/receipt-tracker/internal/common"
)

func newTestStore(t *testing.T, baseURL string) Store {
	t.Helper()
	s, err := NewStore(Config{BaseURL: baseURL, Bucket: "receipts", APIKey: "test-key", Timeout: 5 * time.Second})
	require.NoError(t, err)
	hs, ok := s.(*httpStore)
	require.True(t, ok)
	hs.retry.InitialDelay = time.Millisecond
	hs.retry.MaxDelay = 5 * time.Millisecond
	return s
}

func TestNewStoreValidatesConfig(t *testing.T) {
	_, err := NewStore(Config{Bucket: "receipts"})
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = NewStore(Config{BaseURL: "https://storage.example"})
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestUploadReturnsPublicURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/object/receipts/user-1/receipt.jpg", r.URL.Path)
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("image bytes"), body)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	url, err := newTestStore(t, server.URL).Upload(context.Background(), "user-1/receipt.jpg", []byte("image bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/object/public/receipts/user-1/receipt.jpg", url)
}

func TestUploadRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	_, err := newTestStore(t, server.URL).Upload(context.Background(), "user-1/r.jpg", []byte("x"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestUploadDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestStore(t, server.URL).Upload(context.Background(), "user-1/r.jpg", []byte("x"), "image/jpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUploadFailed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUploadRejectsEmptyInput(t *testing.T) {
	store := newTestStore(t, "https://storage.example")

	_, err := store.Upload(context.Background(), "", []byte("x"), "image/jpeg")
	require.Error(t, err)

	_, err = store.Upload(context.Background(), "user-1/r.jpg", nil, "image/jpeg")
	require.Error(t, err)
}

func TestObjectPath(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	path := ObjectPath("user-1", now)

	pattern := regexp.MustCompile(`^user-1/user-1_1710498600000_[0-9a-f]{8}\.jpg$`)
	assert.Regexp(t, pattern, path)

	// Paths must not collide between calls.
	assert.NotEqual(t, path, ObjectPath("user-1", now))
}
