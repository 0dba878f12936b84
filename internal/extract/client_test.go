package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/receipt-tracker/internal/common"
)

func newTestClient(t *testing.T, endpoint string) Client {
	t.Helper()
	c, err := NewClient(Config{Endpoint: endpoint, APIKey: "test-key", Timeout: 5 * time.Second})
	require.NoError(t, err)
	// Collapse the backoff so retry tests run quickly.
	hc, ok := c.(*httpClient)
	require.True(t, ok)
	hc.retry.InitialDelay = time.Millisecond
	hc.retry.MaxDelay = 5 * time.Millisecond
	return c
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestExtractSendsImageURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://img.example/receipt.jpg", body["imageUrl"])

		_, _ = w.Write([]byte(`{"text": "the payload"}`))
	}))
	defer server.Close()

	payload, err := newTestClient(t, server.URL).Extract(context.Background(), "https://img.example/receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, "the payload", payload)
}

func TestExtractBareTextResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("```json\n{}\n```"))
	}))
	defer server.Close()

	payload, err := newTestClient(t, server.URL).Extract(context.Background(), "https://img.example/r.jpg")
	require.NoError(t, err)
	assert.Equal(t, "```json\n{}\n```", payload)
}

func TestExtractRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"response": "recovered"}`))
	}))
	defer server.Close()

	payload, err := newTestClient(t, server.URL).Extract(context.Background(), "https://img.example/r.jpg")
	require.NoError(t, err)
	assert.Equal(t, "recovered", payload)
	assert.Equal(t, int32(3), calls.Load())
}

func TestExtractDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Extract(context.Background(), "https://img.example/r.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionFailed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestExtractRequiresImageURL(t *testing.T) {
	client, err := NewClient(Config{Endpoint: "https://fn.example/extract"})
	require.NoError(t, err)

	_, err = client.Extract(context.Background(), "")
	require.Error(t, err)
}
