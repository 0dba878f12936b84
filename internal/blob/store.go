// Package blob uploads receipt images to object storage and hands back
// their public URLs.
package blob

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/receipt-tracker/internal/common"
	"github.com/Veraticus/receipt-tracker/internal/service"
)

// Store uploads an object and returns its public URL.
type Store interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// Config holds the settings for the HTTP object store client.
type Config struct {
	// BaseURL is the storage service root, e.g.
	// https://project.supabase.co/storage/v1.
	BaseURL string
	Bucket  string
	APIKey  string
	Timeout time.Duration
}

type httpStore struct {
	httpClient *http.Client
	baseURL    string
	bucket     string
	apiKey     string
	retry      service.RetryOptions
}

// NewStore creates an object store client for a supabase-style storage
// API: POST /object/{bucket}/{path} uploads, /object/public/{bucket}/{path}
// serves the result.
func NewStore(cfg Config) (Store, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: storage base URL is required", common.ErrMissingConfig)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: storage bucket is required", common.ErrMissingConfig)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &httpStore{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		bucket:  cfg.Bucket,
		apiKey:  cfg.APIKey,
		retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Upload writes the object and returns its public URL. Server-side
// failures are retried with backoff.
func (s *httpStore) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("object path is required")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("object data is empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	err := common.WithRetry(ctx, func() error {
		return s.uploadOnce(ctx, path, data, contentType)
	}, s.retry)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrUploadFailed, err)
	}

	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, s.bucket, path), nil
}

func (s *httpStore) uploadOnce(ctx context.Context, path string, data []byte, contentType string) error {
	url := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return common.ErrRateLimit
	case resp.StatusCode >= http.StatusInternalServerError:
		return &common.RetryableError{
			Err:       fmt.Errorf("storage error (status %d): %s", resp.StatusCode, string(body)),
			Retryable: true,
		}
	default:
		return &common.RetryableError{
			Err:       fmt.Errorf("storage error (status %d): %s", resp.StatusCode, string(body)),
			Retryable: false,
		}
	}
}

// ObjectPath builds the storage path for a user's receipt image. Objects
// live under a per-user prefix; the name carries the upload time plus a
// random suffix so concurrent scans never collide.
func ObjectPath(userID string, now time.Time) string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("%s/%s_%d_%s.jpg", userID, userID, now.UnixMilli(), hex.EncodeToString(suffix))
}
