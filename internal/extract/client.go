// Package extract calls the receipt-extraction function and parses its
// semi-structured response into typed receipt fields.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/receipt-tracker/internal/common"
	"github.com/Veraticus/receipt-tracker/internal/service"
)

// Client sends an image URL to the extraction function and returns its
// opaque text payload. The payload usually embeds a fenced JSON block;
// use Parse to interpret it.
type Client interface {
	Extract(ctx context.Context, imageURL string) (string, error)
}

// Config holds the settings for the HTTP extraction client.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

type httpClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	retry      service.RetryOptions
}

// NewClient creates an extraction client for the configured function
// endpoint.
func NewClient(cfg Config) (Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: extraction endpoint is required", common.ErrMissingConfig)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &httpClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
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

// Extract posts the image URL and returns the function's text payload.
// Server-side failures (5xx, rate limits) are retried with backoff.
func (c *httpClient) Extract(ctx context.Context, imageURL string) (string, error) {
	if imageURL == "" {
		return "", fmt.Errorf("image URL is required")
	}

	var payload string
	err := common.WithRetry(ctx, func() error {
		var opErr error
		payload, opErr = c.extractOnce(ctx, imageURL)
		return opErr
	}, c.retry)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrExtractionFailed, err)
	}
	return payload, nil
}

func (c *httpClient) extractOnce(ctx context.Context, imageURL string) (string, error) {
	requestBody := map[string]string{"imageUrl": imageURL}
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", common.ErrRateLimit
	case resp.StatusCode >= http.StatusInternalServerError:
		return "", &common.RetryableError{
			Err:       fmt.Errorf("extraction function error (status %d): %s", resp.StatusCode, string(body)),
			Retryable: true,
		}
	case resp.StatusCode != http.StatusOK:
		return "", &common.RetryableError{
			Err:       fmt.Errorf("extraction function error (status %d): %s", resp.StatusCode, string(body)),
			Retryable: false,
		}
	}

	// The function replies either with a bare text payload or a JSON
	// envelope carrying the text in a "text" or "response" field.
	var envelope struct {
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Text != "" {
			return envelope.Text, nil
		}
		if envelope.Response != "" {
			return envelope.Response, nil
		}
	}
	return string(body), nil
}
