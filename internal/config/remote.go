// Package config provides configuration utilities for the application.
package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/receipt-tracker/internal/blob"
	"github.com/Veraticus/receipt-tracker/internal/extract"
)

// LoadStorageConfig loads object storage settings. Precedence:
// 1. Viper configuration (config file or RECEIPTS_ env vars)
// 2. Direct environment variables (RECEIPT_STORAGE_*)
func LoadStorageConfig() blob.Config {
	cfg := blob.Config{
		BaseURL: viper.GetString("storage.base_url"),
		Bucket:  viper.GetString("storage.bucket"),
		APIKey:  viper.GetString("storage.api_key"),
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("RECEIPT_STORAGE_BASE_URL")
	}
	if cfg.Bucket == "" {
		cfg.Bucket = os.Getenv("RECEIPT_STORAGE_BUCKET")
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "receipts"
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("RECEIPT_STORAGE_API_KEY")
	}
	return cfg
}

// LoadExtractConfig loads AI extraction function settings. Precedence
// mirrors LoadStorageConfig with RECEIPT_EXTRACT_* fallbacks.
func LoadExtractConfig() extract.Config {
	cfg := extract.Config{
		Endpoint: viper.GetString("extract.endpoint"),
		APIKey:   viper.GetString("extract.api_key"),
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = os.Getenv("RECEIPT_EXTRACT_ENDPOINT")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("RECEIPT_EXTRACT_API_KEY")
	}
	return cfg
}
