package config

import (
	"os"
	"testing"
)

var configKeys = []string{
	"API_URL",
	"ACCESS_KEY",
	"SECRET_KEY",
	"BUCKET_NAME",
	"REGION",
	"SYNC_CONCURRENCY",
	"LOG_LEVEL",
	"LOG_FILE",
	"IGNORE_PREFIXES",
}

func saveEnv(t *testing.T) {
	t.Helper()
	originalVars := make(map[string]string, len(configKeys))
	for _, key := range configKeys {
		originalVars[key] = os.Getenv(key)
	}
	t.Cleanup(func() {
		for key, value := range originalVars {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	saveEnv(t)

	testVars := map[string]string{
		"API_URL":          "https://test-api.example.com",
		"ACCESS_KEY":       "test-access-key",
		"SECRET_KEY":       "test-secret-key",
		"BUCKET_NAME":      "test-bucket",
		"REGION":           "test-region",
		"SYNC_CONCURRENCY": "16",
		"LOG_LEVEL":        "debug",
		"LOG_FILE":         "/tmp/s3dirstat.log",
		"IGNORE_PREFIXES":  "logs/;tmp/",
	}

	for key, value := range testVars {
		os.Setenv(key, value)
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.ApiURL != testVars["API_URL"] {
		t.Errorf("config.ApiURL = %s, want %s", config.ApiURL, testVars["API_URL"])
	}

	if config.AccessKey != testVars["ACCESS_KEY"] {
		t.Errorf("config.AccessKey = %s, want %s", config.AccessKey, testVars["ACCESS_KEY"])
	}

	if config.SecretKey != testVars["SECRET_KEY"] {
		t.Errorf("config.SecretKey = %s, want %s", config.SecretKey, testVars["SECRET_KEY"])
	}

	if config.BucketName != testVars["BUCKET_NAME"] {
		t.Errorf("config.BucketName = %s, want %s", config.BucketName, testVars["BUCKET_NAME"])
	}

	if config.Region != testVars["REGION"] {
		t.Errorf("config.Region = %s, want %s", config.Region, testVars["REGION"])
	}

	if config.SyncConcurrency != 16 {
		t.Errorf("config.SyncConcurrency = %d, want %d", config.SyncConcurrency, 16)
	}

	if config.LogLevel != "debug" {
		t.Errorf("config.LogLevel = %s, want %s", config.LogLevel, "debug")
	}

	if config.LogFile != testVars["LOG_FILE"] {
		t.Errorf("config.LogFile = %s, want %s", config.LogFile, testVars["LOG_FILE"])
	}

	if config.IgnorePrefixes != testVars["IGNORE_PREFIXES"] {
		t.Errorf("config.IgnorePrefixes = %s, want %s", config.IgnorePrefixes, testVars["IGNORE_PREFIXES"])
	}

	if !config.HasStaticCredentials() {
		t.Errorf("HasStaticCredentials() = false, want true")
	}
}

func TestLoadDefaults(t *testing.T) {
	saveEnv(t)
	for _, key := range configKeys {
		os.Unsetenv(key)
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.ApiURL != "" {
		t.Errorf("config.ApiURL = %s, want %s", config.ApiURL, "")
	}

	if config.BucketName != "" {
		t.Errorf("config.BucketName = %s, want %s", config.BucketName, "")
	}

	if config.SyncConcurrency != DefaultSyncConcurrency {
		t.Errorf("config.SyncConcurrency = %d, want %d", config.SyncConcurrency, DefaultSyncConcurrency)
	}

	if config.LogLevel != DefaultLogLevel {
		t.Errorf("config.LogLevel = %s, want %s", config.LogLevel, DefaultLogLevel)
	}

	if config.HasStaticCredentials() {
		t.Errorf("HasStaticCredentials() = true, want false")
	}
}

func TestLoadInvalidConcurrency(t *testing.T) {
	saveEnv(t)
	os.Setenv("SYNC_CONCURRENCY", "0")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.SyncConcurrency != DefaultSyncConcurrency {
		t.Errorf("config.SyncConcurrency = %d, want %d", config.SyncConcurrency, DefaultSyncConcurrency)
	}
}
