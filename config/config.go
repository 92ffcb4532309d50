package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultSyncConcurrency = 8
	DefaultLogLevel        = "info"
)

type Config struct {
	ApiURL     string
	AccessKey  string
	SecretKey  string
	BucketName string
	Region     string

	SyncConcurrency int
	LogLevel        string
	LogFile         string
	// IgnorePrefixes is the raw delimiter-separated list; split it with utils.SplitList.
	IgnorePrefixes string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	v := newViper()

	config := &Config{
		ApiURL:          v.GetString("API_URL"),
		AccessKey:       v.GetString("ACCESS_KEY"),
		SecretKey:       v.GetString("SECRET_KEY"),
		BucketName:      v.GetString("BUCKET_NAME"),
		Region:          v.GetString("REGION"),
		SyncConcurrency: v.GetInt("SYNC_CONCURRENCY"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFile:         v.GetString("LOG_FILE"),
		IgnorePrefixes:  v.GetString("IGNORE_PREFIXES"),
	}

	if config.SyncConcurrency <= 0 {
		config.SyncConcurrency = DefaultSyncConcurrency
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}

	return config, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("API_URL", "")
	v.SetDefault("ACCESS_KEY", "")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("BUCKET_NAME", "")
	v.SetDefault("REGION", "")
	v.SetDefault("SYNC_CONCURRENCY", DefaultSyncConcurrency)
	v.SetDefault("LOG_LEVEL", DefaultLogLevel)
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("IGNORE_PREFIXES", "")
	return v
}

// HasStaticCredentials reports whether both keys were supplied; otherwise the
// default AWS credential chain is used.
func (c *Config) HasStaticCredentials() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}
