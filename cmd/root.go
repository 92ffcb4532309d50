package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"s3dirstat/config"
	"s3dirstat/internal/lister"
	"s3dirstat/internal/s3client"
	"s3dirstat/pkg/logger"
)

var (
	cfg *config.Config
)

// openStore is swapped in tests for an in-memory store.
var openStore = func() (lister.Store, error) {
	return s3client.New(cfg)
}

var rootCmd = &cobra.Command{
	Use:   "s3dirstat",
	Short: "Disk usage statistics and folder sync for S3 buckets",
	Long: `s3dirstat scans an S3 bucket and shows where the space goes, folder by folder.
It can also mirror a bucket prefix into a local directory, skipping files that already exist there.
Configuration is loaded from .env file or environment variables`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfg == nil {
			cfg = &config.Config{LogLevel: config.DefaultLogLevel, SyncConcurrency: config.DefaultSyncConcurrency}
		}
		level := cfg.LogLevel
		if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
			level = flagLevel
		}
		if isVerbose(cmd) {
			level = zerolog.DebugLevel.String()
		}
		logger.Init(level, cfg.LogFile)
	},
}

func Execute(config *config.Config) error {
	cfg = config
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(bucketInfoCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(prefixesCmd)

	rootCmd.PersistentFlags().StringP("bucket", "b", "", "Override bucket name from config")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
}

func getBucketName(cmd *cobra.Command) string {
	bucket, _ := cmd.Flags().GetString("bucket")
	if bucket != "" {
		return bucket
	}
	return cfg.BucketName
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

// commandContext is canceled on interrupt and, when the command's timeout
// flag is positive, after that many seconds.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	timeout, _ := cmd.Flags().GetInt("timeout")
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	return ctx, func() {
		cancel()
		stop()
	}
}
