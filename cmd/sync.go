package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"s3dirstat/internal/models"
	"s3dirstat/internal/progress"
	"s3dirstat/internal/syncer"
	"s3dirstat/pkg/logger"
	"s3dirstat/pkg/utils"
)

// syncFs is the filesystem the sync command writes to; tests swap it.
var syncFs afero.Fs = afero.NewOsFs()

var syncCmd = &cobra.Command{
	Use:   "sync [prefix]",
	Short: "Download a bucket folder, skipping files that already exist locally",
	Long: `Sync downloads every object below a prefix into a local directory, keeping
the folder layout relative to the prefix.

An object is skipped when a file with the same name (case-insensitive) exists
anywhere under the destination, regardless of its folder. The prefix may be a
plain folder path, s3://bucket/folder or arn:aws:s3:::bucket/folder; the bucket
must match the selected bucket.

The first failed download stops the sync. Files downloaded before the failure
stay on disk.`,
	Example: `  # Mirror a folder into the current directory
  s3dirstat sync photos/2024

  # Mirror into a specific directory with 16 parallel downloads
  s3dirstat sync s3://my-bucket/photos -d /data/photos -c 16

  # Run without the confirmation prompt
  s3dirstat sync backups/ -d ./backups --confirm`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSync(cmd, args)
	},
}

func runSync(cmd *cobra.Command, args []string) {
	destination, _ := cmd.Flags().GetString("destination")
	confirm, _ := cmd.Flags().GetBool("confirm")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	showProgress, _ := cmd.Flags().GetBool("progress")

	var input string
	if len(args) > 0 {
		input = args[0]
	}
	if destination == "" {
		destination = "."
	}
	if concurrency <= 0 {
		concurrency = cfg.SyncConcurrency
	}

	root, err := filepath.Abs(destination)
	if err != nil {
		utils.PrintError(fmt.Errorf("failed to resolve destination %s: %w", destination, err), "sync")
		return
	}

	store, err := openStore()
	if err != nil {
		utils.PrintError(err, "sync")
		return
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	target, err := syncer.ResolveTarget(ctx, store, input, getBucketName(cmd))
	if err != nil {
		utils.PrintError(err, "sync")
		return
	}

	if !confirm {
		fmt.Printf("Sync operation summary:\n")
		fmt.Printf("Bucket: %s\n", target.Bucket)
		fmt.Printf("Prefix: %s\n", target.Prefix)
		fmt.Printf("Destination: %s\n", root)
		fmt.Printf("Concurrency: %d\n", syncer.ClampConcurrency(concurrency))

		fmt.Print("Continue with sync? (y/N): ")
		var response string
		_, err := fmt.Scanln(&response)
		if err != nil {
			utils.PrintError(err, "sync")
			return
		}
		if !slices.Contains([]string{"y", "yes"}, strings.ToLower(response)) {
			fmt.Println("Sync cancelled.")
			return
		}
	}

	if isVerbose(cmd) {
		cmd.Printf("Starting sync operation...\n")
		cmd.Printf("  Prefix: %s\n", target.Prefix)
		cmd.Printf("  Destination: %s\n", root)
	}

	updates := make(chan models.SyncProgress, 64)
	reported := make(chan struct{})
	go func() {
		defer close(reported)
		reportSync(updates, showProgress)
	}()

	engine := syncer.New(store, syncer.WithFs(syncFs), syncer.WithLogger(*logger.Get()))
	summary, err := engine.Sync(ctx, syncer.Request{
		Bucket:         target.Bucket,
		Prefix:         target.Prefix,
		LocalRoot:      root,
		MaxConcurrency: concurrency,
	}, func(p models.SyncProgress) {
		updates <- p
	})
	close(updates)
	<-reported

	if err != nil {
		utils.PrintError(err, "sync")
		return
	}

	if err := utils.PrintJSON(summary); err != nil {
		utils.PrintError(err, "sync")
		return
	}

	if isVerbose(cmd) {
		cmd.Println("Sync operation completed successfully")
	}
}

// reportSync drains progress snapshots until updates is closed, drawing a
// bar on stderr when enabled.
func reportSync(updates <-chan models.SyncProgress, showProgress bool) {
	var bar *progressbar.ProgressBar
	start := time.Now()

	for p := range updates {
		if !showProgress || p.Total == 0 {
			continue
		}
		if bar == nil {
			bar = newSyncBar(p.Total)
		}
		est := progress.EstimateSync(p, time.Since(start))
		bar.Describe(describeSync(p, est))
		_ = bar.Set64(p.Processed())
	}

	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
}

func describeSync(p models.SyncProgress, est progress.Estimate) string {
	eta := "--"
	if est.HasETA {
		eta = est.ETA.String()
	}
	return fmt.Sprintf("%d new, %d skipped, %s/s, ETA %s",
		p.Downloaded, p.Skipped, utils.FormatBytes(int64(est.BytesPerSecond)), eta)
}

func newSyncBar(total int64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)
}

func init() {
	syncCmd.Flags().StringP("destination", "d", "", "Local destination directory (default: current directory)")
	syncCmd.Flags().IntP("concurrency", "c", 0, "Parallel downloads, 1-64 (default: SYNC_CONCURRENCY)")
	syncCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	syncCmd.Flags().Bool("progress", true, "Show a progress bar on stderr")
	syncCmd.Flags().Int("timeout", 0, "Timeout in seconds for the operation (0 = none)")
}
