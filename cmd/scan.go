package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"s3dirstat/internal/aggregate"
	"s3dirstat/internal/models"
	"s3dirstat/internal/report"
	"s3dirstat/internal/syncer"
	"s3dirstat/pkg/logger"
	"s3dirstat/pkg/utils"
)

var scanFormats = []string{"json", "csv", "tree"}

var scanCmd = &cobra.Command{
	Use:   "scan [prefix]",
	Short: "Build a folder size tree for the bucket",
	Long: `Scan lists every object in the bucket (or below a prefix) and folds the keys
into a folder tree with per-folder sizes, file counts and extension totals.

Folder markers (keys ending in "/") are ignored. Additional keys can be excluded
with --ignore or the IGNORE_PREFIXES setting, which are exact, case-sensitive key
prefixes, or with --ignore-glob, whose entries are glob patterns matched against
the whole key ("*" stays within one folder, "**" crosses folders).`,
	Example: `  # Scan the whole configured bucket and print JSON
  s3dirstat scan

  # Scan a folder and show a text tree two levels deep
  s3dirstat scan photos/ --format tree --depth 2

  # Export a CSV report, ignoring temporary files
  s3dirstat scan --format csv --output usage.csv --ignore "tmp/" --ignore-glob "**.part"

  # Show a progress bar while scanning
  s3dirstat scan --progress`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runScan(cmd, args)
	},
}

func runScan(cmd *cobra.Command, args []string) {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	depth, _ := cmd.Flags().GetInt("depth")
	ignore, _ := cmd.Flags().GetString("ignore")
	ignoreGlob, _ := cmd.Flags().GetString("ignore-glob")
	showProgress, _ := cmd.Flags().GetBool("progress")

	if err := validateFormat(format); err != nil {
		utils.PrintError(err, "scan")
		return
	}

	bucketName := getBucketName(cmd)
	if bucketName == "" {
		utils.PrintError(&models.ValidationError{Field: "bucket", Msg: "no bucket configured; set BUCKET_NAME or use --bucket"}, "scan")
		return
	}

	var prefix string
	if len(args) > 0 {
		prefix = syncer.NormalizePrefix(args[0])
	}

	store, err := openStore()
	if err != nil {
		utils.PrintError(err, "scan")
		return
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	opts := aggregate.Options{
		Bucket:         bucketName,
		Prefix:         prefix,
		IgnorePrefixes: append(utils.SplitList(cfg.IgnorePrefixes), utils.SplitList(ignore)...),
		IgnorePatterns: utils.SplitList(ignoreGlob),
		Logger:         *logger.Get(),
	}

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = newScanBar()
		opts.Progress = func(percent float64) {
			_ = bar.Set(int(percent))
		}
	}

	if isVerbose(cmd) {
		cmd.Printf("Scanning bucket: %s\n", bucketName)
		if prefix != "" {
			cmd.Printf("  Prefix: %s\n", prefix)
		}
	}

	startTime := time.Now()
	tree, err := aggregate.BuildTree(ctx, store, opts)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		utils.PrintError(err, "scan")
		return
	}

	result := &models.ScanResult{
		BucketName:     bucketName,
		Prefix:         prefix,
		ObjectCount:    tree.FileCount,
		TotalSizeBytes: tree.Size,
		TotalSizeHuman: utils.FormatBytes(tree.Size),
		OperationTime:  utils.FormatTime(startTime),
		ScanDuration:   time.Since(startTime).Round(time.Millisecond).String(),
		Tree:           tree,
	}

	if output == "" {
		if format == "json" {
			err = utils.PrintJSON(result)
		} else {
			err = writeScan(os.Stdout, format, result.Tree, depth)
		}
		if err != nil {
			utils.PrintError(err, "scan")
		}
		return
	}

	if err := writeScanFile(output, format, result.Tree, depth); err != nil {
		utils.PrintError(err, "scan")
		return
	}
	result.Tree = nil
	if err := utils.PrintJSON(result); err != nil {
		utils.PrintError(err, "scan")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Report written to %s\n", output)
	}
}

func validateFormat(format string) error {
	for _, f := range scanFormats {
		if f == format {
			return nil
		}
	}
	return &models.ValidationError{Field: "format", Msg: fmt.Sprintf("unknown format %q, use one of %v", format, scanFormats)}
}

func writeScan(w io.Writer, format string, tree *models.TreeNode, depth int) error {
	switch format {
	case "csv":
		return report.WriteCSV(w, tree)
	case "tree":
		return report.WriteTree(w, tree, depth)
	default:
		return report.WriteJSON(w, tree)
	}
}

func writeScanFile(path, format string, tree *models.TreeNode, depth int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %w", path, err)
	}
	if err := writeScan(file, format, tree, depth); err != nil {
		file.Close()
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return file.Close()
}

func newScanBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)
}

func init() {
	scanCmd.Flags().StringP("format", "f", "json", "Output format: json, csv or tree")
	scanCmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	scanCmd.Flags().Int("depth", 0, "Levels shown by the tree format (0 = all)")
	scanCmd.Flags().String("ignore", "", "Comma separated key prefixes to skip (matched literally)")
	scanCmd.Flags().String("ignore-glob", "", "Comma separated glob patterns of keys to skip")
	scanCmd.Flags().Bool("progress", false, "Show a progress bar (lists the bucket twice)")
	scanCmd.Flags().Int("timeout", 3600, "Timeout in seconds for the operation (0 = none)")
}
