package cmd

import (
	"github.com/spf13/cobra"

	"s3dirstat/internal/aggregate"
	"s3dirstat/internal/s3client"
	"s3dirstat/pkg/logger"
	"s3dirstat/pkg/utils"
)

var bucketInfoCmd = &cobra.Command{
	Use:   "bucket-info",
	Short: "Get comprehensive bucket information",
	Long: `Get detailed information about the S3 bucket: region, creation date, object
count, total size and per-extension totals.
The bucket name is taken from the configuration file unless overridden with --bucket flag.`,
	Example: `  # Get info for configured bucket
  s3dirstat bucket-info

  # Get info for specific bucket
  s3dirstat bucket-info --bucket my-other-bucket

  # Verbose output
  s3dirstat bucket-info --verbose`,
	Run: func(cmd *cobra.Command, args []string) {
		runBucketInfo(cmd)
	},
}

func runBucketInfo(cmd *cobra.Command) {
	client, err := s3client.New(cfg)
	if err != nil {
		utils.PrintError(err, "bucket-info")
		return
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	bucketName := getBucketName(cmd)
	if isVerbose(cmd) {
		cmd.Printf("Getting bucket information for: %s\n", bucketName)
	}

	info, err := client.GetBucketInfo(ctx, bucketName)
	if err != nil {
		utils.PrintError(err, "bucket-info")
		return
	}

	tree, err := aggregate.BuildTree(ctx, client, aggregate.Options{
		Bucket: bucketName,
		Logger: *logger.Get(),
	})
	if err != nil {
		utils.PrintError(err, "bucket-info")
		return
	}

	info.ObjectCount = tree.FileCount
	info.TotalSizeBytes = tree.Size
	info.TotalSizeHuman = utils.FormatBytes(tree.Size)
	info.LastModified = tree.LastModified
	info.Extensions = tree.Extensions

	if err := utils.PrintJSON(info); err != nil {
		utils.PrintError(err, "bucket-info")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Bucket info retrieved successfully\n")
	}
}

func init() {
	bucketInfoCmd.Flags().Int("timeout", 300, "Timeout in seconds for the operation")
}
