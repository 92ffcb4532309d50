package cmd

import (
	"github.com/spf13/cobra"

	"s3dirstat/internal/lister"
	"s3dirstat/internal/models"
	"s3dirstat/internal/syncer"
	"s3dirstat/pkg/utils"
)

var prefixesCmd = &cobra.Command{
	Use:   "prefixes [prefix]",
	Short: "List the folders directly below a prefix",
	Example: `  # Top-level folders of the configured bucket
  s3dirstat prefixes

  # Folders inside photos/
  s3dirstat prefixes photos`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runPrefixes(cmd, args)
	},
}

func runPrefixes(cmd *cobra.Command, args []string) {
	bucketName := getBucketName(cmd)
	if bucketName == "" {
		utils.PrintError(&models.ValidationError{Field: "bucket", Msg: "no bucket configured; set BUCKET_NAME or use --bucket"}, "prefixes")
		return
	}

	var prefix string
	if len(args) > 0 {
		prefix = syncer.NormalizePrefix(args[0])
	}

	store, err := openStore()
	if err != nil {
		utils.PrintError(err, "prefixes")
		return
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	prefixes, err := lister.ListPrefixes(ctx, store, bucketName, prefix)
	if err != nil {
		utils.PrintError(err, "prefixes")
		return
	}
	if prefixes == nil {
		prefixes = []string{}
	}

	if err := utils.PrintJSON(&models.PrefixListing{
		BucketName: bucketName,
		Prefix:     prefix,
		Prefixes:   prefixes,
	}); err != nil {
		utils.PrintError(err, "prefixes")
	}
}

func init() {
	prefixesCmd.Flags().Int("timeout", 300, "Timeout in seconds for the operation")
}
