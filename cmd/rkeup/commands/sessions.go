package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/rkeup/cmd/rkeup/handlers"
)

// Sessions returns the command that lists archived upgrade sessions.
func Sessions() *cobra.Command {
	var opts handlers.SessionsOptions

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List upgrade sessions archived to S3",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Sessions(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Bucket, "archive-s3-bucket", "", "S3 bucket holding archived sessions")
	cmd.Flags().StringVar(&opts.Endpoint, "archive-s3-endpoint", "", "S3-compatible endpoint")
	cmd.Flags().StringVar(&opts.Region, "archive-s3-region", "us-east-1", "S3 region")
	cmd.Flags().StringVar(&opts.AccessKey, "archive-s3-access-key", "", "S3 access key")
	cmd.Flags().StringVar(&opts.SecretKey, "archive-s3-secret-key", "", "S3 secret key")

	// MarkFlagRequired cannot fail for flags defined on the same command
	_ = cmd.MarkFlagRequired("archive-s3-bucket")

	return cmd
}
