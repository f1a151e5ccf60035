package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/rkeup/cmd/rkeup/handlers"
)

// Upgrade returns the command that drives a full upgrade run.
//
// The run is strictly sequential and fail-fast: resolve a release
// supporting the current and next minor version, provision its binary,
// derive a session-scoped configuration, generate the cluster state file,
// apply, and verify the resulting version. A failure halts the run; no
// rollback is attempted (restore from a snapshot instead).
//
// Required flags:
//
//	--config, -c: Path to cluster configuration YAML file
//
// Optional flags:
//
//	--output-dir: Directory for per-run artifacts (default: config dir)
//	--cache-dir: Directory for downloaded RKE binaries
//	--archive-s3-bucket (+ endpoint/region/access-key/secret-key):
//	    archive session artifacts to S3-compatible storage
//
// Environment variables:
//
//	GITHUB_TOKEN: Optional token for authenticated catalog access
func Upgrade() *cobra.Command {
	var opts handlers.UpgradeOptions

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade the cluster to the next supported minor version",
		Long: `Upgrade the cluster's control plane to the next minor version.

The upgrade process:
1. Reads the live control-plane version
2. Resolves the first RKE release supporting the current AND next minor
3. Downloads that release's binary
4. Derives a session-scoped cluster configuration with the target version
5. Generates the cluster state file and runs the upgrade
6. Verifies the cluster reports the target version

All per-run artifacts (derived config, backup, state file, logs) are
timestamp-suffixed so runs can be ordered by filename.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Upgrade(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to cluster configuration file")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "Directory for per-run artifacts (default: config directory)")
	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "", "Directory for downloaded RKE binaries")
	cmd.Flags().StringVar(&opts.ArchiveBucket, "archive-s3-bucket", "", "Archive session artifacts to this S3 bucket")
	cmd.Flags().StringVar(&opts.ArchiveEndpoint, "archive-s3-endpoint", "", "S3-compatible endpoint for session archive")
	cmd.Flags().StringVar(&opts.ArchiveRegion, "archive-s3-region", "us-east-1", "S3 region for session archive")
	cmd.Flags().StringVar(&opts.ArchiveAccessKey, "archive-s3-access-key", "", "S3 access key for session archive")
	cmd.Flags().StringVar(&opts.ArchiveSecretKey, "archive-s3-secret-key", "", "S3 secret key for session archive")

	// MarkFlagRequired cannot fail for flags defined on the same command
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
