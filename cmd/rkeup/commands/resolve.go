package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/rkeup/cmd/rkeup/handlers"
)

// Resolve returns the command that prints the compatible RKE release for
// the live cluster version without changing anything.
//
// Required flags:
//
//	--config, -c: Path to cluster configuration YAML file
//
// Optional flags:
//
//	--policy: Matching policy, "any" (exact version support) or
//	          "upgrade" (current and next minor both supported)
//
// Environment variables:
//
//	GITHUB_TOKEN: Optional token for authenticated catalog access
func Resolve() *cobra.Command {
	var configPath string
	var policy string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the RKE release compatible with the live cluster",
		Long: `Resolve which RKE release supports the cluster's current control-plane
version and print it.

With --policy any, a release is compatible when its notes declare support
for the exact running version. With --policy upgrade, the release must
support both the current and the next minor version, the requirement for
an upgrade run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := handlers.ResolveOptions{
				ConfigPath: configPath,
				Policy:     policy,
			}
			return handlers.Resolve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to cluster configuration file")
	cmd.Flags().StringVar(&policy, "policy", "any", "Matching policy: any or upgrade")

	// MarkFlagRequired cannot fail for flags defined on the same command
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
