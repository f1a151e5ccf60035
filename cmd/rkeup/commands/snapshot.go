package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/rkeup/cmd/rkeup/handlers"
)

// Snapshot returns the parent command for etcd snapshot operations.
//
// Both subcommands resolve an RKE release supporting the exact running
// control-plane version and invoke it against the original, unmodified
// cluster configuration.
func Snapshot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save or restore etcd snapshots",
	}

	cmd.AddCommand(snapshotSave())
	cmd.AddCommand(snapshotRestore())

	return cmd
}

func snapshotSave() *cobra.Command {
	var opts handlers.SnapshotOptions

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a named etcd snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.SnapshotSave(cmd.Context(), opts, args[0])
		},
	}

	addSnapshotFlags(cmd, &opts)
	return cmd
}

func snapshotRestore() *cobra.Command {
	var opts handlers.SnapshotOptions

	cmd := &cobra.Command{
		Use:   "restore <name>",
		Short: "Restore the cluster from a named etcd snapshot",
		Long: `Restore the cluster from a previously saved etcd snapshot.

This is the recovery path after a failed upgrade: rkeup never rolls back
automatically, restoring is always an explicit operator action.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.SnapshotRestore(cmd.Context(), opts, args[0])
		},
	}

	addSnapshotFlags(cmd, &opts)
	return cmd
}

func addSnapshotFlags(cmd *cobra.Command, opts *handlers.SnapshotOptions) {
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to cluster configuration file")
	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "", "Directory for downloaded RKE binaries")
	cmd.Flags().StringVar(&opts.LogDir, "log-dir", "", "Directory for operation logs (default: config directory)")

	// MarkFlagRequired cannot fail for flags defined on the same command
	_ = cmd.MarkFlagRequired("config")
}
