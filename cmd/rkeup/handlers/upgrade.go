package handlers

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/imamik/rkeup/internal/artifact"
	"github.com/imamik/rkeup/internal/config"
	"github.com/imamik/rkeup/internal/engine"
	"github.com/imamik/rkeup/internal/orchestrate"
	"github.com/imamik/rkeup/internal/platform/s3"
	"github.com/imamik/rkeup/internal/resolve"
)

// UpgradeOptions contains options for the upgrade command.
type UpgradeOptions struct {
	ConfigPath string
	OutputDir  string
	CacheDir   string

	// Optional session archive target.
	ArchiveBucket    string
	ArchiveEndpoint  string
	ArchiveRegion    string
	ArchiveAccessKey string
	ArchiveSecretKey string
}

// Upgrade handles the upgrade command.
//
// It loads the cluster configuration and runs the orchestrated upgrade:
// version discovery, release resolution under the dual-minor policy,
// binary provisioning, config derivation, state-file generation, apply,
// and post-apply verification. A verification mismatch is reported as a
// warning; any other failure aborts the run where it happened.
func Upgrade(ctx context.Context, opts UpgradeOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	probe, err := probeFor(cfg)
	if err != nil {
		return err
	}

	dir, err := cacheDir(opts.CacheDir)
	if err != nil {
		return err
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(opts.ConfigPath)
	}

	observer := orchestrate.NewConsoleObserver()
	orchestrator := orchestrate.NewOrchestrator(
		probe,
		resolve.NewResolver(catalogClient()),
		artifact.NewDownloader(dir),
		func(binaryPath string) orchestrate.Engine { return engine.NewBinary(binaryPath) },
		observer,
		orchestrate.Options{OutputDir: outputDir},
	)

	if opts.ArchiveBucket != "" {
		store, err := s3.NewClient(ctx, opts.ArchiveEndpoint, opts.ArchiveRegion, opts.ArchiveAccessKey, opts.ArchiveSecretKey)
		if err != nil {
			return fmt.Errorf("failed to set up session archive: %w", err)
		}
		orchestrator.WithArchiver(orchestrate.NewS3Archiver(store, opts.ArchiveBucket))
	}

	result, err := orchestrator.Run(ctx, cfg)
	if err != nil {
		if result != nil {
			return fmt.Errorf("upgrade halted at state %s: %w", result.FinalState, err)
		}
		return fmt.Errorf("upgrade failed: %w", err)
	}

	log.Printf("Upgrade session %s complete: %s at %s",
		result.Session.ID, result.Session.Release.TagName, result.Session.TargetVersion)
	if result.Warning != nil {
		log.Printf("WARNING: %v", result.Warning)
	}
	return nil
}
