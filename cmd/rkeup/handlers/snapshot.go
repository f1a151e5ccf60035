package handlers

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/imamik/rkeup/internal/config"
	"github.com/imamik/rkeup/internal/engine"
	"github.com/imamik/rkeup/internal/orchestrate"
	"github.com/imamik/rkeup/internal/resolve"
	"github.com/imamik/rkeup/internal/snapshot"
)

// SnapshotOptions contains options shared by the snapshot subcommands.
type SnapshotOptions struct {
	ConfigPath string
	CacheDir   string
	LogDir     string
}

// SnapshotSave handles "snapshot save <name>".
func SnapshotSave(ctx context.Context, opts SnapshotOptions, name string) error {
	controller, err := snapshotController(ctx, opts)
	if err != nil {
		return err
	}
	return controller.Save(ctx, name)
}

// SnapshotRestore handles "snapshot restore <name>".
func SnapshotRestore(ctx context.Context, opts SnapshotOptions, name string) error {
	controller, err := snapshotController(ctx, opts)
	if err != nil {
		return err
	}
	return controller.Restore(ctx, name)
}

// snapshotController resolves a binary supporting the exact running
// version and wires the controller around the original configuration.
func snapshotController(ctx context.Context, opts SnapshotOptions) (*snapshot.Controller, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	match, binaryPath, err := resolveAndProvision(ctx, cfg, resolve.AnyMatch, opts.CacheDir)
	if err != nil {
		return nil, err
	}
	log.Printf("Using RKE %s (%s)", match.Release.TagName, binaryPath)

	logDir := opts.LogDir
	if logDir == "" {
		logDir = filepath.Dir(opts.ConfigPath)
	}

	return snapshot.NewController(
		engine.NewBinary(binaryPath),
		cfg,
		logDir,
		orchestrate.NewConsoleObserver(),
	), nil
}
