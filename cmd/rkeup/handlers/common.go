// Package handlers implements the command execution logic behind the CLI.
package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imamik/rkeup/internal/artifact"
	"github.com/imamik/rkeup/internal/catalog"
	"github.com/imamik/rkeup/internal/cluster"
	"github.com/imamik/rkeup/internal/config"
	"github.com/imamik/rkeup/internal/resolve"
)

// catalogClient builds the release catalog client, authenticated when a
// token is available in the environment.
func catalogClient() *catalog.Client {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return catalog.NewClient(catalog.WithToken(token))
	}
	return catalog.NewClient()
}

// cacheDir returns the binary cache directory, defaulting to the user
// cache when no flag was given.
func cacheDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return filepath.Join(base, "rkeup"), nil
}

// probeFor builds the live-version probe from the kubeconfig the cluster
// configuration points at.
func probeFor(cfg *config.Document) (cluster.Probe, error) {
	kubeconfig, err := cfg.KubeConfigPath()
	if err != nil {
		return nil, err
	}
	return cluster.NewDiscoveryProbe(kubeconfig), nil
}

// resolveAndProvision runs the full resolution chain for the given
// policy: probe the live version, find a matching release, download its
// binary. Returns the match and the executable path.
func resolveAndProvision(ctx context.Context, cfg *config.Document, policy resolve.Policy, cacheFlag string) (*resolve.Match, string, error) {
	probe, err := probeFor(cfg)
	if err != nil {
		return nil, "", err
	}

	current, err := probe.ServerVersion(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read cluster version: %w", err)
	}

	match, err := resolve.NewResolver(catalogClient()).Resolve(ctx, current, policy)
	if err != nil {
		return nil, "", err
	}

	dir, err := cacheDir(cacheFlag)
	if err != nil {
		return nil, "", err
	}

	binaryPath, err := artifact.NewDownloader(dir).Provision(ctx, match.Release.TagName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to provision %s: %w", match.Release.TagName, err)
	}

	return match, binaryPath, nil
}
