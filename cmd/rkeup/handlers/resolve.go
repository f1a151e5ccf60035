package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/imamik/rkeup/internal/config"
	"github.com/imamik/rkeup/internal/resolve"
)

// ResolveOptions contains options for the resolve command.
type ResolveOptions struct {
	ConfigPath string
	Policy     string
}

// ParsePolicy maps the CLI policy name to its resolver policy.
func ParsePolicy(name string) (resolve.Policy, error) {
	switch name {
	case "any":
		return resolve.AnyMatch, nil
	case "upgrade":
		return resolve.DualMinorMatch, nil
	default:
		return 0, fmt.Errorf("unknown policy %q (want any or upgrade)", name)
	}
}

// Resolve handles the resolve command: it reports which release the
// catalog yields for the live cluster version under the chosen policy,
// without provisioning or changing anything.
func Resolve(ctx context.Context, opts ResolveOptions) error {
	policy, err := ParsePolicy(opts.Policy)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	probe, err := probeFor(cfg)
	if err != nil {
		return err
	}

	current, err := probe.ServerVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cluster version: %w", err)
	}
	log.Printf("Cluster control-plane version: %s", current)

	match, err := resolve.NewResolver(catalogClient()).Resolve(ctx, current, policy)
	if err != nil {
		return err
	}

	log.Printf("Compatible release: %s (policy %s)", match.Release.TagName, match.Policy)
	log.Printf("Supported versions: %s", strings.Join(match.Versions, ", "))
	return nil
}
