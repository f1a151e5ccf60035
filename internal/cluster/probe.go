// Package cluster probes the live control-plane version of a running
// cluster.
package cluster

import (
	"context"
	"fmt"
	"time"

	"k8s.io/client-go/discovery"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/imamik/rkeup/internal/resolve"
)

// probeTimeout bounds the version query; a hung API server must not hang
// the whole run.
const probeTimeout = 30 * time.Second

// Probe reports the live control-plane version. Implemented by
// DiscoveryProbe; tests substitute fakes.
type Probe interface {
	ServerVersion(ctx context.Context) (resolve.ServerVersion, error)
}

// DiscoveryProbe queries the cluster's version endpoint through the
// Kubernetes discovery API using the kubeconfig referenced by the
// cluster configuration.
type DiscoveryProbe struct {
	kubeconfigPath string
}

// NewDiscoveryProbe creates a probe for the given kubeconfig.
func NewDiscoveryProbe(kubeconfigPath string) *DiscoveryProbe {
	return &DiscoveryProbe{kubeconfigPath: kubeconfigPath}
}

// ServerVersion returns the live control-plane version. Any response that
// does not parse as a semantic version is a probe failure, not a version;
// API servers embed error text in otherwise-200 responses often enough
// that the parse is the real validation.
func (p *DiscoveryProbe) ServerVersion(_ context.Context) (resolve.ServerVersion, error) {
	restConfig, err := clientcmd.BuildConfigFromFlags("", p.kubeconfigPath)
	if err != nil {
		return resolve.ServerVersion{}, fmt.Errorf("failed to load kubeconfig %s: %w", p.kubeconfigPath, err)
	}

	restConfig.Timeout = probeTimeout

	client, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return resolve.ServerVersion{}, fmt.Errorf("failed to create discovery client: %w", err)
	}

	// discovery's version endpoint has no context-taking form in this
	// client release; the REST config timeout bounds the call instead
	info, err := client.ServerVersion()
	if err != nil {
		return resolve.ServerVersion{}, fmt.Errorf("server version probe failed: %w", err)
	}

	version, err := resolve.ParseServerVersion(info.GitVersion)
	if err != nil {
		return resolve.ServerVersion{}, fmt.Errorf("server version probe returned %q: %w", info.GitVersion, err)
	}

	return version, nil
}
