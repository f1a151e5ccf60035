package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoveryProbe_MissingKubeconfig(t *testing.T) {
	probe := NewDiscoveryProbe("/nonexistent/kube_config.yml")

	_, err := probe.ServerVersion(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kubeconfig")
}
