package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `nodes:
  - address: 10.0.0.10
    role: [controlplane, etcd, worker]
kubernetes_version: v1.24.6
kube_config_path: ./kube_config_cluster.yml
services:
  etcd:
    snapshot: true
`

func writeConfig(t *testing.T, content string) *Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cluster.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	doc, err := Load(path)
	require.NoError(t, err)
	return doc
}

func TestLoad_ParsesKnownFields(t *testing.T) {
	doc := writeConfig(t, sampleConfig)
	assert.Equal(t, "v1.24.6", doc.Fields.KubernetesVersion)
	assert.Equal(t, "./kube_config_cluster.yml", doc.Fields.KubeConfigPath)
	assert.Equal(t, sampleConfig, string(doc.Raw))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/cluster.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read cluster config")
}

func TestDerive_ReplacesExistingVersionField(t *testing.T) {
	doc := writeConfig(t, sampleConfig)
	dest := filepath.Join(t.TempDir(), "derived.yml")

	derived, err := Derive(doc, dest, "v1.25.4", "/run/kube_config-1.yml")
	require.NoError(t, err)

	assert.Equal(t, "v1.25.4", derived.Fields.KubernetesVersion)
	assert.Equal(t, "/run/kube_config-1.yml", derived.Fields.KubeConfigPath)

	// The rest of the document is carried verbatim.
	content := string(derived.Raw)
	assert.Contains(t, content, "address: 10.0.0.10")
	assert.Contains(t, content, "snapshot: true")
	assert.NotContains(t, content, "v1.24.6")

	// The original document is never mutated.
	assert.Equal(t, "v1.24.6", doc.Fields.KubernetesVersion)
	assert.Contains(t, string(doc.Raw), "v1.24.6")
}

func TestDerive_InsertsVersionFieldAtTopWhenAbsent(t *testing.T) {
	doc := writeConfig(t, "nodes:\n  - address: 10.0.0.10\n")
	dest := filepath.Join(t.TempDir(), "derived.yml")

	derived, err := Derive(doc, dest, "v1.25.4", "")
	require.NoError(t, err)

	lines := strings.Split(string(derived.Raw), "\n")
	assert.Equal(t, "kubernetes_version: v1.25.4", lines[0])
	assert.Equal(t, "v1.25.4", derived.Fields.KubernetesVersion)
}

func TestDerive_IdempotentOnVersionField(t *testing.T) {
	doc := writeConfig(t, sampleConfig)
	dir := t.TempDir()

	first, err := Derive(doc, filepath.Join(dir, "a.yml"), "v1.25.4", "/run/kc.yml")
	require.NoError(t, err)

	second, err := Derive(first, filepath.Join(dir, "b.yml"), "v1.25.4", "/run/kc.yml")
	require.NoError(t, err)

	// Deriving twice yields byte-identical content, not duplicate lines.
	assert.Equal(t, string(first.Raw), string(second.Raw))
	assert.Equal(t, 1, strings.Count(string(second.Raw), "kubernetes_version:"))
}

func TestDerive_EmptyTargetRejected(t *testing.T) {
	doc := writeConfig(t, sampleConfig)
	_, err := Derive(doc, filepath.Join(t.TempDir(), "d.yml"), "", "")
	require.Error(t, err)
}

func TestDerive_VerificationCatchesBrokenOutput(t *testing.T) {
	doc := writeConfig(t, sampleConfig)
	dest := filepath.Join(t.TempDir(), "derived.yml")

	// A value that survives the write but reads back differently must be
	// reported, not silently accepted.
	_, err := Derive(doc, dest, "v1.25.4 #", "")
	require.ErrorIs(t, err, ErrTransformVerificationFailed)
}

func TestCopyCredentials(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "kube_config.yml")
	dest := filepath.Join(dir, "kube_config-copy.yml")
	require.NoError(t, os.WriteFile(src, []byte("apiVersion: v1\n"), 0o600))

	require.NoError(t, CopyCredentials(src, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "apiVersion: v1\n", string(data))

	// Source untouched.
	orig, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "apiVersion: v1\n", string(orig))
}

func TestCopyCredentials_MissingSource(t *testing.T) {
	err := CopyCredentials("/nonexistent/kube_config.yml", filepath.Join(t.TempDir(), "out.yml"))
	require.Error(t, err)
}
