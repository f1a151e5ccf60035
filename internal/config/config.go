// Package config loads the cluster configuration document and derives
// per-session copies with the target Kubernetes version injected.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fields are the cluster.yml fields this tool reads and rewrites. The
// rest of the document is carried verbatim and never interpreted.
type Fields struct {
	KubernetesVersion string `yaml:"kubernetes_version"`
	KubeConfigPath    string `yaml:"kube_config_path"`
}

// Document is a cluster configuration read from disk. Raw preserves the
// source bytes exactly; Fields is the parsed view of the known keys.
type Document struct {
	Path   string
	Raw    []byte
	Fields Fields
}

// Load reads and parses a cluster configuration file.
func Load(path string) (*Document, error) {
	// #nosec G304 -- path comes from an operator-supplied flag
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cluster config: %w", err)
	}

	var fields Fields
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse cluster config %s: %w", path, err)
	}

	return &Document{Path: path, Raw: data, Fields: fields}, nil
}

// KubeConfigPath returns the credentials file path referenced by the
// document, or an error when the document does not name one.
func (d *Document) KubeConfigPath() (string, error) {
	if d.Fields.KubeConfigPath == "" {
		return "", fmt.Errorf("cluster config %s has no kube_config_path", d.Path)
	}
	return d.Fields.KubeConfigPath, nil
}
