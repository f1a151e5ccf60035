package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVersions_NoWellFormedVersions(t *testing.T) {
	bodies := []string{
		"",
		"Bug fixes and performance improvements.",
		"Bumped to v1.24 (no patch level)",
		"v1.24.6 without a vendor qualifier",
		"almost: v1.24.6-rancher1 (missing trailing component)",
	}

	for _, body := range bodies {
		assert.Empty(t, ExtractVersions(body), "body: %q", body)
	}
}

func TestExtractVersions_ProjectsVendorQualifiedVersions(t *testing.T) {
	body := "Kubernetes v1.25.4-rancher1-1 and v1.26.1-rancher2-1 are supported."
	assert.Equal(t, []string{"1.25.4", "1.26.1"}, ExtractVersions(body))
}

func TestExtractVersions_DeduplicatesRepeatedVersions(t *testing.T) {
	body := `
- v1.24.6-rancher1-1 (default)
- v1.24.6-rancher1-2
- v1.24.6-rancher2-1
`
	assert.Equal(t, []string{"1.24.6"}, ExtractVersions(body))
}

func TestExtractVersions_SortsSemanticallyNotLexically(t *testing.T) {
	// Lexical ordering would put 1.10.0 before 1.9.0.
	body := "v1.10.0-rancher1-1 then v1.9.0-rancher1-1 then v1.22.4-rancher1-1 then v1.22.10-rancher1-1"
	assert.Equal(t, []string{"1.9.0", "1.10.0", "1.22.4", "1.22.10"}, ExtractVersions(body))
}

func TestExtractVersions_IgnoresSurroundingNoise(t *testing.T) {
	body := `## Enhancements
Support for Kubernetes [v1.25.4-rancher1-1](https://example.invalid/notes)!
See etcd v3.5.x notes. Flannel vX.Y.Z unchanged.`
	assert.Equal(t, []string{"1.25.4"}, ExtractVersions(body))
}
