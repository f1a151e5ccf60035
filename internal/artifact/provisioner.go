// Package artifact retrieves the RKE binary for a resolved release tag.
package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Provisioner fetches the engine binary for a release tag and returns a
// path to an executable file. Failures are surfaced, never retried.
type Provisioner interface {
	Provision(ctx context.Context, tag string) (string, error)
}

// DefaultDownloadBase is the tag-parameterized artifact location.
const DefaultDownloadBase = "https://github.com/rancher/rke/releases/download"

// downloadTimeout bounds one binary fetch end to end.
const downloadTimeout = 10 * time.Minute

// Downloader is the default Provisioner: it fetches the binary for the
// host platform into a cache directory and marks it executable. Artifacts
// already present in the cache are reused by tag.
type Downloader struct {
	baseURL    string
	cacheDir   string
	httpClient *http.Client
}

// NewDownloader creates a Downloader caching binaries under cacheDir.
func NewDownloader(cacheDir string) *Downloader {
	return &Downloader{
		baseURL:    DefaultDownloadBase,
		cacheDir:   cacheDir,
		httpClient: &http.Client{Timeout: downloadTimeout},
	}
}

// WithBaseURL overrides the artifact store location (used by tests).
func (d *Downloader) WithBaseURL(url string) *Downloader {
	d.baseURL = url
	return d
}

// Provision downloads the binary for tag unless already cached, marks it
// executable, and returns its path.
func (d *Downloader) Provision(ctx context.Context, tag string) (string, error) {
	if tag == "" {
		return "", fmt.Errorf("release tag must not be empty")
	}

	dest := filepath.Join(d.cacheDir, fmt.Sprintf("rke-%s", tag))
	if info, err := os.Stat(dest); err == nil && info.Mode().IsRegular() {
		if err := os.Chmod(dest, 0o755); err != nil {
			return "", fmt.Errorf("failed to mark cached binary executable: %w", err)
		}
		return dest, nil
	}

	if err := os.MkdirAll(d.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact cache dir: %w", err)
	}

	url := fmt.Sprintf("%s/%s/rke_%s-%s", d.baseURL, tag, runtime.GOOS, runtime.GOARCH)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build artifact request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("artifact download for %s failed: %w", tag, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("artifact download for %s failed: unexpected status %s", tag, resp.Status)
	}

	// Stage into a temp file so an interrupted download never leaves a
	// partial binary at the cached path.
	tmp, err := os.CreateTemp(d.cacheDir, "rke-download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write artifact for %s: %w", tag, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to finish artifact write: %w", err)
	}

	if err := os.Chmod(tmp.Name(), 0o755); err != nil {
		return "", fmt.Errorf("failed to mark artifact executable: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("failed to place artifact for %s: %w", tag, err)
	}

	return dest, nil
}
