package artifact

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvision_DownloadsAndMarksExecutable(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		fmt.Fprint(w, "#!binary-payload")
	}))
	defer server.Close()

	downloader := NewDownloader(t.TempDir()).WithBaseURL(server.URL)
	path, err := downloader.Provision(t.Context(), "v1.4.2")
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("/v1.4.2/rke_%s-%s", runtime.GOOS, runtime.GOARCH), requestedPath)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#!binary-payload", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "binary must be executable")
}

func TestProvision_ReusesCachedBinary(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		fmt.Fprint(w, "payload")
	}))
	defer server.Close()

	downloader := NewDownloader(t.TempDir()).WithBaseURL(server.URL)

	first, err := downloader.Provision(t.Context(), "v1.4.2")
	require.NoError(t, err)
	second, err := downloader.Provision(t.Context(), "v1.4.2")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, requests, "cached artifact must not be re-downloaded")
}

func TestProvision_SurfacesMissingArtifact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	downloader := NewDownloader(t.TempDir()).WithBaseURL(server.URL)
	_, err := downloader.Provision(t.Context(), "v9.9.9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestProvision_EmptyTagRejected(t *testing.T) {
	downloader := NewDownloader(t.TempDir())
	_, err := downloader.Provision(t.Context(), "")
	require.Error(t, err)
}
