package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRunner records invocations and returns canned output.
type stubRunner struct {
	name   string
	args   []string
	output []byte
	err    error
}

func (s *stubRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	s.name = name
	s.args = args
	return s.output, s.err
}

func TestBinary_SubcommandArguments(t *testing.T) {
	tests := []struct {
		name string
		call func(b *Binary) error
		want []string
	}{
		{
			name: "up",
			call: func(b *Binary) error { return b.Up(t.Context(), "cluster.yml", "") },
			want: []string{"up", "--config", "cluster.yml"},
		},
		{
			name: "state file",
			call: func(b *Binary) error { return b.GenerateStateFile(t.Context(), "cluster.yml", "") },
			want: []string{"util", "get-state-file", "--config", "cluster.yml"},
		},
		{
			name: "snapshot save",
			call: func(b *Binary) error { return b.SnapshotSave(t.Context(), "cluster.yml", "pre-upgrade", "") },
			want: []string{"etcd", "snapshot-save", "--config", "cluster.yml", "--name", "pre-upgrade"},
		},
		{
			name: "snapshot restore",
			call: func(b *Binary) error { return b.SnapshotRestore(t.Context(), "cluster.yml", "pre-upgrade", "") },
			want: []string{"etcd", "snapshot-restore", "--config", "cluster.yml", "--name", "pre-upgrade"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubRunner{output: []byte("ok")}
			binary := NewBinary("/usr/local/bin/rke").WithRunner(stub.run)

			require.NoError(t, tt.call(binary))
			assert.Equal(t, "/usr/local/bin/rke", stub.name)
			assert.Equal(t, tt.want, stub.args)
		})
	}
}

func TestBinary_WritesTranscriptLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "apply.log")
	stub := &stubRunner{output: []byte("INFO: all good\n")}
	binary := NewBinary("rke").WithRunner(stub.run)

	require.NoError(t, binary.Up(t.Context(), "cluster.yml", logPath))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "INFO: all good\n", string(data))
}

func TestBinary_FailureCarriesOutputAndLogPath(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "apply.log")
	cause := errors.New("exit status 1")
	stub := &stubRunner{output: []byte("FATAL: cannot reach node\n"), err: cause}
	binary := NewBinary("rke").WithRunner(stub.run)

	err := binary.Up(t.Context(), "cluster.yml", logPath)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, "up", exitErr.Subcommand)
	assert.Equal(t, "FATAL: cannot reach node\n", exitErr.Output)
	assert.Equal(t, logPath, exitErr.LogPath)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), logPath)

	// The transcript is still persisted on failure.
	data, readErr := os.ReadFile(logPath)
	require.NoError(t, readErr)
	assert.Equal(t, "FATAL: cannot reach node\n", string(data))
}
