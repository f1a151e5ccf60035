// Package engine invokes the provisioned RKE binary for cluster
// operations and captures its output for diagnostics.
package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Binary drives one provisioned engine executable. All invocations block
// until the subprocess exits; combined output is captured and, when a log
// path is given, persisted for the operator.
type Binary struct {
	path   string
	runner Runner
}

// Runner executes a prepared command and returns its combined output.
// The default runner shells out; tests substitute a stub.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 -- name is the provisioned binary, args are built here
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// ExitError reports a failed engine invocation with everything the
// operator needs: the subcommand, the captured output, and the log file
// holding the full transcript.
type ExitError struct {
	Subcommand string
	Output     string
	LogPath    string
	Err        error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("rke %s failed: %v", e.Subcommand, e.Err)
	if e.LogPath != "" {
		msg += fmt.Sprintf(" (full output in %s)", e.LogPath)
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewBinary wraps the executable at path.
func NewBinary(path string) *Binary {
	return &Binary{path: path, runner: execRunner}
}

// WithRunner overrides subprocess execution (used by tests).
func (b *Binary) WithRunner(r Runner) *Binary {
	b.runner = r
	return b
}

// Path returns the wrapped executable's location.
func (b *Binary) Path() string {
	return b.path
}

// Up runs "rke up" against the given config, logging output to logPath.
func (b *Binary) Up(ctx context.Context, configPath, logPath string) error {
	return b.run(ctx, logPath, "up", "--config", configPath)
}

// GenerateStateFile runs the state-extraction subcommand against the
// given config, logging output to logPath. Callers must additionally
// check that the expected state-file artifact exists afterwards; a zero
// exit status alone is not sufficient evidence of success.
func (b *Binary) GenerateStateFile(ctx context.Context, configPath, logPath string) error {
	return b.run(ctx, logPath, "util", "get-state-file", "--config", configPath)
}

// SnapshotSave runs "rke etcd snapshot-save" for the named snapshot.
func (b *Binary) SnapshotSave(ctx context.Context, configPath, name, logPath string) error {
	return b.run(ctx, logPath, "etcd", "snapshot-save", "--config", configPath, "--name", name)
}

// SnapshotRestore runs "rke etcd snapshot-restore" for the named snapshot.
func (b *Binary) SnapshotRestore(ctx context.Context, configPath, name, logPath string) error {
	return b.run(ctx, logPath, "etcd", "snapshot-restore", "--config", configPath, "--name", name)
}

func (b *Binary) run(ctx context.Context, logPath string, args ...string) error {
	output, err := b.runner(ctx, b.path, args...)

	if logPath != "" {
		// The transcript is diagnostic; failing to persist it must not
		// mask the invocation result, but a write error on success is
		// still surfaced so the operator knows the log is missing.
		if werr := os.WriteFile(logPath, output, 0o600); werr != nil && err == nil {
			return fmt.Errorf("rke %s succeeded but log write failed: %w", subcommand(args), werr)
		}
	}

	if err != nil {
		return &ExitError{
			Subcommand: subcommand(args),
			Output:     string(output),
			LogPath:    logPath,
			Err:        err,
		}
	}
	return nil
}

// subcommand renders the invocation for error messages, without flags.
func subcommand(args []string) string {
	var parts []string
	for _, a := range args {
		if strings.HasPrefix(a, "--") {
			break
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
