package orchestrate

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/imamik/rkeup/internal/catalog"
)

// sessionIDFormat yields lexically sortable, monotonically increasing
// session identifiers so operators can order runs by filename.
const sessionIDFormat = "20060102150405"

// Session is the ephemeral aggregate for one orchestration run. It is
// created when the run starts, owned exclusively by the orchestrator, and
// discarded when the run ends; only the artifacts it wrote remain.
type Session struct {
	ID        string
	OutputDir string

	// Populated as the state machine advances.
	Release       catalog.Release
	TargetVersion string
	BinaryPath    string
}

// NewSession creates a timestamp-scoped session rooted at outputDir.
func NewSession(outputDir string) (*Session, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Session{
		ID:        time.Now().Format(sessionIDFormat),
		OutputDir: outputDir,
	}, nil
}

// DerivedConfigPath is the session's derived cluster configuration.
func (s *Session) DerivedConfigPath() string {
	return filepath.Join(s.OutputDir, fmt.Sprintf("cluster-%s.yml", s.ID))
}

// ConfigBackupPath is the verbatim pre-upgrade copy of the source config.
func (s *Session) ConfigBackupPath() string {
	return filepath.Join(s.OutputDir, fmt.Sprintf("cluster-backup-%s.yml", s.ID))
}

// KubeConfigPath is the session-scoped copy of the credentials file.
func (s *Session) KubeConfigPath() string {
	return filepath.Join(s.OutputDir, fmt.Sprintf("kube_config-%s.yml", s.ID))
}

// StateFilePath is where the engine writes the cluster state file. The
// engine derives it from the config filename, so it must stay in lockstep
// with DerivedConfigPath.
func (s *Session) StateFilePath() string {
	return filepath.Join(s.OutputDir, fmt.Sprintf("cluster-%s.rkestate", s.ID))
}

// StateFileLogPath is the transcript of the state-file generation run.
func (s *Session) StateFileLogPath() string {
	return filepath.Join(s.OutputDir, fmt.Sprintf("statefile-%s.log", s.ID))
}

// ApplyLogPath is the transcript of the apply run.
func (s *Session) ApplyLogPath() string {
	return filepath.Join(s.OutputDir, fmt.Sprintf("apply-%s.log", s.ID))
}

// CompletionMarkerPath marks a run that genuinely reached the Verified
// state. It must never exist for an interrupted or failed run.
func (s *Session) CompletionMarkerPath() string {
	return filepath.Join(s.OutputDir, fmt.Sprintf("upgrade-%s.done", s.ID))
}

// ArtifactPaths lists every artifact a completed run may have produced,
// for archival.
func (s *Session) ArtifactPaths() []string {
	return []string{
		s.ConfigBackupPath(),
		s.DerivedConfigPath(),
		s.KubeConfigPath(),
		s.StateFilePath(),
		s.StateFileLogPath(),
		s.ApplyLogPath(),
		s.CompletionMarkerPath(),
	}
}
