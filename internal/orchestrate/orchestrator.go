// Package orchestrate sequences a cluster upgrade: resolve a compatible
// release, provision its binary, derive the configuration, generate the
// remote state file, apply, and verify. Each step is fail-fast; there is
// no automatic rollback. Recovery is an explicit operator action
// (snapshot restore), never attempted here.
package orchestrate

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/imamik/rkeup/internal/artifact"
	"github.com/imamik/rkeup/internal/cluster"
	"github.com/imamik/rkeup/internal/config"
	"github.com/imamik/rkeup/internal/resolve"
	"github.com/imamik/rkeup/internal/util/retry"
)

// State is a position in the upgrade state machine. Transitions are
// strictly forward; a failed transition halts the run at its current
// state.
type State int

const (
	StateIdle State = iota
	StateVersionDiscovered
	StateReleaseResolved
	StateArtifactProvisioned
	StateConfigDerived
	StateStateFileGenerated
	StateApplied
	StateVerified
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateVersionDiscovered:
		return "VersionDiscovered"
	case StateReleaseResolved:
		return "ReleaseResolved"
	case StateArtifactProvisioned:
		return "ArtifactProvisioned"
	case StateConfigDerived:
		return "ConfigDerived"
	case StateStateFileGenerated:
		return "StateFileGenerated"
	case StateApplied:
		return "Applied"
	case StateVerified:
		return "Verified"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// VerificationMismatch reports that the observed post-upgrade version
// differs from the target. It is a warning: apply succeeded, and the
// drift may be propagation delay.
type VerificationMismatch struct {
	Expected string
	Observed string
}

func (e *VerificationMismatch) Error() string {
	return fmt.Sprintf("cluster reports version %s, expected %s", e.Observed, e.Expected)
}

// Engine is the state-file and apply surface of the provisioned binary.
type Engine interface {
	GenerateStateFile(ctx context.Context, configPath, logPath string) error
	Up(ctx context.Context, configPath, logPath string) error
}

// EngineFactory builds an Engine over a provisioned binary path.
type EngineFactory func(binaryPath string) Engine

// ReleaseResolver is the compatibility resolution surface.
type ReleaseResolver interface {
	Resolve(ctx context.Context, server resolve.ServerVersion, policy resolve.Policy) (*resolve.Match, error)
}

// Archiver persists a completed session's artifacts, e.g. to object
// storage. Optional; archival failure never fails a run.
type Archiver interface {
	Archive(ctx context.Context, session *Session) error
}

// Options configures an Orchestrator.
type Options struct {
	OutputDir string

	// VerifyAttempts and VerifyDelay bound the post-apply version
	// re-probe; a fresh control plane needs a moment before it reports
	// the new version. Zero values take the defaults.
	VerifyAttempts int
	VerifyDelay    time.Duration
}

const (
	defaultVerifyAttempts = 3
	defaultVerifyDelay    = 5 * time.Second
)

// Orchestrator runs the upgrade state machine. One run is in flight at a
// time; the Session is owned exclusively by the run that created it.
type Orchestrator struct {
	probe       cluster.Probe
	resolver    ReleaseResolver
	provisioner artifact.Provisioner
	newEngine   EngineFactory
	observer    Observer
	archiver    Archiver
	opts        Options
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(
	probe cluster.Probe,
	resolver ReleaseResolver,
	provisioner artifact.Provisioner,
	newEngine EngineFactory,
	observer Observer,
	opts Options,
) *Orchestrator {
	return &Orchestrator{
		probe:       probe,
		resolver:    resolver,
		provisioner: provisioner,
		newEngine:   newEngine,
		observer:    observer,
		opts:        opts,
	}
}

// WithArchiver attaches an optional session archiver.
func (o *Orchestrator) WithArchiver(a Archiver) *Orchestrator {
	o.archiver = a
	return o
}

// Result reports a finished run. Warning is non-nil only for the
// verification mismatch case, which does not fail the run.
type Result struct {
	Session    *Session
	FinalState State
	Warning    *VerificationMismatch
}

// Run drives one upgrade from Idle to Verified against the given source
// configuration. On error the returned state is where the machine halted;
// artifacts written up to that point are left in place for inspection,
// but the completion marker is only ever written on reaching Verified.
func (o *Orchestrator) Run(ctx context.Context, source *config.Document) (*Result, error) {
	session, err := NewSession(o.opts.OutputDir)
	if err != nil {
		return nil, err
	}
	state := StateIdle
	o.observer.Printf("Starting upgrade session %s", session.ID)

	// Idle -> VersionDiscovered
	current, err := o.probe.ServerVersion(ctx)
	if err != nil {
		return o.fail(session, state, fmt.Errorf("failed to discover server version: %w", err))
	}
	state = o.advance(session, StateVersionDiscovered, "server version "+current.String())

	// -> ReleaseResolved
	match, err := o.resolver.Resolve(ctx, current, resolve.DualMinorMatch)
	if err != nil {
		return o.fail(session, state, fmt.Errorf("failed to resolve compatible release: %w", err))
	}
	session.Release = match.Release
	session.TargetVersion = targetVersion(match.Versions, current)
	if session.TargetVersion == "" {
		return o.fail(session, state, fmt.Errorf("release %s matched but offers no next-minor version", match.Release.TagName))
	}
	state = o.advance(session, StateReleaseResolved,
		fmt.Sprintf("release %s, target version %s", match.Release.TagName, session.TargetVersion))

	// -> ArtifactProvisioned
	binaryPath, err := o.provisioner.Provision(ctx, match.Release.TagName)
	if err != nil {
		return o.fail(session, state, fmt.Errorf("failed to provision %s: %w", match.Release.TagName, err))
	}
	session.BinaryPath = binaryPath
	state = o.advance(session, StateArtifactProvisioned, binaryPath)

	// -> ConfigDerived
	if err := o.deriveConfig(session, source); err != nil {
		return o.fail(session, state, err)
	}
	state = o.advance(session, StateConfigDerived, session.DerivedConfigPath())

	engine := o.newEngine(session.BinaryPath)

	// -> StateFileGenerated
	if err := engine.GenerateStateFile(ctx, session.DerivedConfigPath(), session.StateFileLogPath()); err != nil {
		return o.fail(session, state, fmt.Errorf("state file generation failed: %w", err))
	}
	// Zero exit alone is not proof: the state file must actually exist.
	if _, err := os.Stat(session.StateFilePath()); err != nil {
		return o.fail(session, state,
			fmt.Errorf("state file generation reported success but %s is absent: %w", session.StateFilePath(), err))
	}
	state = o.advance(session, StateStateFileGenerated, session.StateFilePath())

	// -> Applied
	if err := engine.Up(ctx, session.DerivedConfigPath(), session.ApplyLogPath()); err != nil {
		return o.fail(session, state, fmt.Errorf("apply failed: %w", err))
	}
	state = o.advance(session, StateApplied, "apply log: "+session.ApplyLogPath())

	// -> Verified
	warning, err := o.verify(ctx, session)
	if err != nil {
		return o.fail(session, state, err)
	}
	state = o.advance(session, StateVerified, "target "+session.TargetVersion)

	if err := os.WriteFile(session.CompletionMarkerPath(), []byte(session.TargetVersion+"\n"), 0o600); err != nil {
		return o.fail(session, state, fmt.Errorf("failed to write completion marker: %w", err))
	}

	o.observer.Event(Event{
		Type:    EventRunCompleted,
		State:   state.String(),
		Message: "upgrade session " + session.ID + " complete",
	})

	if o.archiver != nil {
		if err := o.archiver.Archive(ctx, session); err != nil {
			o.observer.Event(Event{
				Type:    EventRunWarning,
				State:   state.String(),
				Message: fmt.Sprintf("session archive failed: %v", err),
			})
		}
	}

	return &Result{Session: session, FinalState: state, Warning: warning}, nil
}

// deriveConfig backs up the source, copies the credentials file into the
// session, and writes the derived configuration.
func (o *Orchestrator) deriveConfig(session *Session, source *config.Document) error {
	if err := os.WriteFile(session.ConfigBackupPath(), source.Raw, 0o600); err != nil {
		return fmt.Errorf("failed to back up cluster config: %w", err)
	}

	credentials, err := source.KubeConfigPath()
	if err != nil {
		return err
	}
	if err := config.CopyCredentials(credentials, session.KubeConfigPath()); err != nil {
		return err
	}

	if _, err := config.Derive(source, session.DerivedConfigPath(), session.TargetVersion, session.KubeConfigPath()); err != nil {
		return fmt.Errorf("config derivation failed: %w", err)
	}
	return nil
}

// verify re-reads the live version, allowing a short window for the new
// control plane to settle. A persistent mismatch is a warning, not a
// failure: apply already succeeded. A probe that errors outright is a
// failure, since the cluster state is then unknown.
func (o *Orchestrator) verify(ctx context.Context, session *Session) (*VerificationMismatch, error) {
	target := strings.TrimPrefix(session.TargetVersion, "v")

	attempts := o.opts.VerifyAttempts
	if attempts <= 0 {
		attempts = defaultVerifyAttempts
	}
	delay := o.opts.VerifyDelay
	if delay <= 0 {
		delay = defaultVerifyDelay
	}

	var observed resolve.ServerVersion
	probed := false
	err := retry.Do(ctx, func() error {
		probed = false
		version, probeErr := o.probe.ServerVersion(ctx)
		if probeErr != nil {
			return probeErr
		}
		probed = true
		observed = version
		if observed.String() != target {
			return fmt.Errorf("version not yet %s", target)
		}
		return nil
	}, retry.WithAttempts(attempts), retry.WithInitialDelay(delay))
	if err == nil {
		return nil, nil
	}

	// Distinguish "probe worked but version drifted" from "probe broken".
	// Only the final attempt counts: a drift reading followed by a probe
	// failure leaves the cluster state unknown.
	if !probed {
		return nil, fmt.Errorf("post-upgrade version probe failed: %w", err)
	}

	mismatch := &VerificationMismatch{Expected: target, Observed: observed.String()}
	o.observer.Event(Event{
		Type:    EventRunWarning,
		State:   StateVerified.String(),
		Message: mismatch.Error(),
	})
	return mismatch, nil
}

func (o *Orchestrator) advance(session *Session, next State, detail string) State {
	o.observer.Event(Event{
		Type:    EventStateEntered,
		State:   next.String(),
		Message: detail,
		Fields:  map[string]string{"session": session.ID},
	})
	return next
}

func (o *Orchestrator) fail(session *Session, at State, err error) (*Result, error) {
	o.observer.Event(Event{
		Type:    EventStateFailed,
		State:   at.String(),
		Message: err.Error(),
		Fields:  map[string]string{"session": session.ID},
	})
	return &Result{Session: session, FinalState: at}, err
}

// targetVersion picks the upgrade target from a dual-minor match: the
// highest supported version on the next minor line. versions is sorted
// ascending, so the last prefix match wins.
func targetVersion(versions []string, current resolve.ServerVersion) string {
	prefix := current.NextMinor().MajorMinor() + "."
	target := ""
	for _, v := range versions {
		if strings.HasPrefix(v, prefix) {
			target = v
		}
	}
	if target == "" {
		return ""
	}
	return "v" + target
}
