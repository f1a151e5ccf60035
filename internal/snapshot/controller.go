// Package snapshot drives etcd snapshot save and restore through a
// resolved engine binary against the original, unmodified cluster
// configuration.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/imamik/rkeup/internal/config"
	"github.com/imamik/rkeup/internal/orchestrate"
)

// Engine is the snapshot surface of the provisioned binary.
type Engine interface {
	SnapshotSave(ctx context.Context, configPath, name, logPath string) error
	SnapshotRestore(ctx context.Context, configPath, name, logPath string) error
}

// Controller invokes snapshot operations. It never mutates the cluster
// configuration; save and restore both run against the source document
// as-is.
type Controller struct {
	engine   Engine
	source   *config.Document
	logDir   string
	observer orchestrate.Observer
}

// NewController creates a snapshot controller over an already-resolved
// engine binary.
func NewController(engine Engine, source *config.Document, logDir string, observer orchestrate.Observer) *Controller {
	return &Controller{engine: engine, source: source, logDir: logDir, observer: observer}
}

// Save takes a named etcd snapshot. Non-zero engine exit is fatal to the
// operation and reported with a pointer at the captured log.
func (c *Controller) Save(ctx context.Context, name string) error {
	logPath, err := c.logPath("snapshot-save")
	if err != nil {
		return err
	}

	c.observer.Printf("Saving etcd snapshot %q (log: %s)", name, logPath)
	if err := c.engine.SnapshotSave(ctx, c.source.Path, name, logPath); err != nil {
		return fmt.Errorf("snapshot save %q failed: %w", name, err)
	}
	c.observer.Printf("Snapshot %q saved", name)
	return nil
}

// Restore restores the cluster from a named etcd snapshot.
func (c *Controller) Restore(ctx context.Context, name string) error {
	logPath, err := c.logPath("snapshot-restore")
	if err != nil {
		return err
	}

	c.observer.Printf("Restoring etcd snapshot %q (log: %s)", name, logPath)
	if err := c.engine.SnapshotRestore(ctx, c.source.Path, name, logPath); err != nil {
		return fmt.Errorf("snapshot restore %q failed: %w", name, err)
	}
	c.observer.Printf("Snapshot %q restored", name)
	return nil
}

// logPath yields a timestamp-suffixed log file path for one operation.
func (c *Controller) logPath(operation string) (string, error) {
	if err := os.MkdirAll(c.logDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	stamp := time.Now().Format("20060102150405")
	return filepath.Join(c.logDir, fmt.Sprintf("%s-%s.log", operation, stamp)), nil
}
