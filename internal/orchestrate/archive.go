package orchestrate

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/imamik/rkeup/internal/platform/s3"
)

// ObjectStore is the storage surface the archiver needs. Implemented by
// platform/s3.Client.
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key string, data []byte) error
}

// compile-time check that the S3 client satisfies ObjectStore
var _ ObjectStore = (*s3.Client)(nil)

// S3Archiver uploads a completed session's artifacts to object storage
// under rkeup/<session-id>/ so runs can be audited after the fact.
type S3Archiver struct {
	store  ObjectStore
	bucket string
}

// NewS3Archiver creates an archiver targeting the given bucket.
func NewS3Archiver(store ObjectStore, bucket string) *S3Archiver {
	return &S3Archiver{store: store, bucket: bucket}
}

// Archive implements Archiver. Artifacts that were never written (e.g. a
// log for a step that did not run) are skipped silently.
func (a *S3Archiver) Archive(ctx context.Context, session *Session) error {
	if err := a.store.EnsureBucket(ctx, a.bucket); err != nil {
		return err
	}

	for _, artifactPath := range session.ArtifactPaths() {
		data, err := os.ReadFile(artifactPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read session artifact %s: %w", artifactPath, err)
		}

		key := path.Join("rkeup", session.ID, filepath.Base(artifactPath))
		if err := a.store.PutObject(ctx, a.bucket, key, data); err != nil {
			return fmt.Errorf("failed to archive %s: %w", filepath.Base(artifactPath), err)
		}
	}
	return nil
}
