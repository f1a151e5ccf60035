package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
)

// ErrTransformVerificationFailed indicates a derived document, re-read
// from disk, did not carry the target version. A transform that "worked"
// but fails this check is an error, never a silent success.
var ErrTransformVerificationFailed = errors.New("derived config verification failed")

var (
	versionLine    = regexp.MustCompile(`(?m)^kubernetes_version:.*$`)
	kubeConfigLine = regexp.MustCompile(`(?m)^kube_config_path:.*$`)
)

// Derive writes a derived copy of src to destPath with targetVersion in
// the kubernetes_version field and kube_config_path pointing at
// kubeConfigPath. The source document is copied verbatim; existing fields
// are replaced in place, missing ones are inserted at the top. The
// original document is never mutated.
//
// The derived file is re-read and parsed before returning, so a
// successful return guarantees the postcondition.
func Derive(src *Document, destPath, targetVersion, kubeConfigPath string) (*Document, error) {
	if targetVersion == "" {
		return nil, fmt.Errorf("target version must not be empty")
	}

	derived := setField(src.Raw, versionLine, "kubernetes_version", targetVersion)
	if kubeConfigPath != "" {
		derived = setField(derived, kubeConfigLine, "kube_config_path", kubeConfigPath)
	}

	if err := os.WriteFile(destPath, derived, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write derived config: %w", err)
	}

	// Verify by re-reading what actually landed on disk.
	doc, err := Load(destPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransformVerificationFailed, err)
	}
	if doc.Fields.KubernetesVersion != targetVersion {
		return nil, fmt.Errorf("%w: kubernetes_version is %q, want %q",
			ErrTransformVerificationFailed, doc.Fields.KubernetesVersion, targetVersion)
	}

	return doc, nil
}

// setField replaces the top-level occurrence of key in doc, or
// inserts the field at the top of the document when absent. Replacement
// is idempotent: deriving twice with the same value yields a
// byte-identical field line, never a duplicate.
func setField(doc []byte, line *regexp.Regexp, key, value string) []byte {
	replacement := fmt.Sprintf("%s: %s", key, value)
	if line.Match(doc) {
		return line.ReplaceAll(doc, []byte(replacement))
	}

	var buf bytes.Buffer
	buf.WriteString(replacement)
	buf.WriteByte('\n')
	buf.Write(doc)
	return buf.Bytes()
}

// CopyCredentials copies the credentials file at srcPath into destPath
// for session-scoped use. The source is read-only to this system and is
// never mutated in place.
func CopyCredentials(srcPath, destPath string) error {
	// #nosec G304 -- path originates from the cluster config document
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("failed to read credentials file: %w", err)
	}
	if err := os.WriteFile(destPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session credentials copy: %w", err)
	}
	return nil
}
