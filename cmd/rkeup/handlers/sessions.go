package handlers

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/imamik/rkeup/internal/platform/s3"
)

// SessionsOptions contains options for the sessions command.
type SessionsOptions struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Sessions handles the sessions command.
//
// It lists the upgrade sessions previously archived to the S3 bucket,
// newest last. Session IDs are timestamps, so lexical order is
// chronological order.
func Sessions(ctx context.Context, opts SessionsOptions) error {
	store, err := s3.NewClient(ctx, opts.Endpoint, opts.Region, opts.AccessKey, opts.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to set up session archive client: %w", err)
	}

	keys, err := store.ListObjects(ctx, opts.Bucket, "rkeup/")
	if err != nil {
		return fmt.Errorf("failed to list archived sessions: %w", err)
	}

	ids := sessionIDs(keys)
	if len(ids) == 0 {
		log.Printf("No archived sessions in bucket %s", opts.Bucket)
		return nil
	}

	for _, id := range ids {
		log.Printf("Session %s", id)
	}
	return nil
}

// sessionIDs extracts the distinct session IDs from archive object keys
// of the form rkeup/<session-id>/<artifact>, sorted ascending.
func sessionIDs(keys []string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, key := range keys {
		parts := strings.Split(key, "/")
		if len(parts) < 3 || parts[0] != "rkeup" || parts[1] == "" {
			continue
		}
		if _, ok := seen[parts[1]]; ok {
			continue
		}
		seen[parts[1]] = struct{}{}
		ids = append(ids, parts[1])
	}
	sort.Strings(ids)
	return ids
}
