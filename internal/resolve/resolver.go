// Package resolve matches the live cluster version against the RKE
// release catalog under a selectable compatibility policy.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/imamik/rkeup/internal/catalog"
)

// ErrNoCompatibleRelease indicates the whole catalog was paged through
// without any release satisfying the active policy.
var ErrNoCompatibleRelease = errors.New("no compatible release found")

// CatalogSource is the read-only paging surface the resolver consumes.
// Implemented by catalog.Client; tests substitute fakes.
type CatalogSource interface {
	FetchPage(ctx context.Context, page int) ([]catalog.Release, error)
}

// ServerVersion is the live control-plane version decomposed into its
// semantic parts.
type ServerVersion struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// ParseServerVersion parses a version string as reported by the cluster,
// tolerating a leading "v" and a vendor suffix such as "-rancher1-1".
func ParseServerVersion(raw string) (ServerVersion, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ServerVersion{}, fmt.Errorf("empty server version")
	}
	v, err := semver.NewVersion(trimmed)
	if err != nil {
		return ServerVersion{}, fmt.Errorf("unparseable server version %q: %w", raw, err)
	}
	return ServerVersion{Major: v.Major(), Minor: v.Minor(), Patch: v.Patch()}, nil
}

// String returns the bare major.minor.patch form.
func (s ServerVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", s.Major, s.Minor, s.Patch)
}

// MajorMinor returns the "major.minor" prefix used for minor-level matching.
func (s ServerVersion) MajorMinor() string {
	return fmt.Sprintf("%d.%d", s.Major, s.Minor)
}

// NextMinor returns the same version bumped to the next minor line.
func (s ServerVersion) NextMinor() ServerVersion {
	return ServerVersion{Major: s.Major, Minor: s.Minor + 1}
}

// Policy selects how a release's supported versions are matched against
// the live server version.
type Policy int

const (
	// AnyMatch accepts a release whose supported set contains the server
	// version exactly, down to the patch level. Used for snapshot and
	// restore operations.
	AnyMatch Policy = iota

	// DualMinorMatch accepts a release only if its supported set covers
	// both the current minor line and the next one. Used for upgrades,
	// which move the cluster to the next minor.
	DualMinorMatch
)

// String implements fmt.Stringer for log output.
func (p Policy) String() string {
	switch p {
	case AnyMatch:
		return "any-match"
	case DualMinorMatch:
		return "dual-minor-match"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Match is the outcome of a successful resolution: the first release in
// catalog order satisfying the policy, plus its extracted version set.
type Match struct {
	Release  catalog.Release
	Versions []string
	Policy   Policy
}

// Resolver pages through the catalog and applies the matching policy.
type Resolver struct {
	source CatalogSource
}

// NewResolver creates a resolver over the given catalog source.
func NewResolver(source CatalogSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the first non-prerelease release, in catalog order,
// whose supported versions satisfy the policy for server.
//
// First-encountered wins: the catalog yields newest releases first and
// the resolver does not keep searching for a "better" match once one is
// found. Changing this tie-break silently changes upgrade outcomes.
//
// Catalog errors on the first page are fatal to the resolution; on later
// pages they end pagination as if the catalog were exhausted.
func (r *Resolver) Resolve(ctx context.Context, server ServerVersion, policy Policy) (*Match, error) {
	for page := 1; ; page++ {
		releases, err := r.source.FetchPage(ctx, page)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("failed to fetch first catalog page: %w", err)
			}
			// A later page failing leaves us with no prior match, so the
			// outcome is the same as running off the end of the catalog.
			break
		}

		for _, release := range releases {
			if release.IsPrerelease() {
				continue
			}
			versions := catalog.ExtractVersions(release.Body)
			if satisfies(versions, server, policy) {
				return &Match{Release: release, Versions: versions, Policy: policy}, nil
			}
		}

		if len(releases) < catalog.PageSize {
			break
		}
	}

	return nil, fmt.Errorf("server version %s under %s: %w", server, policy, ErrNoCompatibleRelease)
}

// satisfies applies the policy predicate to one release's version set.
func satisfies(versions []string, server ServerVersion, policy Policy) bool {
	switch policy {
	case AnyMatch:
		for _, v := range versions {
			if v == server.String() {
				return true
			}
		}
		return false
	case DualMinorMatch:
		current := server.MajorMinor() + "."
		next := server.NextMinor().MajorMinor() + "."
		var hasCurrent, hasNext bool
		for _, v := range versions {
			if strings.HasPrefix(v, current) {
				hasCurrent = true
			}
			if strings.HasPrefix(v, next) {
				hasNext = true
			}
		}
		return hasCurrent && hasNext
	default:
		return false
	}
}
