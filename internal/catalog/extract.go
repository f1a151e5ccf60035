package catalog

import (
	"regexp"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// supportedVersionPattern matches vendor-qualified Kubernetes versions as
// they appear in release notes, e.g. "v1.24.6-rancher1-1". The capture
// group is the bare major.minor.patch prefix.
//
// Release notes are free text and this pattern is the single place that
// knows their shape; keep any format drift confined here.
var supportedVersionPattern = regexp.MustCompile(`v(\d+\.\d+\.\d+)-[a-z]+\d+-\d+`)

// ExtractVersions scans free-form release-note text for supported
// Kubernetes versions. The result is deduplicated and sorted ascending in
// semantic order (v1.10.0 after v1.9.0). Text without any well-formed
// version yields an empty set, not an error.
func ExtractVersions(body string) []string {
	matches := supportedVersionPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	parsed := make([]*semver.Version, 0, len(matches))
	for _, m := range matches {
		raw := m[1]
		if _, ok := seen[raw]; ok {
			continue
		}
		v, err := semver.StrictNewVersion(raw)
		if err != nil {
			// The capture group already constrains the shape; a parse
			// failure here means the note text is garbage, skip it.
			continue
		}
		seen[raw] = struct{}{}
		parsed = append(parsed, v)
	}

	sort.Sort(semver.Collection(parsed))

	versions := make([]string, len(parsed))
	for i, v := range parsed {
		versions[i] = v.String()
	}
	return versions
}
