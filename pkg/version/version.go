// Package version compares and selects among semantic versions of installed
// story formats. Formats are grouped by (name, major); within a group the
// newest version is the one with the greatest (minor, patch) pair, minor
// compared first.
package version

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

var (
	// ErrInvalidVersion reports a string that is not a semantic version.
	ErrInvalidVersion = errors.New("invalid semantic version")

	// ErrNoCompatibleVersion reports that no installed format matches a
	// requested name and major version.
	ErrNoCompatibleVersion = errors.New("no compatible format version")
)

// Version is a parsed semantic version. Raw preserves the original string so
// a parsed version can be matched back against catalog records exactly.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
	Raw   string
}

// Parse parses s as a strict major.minor.patch semantic version, optionally
// with pre-release or build metadata.
func Parse(s string) (Version, error) {
	sv, err := semver.StrictNewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	return Version{Major: sv.Major(), Minor: sv.Minor(), Patch: sv.Patch(), Raw: s}, nil
}

// NewerInMajor reports whether v is newer than o under (minor, patch)
// ordering. Both versions are assumed to share a major version.
func (v Version) NewerInMajor(o Version) bool {
	if v.Minor != o.Minor {
		return v.Minor > o.Minor
	}
	return v.Patch > o.Patch
}

// Entry is a version-labeled catalog record. ID lets callers map a selection
// back to the record it came from.
type Entry struct {
	ID      string
	Name    string
	Version string
}

// LatestByMajor groups entries by name, then by major version, retaining the
// newest version within each group. Entries with missing or unparseable
// versions are skipped silently.
func LatestByMajor(entries []Entry) map[string]map[uint64]Version {
	latest := make(map[string]map[uint64]Version)
	for _, e := range entries {
		v, err := Parse(e.Version)
		if err != nil {
			continue
		}
		byMajor := latest[e.Name]
		if byMajor == nil {
			byMajor = make(map[uint64]Version)
			latest[e.Name] = byMajor
		}
		if cur, ok := byMajor[v.Major]; !ok || v.NewerInMajor(cur) {
			byMajor[v.Major] = v
		}
	}
	return latest
}

// SelectByMajor returns the entry matching name whose version shares
// requested's major version and has the greatest (minor, patch) pair.
func SelectByMajor(entries []Entry, name, requested string) (Entry, error) {
	want, err := Parse(requested)
	if err != nil {
		return Entry{}, err
	}

	var (
		best  Entry
		bestV Version
		found bool
	)
	for _, e := range entries {
		if e.Name != name {
			continue
		}
		v, err := Parse(e.Version)
		if err != nil || v.Major != want.Major {
			continue
		}
		if !found || v.NewerInMajor(bestV) {
			best, bestV, found = e, v, true
		}
	}
	if !found {
		return Entry{}, fmt.Errorf("%w: %s %s", ErrNoCompatibleVersion, name, requested)
	}
	return best, nil
}
