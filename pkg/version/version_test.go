package version

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	v, err := Parse("2.3.1")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 2, Minor: 3, Patch: 1, Raw: "2.3.1"}, v)

	v, err = Parse("1.0.0-beta.2")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v.Major)
	assert.Equal(t, "1.0.0-beta.2", v.Raw)

	for _, bad := range []string{"", "1", "1.2", "potato", "v1.2.3"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidVersion, "input %q", bad)
	}
}

func TestNewerInMajor(t *testing.T) {
	// Minor decides first; patch breaks ties.
	a := Version{Major: 2, Minor: 3, Patch: 0}
	b := Version{Major: 2, Minor: 2, Patch: 9}
	assert.True(t, a.NewerInMajor(b))
	assert.False(t, b.NewerInMajor(a))

	c := Version{Major: 2, Minor: 3, Patch: 1}
	assert.True(t, c.NewerInMajor(a))
	assert.False(t, a.NewerInMajor(a))
}

func TestLatestByMajor(t *testing.T) {
	entries := []Entry{
		{ID: "1", Name: "Harlowe", Version: "1.2.4"},
		{ID: "2", Name: "Harlowe", Version: "2.0.1"},
		{ID: "3", Name: "Harlowe", Version: "2.3.0"},
		{ID: "4", Name: "SugarCube", Version: "2.18.0"},
		{ID: "5", Name: "SugarCube", Version: ""},        // skipped
		{ID: "6", Name: "SugarCube", Version: "garbage"}, // skipped
	}

	latest := LatestByMajor(entries)

	require.Contains(t, latest, "Harlowe")
	assert.Equal(t, "1.2.4", latest["Harlowe"][1].Raw)
	assert.Equal(t, "2.3.0", latest["Harlowe"][2].Raw)
	assert.Equal(t, "2.18.0", latest["SugarCube"][2].Raw)
	assert.Len(t, latest["SugarCube"], 1)

	// Every selected version dominates its group under (minor, patch).
	for name, byMajor := range latest {
		for major, sel := range byMajor {
			for _, e := range entries {
				v, err := Parse(e.Version)
				if err != nil || e.Name != name || v.Major != major {
					continue
				}
				assert.False(t, v.NewerInMajor(sel), "%s %s beats selected %s", name, e.Version, sel.Raw)
			}
		}
	}
}

func TestSelectByMajor(t *testing.T) {
	entries := []Entry{
		{ID: "a", Name: "Harlowe", Version: "2.0.1"},
		{ID: "b", Name: "Harlowe", Version: "2.3.0"},
		{ID: "c", Name: "Harlowe", Version: "1.2.4"},
	}

	got, err := SelectByMajor(entries, "Harlowe", "2.0.1")
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)
	assert.Equal(t, "2.3.0", got.Version)

	got, err = SelectByMajor(entries, "Harlowe", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "c", got.ID)

	_, err = SelectByMajor(entries, "Harlowe", "3.0.0")
	assert.ErrorIs(t, err, ErrNoCompatibleVersion)

	_, err = SelectByMajor(entries, "Snowman", "1.3.0")
	assert.ErrorIs(t, err, ErrNoCompatibleVersion)

	_, err = SelectByMajor(entries, "Harlowe", "not-a-version")
	assert.True(t, errors.Is(err, ErrInvalidVersion))
}
