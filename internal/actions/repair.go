package actions

import (
	"errors"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/storyweave/goweave/internal/store"
	"github.com/storyweave/goweave/pkg/version"
)

// RepairFormats reconciles the format catalog against the built-in manifest
// and fixes the default/proofing format preferences. Record-level problems
// are logged and repaired, never returned; the returned error aggregates
// only store failures. Safe to re-run: repairing an already-repaired catalog
// is a no-op.
//
// Steps, each observing the previous step's effects:
//  1. delete formats lacking a version string
//  2. recreate missing built-ins
//  3. restore malformed preferences to the fallback references
//  4. delete every format superseded within its (name, major) group
//  5. bump preference versions to the latest in their major lineage
func (s *Service) RepairFormats() error {
	var errs error

	formats, err := s.store.Formats()
	if err != nil {
		return err
	}

	// 1. Unversioned records are unrecoverable; drop them.
	for _, f := range formats {
		if strings.TrimSpace(f.Version) == "" {
			s.log.Warn("deleting unversioned story format",
				zap.String("name", f.Name), zap.String("id", f.ID))
			errs = multierr.Append(errs, s.store.Apply(store.DeleteFormat{FormatID: f.ID}))
		}
	}

	// 2. Recreate missing built-ins.
	if formats, err = s.store.Formats(); err != nil {
		return multierr.Append(errs, err)
	}
	for _, b := range Builtins {
		if findFormat(formats, b.Name, b.Version) != nil {
			continue
		}
		userAdded := false
		errs = multierr.Append(errs, s.store.Apply(store.CreateFormat{Props: store.FormatProps{
			Name:      &b.Name,
			Version:   &b.Version,
			URL:       &b.URL,
			UserAdded: &userAdded,
		}}))
	}

	// 3. Preferences must be structured {name, version} references.
	errs = multierr.Append(errs, s.repairFormatPref(store.PrefDefaultFormat, DefaultFormatPref))
	errs = multierr.Append(errs, s.repairFormatPref(store.PrefProofingFormat, ProofingFormatPref))

	// 4. Within each (name, major) group only the latest version survives.
	if formats, err = s.store.Formats(); err != nil {
		return multierr.Append(errs, err)
	}
	latest := version.LatestByMajor(formatEntries(formats))
	for _, f := range formats {
		v, err := version.Parse(f.Version)
		if err != nil {
			// Unparseable but non-empty versions are left alone.
			continue
		}
		if latest[f.Name][v.Major].Raw == f.Version {
			continue
		}
		s.log.Warn("deleting superseded story format",
			zap.String("name", f.Name), zap.String("version", f.Version),
			zap.String("latest", latest[f.Name][v.Major].Raw))
		errs = multierr.Append(errs, s.store.Apply(store.DeleteFormat{FormatID: f.ID}))
	}

	// 5. Point preferences at the latest version of their major lineage.
	for _, name := range []string{store.PrefDefaultFormat, store.PrefProofingFormat} {
		pref, err := s.store.FormatPrefValue(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		v, err := version.Parse(pref.Version)
		if err != nil {
			continue
		}
		if lv, ok := latest[pref.Name][v.Major]; ok && lv.Raw != pref.Version {
			pref.Version = lv.Raw
			errs = multierr.Append(errs, s.store.Apply(store.UpdatePref{Name: name, Value: pref}))
		}
	}

	return errs
}

func (s *Service) repairFormatPref(name string, fallback store.FormatPref) error {
	_, err := s.store.FormatPrefValue(name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrValidation) {
		return err
	}
	s.log.Warn("restoring format preference",
		zap.String("pref", name), zap.String("format", fallback.Name),
		zap.String("version", fallback.Version))
	return s.store.Apply(store.UpdatePref{Name: name, Value: fallback})
}

func findFormat(formats []*store.StoryFormat, name, exactVersion string) *store.StoryFormat {
	for _, f := range formats {
		if f.Name == name && f.Version == exactVersion {
			return f
		}
	}
	return nil
}

// RepairStories ensures every story names an installed format and carries the
// latest compatible version within its major lineage. Legacy "SugarCube 1"
// and "SugarCube 2" composite names migrate to the plain name plus a version.
// Stories whose format has no installed lineage are left unchanged; repair
// never fails a record through to the caller.
func (s *Service) RepairStories() error {
	var errs error

	stories, err := s.store.Stories()
	if err != nil {
		return err
	}
	formats, err := s.store.Formats()
	if err != nil {
		return err
	}
	latest := version.LatestByMajor(formatEntries(formats))

	defaultPref, err := s.store.FormatPrefValue(store.PrefDefaultFormat)
	if err != nil {
		defaultPref = DefaultFormatPref
	}

	for _, st := range stories {
		name, ver := st.StoryFormat, st.StoryFormatVersion

		if name == "" {
			name = defaultPref.Name
		}

		// Legacy composite names carried the major version in the name.
		switch {
		case strings.HasPrefix(name, "SugarCube 1"):
			name = "SugarCube"
			if lv, ok := latest["SugarCube"][1]; ok {
				ver = lv.Raw
			}
		case strings.HasPrefix(name, "SugarCube 2"):
			name = "SugarCube"
			if lv, ok := latest["SugarCube"][2]; ok {
				ver = lv.Raw
			}
		}

		if ver != "" {
			// Upgrade in place within the same major lineage; never cross
			// majors automatically.
			if v, err := version.Parse(ver); err == nil {
				if lv, ok := latest[name][v.Major]; ok {
					ver = lv.Raw
				}
			}
		} else if byMajor, ok := latest[name]; ok && len(byMajor) > 0 {
			// No version at all: prefer the oldest lineage available, the
			// safest bet for a story of unknown vintage.
			var smallest uint64
			first := true
			for major := range byMajor {
				if first || major < smallest {
					smallest, first = major, false
				}
			}
			ver = byMajor[smallest].Raw
		}

		if name == st.StoryFormat && ver == st.StoryFormatVersion {
			continue
		}
		s.log.Info("repairing story format",
			zap.String("story", st.Name),
			zap.String("format", name), zap.String("version", ver))
		errs = multierr.Append(errs, s.store.Apply(store.UpdateStory{
			StoryID: st.ID,
			Props: store.StoryProps{
				StoryFormat:        &name,
				StoryFormatVersion: &ver,
			},
		}))
	}

	return errs
}
