package project

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/piwi3910/MillPath/internal/model"
)

// ProfilesFile holds custom GCode profiles inside the data directory.
const ProfilesFile = "profiles.json"

// ProfilesPath returns the custom profiles file for a data directory.
func ProfilesPath(dataDir string) string {
	return filepath.Join(dataDir, ProfilesFile)
}

// SaveCustomProfiles saves custom profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []model.GCodeProfile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if profiles == nil {
		profiles = []model.GCodeProfile{}
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCustomProfiles loads custom profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.GCodeProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.GCodeProfile{}, nil
		}
		return nil, err
	}

	var profiles []model.GCodeProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// LoadProfileSet loads the data directory's custom profiles into a set.
func LoadProfileSet(dataDir string) (*model.ProfileSet, error) {
	profiles, err := LoadCustomProfiles(ProfilesPath(dataDir))
	if err != nil {
		return nil, err
	}
	set := &model.ProfileSet{}
	for _, p := range profiles {
		// Entries shadowing a built-in or missing move words are skipped.
		_ = set.Add(p)
	}
	return set, nil
}

// ExportProfile exports a single profile to a JSON file for sharing.
func ExportProfile(path string, profile model.GCodeProfile) error {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ImportProfile imports a single profile from a JSON file.
func ImportProfile(path string) (model.GCodeProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.GCodeProfile{}, err
	}

	var profile model.GCodeProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return model.GCodeProfile{}, err
	}
	if profile.Name == "" {
		return model.GCodeProfile{}, errors.New("imported profile has no name")
	}
	return profile, nil
}
