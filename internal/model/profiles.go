package model

import (
	"fmt"
	"strings"
)

// ProfileSet holds the shop's custom post-processors next to the built-in ones.
type ProfileSet struct {
	Custom []GCodeProfile
}

// IsBuiltInProfile reports whether name belongs to a built-in profile.
func IsBuiltInProfile(name string) bool {
	for _, p := range GCodeProfiles {
		if p.Name == name {
			return true
		}
	}
	return false
}

// All returns the built-in profiles followed by the custom ones.
func (s *ProfileSet) All() []GCodeProfile {
	all := make([]GCodeProfile, 0, len(GCodeProfiles)+len(s.Custom))
	all = append(all, GCodeProfiles...)
	return append(all, s.Custom...)
}

// Get returns the named profile. Custom profiles are searched after the
// built-ins; an unknown name falls back to Generic.
func (s *ProfileSet) Get(name string) GCodeProfile {
	if IsBuiltInProfile(name) {
		return GetProfile(name)
	}
	for _, p := range s.Custom {
		if p.Name == name {
			return p
		}
	}
	return GetProfile(name)
}

// Has reports whether a built-in or custom profile is called name.
func (s *ProfileSet) Has(name string) bool {
	if IsBuiltInProfile(name) {
		return true
	}
	for _, p := range s.Custom {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (s *ProfileSet) Names() []string {
	var names []string
	for _, p := range s.All() {
		names = append(names, p.Name)
	}
	return names
}

// Add stores p, replacing a custom profile of the same name.
func (s *ProfileSet) Add(p GCodeProfile) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return &ValidationError{Entity: "profile", Field: "name", Reason: "must not be empty", Err: ErrInvalidName}
	}
	if IsBuiltInProfile(p.Name) {
		return fmt.Errorf("profile %q is built in: %w", p.Name, ErrDuplicateName)
	}
	if p.RapidMove == "" || p.FeedMove == "" {
		return &ValidationError{Entity: "profile", Field: "rapid_move", Value: p.RapidMove, Reason: "rapid and feed words are required", Err: ErrOutOfRange}
	}
	for i := range s.Custom {
		if s.Custom[i].Name == p.Name {
			s.Custom[i] = p
			return nil
		}
	}
	s.Custom = append(s.Custom, p)
	return nil
}

// Remove deletes a custom profile. Built-in profiles cannot be removed.
func (s *ProfileSet) Remove(name string) error {
	if IsBuiltInProfile(name) {
		return fmt.Errorf("profile %q is built in: %w", name, ErrInUse)
	}
	for i := range s.Custom {
		if s.Custom[i].Name == name {
			s.Custom = append(s.Custom[:i], s.Custom[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("profile %q: %w", name, ErrNotFound)
}
