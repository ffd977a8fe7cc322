package model

import (
	"errors"
	"testing"
)

func TestProfileSetAllIncludesBuiltInAndCustom(t *testing.T) {
	var s ProfileSet
	if len(s.All()) != len(GCodeProfiles) {
		t.Errorf("expected %d profiles with no custom, got %d", len(GCodeProfiles), len(s.All()))
	}

	s.Custom = []GCodeProfile{{Name: "Custom1", RapidMove: "G0", FeedMove: "G1"}}
	if len(s.All()) != len(GCodeProfiles)+1 {
		t.Errorf("expected %d profiles with 1 custom, got %d", len(GCodeProfiles)+1, len(s.All()))
	}
}

func TestProfileSetGetFindsCustom(t *testing.T) {
	s := ProfileSet{Custom: []GCodeProfile{{Name: "Shop", RapidMove: "G0", FeedMove: "G1"}}}

	if p := s.Get("Shop"); p.Name != "Shop" {
		t.Errorf("expected Shop, got %s", p.Name)
	}
	if p := s.Get("Mach3"); p.Name != "Mach3" {
		t.Errorf("expected Mach3, got %s", p.Name)
	}
	if p := s.Get("nope"); p.Name != "Generic" {
		t.Errorf("expected Generic fallback, got %s", p.Name)
	}
	if !s.Has("Shop") || !s.Has("Grbl") || s.Has("nope") {
		t.Error("Has reported wrong membership")
	}
}

func TestProfileSetAddUpdatesExisting(t *testing.T) {
	var s ProfileSet
	if err := s.Add(GCodeProfile{Name: " Shop ", Description: "v1", RapidMove: "G0", FeedMove: "G1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Add(GCodeProfile{Name: "Shop", Description: "v2", RapidMove: "G0", FeedMove: "G1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Custom) != 1 {
		t.Fatalf("expected 1 custom profile after update, got %d", len(s.Custom))
	}
	if s.Custom[0].Description != "v2" {
		t.Errorf("expected updated description, got %s", s.Custom[0].Description)
	}
}

func TestProfileSetAddRejects(t *testing.T) {
	var s ProfileSet
	if err := s.Add(GCodeProfile{Name: "Grbl", RapidMove: "G0", FeedMove: "G1"}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName for built-in name, got %v", err)
	}
	if err := s.Add(GCodeProfile{Name: ""}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
	if err := s.Add(GCodeProfile{Name: "NoMoves"}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for missing move words, got %v", err)
	}
}

func TestProfileSetRemove(t *testing.T) {
	s := ProfileSet{Custom: []GCodeProfile{{Name: "ToRemove"}}}

	if err := s.Remove("ToRemove"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Custom) != 0 {
		t.Error("profile was not removed")
	}
	if err := s.Remove("Grbl"); !errors.Is(err, ErrInUse) {
		t.Errorf("expected ErrInUse removing built-in, got %v", err)
	}
	if err := s.Remove("ToRemove"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
