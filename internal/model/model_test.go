package model

import (
	"testing"
)

func TestGetProfileFallsBackToGeneric(t *testing.T) {
	p := GetProfile("NonExistent")
	if p.Name != "Generic" {
		t.Errorf("expected Generic fallback, got %s", p.Name)
	}
}

func TestGetProfileNamesListsBuiltIns(t *testing.T) {
	names := GetProfileNames()
	if len(names) != len(GCodeProfiles) {
		t.Fatalf("expected %d names, got %d", len(GCodeProfiles), len(names))
	}
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	for _, want := range []string{"Grbl", "Mach3", "LinuxCNC", "Generic"} {
		if !found[want] {
			t.Errorf("expected profile %s in names", want)
		}
	}
}

func TestProfilesUseMetricAbsolutePositioning(t *testing.T) {
	for _, p := range GCodeProfiles {
		hasG90, hasG21 := false, false
		for _, c := range p.StartCode {
			if c == "G90" {
				hasG90 = true
			}
			if c == "G21" {
				hasG21 = true
			}
		}
		if !hasG90 || !hasG21 {
			t.Errorf("profile %s must start with G90 and G21, got %v", p.Name, p.StartCode)
		}
		if p.SpindleStop != "M5" {
			t.Errorf("profile %s: expected M5 spindle stop, got %q", p.Name, p.SpindleStop)
		}
	}
}

func TestProgramEnd(t *testing.T) {
	if got := GetProfile("Mach3").ProgramEnd(); got != "M30" {
		t.Errorf("expected M30 for Mach3, got %s", got)
	}
	if got := GetProfile("Grbl").ProgramEnd(); got != "M2" {
		t.Errorf("expected M2 for Grbl, got %s", got)
	}
}

func TestToolAndRiserRadius(t *testing.T) {
	if r := (Tool{Diameter: 88}).Radius(); r != 44 {
		t.Errorf("expected tool radius 44, got %f", r)
	}
	if r := (Riser{Diameter: 30}).Radius(); r != 15 {
		t.Errorf("expected riser radius 15, got %f", r)
	}
}

func TestPartHasRiser(t *testing.T) {
	if (Part{}).HasRiser() {
		t.Error("expected no riser for empty reference")
	}
	if !(Part{Riser: "R1"}).HasRiser() {
		t.Error("expected riser for non-empty reference")
	}
}
