package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/MillPath/internal/model"
)

func shopProfile(name string) model.GCodeProfile {
	return model.GCodeProfile{
		Name:          name,
		Description:   "Shop controller",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17"},
		ToolChange:    "T%d M6",
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]"},
		CommentPrefix: ";",
		DecimalPlaces: 2,
	}
}

func TestSaveAndLoadCustomProfiles(t *testing.T) {
	path := ProfilesPath(t.TempDir())

	if err := SaveCustomProfiles(path, []model.GCodeProfile{shopProfile("ShopA"), shopProfile("ShopB")}); err != nil {
		t.Fatalf("SaveCustomProfiles: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("profiles file was not created")
	}

	loaded, err := LoadCustomProfiles(path)
	if err != nil {
		t.Fatalf("LoadCustomProfiles: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(loaded))
	}
	if loaded[0].Name != "ShopA" || loaded[1].Name != "ShopB" {
		t.Errorf("unexpected names %s, %s", loaded[0].Name, loaded[1].Name)
	}
	if loaded[0].DecimalPlaces != 2 {
		t.Errorf("expected 2 decimal places, got %d", loaded[0].DecimalPlaces)
	}
}

func TestLoadCustomProfilesNonExistent(t *testing.T) {
	profiles, err := LoadCustomProfiles(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("expected no error for nonexistent file, got: %v", err)
	}
	if len(profiles) != 0 {
		t.Fatalf("expected 0 profiles for nonexistent file, got %d", len(profiles))
	}
}

func TestLoadCustomProfilesInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCustomProfiles(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoadProfileSetSkipsBuiltInNames(t *testing.T) {
	dir := t.TempDir()
	if err := SaveCustomProfiles(ProfilesPath(dir), []model.GCodeProfile{shopProfile("Grbl"), shopProfile("Shop")}); err != nil {
		t.Fatal(err)
	}

	set, err := LoadProfileSet(dir)
	if err != nil {
		t.Fatalf("LoadProfileSet: %v", err)
	}
	if len(set.Custom) != 1 || set.Custom[0].Name != "Shop" {
		t.Fatalf("expected only Shop, got %+v", set.Custom)
	}
	if got := set.Get("Grbl"); got.DecimalPlaces != 3 {
		t.Errorf("built-in Grbl was shadowed: %+v", got)
	}
}

func TestExportAndImportProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exported.json")

	if err := ExportProfile(path, shopProfile("Exported")); err != nil {
		t.Fatalf("ExportProfile: %v", err)
	}
	imported, err := ImportProfile(path)
	if err != nil {
		t.Fatalf("ImportProfile: %v", err)
	}
	if imported.Name != "Exported" {
		t.Errorf("expected name Exported, got %s", imported.Name)
	}
	if imported.ToolChange != "T%d M6" {
		t.Errorf("expected tool change to round-trip, got %q", imported.ToolChange)
	}
}

func TestImportProfileNoName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noname.json")
	if err := os.WriteFile(path, []byte(`{"description":"no name"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportProfile(path); err == nil {
		t.Fatal("expected error for profile without name")
	}
}
