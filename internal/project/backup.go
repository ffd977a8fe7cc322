package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/MillPath/internal/model"
)

const BackupVersion = "1.0.0"

// BackupData is the top-level structure of a JSON backup.
type BackupData struct {
	ID        string                `json:"id"`
	Version   string                `json:"version"`
	CreatedAt string                `json:"created_at"`
	Settings  model.MachineSettings `json:"settings"`
	Catalog   model.Catalog         `json:"catalog"`
	Profiles  []model.GCodeProfile  `json:"profiles,omitempty"`
}

// ExportBackup writes the catalog, machine settings and custom profiles
// to a single JSON file.
func ExportBackup(exportPath string, cat *model.Catalog, settings model.MachineSettings, profiles []model.GCodeProfile) (BackupData, error) {
	backup := BackupData{
		ID:        uuid.NewString(),
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Settings:  settings,
		Catalog:   *cat,
		Profiles:  profiles,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to marshal backup data: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0755); err != nil {
		return BackupData{}, fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return BackupData{}, fmt.Errorf("failed to write backup file: %w", err)
	}
	return backup, nil
}

// ImportBackup reads a backup file and checks the contained catalog.
// The caller decides whether to save it over the current one.
func ImportBackup(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Catalog.Tools == nil {
		backup.Catalog.Tools = []model.Tool{}
	}
	if backup.Catalog.Risers == nil {
		backup.Catalog.Risers = []model.Riser{}
	}
	if backup.Catalog.Parts == nil {
		backup.Catalog.Parts = []model.Part{}
	}
	if err := backup.Catalog.Check(); err != nil {
		return BackupData{}, fmt.Errorf("invalid backup catalog: %w", err)
	}
	return backup, nil
}
