package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves the on-disk layout of one report output tree. It is
// the single source of truth for where run artifacts land:
//
//	<output>/
//	  ├── Base/      (Base_Coaching_Golf.xlsx and dated archives)
//	  ├── Eleves/    (per-student reports, one folder per alias)
//	  ├── Groupe/    (group reports, one folder per session date)
//	  └── Uploads/   (raw upload archives, one folder per session date)
type Paths struct {
	UploadsDir string
	OutputDir  string
	BaseDir    string
	ElevesDir  string
	GroupeDir  string
	ArchiveDir string
	LogsDir    string
}

// NewPaths resolves the layout from the export configuration.
func NewPaths(cfg ExportConfig) *Paths {
	return &Paths{
		UploadsDir: cfg.UploadsDir,
		OutputDir:  cfg.OutputDir,
		BaseDir:    filepath.Join(cfg.OutputDir, "Base"),
		ElevesDir:  filepath.Join(cfg.OutputDir, "Eleves"),
		GroupeDir:  filepath.Join(cfg.OutputDir, "Groupe"),
		ArchiveDir: filepath.Join(cfg.OutputDir, "Uploads"),
		LogsDir:    DefaultLogsDir,
	}
}

// EnsureDirectories creates the full layout, including the uploads
// inbox, so a fresh install can drop files in without manual setup.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{
		p.UploadsDir, p.OutputDir, p.BaseDir, p.ElevesDir, p.GroupeDir, p.ArchiveDir, p.LogsDir,
	} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// UploadCSVs lists the CSV files waiting in the uploads inbox, sorted
// by name.
func (p *Paths) UploadCSVs() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(p.UploadsDir, UploadCSVGlob))
	if err != nil {
		return nil, fmt.Errorf("failed to scan uploads directory: %w", err)
	}
	return matches, nil
}
