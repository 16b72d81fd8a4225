package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileValidator checks run inputs and outputs before any parsing
// starts, so path typos and permission problems surface as one clear
// error instead of a half-finished run.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a file validator. A nil logger falls back
// to slog.Default().
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateUploadsInbox checks that the uploads inbox exists and is a
// directory. An empty inbox is not an error; the run simply has
// nothing new to ingest.
func (v *FileValidator) ValidateUploadsInbox(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("uploads directory %s does not exist", dir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat uploads directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return fmt.Errorf("failed to scan uploads directory %s: %w", dir, err)
	}
	if len(matches) == 0 {
		v.logger.Warn("No CSV uploads found in inbox", slog.String("directory", dir))
		return nil
	}
	v.logger.Info("Uploads inbox validated",
		slog.String("directory", dir),
		slog.Int("files_found", len(matches)))
	return nil
}

// ValidateReportTree ensures the output directory exists and is
// writable. Existence alone is not enough; a read-only mount passes
// MkdirAll but fails the first artifact write, so a probe file is
// created and removed.
func (v *FileValidator) ValidateReportTree(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write_test")
	file, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(probe)

	v.logger.Info("Output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateUploadFile checks one upload before it reaches the parser:
// it must exist, be a regular non-empty file and carry a .csv
// extension.
func (v *FileValidator) ValidateUploadFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("upload %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat upload %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not an upload file", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return fmt.Errorf("upload %s is not a CSV file", filepath.Base(path))
	}
	if info.Size() == 0 {
		return fmt.Errorf("upload %s is empty", filepath.Base(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("upload %s is not readable: %w", filepath.Base(path), err)
	}
	file.Close()
	return nil
}
