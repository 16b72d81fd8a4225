package files

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golfpulse/pkg/contracts/domain"
)

// Archiver keeps the raw inputs of a report run. Uploads are copied
// into a per-session folder under the archive root, and the Base
// workbook gets a dated sibling copy, so any past run can be replayed
// from what was actually ingested.
type Archiver struct {
	logger *slog.Logger
	dir    string
}

// NewArchiver creates an archiver rooted at dir. A nil logger falls
// back to slog.Default().
func NewArchiver(logger *slog.Logger, dir string) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{
		logger: logger.With(slog.String("component", "archiver")),
		dir:    dir,
	}
}

// ArchiveUploads copies the given upload files into the session's
// archive folder (<root>/<dd-mm-yyyy>/). Re-archiving the same file
// overwrites the previous copy. The returned paths are the archived
// copies in input order.
func (a *Archiver) ArchiveUploads(ctx context.Context, sessionDate time.Time, uploads []string) ([]string, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	destDir := filepath.Join(a.dir, domain.DateDir(sessionDate))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", destDir, err)
	}

	archived := make([]string, 0, len(uploads))
	for _, src := range uploads {
		dst := filepath.Join(destDir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return archived, fmt.Errorf("failed to archive upload %s: %w", filepath.Base(src), err)
		}
		archived = append(archived, dst)
	}

	a.logger.InfoContext(ctx, "uploads archived",
		slog.String("session_date", domain.DateKey(sessionDate)),
		slog.String("dir", destDir),
		slog.Int("files", len(archived)))
	return archived, nil
}

// ArchiveBase writes a dated copy of the Base workbook next to the
// live one, named <workbook>_<yyyy-mm-dd>.xlsx. Dated copies preserve
// the store's history; the live workbook keeps its stable name so the
// next run restores from it.
func (a *Archiver) ArchiveBase(ctx context.Context, basePath string, sessionDate time.Time) (string, error) {
	name := filepath.Base(basePath)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	dst := filepath.Join(filepath.Dir(basePath), fmt.Sprintf("%s_%s%s", stem, domain.DateKey(sessionDate), filepath.Ext(name)))

	if err := copyFile(basePath, dst); err != nil {
		return "", fmt.Errorf("failed to archive base workbook: %w", err)
	}
	a.logger.InfoContext(ctx, "base workbook archived",
		slog.String("session_date", domain.DateKey(sessionDate)),
		slog.String("path", dst))
	return dst, nil
}

// copyFile copies src to dst, creating parent directories and syncing
// the result before returning.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	return dstFile.Sync()
}
