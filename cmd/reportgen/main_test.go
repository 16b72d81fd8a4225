package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golfpulse/internal/config"
	"golfpulse/internal/dataprocessing"
	"golfpulse/internal/exporter"
	"golfpulse/internal/files"
	"golfpulse/internal/shared/testutil"
	"golfpulse/internal/validation"
	"golfpulse/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			input:    "   ",
			expected: nil,
		},
		{
			name:     "single alias",
			input:    "dupont",
			expected: []string{"dupont"},
		},
		{
			name:     "multiple aliases with spaces",
			input:    "dupont, martin ,bernard",
			expected: []string{"dupont", "martin", "bernard"},
		},
		{
			name:     "trailing and duplicate commas",
			input:    "dupont,,martin,",
			expected: []string{"dupont", "martin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitList(tt.input))
		})
	}
}

func TestLoadConfigExplicitFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "golfpulse.yaml")
	content := `
gapping:
  min_good_shots: 25
export:
  shots_csv: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Gapping.MinGoodShots)
	assert.True(t, cfg.Export.ShotsCSV)
}

func TestLoadConfigExplicitFileMissing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigDefaultLookup(t *testing.T) {
	// No config file next to the test binary, so the lookup falls back
	// to the built-in defaults.
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestRestoreBaseMissingFile(t *testing.T) {
	store := dataprocessing.NewBaseStore(testLogger())
	path := filepath.Join(t.TempDir(), "Base", exporter.BaseWorkbookName)

	err := restoreBase(context.Background(), testLogger(), store, path)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Snapshot().Len())
}

func TestRestoreBaseRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, exporter.BaseWorkbookName)

	seed := dataprocessing.NewBaseStore(testLogger())
	date := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	snap := seed.Merge(context.Background(), []domain.Shot{
		{Player: "dupont", RawPlayer: "Dupont", Hand: domain.HandRight, Date: date, Index: 1, Club: "Driver", Carry: 215.5, Offline: -8.25},
		{Player: "dupont", RawPlayer: "Dupont", Hand: domain.HandRight, Date: date, Index: 2, Club: "Driver", Carry: 208.0, Offline: 4.5},
	})
	require.NoError(t, exporter.NewBaseWorkbookWriter(testLogger()).Write(context.Background(), snap, path))

	store := dataprocessing.NewBaseStore(testLogger())
	err := restoreBase(context.Background(), testLogger(), store, path)
	require.NoError(t, err)

	restored := store.Snapshot()
	assert.Equal(t, 2, restored.Len())
	assert.Equal(t, []string{"dupont"}, restored.Players())
}

func TestRestoreBaseCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), exporter.BaseWorkbookName)
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0644))

	store := dataprocessing.NewBaseStore(testLogger())
	err := restoreBase(context.Background(), testLogger(), store, path)
	assert.Error(t, err)
	assert.Equal(t, 0, store.Snapshot().Len())
}

func TestIngestUploads(t *testing.T) {
	tmpDir := t.TempDir()

	valid := filepath.Join(tmpDir, "seance_a.csv")
	require.NoError(t, os.WriteFile(valid, []byte(
		"Date,Player,Club,Carry,Total,Offline\n"+
			"2024-06-05,dupont,Driver,215.5,230.1,-8.25\n"+
			"2024-06-05,dupont,Driver,210.0,224.0,12 R\n"), 0644))

	// No date column, so the whole file is rejected.
	broken := filepath.Join(tmpDir, "seance_b.csv")
	require.NoError(t, os.WriteFile(broken, []byte(
		"Player,Club,Carry\ndupont,Driver,215.5\n"), 0644))

	// One unparsable Carry row drops into the diagnostics.
	partial := filepath.Join(tmpDir, "seance_c.csv")
	require.NoError(t, os.WriteFile(partial, []byte(
		"Date,Player,Carry,Offline\n"+
			"2024-06-05,martin,198.0,3.0\n"+
			"2024-06-05,martin,oops,3.0\n"), 0644))

	logger, capture := testutil.Capture()
	validator := validation.NewFileValidator(logger)
	loader := dataprocessing.NewLoader(logger, nil)
	store := dataprocessing.NewBaseStore(logger)

	stats := ingestUploads(context.Background(), logger, validator, loader, store, nil, []string{valid, broken, partial})

	assert.Equal(t, 2, stats.filesLoaded)
	assert.Equal(t, 1, stats.filesFailed)
	assert.Equal(t, 2, stats.sessions)
	assert.Len(t, stats.diagnostics, 1)

	date := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	require.Len(t, stats.loaded, 2)
	assert.Equal(t, valid, stats.loaded[0].path)
	assert.Equal(t, []time.Time{date}, stats.loaded[0].dates)
	assert.Equal(t, partial, stats.loaded[1].path)
	assert.Equal(t, []time.Time{date}, stats.loaded[1].dates)

	snap := store.Snapshot()
	assert.Equal(t, 3, snap.Len())
	assert.ElementsMatch(t, []string{"dupont", "martin"}, snap.Players())

	assert.True(t, capture.Has(slog.LevelError, "Error loading upload"))
	assert.True(t, capture.Has(slog.LevelWarn, "Upload rows dropped"))
}

func TestIngestUploadsRejectsNonCSV(t *testing.T) {
	tmpDir := t.TempDir()
	empty := filepath.Join(tmpDir, "seance.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	logger, capture := testutil.Capture()
	validator := validation.NewFileValidator(logger)
	loader := dataprocessing.NewLoader(logger, nil)
	store := dataprocessing.NewBaseStore(logger)

	stats := ingestUploads(context.Background(), logger, validator, loader, store, nil, []string{empty})

	assert.Equal(t, 0, stats.filesLoaded)
	assert.Equal(t, 1, stats.filesFailed)
	assert.Equal(t, 0, store.Snapshot().Len())
	assert.True(t, capture.Has(slog.LevelError, "Error validating upload"))
}

func TestIngestUploadsEmpty(t *testing.T) {
	loader := dataprocessing.NewLoader(testLogger(), nil)
	store := dataprocessing.NewBaseStore(testLogger())

	stats := ingestUploads(context.Background(), testLogger(), validation.NewFileValidator(testLogger()), loader, store, nil, nil)

	assert.Equal(t, 0, stats.filesLoaded)
	assert.Equal(t, 0, stats.filesFailed)
	assert.Equal(t, 0, store.Snapshot().Len())
}

func TestArchiveRun(t *testing.T) {
	tmpDir := t.TempDir()
	upload := filepath.Join(tmpDir, "seance_a.csv")
	require.NoError(t, os.WriteFile(upload, []byte("Date,Player,Carry\n"), 0644))
	basePath := filepath.Join(tmpDir, "Base", exporter.BaseWorkbookName)
	require.NoError(t, os.MkdirAll(filepath.Dir(basePath), 0755))
	require.NoError(t, os.WriteFile(basePath, []byte("workbook"), 0644))

	date := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	other := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	archiveDir := filepath.Join(tmpDir, "Uploads")
	loaded := []ingestedUpload{{path: upload, dates: []time.Time{date, other}}}

	// Only the rendered date is archived; the other session stays put.
	archived := archiveRun(context.Background(), testLogger(), files.NewArchiver(testLogger(), archiveDir), loaded, []time.Time{date}, basePath)

	assert.Equal(t, 1, archived)
	assert.FileExists(t, filepath.Join(archiveDir, domain.DateDir(date), "seance_a.csv"))
	assert.NoDirExists(t, filepath.Join(archiveDir, domain.DateDir(other)))
	assert.FileExists(t, filepath.Join(tmpDir, "Base", "Base_Coaching_Golf_2024-06-05.xlsx"))
}

func TestArchiveRunNothingRendered(t *testing.T) {
	archived := archiveRun(context.Background(), testLogger(), files.NewArchiver(testLogger(), t.TempDir()), nil, nil, "")
	assert.Equal(t, 0, archived)
}
