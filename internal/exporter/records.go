package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golfpulse/internal/dataprocessing"
	"golfpulse/internal/infrastructure"
	"golfpulse/pkg/contracts/domain"
)

// RenderResult reports where one session's artifacts were filed.
type RenderResult struct {
	BaseStorePath      string              `json:"base_store_path,omitempty"`
	StudentReportPaths map[string][]string `json:"student_report_paths"`
	GroupReportPaths   []string            `json:"group_report_paths"`
}

// RecordWriter files assembled model records under the routing
// convention: student artifacts under Eleves/<alias>/<dd-mm-yyyy>/,
// group artifacts under Groupe/<dd-mm-yyyy>/ and the Base workbook
// under Base/.
type RecordWriter struct {
	logger  *slog.Logger
	base    *BaseWorkbookWriter
	metrics *infrastructure.BusinessMetrics
}

// NewRecordWriter creates a record writer. A nil logger falls back to
// slog.Default().
func NewRecordWriter(logger *slog.Logger) *RecordWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordWriter{
		logger: logger.With(slog.String("component", "record_writer")),
		base:   NewBaseWorkbookWriter(logger),
	}
}

// WithMetrics attaches export metrics recording and returns the writer
// for chaining.
func (w *RecordWriter) WithMetrics(m *infrastructure.BusinessMetrics) *RecordWriter {
	w.metrics = m
	return w
}

// Render writes one JSON artifact per model record for the session
// date, plus the Base workbook when a snapshot is given, and reports
// the written paths. Records from other session dates are skipped so a
// multi-date run can be rendered one session at a time.
func (w *RecordWriter) Render(ctx context.Context, snap *dataprocessing.BaseSnapshot, records []domain.ModelRecord, sessionDate time.Time, outDir string) (*RenderResult, error) {
	start := time.Now()
	result := &RenderResult{StudentReportPaths: make(map[string][]string)}

	if snap != nil {
		baseStart := time.Now()
		basePath := filepath.Join(outDir, "Base", BaseWorkbookName)
		if err := w.base.Write(ctx, snap, basePath); err != nil {
			return nil, fmt.Errorf("failed to write base workbook: %w", err)
		}
		result.BaseStorePath = basePath
		infrastructure.RecordExportMetrics(ctx, w.metrics, "base_workbook", 1, time.Since(baseStart))
	}

	day := domain.DateKey(sessionDate)
	written := 0
	for _, rec := range records {
		if domain.DateKey(rec.SessionDate) != day {
			continue
		}
		path, err := w.writeRecord(rec, outDir)
		if err != nil {
			return nil, err
		}
		if rec.Scope == domain.ScopeGroup {
			result.GroupReportPaths = append(result.GroupReportPaths, path)
		} else {
			result.StudentReportPaths[rec.Player] = append(result.StudentReportPaths[rec.Player], path)
		}
		written++
	}

	infrastructure.RecordExportMetrics(ctx, w.metrics, "model_record", int64(written), time.Since(start))
	w.logger.InfoContext(ctx, "session artifacts rendered",
		slog.String("session_date", day),
		slog.String("out_dir", outDir),
		slog.Int("records", written),
		slog.Int("students", len(result.StudentReportPaths)),
		slog.Int("group_reports", len(result.GroupReportPaths)),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}

func (w *RecordWriter) writeRecord(rec domain.ModelRecord, outDir string) (string, error) {
	dir := filepath.Join(outDir, filepath.FromSlash(rec.RouteDir()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, rec.ArtifactName()+".json")
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal record %s: %w", rec.ArtifactName(), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write record %s: %w", rec.ArtifactName(), err)
	}
	return path, nil
}
