package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golfpulse/internal/config"
	"golfpulse/internal/dataprocessing"
	"golfpulse/internal/exporter"
	"golfpulse/internal/files"
	"golfpulse/internal/infrastructure"
	"golfpulse/internal/models"
	"golfpulse/internal/roster"
	"golfpulse/internal/validation"
	"golfpulse/pkg/contracts/domain"
)

// runOptions carries the parsed command line.
type runOptions struct {
	configPath  string
	uploadsDir  string
	outputDir   string
	sessionDate string
	players     []string
	shotsCSV    bool
	trace       bool
	metricsAddr string
}

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (defaults to golfpulse.yaml lookup)")
	inDir := flag.String("in", "", "input directory for launch monitor CSV uploads (overrides config)")
	outDir := flag.String("out", "", "output directory for the report tree (overrides config)")
	sessionDate := flag.String("date", "", "restrict the run to one session date (YYYY-MM-DD)")
	players := flag.String("players", "", "comma-separated player aliases to restrict the run to")
	shotsCSV := flag.Bool("shots-csv", false, "also export the merged shot table as CSV")
	trace := flag.Bool("trace", false, "emit OpenTelemetry spans to stdout")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address for the duration of the run")
	flag.Parse()

	opts := runOptions{
		configPath:  *configPath,
		uploadsDir:  *inDir,
		outputDir:   *outDir,
		sessionDate: *sessionDate,
		players:     splitList(*players),
		shotsCSV:    *shotsCSV,
		trace:       *trace,
		metricsAddr: *metricsAddr,
	}
	if err := run(opts); err != nil {
		slog.Error("Report run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(opts runOptions) error {
	started := time.Now()

	var sessionDate time.Time
	if opts.sessionDate != "" {
		parsed, err := time.Parse("2006-01-02", opts.sessionDate)
		if err != nil {
			return fmt.Errorf("invalid -date %q: expected YYYY-MM-DD", opts.sessionDate)
		}
		sessionDate = parsed
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.uploadsDir != "" {
		cfg.Export.UploadsDir = opts.uploadsDir
	}
	if opts.outputDir != "" {
		cfg.Export.OutputDir = opts.outputDir
	}
	if opts.shotsCSV {
		cfg.Export.ShotsCSV = true
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	paths := config.NewPaths(cfg.Export)
	validator := validation.NewFileValidator(logger)
	if opts.uploadsDir != "" {
		// An explicit -in must point at an existing inbox; a typo should
		// not silently become a fresh empty directory.
		if err := validator.ValidateUploadsInbox(paths.UploadsDir); err != nil {
			return err
		}
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("creating report directories: %w", err)
	}
	if err := validator.ValidateReportTree(paths.OutputDir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureTraceID(ctx)

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.EnableTracing = opts.trace
	if !opts.trace {
		otelCfg.TraceExporter = "none"
	}
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return fmt.Errorf("initializing observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("OpenTelemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("creating business metrics: %w", err)
	}
	if opts.metricsAddr != "" {
		stopMetrics := serveMetrics(opts.metricsAddr, providers, logger)
		defer stopMetrics()
	}
	if runtimeMetrics, err := infrastructure.StartRuntimeMetrics(providers.Meter); err == nil {
		defer runtimeMetrics.Stop()
	} else {
		logger.Warn("Runtime metrics unavailable", slog.String("error", err.Error()))
	}

	logger.InfoContext(ctx, "Starting golf report run",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("uploads_dir", paths.UploadsDir),
		slog.String("output_dir", paths.OutputDir),
		slog.String("roster", cfg.Roster.Path),
		slog.Bool("shots_csv", cfg.Export.ShotsCSV))

	table, err := roster.LoadTable(cfg.Roster.Path)
	if err != nil {
		return fmt.Errorf("loading roster: %w", err)
	}
	logger.InfoContext(ctx, "Roster loaded",
		slog.String("path", cfg.Roster.Path),
		slog.Int("variants", table.Len()))

	store := dataprocessing.NewBaseStore(logger)
	basePath := filepath.Join(paths.BaseDir, exporter.BaseWorkbookName)
	if err := restoreBase(ctx, logger, store, basePath); err != nil {
		return err
	}

	uploads, err := paths.UploadCSVs()
	if err != nil {
		return fmt.Errorf("discovering uploads: %w", err)
	}
	logger.InfoContext(ctx, "Upload files discovered", slog.Int("count", len(uploads)))
	fmt.Printf("Found %d upload files\n", len(uploads))

	loader := dataprocessing.NewLoader(logger, table)
	ingest := ingestUploads(ctx, logger, validator, loader, store, metrics, uploads)

	snap := store.Snapshot()
	if snap.Len() == 0 {
		logger.WarnContext(ctx, "No shots available, nothing to assemble",
			slog.String("uploads_dir", paths.UploadsDir),
			slog.String("base_workbook", basePath))
		fmt.Println("Nothing to process")
		return nil
	}

	req := models.RunRequest{
		Players:     opts.players,
		Concurrency: cfg.Run.Concurrency,
		Diagnostics: ingest.diagnostics,
	}
	if !sessionDate.IsZero() {
		req.SessionDates = []time.Time{sessionDate}
	}

	tracer, err := models.NewRunTracer(providers)
	if err != nil {
		return fmt.Errorf("creating run tracer: %w", err)
	}
	assembler := models.NewAssembler(logger, models.AssemblerConfig{
		Gapping:     cfg.Gapping.Engine(),
		Concurrency: cfg.Run.Concurrency,
	}).WithTracer(tracer)

	result, err := assembler.Run(ctx, snap, req)
	if err != nil {
		return fmt.Errorf("assembling models: %w", err)
	}

	writer := exporter.NewRecordWriter(logger).WithMetrics(metrics)
	studentReports := 0
	groupReports := 0
	baseStorePath := ""
	for i, date := range result.SessionDates {
		// The workbook covers every session, so it is written once on
		// the first date rather than per date.
		var renderSnap *dataprocessing.BaseSnapshot
		if i == 0 {
			renderSnap = snap
		}
		rendered, err := writer.Render(ctx, renderSnap, result.Records, date, paths.OutputDir)
		if err != nil {
			return fmt.Errorf("rendering session %s: %w", domain.DateKey(date), err)
		}
		if rendered.BaseStorePath != "" {
			baseStorePath = rendered.BaseStorePath
		}
		for _, reports := range rendered.StudentReportPaths {
			studentReports += len(reports)
		}
		groupReports += len(rendered.GroupReportPaths)
		fmt.Printf("Rendered session %d of %d: %s\n", i+1, len(result.SessionDates), domain.DateKey(date))
	}

	if cfg.Export.ShotsCSV {
		csvPath := filepath.Join(paths.BaseDir, strings.TrimSuffix(exporter.BaseWorkbookName, ".xlsx")+".csv")
		if err := exporter.NewCSVWriter(logger).WriteShotsCSV(snap.AllShots(), csvPath); err != nil {
			logger.ErrorContext(ctx, "Error writing shots CSV",
				slog.String("path", csvPath),
				slog.String("error", err.Error()))
		} else {
			logger.InfoContext(ctx, "Shots CSV written", slog.String("path", csvPath))
		}
	}

	archived := archiveRun(ctx, logger, files.NewArchiver(logger, paths.ArchiveDir), ingest.loaded, result.SessionDates, baseStorePath)

	logger.InfoContext(ctx, "Report run complete",
		slog.String("run_id", result.RunID),
		slog.Int("uploads_loaded", ingest.filesLoaded),
		slog.Int("uploads_failed", ingest.filesFailed),
		slog.Int("sessions_merged", ingest.sessions),
		slog.Int("rows_dropped", len(ingest.diagnostics)),
		slog.Int("session_dates", len(result.SessionDates)),
		slog.Int("players", result.PlayerCount),
		slog.Int("records", len(result.Records)),
		slog.Int("degraded", len(result.DegradedRecords())),
		slog.Int("student_reports", studentReports),
		slog.Int("group_reports", groupReports),
		slog.Int("uploads_archived", archived),
		slog.String("base_workbook", baseStorePath),
		slog.Duration("duration", time.Since(started)))
	fmt.Printf("Processing complete: %d records for %d players across %d sessions\n",
		len(result.Records), result.PlayerCount, len(result.SessionDates))
	return nil
}

// loadConfig resolves the run configuration. An explicit -config path
// must load; the default lookup falls back to built-in defaults so the
// binary runs without any config file.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFrom(path)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		return config.Default(), nil
	}
	return cfg, nil
}

// restoreBase merges a previously written Base workbook into the store.
// A missing workbook is a fresh start; an unreadable one aborts the run
// rather than letting a later write clobber history.
func restoreBase(ctx context.Context, logger *slog.Logger, store *dataprocessing.BaseStore, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.InfoContext(ctx, "No prior base workbook, starting fresh", slog.String("path", path))
			return nil
		}
		return fmt.Errorf("checking base workbook %s: %w", path, err)
	}
	shots, err := exporter.ReadBaseWorkbook(path)
	if err != nil {
		return fmt.Errorf("restoring base workbook %s: %w", path, err)
	}
	snap := store.Merge(ctx, shots)
	logger.InfoContext(ctx, "Base workbook restored",
		slog.String("path", path),
		slog.Int("shots", snap.Len()),
		slog.Int("players", len(snap.Players())))
	return nil
}

// ingestedUpload remembers which session dates a loaded CSV contributed
// to, so the file can later be archived under each of them.
type ingestedUpload struct {
	path  string
	dates []time.Time
}

// ingestStats summarizes one pass over the uploads inbox.
type ingestStats struct {
	filesLoaded int
	filesFailed int
	sessions    int
	loaded      []ingestedUpload
	diagnostics []dataprocessing.RowDiagnostic
}

// ingestUploads loads every discovered CSV into the store. A file that
// fails validation or parsing is logged and skipped; the run continues
// with the rest.
func ingestUploads(ctx context.Context, logger *slog.Logger, validator *validation.FileValidator, loader *dataprocessing.Loader, store *dataprocessing.BaseStore, metrics *infrastructure.BusinessMetrics, uploads []string) ingestStats {
	var stats ingestStats
	for i, path := range uploads {
		name := filepath.Base(path)
		logger.InfoContext(ctx, "Loading upload",
			slog.Int("current", i+1),
			slog.Int("total", len(uploads)),
			slog.String("filename", name))
		fmt.Printf("Loading file %d of %d: %s\n", i+1, len(uploads), name)

		if err := validator.ValidateUploadFile(path); err != nil {
			stats.filesFailed++
			logger.ErrorContext(ctx, "Error validating upload",
				slog.String("filename", name),
				slog.String("error", err.Error()))
			continue
		}

		start := time.Now()
		sessions, diags, err := loader.LoadFile(ctx, path)
		rows := int64(0)
		for _, s := range sessions {
			rows += int64(len(s.Shots))
		}
		infrastructure.RecordIngestMetrics(ctx, metrics, name, rows, int64(len(diags)), time.Since(start), err)
		if err != nil {
			stats.filesFailed++
			logger.ErrorContext(ctx, "Error loading upload",
				slog.String("filename", name),
				slog.String("error", err.Error()))
			continue
		}
		if len(diags) > 0 {
			logger.WarnContext(ctx, "Upload rows dropped",
				slog.String("filename", name),
				slog.Int("dropped", len(diags)))
			for _, d := range diags {
				logger.DebugContext(ctx, "Dropped row", slog.String("detail", d.String()))
			}
		}
		stats.diagnostics = append(stats.diagnostics, diags...)

		before := store.Snapshot().Len()
		merged := store.MergeSessions(ctx, sessions)
		added := int64(merged.Len() - before)
		infrastructure.RecordBaseMerge(ctx, metrics, added, rows-added)
		stats.sessions += len(sessions)
		stats.filesLoaded++

		dates := make([]time.Time, 0, len(sessions))
		seen := make(map[string]struct{}, len(sessions))
		for _, s := range sessions {
			key := domain.DateKey(s.Date)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			dates = append(dates, s.Date)
		}
		stats.loaded = append(stats.loaded, ingestedUpload{path: path, dates: dates})
	}
	return stats
}

// archiveRun copies the run's inputs next to its outputs: each loaded
// upload is filed under the rendered session dates it contributed to,
// and the base workbook gets a dated copy alongside the live one.
// Archival failures are logged but never fail a run whose reports are
// already on disk. Returns the number of archived upload copies.
func archiveRun(ctx context.Context, logger *slog.Logger, archiver *files.Archiver, loaded []ingestedUpload, rendered []time.Time, basePath string) int {
	renderedDates := make(map[string]time.Time, len(rendered))
	for _, d := range rendered {
		renderedDates[domain.DateKey(d)] = d
	}
	byDate := make(map[string][]string)
	for _, up := range loaded {
		for _, d := range up.dates {
			key := domain.DateKey(d)
			if _, ok := renderedDates[key]; !ok {
				continue
			}
			byDate[key] = append(byDate[key], up.path)
		}
	}

	archived := 0
	for key, srcs := range byDate {
		copies, err := archiver.ArchiveUploads(ctx, renderedDates[key], srcs)
		archived += len(copies)
		if err != nil {
			logger.ErrorContext(ctx, "Error archiving uploads",
				slog.String("session_date", key),
				slog.String("error", err.Error()))
		}
	}

	if basePath != "" && len(rendered) > 0 {
		latest := rendered[len(rendered)-1]
		if _, err := archiver.ArchiveBase(ctx, basePath, latest); err != nil {
			logger.ErrorContext(ctx, "Error archiving base workbook",
				slog.String("path", basePath),
				slog.String("error", err.Error()))
		}
	}
	return archived
}

// serveMetrics exposes the Prometheus handler for the duration of the
// run so long batches can be scraped. The returned func stops the server.
func serveMetrics(addr string, providers *infrastructure.OTelProviders, logger *slog.Logger) func() {
	if providers.PrometheusHTTP == nil {
		logger.Warn("Metrics endpoint requested but metrics are disabled", slog.String("addr", addr))
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", providers.PrometheusHTTP)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("Metrics endpoint listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Metrics server stopped", slog.String("error", err.Error()))
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown failed", slog.String("error", err.Error()))
		}
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
