package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golfpulse/internal/config"
)

// The process logger is built once per run and installed as the slog
// default, so library code that logs through slog.Default lands in the
// same sink as the pipeline's own records.
var (
	processLogger *slog.Logger
	loggerOnce    sync.Once

	logFileMu sync.Mutex
	logFile   *os.File
)

// InitializeLogger builds the process-wide JSON logger from the logging
// section of the run configuration. The first call wins; later calls
// return whatever the first one produced.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var initErr error
	loggerOnce.Do(func() {
		logger, err := buildLogger(cfg)
		if err != nil {
			initErr = err
			return
		}
		processLogger = logger
		slog.SetDefault(logger)
	})
	if initErr != nil {
		return nil, initErr
	}
	if processLogger == nil {
		return nil, fmt.Errorf("logger initialization previously failed")
	}
	return processLogger, nil
}

// LoggerFromContext returns the process logger with the context's trace
// id bound as a permanent attribute, for code paths that keep logging
// after the context itself is out of reach.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	base := processLogger
	if base == nil {
		base = slog.Default()
	}
	if id := traceIDFor(ctx); id != "" {
		return base.With(slog.String("trace_id", id))
	}
	return base
}

// traceIDFor resolves the trace id for a context. The run id attached
// by the entrypoint wins; inside an active span the span's trace id is
// used so log lines and exported traces line up.
func traceIDFor(ctx context.Context) string {
	if id := GetTraceID(ctx); id != "" {
		return id
	}
	return TraceIDFromContext(ctx)
}

// CloseLogFile closes the active log file, if any. Safe when logging to
// console only, and safe to call more than once.
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ResetLoggerForTesting clears the singleton so each test can install
// its own configuration. Not for use outside tests.
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	loggerOnce = sync.Once{}
	processLogger = nil
}

// buildLogger assembles the slog pipeline: a JSON handler on the
// configured sink, wrapped so every record carries the run's trace id.
func buildLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	sink, err := openSink(cfg)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(cfg.Level),
		AddSource: true,
	}
	return slog.New(&traceHandler{inner: slog.NewJSONHandler(sink, opts)}), nil
}

// openSink maps the configured output mode onto a writer. File-backed
// modes keep the handle in logFile so CloseLogFile can release it when
// the run finishes.
func openSink(cfg config.LoggingConfig) (io.Writer, error) {
	switch strings.ToLower(cfg.Output) {
	case "file":
		return openLogFile(cfg.FilePath)
	case "both":
		f, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		return io.MultiWriter(os.Stdout, f), nil
	default:
		return os.Stdout, nil
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	logFileMu.Lock()
	logFile = f
	logFileMu.Unlock()
	return f, nil
}

// parseLogLevel maps the textual level from configuration onto slog's
// leveling. Unknown values fall back to info instead of failing the run.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// traceHandler stamps the trace id travelling in the context onto every
// record it handles, so all lines from one report run can be filtered
// back together.
type traceHandler struct {
	inner slog.Handler
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *traceHandler) Handle(ctx context.Context, rec slog.Record) error {
	if id := traceIDFor(ctx); id != "" {
		rec.AddAttrs(slog.String("trace_id", id))
	}
	return h.inner.Handle(ctx, rec)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{inner: h.inner.WithGroup(name)}
}
