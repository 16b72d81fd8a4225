package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"golfpulse/pkg/contracts/domain"
)

// CSVWriter provides CSV export for the shots table and ad-hoc reports.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // UTF-8 BOM so spreadsheets detect the encoding
}

// WriteCSV writes data to a CSV file with the given options, creating
// parent directories as needed.
func (w *CSVWriter) WriteCSV(path string, options WriteOptions) error {
	w.logger.Info("writing csv file",
		slog.String("path", path),
		slog.Int("record_count", len(options.Records)))

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// WriteShotsCSV writes the canonical shots table, one row per shot,
// with the same columns as the Base workbook Shots sheet. The BOM
// keeps accented player names readable when the file is opened in a
// spreadsheet.
func (w *CSVWriter) WriteShotsCSV(shots []domain.Shot, path string) error {
	extras := extraColumns(shots)
	headers := append(append([]string{}, shotColumns...), extras...)

	records := make([][]string, 0, len(shots))
	for _, shot := range shots {
		records = append(records, shotCSVRow(shot, extras))
	}

	return w.WriteCSV(path, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

func shotCSVRow(shot domain.Shot, extras []string) []string {
	row := []string{
		shot.Player, shot.RawPlayer, string(shot.Hand),
		domain.DateKey(shot.Date), strconv.Itoa(shot.Index), shot.Club,
	}
	for _, v := range measureValues(shot) {
		row = append(row, formatMeasure(v))
	}
	for _, name := range extras {
		v, ok := shot.Extra[name]
		if !ok {
			v = math.NaN()
		}
		row = append(row, formatMeasure(v))
	}
	return row
}
