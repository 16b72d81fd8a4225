package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"golfpulse/internal/dataprocessing"
	"golfpulse/pkg/contracts/domain"
)

// Base workbook layout. The Shots sheet is the persisted Base store;
// the Sessions sheet mirrors the per-session summaries for coaches who
// open the workbook directly.
const (
	BaseWorkbookName = "Base_Coaching_Golf.xlsx"
	SheetShots       = "Shots"
	SheetSessions    = "Sessions"
)

// shotColumns is the canonical Shots sheet column order. Extra measure
// columns, sorted by name, follow these.
var shotColumns = []string{
	"Player", "RawPlayer", "Hand", "Date", "Index", "Club",
	"Carry", "Total", "Offline",
	"ClubSpeed", "BallSpeed", "Smash",
	"BackSpin", "SpinAxis", "SpinTotal", "SpinLat",
	"HLA", "VLA", "PeakHeight",
}

var sessionColumns = []string{
	"Player", "Hand", "Date", "TotalShots", "ClubsPlayed",
	"DriveCount", "DriverFairwayCount", "GoodDriveCount", "AvgDriveCarry",
}

// BaseWorkbookWriter persists a Base snapshot as an xlsx workbook.
type BaseWorkbookWriter struct {
	logger *slog.Logger
}

// NewBaseWorkbookWriter creates a workbook writer. A nil logger falls
// back to slog.Default().
func NewBaseWorkbookWriter(logger *slog.Logger) *BaseWorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseWorkbookWriter{
		logger: logger.With(slog.String("component", "base_workbook")),
	}
}

// Write renders the snapshot into an xlsx workbook at path, creating
// parent directories as needed. The Shots sheet carries every stored
// shot in merged order, the Sessions sheet the per-session summaries.
func (w *BaseWorkbookWriter) Write(ctx context.Context, snap *dataprocessing.BaseSnapshot, path string) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}

	shots := snap.AllShots()
	extras := extraColumns(shots)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetShots); err != nil {
		return fmt.Errorf("failed to name sheet %s: %w", SheetShots, err)
	}
	if _, err := f.NewSheet(SheetSessions); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SheetSessions, err)
	}

	if err := writeShotRows(f, shots, extras); err != nil {
		return err
	}
	if err := writeSessionRows(f, snap.Summaries()); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.InfoContext(ctx, "base workbook written",
		slog.String("path", path),
		slog.Int("shots", len(shots)),
		slog.Int("sessions", len(snap.Summaries())),
		slog.Int("extra_columns", len(extras)),
		slog.Int("version", snap.Version()))
	return nil
}

func writeShotRows(f *excelize.File, shots []domain.Shot, extras []string) error {
	header := append(append([]string{}, shotColumns...), extras...)
	if err := setRow(f, SheetShots, 1, stringCells(header)); err != nil {
		return err
	}
	for i, shot := range shots {
		cells := []interface{}{
			shot.Player, shot.RawPlayer, string(shot.Hand),
			domain.DateKey(shot.Date), shot.Index, shot.Club,
		}
		for _, v := range measureValues(shot) {
			cells = append(cells, measureCell(v))
		}
		for _, name := range extras {
			v, ok := shot.Extra[name]
			if !ok {
				v = math.NaN()
			}
			cells = append(cells, measureCell(v))
		}
		if err := setRow(f, SheetShots, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeSessionRows(f *excelize.File, summaries []domain.SessionSummary) error {
	if err := setRow(f, SheetSessions, 1, stringCells(sessionColumns)); err != nil {
		return err
	}
	for i, sum := range summaries {
		cells := []interface{}{
			sum.Player, string(sum.Hand), domain.DateKey(sum.Date),
			sum.TotalShots, sum.ClubsPlayed,
			sum.DriveCount, sum.DriverFairwayCount, sum.GoodDriveCount,
			sum.AvgDriveCarry,
		}
		if err := setRow(f, SheetSessions, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

// measureCell leaves missing measures as empty cells, the way the
// original coaching workbook renders them.
func measureCell(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func stringCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// extraColumns returns the union of Extra measure names across shots,
// sorted so the workbook layout is stable run to run.
func extraColumns(shots []domain.Shot) []string {
	seen := make(map[string]struct{})
	for _, shot := range shots {
		for name := range shot.Extra {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ReadBaseWorkbook loads the Shots sheet of a persisted Base workbook.
// Merging the returned shots into an empty store reproduces the
// persisted Base; session summaries are recomputed on merge.
func ReadBaseWorkbook(path string) ([]domain.Shot, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetShots)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", SheetShots, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		name = strings.TrimSpace(name)
		header[i] = name
		index[name] = i
	}
	for _, name := range []string{"Player", "Date", "Index", "Carry", "Offline"} {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("sheet %s missing column %q", SheetShots, name)
		}
	}

	canonical := make(map[string]struct{}, len(shotColumns))
	for _, name := range shotColumns {
		canonical[name] = struct{}{}
	}

	var shots []domain.Shot
	for rowNum, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		shot, err := shotFromRow(row, header, index, canonical)
		if err != nil {
			return nil, fmt.Errorf("sheet %s row %d: %w", SheetShots, rowNum+2, err)
		}
		shots = append(shots, shot)
	}
	return shots, nil
}

func shotFromRow(row []string, header []string, index map[string]int, canonical map[string]struct{}) (domain.Shot, error) {
	cell := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := time.Parse("2006-01-02", cell("Date"))
	if err != nil {
		return domain.Shot{}, fmt.Errorf("invalid Date %q", cell("Date"))
	}
	idx, err := strconv.Atoi(cell("Index"))
	if err != nil {
		return domain.Shot{}, fmt.Errorf("invalid Index %q", cell("Index"))
	}

	shot := domain.Shot{
		Player:    cell("Player"),
		RawPlayer: cell("RawPlayer"),
		Hand:      domain.Hand(cell("Hand")),
		Date:      date,
		Index:     idx,
		Club:      cell("Club"),
	}
	if shot.Player == "" {
		return domain.Shot{}, fmt.Errorf("empty Player")
	}

	for name, field := range measureFields(&shot) {
		*field = readMeasure(cell(name))
	}
	if math.IsNaN(shot.Carry) || math.IsNaN(shot.Offline) {
		return domain.Shot{}, fmt.Errorf("missing Carry or Offline")
	}

	for i, name := range header {
		if name == "" || i >= len(row) {
			continue
		}
		if _, known := canonical[name]; known {
			continue
		}
		if v, err := parseMeasure(row[i]); err == nil && !math.IsNaN(v) {
			if shot.Extra == nil {
				shot.Extra = make(map[string]float64)
			}
			shot.Extra[name] = v
		}
	}
	return shot, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
