package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golfpulse/internal/roster"
	"golfpulse/pkg/contracts/domain"
)

// Session is one player's shots on one date, as extracted from an upload.
// Shots keep their upload order; Index is the position within the session.
type Session struct {
	Player    string
	RawPlayer string
	Hand      domain.Hand
	Date      time.Time
	Shots     []domain.Shot
}

// Key returns the (player, date) key of the session.
func (s Session) Key() domain.SessionKey {
	return domain.SessionKey{Player: s.Player, Date: domain.DateKey(s.Date)}
}

// RowDiagnostic records one dropped upload row. Dropped rows never abort
// a load; they are collected so the caller can surface them.
type RowDiagnostic struct {
	Source string `json:"source"`
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason"`
}

func (d RowDiagnostic) String() string {
	return fmt.Sprintf("%s row %d: %s %q: %s", d.Source, d.Row, d.Field, d.Value, d.Reason)
}

// MissingDateColumnError reports an upload without the required date
// column. There is no fallback to the filename or the upload time.
type MissingDateColumnError struct {
	Source string
}

func (e *MissingDateColumnError) Error() string {
	return fmt.Sprintf("upload %s has no date column", e.Source)
}

// Smash factors outside [0, 1.5] are physically impossible and read as
// sensor glitches.
const smashCeiling = 1.5

// dateLayouts are the accepted spellings of the date column, ISO first.
// Ambiguous numeric dates are read day-first.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04",
}

// Loader parses launch-monitor CSV uploads into Sessions.
type Loader struct {
	logger *slog.Logger
	roster *roster.Table
}

// NewLoader creates a session loader. A nil roster resolves every
// non-empty name to itself.
func NewLoader(logger *slog.Logger, table *roster.Table) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if table == nil {
		table = roster.NewTable(nil)
	}
	return &Loader{
		logger: logger.With(slog.String("component", "session_loader")),
		roster: table,
	}
}

// LoadFile reads one CSV upload from disk. The base filename doubles as
// the player-name fallback for exports without a player column.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]Session, []RowDiagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return l.Load(ctx, f, filepath.Base(path))
}

// Load parses one CSV upload into sessions grouped by (player, date).
// A missing date column is fatal for the upload; a row that fails
// coercion on Carry, Offline, the date or the player identity is dropped
// into the returned diagnostics instead. Sessions come back in first-seen
// order with shots in upload order.
func (l *Loader) Load(ctx context.Context, r io.Reader, source string) ([]Session, []RowDiagnostic, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read upload %s: %w", source, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("upload %s is empty", source)
	}

	layout := mapColumns(records[0])
	if layout.date < 0 {
		return nil, nil, &MissingDateColumnError{Source: source}
	}
	rows := records[1:]

	fallback := l.detectPlayer(rows, layout, source)

	l.logger.DebugContext(ctx, "upload columns mapped",
		slog.String("source", source),
		slog.Int("known_columns", len(layout.fields)),
		slog.Int("extra_columns", len(layout.extras)),
		slog.Bool("has_player_column", layout.player >= 0),
		slog.String("fallback_player", fallback))

	var (
		diags    []RowDiagnostic
		order    []domain.SessionKey
		sessions = make(map[domain.SessionKey]*Session)
	)

	smashTracker := newSmashTracker(layout)

	for i, row := range rows {
		rowNum := i + 2 // 1-based, header is row 1
		if blankRow(row) {
			continue
		}

		date, ok := parseSessionDate(cell(row, layout.date))
		if !ok {
			diags = append(diags, RowDiagnostic{
				Source: source, Row: rowNum, Field: colDate,
				Value: cell(row, layout.date), Reason: "not a recognized date",
			})
			continue
		}

		raw := cell(row, layout.player)
		if raw == "" {
			raw = fallback
		}
		player, err := l.roster.Resolve(raw)
		if err != nil {
			diags = append(diags, RowDiagnostic{
				Source: source, Row: rowNum, Field: colPlayer,
				Value: raw, Reason: err.Error(),
			})
			continue
		}

		carry := parseNumber(cell(row, layout.field(colCarry)))
		if !isFinite(carry) {
			diags = append(diags, RowDiagnostic{
				Source: source, Row: rowNum, Field: colCarry,
				Value: cell(row, layout.field(colCarry)), Reason: "carry distance missing or not numeric",
			})
			continue
		}
		offline := parseSigned(cell(row, layout.field(colOffline)))
		if !isFinite(offline) {
			diags = append(diags, RowDiagnostic{
				Source: source, Row: rowNum, Field: colOffline,
				Value: cell(row, layout.field(colOffline)), Reason: "offline distance missing or not numeric",
			})
			continue
		}

		shot := domain.Shot{
			Player:     player,
			RawPlayer:  raw,
			Hand:       l.roster.Hand(raw),
			Date:       date,
			Club:       cell(row, layout.club),
			Carry:      carry,
			Total:      parseNumber(cell(row, layout.field(colTotal))),
			Offline:    offline,
			ClubSpeed:  parseNumber(cell(row, layout.field(colClubSpeed))),
			BallSpeed:  parseNumber(cell(row, layout.field(colBallSpeed))),
			Smash:      parseNumber(cell(row, layout.field(colSmash))),
			BackSpin:   parseNumber(cell(row, layout.field(colBackSpin))),
			SpinAxis:   parseSigned(cell(row, layout.field(colSpinAxis))),
			HLA:        parseSigned(cell(row, layout.field(colHLA))),
			VLA:        parseSigned(cell(row, layout.field(colVLA))),
			PeakHeight: parseNumber(cell(row, layout.field(colPeakHeight))),
		}
		shot.SpinTotal, shot.SpinLat = spinComponents(shot.BackSpin, shot.SpinAxis)
		shot.Extra = extraMeasures(row, layout)
		smashTracker.observe(shot.Smash)

		key := shot.SessionKey()
		sess, exists := sessions[key]
		if !exists {
			sess = &Session{Player: player, RawPlayer: raw, Hand: shot.Hand, Date: date}
			sessions[key] = sess
			order = append(order, key)
		}
		shot.Index = len(sess.Shots)
		sess.Shots = append(sess.Shots, shot)
	}

	out := make([]Session, 0, len(order))
	for _, key := range order {
		sess := sessions[key]
		smashTracker.backfill(sess.Shots)
		out = append(out, *sess)
	}

	l.logger.InfoContext(ctx, "upload loaded",
		slog.String("source", source),
		slog.Int("rows", len(rows)),
		slog.Int("sessions", len(out)),
		slog.Int("skipped_rows", len(diags)))
	if len(diags) > 0 {
		l.logger.WarnContext(ctx, "upload rows skipped",
			slog.String("source", source),
			slog.Int("count", len(diags)))
	}

	return out, diags, nil
}

// detectPlayer finds the upload-wide player name used for rows without
// one: the first non-empty value in the player column, else the name
// embedded in the filename ("DupontShots_07-05.csv" is Dupont's).
func (l *Loader) detectPlayer(rows [][]string, layout columnLayout, source string) string {
	if layout.player >= 0 {
		for _, row := range rows {
			if v := cell(row, layout.player); v != "" && !strings.EqualFold(v, "nan") {
				return v
			}
		}
	}
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "." {
		return ""
	}
	if i := strings.Index(base, "Shots"); i >= 0 {
		return base[:i]
	}
	return base
}

// parseSessionDate reads a date cell, dropping any time-of-day part.
func parseSessionDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// spinComponents derives total and lateral spin from back spin and spin
// axis. SpinTotal = BackSpin / cos(axis), SpinLat = SpinTotal * sin(axis).
// Either input missing leaves both NaN.
func spinComponents(backSpin, axisDeg float64) (total, lat float64) {
	rad := axisDeg * math.Pi / 180
	cos := math.Cos(rad)
	if cos == 0 {
		return math.NaN(), math.NaN()
	}
	total = backSpin / cos
	return total, total * math.Sin(rad)
}

// extraMeasures collects unmapped numeric columns so unknown measures
// survive the import. Text extras are dropped.
func extraMeasures(row []string, layout columnLayout) map[string]float64 {
	var extra map[string]float64
	for name, idx := range layout.extras {
		v := parseNumber(cell(row, idx))
		if math.IsNaN(v) {
			continue
		}
		if extra == nil {
			extra = make(map[string]float64, len(layout.extras))
		}
		extra[name] = v
	}
	return extra
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// smashTracker implements the column-level smash fallback: when an upload
// has no Smash column, or the column is entirely empty, Smash is derived
// per row as BallSpeed/ClubSpeed clamped to [0, smashCeiling].
type smashTracker struct {
	columnPresent bool
	sawValue      bool
}

func newSmashTracker(layout columnLayout) *smashTracker {
	return &smashTracker{columnPresent: layout.field(colSmash) >= 0}
}

func (t *smashTracker) observe(smash float64) {
	if isFinite(smash) {
		t.sawValue = true
	}
}

func (t *smashTracker) backfill(shots []domain.Shot) {
	if t.columnPresent && t.sawValue {
		return
	}
	for i := range shots {
		shots[i].Smash = fallbackSmash(shots[i].BallSpeed, shots[i].ClubSpeed)
	}
}

func fallbackSmash(ballSpeed, clubSpeed float64) float64 {
	ratio := ballSpeed / clubSpeed
	if !isFinite(ratio) {
		return math.NaN()
	}
	return math.Min(math.Max(ratio, 0), smashCeiling)
}
