package exporter

import (
	"context"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"golfpulse/internal/dataprocessing"
	"golfpulse/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func workbookDate(day int) time.Time {
	return time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC)
}

func workbookShot(player string, date time.Time, idx int, carry, offline float64) domain.Shot {
	return domain.Shot{
		Player:     player,
		RawPlayer:  player,
		Hand:       domain.HandRight,
		Date:       date,
		Index:      idx,
		Club:       "Driver",
		Carry:      carry,
		Total:      carry + 15,
		Offline:    offline,
		ClubSpeed:  95.5,
		BallSpeed:  140.25,
		Smash:      1.47,
		BackSpin:   2600,
		SpinAxis:   2,
		SpinTotal:  2601.6,
		SpinLat:    90.75,
		HLA:        1.5,
		VLA:        12,
		PeakHeight: 28,
	}
}

func snapshotOf(t *testing.T, shots ...domain.Shot) *dataprocessing.BaseSnapshot {
	t.Helper()
	return dataprocessing.NewBaseStore(testLogger()).Merge(context.Background(), shots)
}

func TestBaseWorkbookRoundTrip(t *testing.T) {
	date := workbookDate(5)
	prior := workbookDate(1)

	full := workbookShot("dupont", date, 0, 215.5, -8.25)
	full.Extra = map[string]float64{"Desc Angle": 42.5}

	// Iron shot with every optional measure missing.
	sparse := domain.Shot{
		Player:     "dupont",
		Hand:       domain.HandRight,
		Date:       date,
		Index:      1,
		Club:       "7 Iron",
		Carry:      150,
		Offline:    3,
		Total:      math.NaN(),
		ClubSpeed:  math.NaN(),
		BallSpeed:  math.NaN(),
		Smash:      math.NaN(),
		BackSpin:   math.NaN(),
		SpinAxis:   math.NaN(),
		SpinTotal:  math.NaN(),
		SpinLat:    math.NaN(),
		HLA:        math.NaN(),
		VLA:        math.NaN(),
		PeakHeight: math.NaN(),
	}

	other := workbookShot("martin", prior, 0, 180, 12)
	other.Hand = domain.HandLeft

	snap := snapshotOf(t, full, sparse, other)
	path := filepath.Join(t.TempDir(), "Base", BaseWorkbookName)

	writer := NewBaseWorkbookWriter(testLogger())
	require.NoError(t, writer.Write(context.Background(), snap, path))

	shots, err := ReadBaseWorkbook(path)
	require.NoError(t, err)
	require.Len(t, shots, 3)

	restored := dataprocessing.NewBaseStore(testLogger()).Merge(context.Background(), shots)
	assert.Equal(t, snap.Len(), restored.Len())
	assert.Equal(t, snap.Players(), restored.Players())

	for i, want := range snap.AllShots() {
		got := restored.AllShots()[i]
		assert.Equal(t, want.Key(), got.Key(), "shot %d key", i)
		assert.Equal(t, want.Club, got.Club, "shot %d club", i)
		assert.Equal(t, want.Hand, got.Hand, "shot %d hand", i)
	}

	// Finite measures survive with full precision, missing ones stay NaN.
	got := restored.ShotsFor("dupont", date)
	require.Len(t, got, 2)
	assert.Equal(t, 215.5, got[0].Carry)
	assert.Equal(t, -8.25, got[0].Offline)
	assert.Equal(t, 1.47, got[0].Smash)
	assert.Equal(t, 90.75, got[0].SpinLat)
	assert.Equal(t, map[string]float64{"Desc Angle": 42.5}, got[0].Extra)
	assert.True(t, math.IsNaN(got[1].Total))
	assert.True(t, math.IsNaN(got[1].Smash))
	assert.Nil(t, got[1].Extra)

	// Summaries recompute identically on merge.
	wantSum, ok := snap.SummaryFor("martin", prior)
	require.True(t, ok)
	gotSum, ok := restored.SummaryFor("martin", prior)
	require.True(t, ok)
	assert.Equal(t, wantSum, gotSum)
}

func TestBaseWorkbookSheetLayout(t *testing.T) {
	shot := workbookShot("dupont", workbookDate(5), 0, 210, -5)
	shot.Extra = map[string]float64{"Desc Angle": 40, "Curve Dist": 3.2}

	snap := snapshotOf(t, shot)
	path := filepath.Join(t.TempDir(), BaseWorkbookName)
	require.NoError(t, NewBaseWorkbookWriter(testLogger()).Write(context.Background(), snap, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{SheetShots, SheetSessions}, f.GetSheetList())

	rows, err := f.GetRows(SheetShots)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	wantHeader := append(append([]string{}, shotColumns...), "Curve Dist", "Desc Angle")
	assert.Equal(t, wantHeader, rows[0])

	sessions, err := f.GetRows(SheetSessions)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, sessionColumns, sessions[0])
	assert.Equal(t, "dupont", sessions[1][0])
	assert.Equal(t, "2024-06-05", sessions[1][2])
}

func TestBaseWorkbookWriteNilSnapshot(t *testing.T) {
	writer := NewBaseWorkbookWriter(testLogger())
	err := writer.Write(context.Background(), nil, filepath.Join(t.TempDir(), "base.xlsx"))
	assert.Error(t, err)
}

func TestReadBaseWorkbookMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), SheetShots))
	header := []interface{}{"Player", "Index", "Carry", "Offline"} // no Date
	require.NoError(t, f.SetSheetRow(SheetShots, "A1", &header))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := ReadBaseWorkbook(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Date")
}

func TestReadBaseWorkbookRejectsCorruptRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), SheetShots))
	header := []interface{}{"Player", "Date", "Index", "Carry", "Offline"}
	require.NoError(t, f.SetSheetRow(SheetShots, "A1", &header))
	row := []interface{}{"dupont", "not-a-date", 0, 200.0, 1.0}
	require.NoError(t, f.SetSheetRow(SheetShots, "A2", &row))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := ReadBaseWorkbook(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestReadBaseWorkbookMissingFile(t *testing.T) {
	_, err := ReadBaseWorkbook(filepath.Join(t.TempDir(), "absent.xlsx"))
	assert.Error(t, err)
}
