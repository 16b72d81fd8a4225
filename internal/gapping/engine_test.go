package gapping

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golfpulse/pkg/contracts/domain"
)

var sessionDate = time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

// carryShots builds a session from carry values only.
func carryShots(carries ...float64) []domain.Shot {
	shots := make([]domain.Shot, len(carries))
	for i, c := range carries {
		shots[i] = domain.Shot{
			Player:   "Dupont",
			Date:     sessionDate,
			Index:    i,
			Carry:    c,
			BackSpin: math.NaN(),
			SpinLat:  math.NaN(),
			VLA:      math.NaN(),
		}
	}
	return shots
}

// bandedSession builds 25 shots: 5 low outliers well under the band plus
// mid identical carries at 150 m.
func bandedSession(midCount int) []domain.Shot {
	carries := []float64{100, 101, 102, 103, 104}
	for i := 0; i < midCount; i++ {
		carries = append(carries, 150)
	}
	return carryShots(carries...)
}

func TestNewEngineDefaults(t *testing.T) {
	engine := NewEngine(nil, Config{})

	cfg := engine.Config()
	assert.Equal(t, DefaultLowerPercentile, cfg.LowerPercentile)
	assert.Equal(t, DefaultUpperPercentile, cfg.UpperPercentile)
	assert.Equal(t, DefaultMinGoodShots, cfg.MinGoodShots)
}

func TestGapEmptySession(t *testing.T) {
	engine := NewEngine(nil, Config{})

	_, err := engine.Gap(context.Background(), nil)
	require.Error(t, err)
	var empty *EmptySessionError
	assert.ErrorAs(t, err, &empty)
}

func TestGapInvalidConfig(t *testing.T) {
	engine := NewEngine(nil, Config{LowerPercentile: 95, UpperPercentile: 20, MinGoodShots: 20})

	_, err := engine.Gap(context.Background(), carryShots(150))
	require.Error(t, err)
	var invalid ValidationError
	assert.ErrorAs(t, err, &invalid)
}

func TestGapGoodShotFloorBoundary(t *testing.T) {
	engine := NewEngine(nil, Config{})

	t.Run("19 in band fails", func(t *testing.T) {
		// Five lows plus 19 mids plus one high outlier: Q20 = 140.8,
		// Q95 = 150, so exactly the 19 mids survive.
		shots := bandedSession(19)
		shots = append(shots, domain.Shot{Player: "Dupont", Date: sessionDate, Index: len(shots), Carry: 210})

		_, err := engine.Gap(context.Background(), shots)
		require.Error(t, err)
		var insufficient *InsufficientGoodShotsError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 19, insufficient.Got)
		assert.Equal(t, DefaultMinGoodShots, insufficient.Floor)
		assert.Equal(t, "Dupont", insufficient.Player)
	})

	t.Run("20 in band succeeds", func(t *testing.T) {
		// Five lows plus 20 mids: Q20 = 140.8, Q95 = 150, band keeps
		// exactly the 20 mids. The floor is a closed lower bound.
		result, err := engine.Gap(context.Background(), bandedSession(20))
		require.NoError(t, err)
		assert.Equal(t, 25, result.TotalShots)
		assert.Equal(t, 20, result.GoodShots)
		assert.InDelta(t, 140.8, result.CarryLowerBound, 1e-9)
		assert.InDelta(t, 150.0, result.CarryUpperBound, 1e-9)
		assert.InDelta(t, 150.0, result.CarryMean, 1e-9)
		assert.Equal(t, 0.0, result.CarryStdDev)
	})
}

func TestGapGoodShotSubsetIsClosedBand(t *testing.T) {
	engine := NewEngine(nil, Config{})

	// 30 distinct carries 100..129: Q20 = 105.8, Q95 = 127.55, so the
	// good subset is exactly the 22 carries 106..127.
	carries := make([]float64, 30)
	for i := range carries {
		carries[i] = 100 + float64(i)
	}
	result, err := engine.Gap(context.Background(), carryShots(carries...))
	require.NoError(t, err)

	assert.Equal(t, 22, result.GoodShots)
	assert.InDelta(t, 105.8, result.CarryLowerBound, 1e-9)
	assert.InDelta(t, 127.55, result.CarryUpperBound, 1e-9)
	assert.InDelta(t, 116.5, result.CarryMean, 1e-9)

	// 22 consecutive integers: squared deviations sum to 885.5, sample
	// variance 885.5/21. The population figure sqrt(885.5/22) must not
	// appear here.
	assert.InDelta(t, math.Sqrt(885.5/21.0), result.CarryStdDev, 1e-9)
	assert.Greater(t, math.Abs(result.CarryStdDev-math.Sqrt(885.5/22.0)), 1e-3)
}

func TestGapOfflineDispersion(t *testing.T) {
	engine := NewEngine(nil, Config{MinGoodShots: 4})

	// Identical carries keep every shot in band; offline alternates
	// ±10 m so direction cancels in the signed mean only.
	shots := carryShots(150, 150, 150, 150)
	shots[0].Offline = -10
	shots[1].Offline = 10
	shots[2].Offline = -10
	shots[3].Offline = 10

	result, err := engine.Gap(context.Background(), shots)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, result.OfflineMean, 1e-9, "signed mean cancels left/right")
	assert.InDelta(t, 10.0, result.OfflineAbsMean, 1e-9, "absolute mean keeps magnitude")
	// Signed sample deviation: mean 0, squared deviations 4×100.
	assert.InDelta(t, math.Sqrt(400.0/3.0), result.OfflineStdDev, 1e-9)
	assert.InDelta(t, 0.0, result.OfflineAbsStdDev, 1e-9)
}

func TestGapOfflineKeepsSign(t *testing.T) {
	engine := NewEngine(nil, Config{MinGoodShots: 3})

	// Consistent leftward miss: the signed mean must stay negative.
	shots := carryShots(150, 150, 150)
	shots[0].Offline = -5
	shots[1].Offline = -15
	shots[2].Offline = -10

	result, err := engine.Gap(context.Background(), shots)
	require.NoError(t, err)

	assert.InDelta(t, -10.0, result.OfflineMean, 1e-9)
	assert.InDelta(t, 10.0, result.OfflineAbsMean, 1e-9)
}

func TestGapSpinAndFlightMeans(t *testing.T) {
	engine := NewEngine(nil, Config{MinGoodShots: 4})

	shots := carryShots(150, 150, 150, 150)
	for i := range shots {
		shots[i].VLA = 14
		shots[i].PeakHeight = 28
	}
	// Only half the shots carry spin readings; means skip the missing.
	shots[0].BackSpin = 2800
	shots[1].BackSpin = 3200
	shots[0].SpinLat = -200
	shots[1].SpinLat = 600

	result, err := engine.Gap(context.Background(), shots)
	require.NoError(t, err)

	assert.InDelta(t, 3000.0, result.BackSpinMean, 1e-9)
	assert.InDelta(t, 200.0, result.SideSpinMean, 1e-9)
	assert.InDelta(t, 14.0, result.VLAMean, 1e-9)
	assert.InDelta(t, 28.0, result.PeakHeightMean, 1e-9)
}

func TestGapOverriddenFloor(t *testing.T) {
	engine := NewEngine(nil, Config{
		LowerPercentile: DefaultLowerPercentile,
		UpperPercentile: DefaultUpperPercentile,
		MinGoodShots:    25,
	})

	_, err := engine.Gap(context.Background(), bandedSession(20))
	var insufficient *InsufficientGoodShotsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 25, insufficient.Floor)
}
