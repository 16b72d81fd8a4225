package gapping

import (
	"context"
	"log/slog"
	"math"

	"golfpulse/pkg/contracts/domain"
)

// Engine computes the Model H2 gapping statistic for one player session.
type Engine struct {
	logger *slog.Logger
	cfg    Config
}

// NewEngine creates a gapping engine. A nil logger falls back to
// slog.Default(); zero config fields are filled from the frozen defaults.
func NewEngine(logger *slog.Logger, cfg Config) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LowerPercentile == 0 && cfg.UpperPercentile == 0 {
		cfg.LowerPercentile = DefaultLowerPercentile
		cfg.UpperPercentile = DefaultUpperPercentile
	}
	if cfg.MinGoodShots <= 0 {
		cfg.MinGoodShots = DefaultMinGoodShots
	}
	return &Engine{
		logger: logger.With(slog.String("component", "gapping_engine")),
		cfg:    cfg,
	}
}

// Config returns the parameters the engine applies.
func (e *Engine) Config() Config {
	return e.cfg
}

// Gap computes the gapping result over one session's shots. All shots
// must belong to the same (player, date). Returns EmptySessionError for
// zero shots and InsufficientGoodShotsError when fewer than the floor
// fall inside the carry band.
func (e *Engine) Gap(ctx context.Context, shots []domain.Shot) (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(shots) == 0 {
		return nil, &EmptySessionError{}
	}

	player := shots[0].Player
	date := shots[0].Date

	carries := make([]float64, len(shots))
	for i, shot := range shots {
		carries[i] = shot.Carry
	}
	lowerBound := percentile(carries, e.cfg.LowerPercentile)
	upperBound := percentile(carries, e.cfg.UpperPercentile)

	// Closed interval: shots sitting exactly on a bound are good shots.
	good := make([]domain.Shot, 0, len(shots))
	for _, shot := range shots {
		if shot.Carry >= lowerBound && shot.Carry <= upperBound {
			good = append(good, shot)
		}
	}

	e.logger.DebugContext(ctx, "carry band computed",
		slog.String("player", player),
		slog.String("date", domain.DateKey(date)),
		slog.Float64("lower_bound", lowerBound),
		slog.Float64("upper_bound", upperBound),
		slog.Int("total_shots", len(shots)),
		slog.Int("good_shots", len(good)))

	if len(good) < e.cfg.MinGoodShots {
		e.logger.WarnContext(ctx, "insufficient good shots",
			slog.String("player", player),
			slog.String("date", domain.DateKey(date)),
			slog.Int("good_shots", len(good)),
			slog.Int("floor", e.cfg.MinGoodShots))
		return nil, &InsufficientGoodShotsError{
			Player: player,
			Date:   date,
			Got:    len(good),
			Floor:  e.cfg.MinGoodShots,
		}
	}

	goodCarries := make([]float64, len(good))
	offline := make([]float64, len(good))
	offlineAbs := make([]float64, len(good))
	backSpin := make([]float64, len(good))
	sideSpin := make([]float64, len(good))
	vla := make([]float64, len(good))
	peak := make([]float64, len(good))
	for i, shot := range good {
		goodCarries[i] = shot.Carry
		offline[i] = shot.Offline
		offlineAbs[i] = math.Abs(shot.Offline)
		backSpin[i] = shot.BackSpin
		sideSpin[i] = shot.SpinLat
		vla[i] = shot.VLA
		peak[i] = shot.PeakHeight
	}

	result := &Result{
		Player:     player,
		Date:       date,
		TotalShots: len(shots),
		GoodShots:  len(good),

		LowerPercentile: e.cfg.LowerPercentile,
		UpperPercentile: e.cfg.UpperPercentile,
		CarryLowerBound: lowerBound,
		CarryUpperBound: upperBound,

		CarryMean:   mean(goodCarries),
		CarryStdDev: sampleStdDev(goodCarries),

		OfflineMean:      mean(offline),
		OfflineStdDev:    sampleStdDev(offline),
		OfflineAbsMean:   mean(offlineAbs),
		OfflineAbsStdDev: sampleStdDev(offlineAbs),

		BackSpinMean:   presentMean(backSpin),
		SideSpinMean:   presentMean(sideSpin),
		VLAMean:        presentMean(vla),
		PeakHeightMean: presentMean(peak),
	}

	e.logger.InfoContext(ctx, "gapping computed",
		slog.String("player", player),
		slog.String("date", domain.DateKey(date)),
		slog.Int("good_shots", result.GoodShots),
		slog.Float64("carry_mean", result.CarryMean),
		slog.Float64("carry_std_dev", result.CarryStdDev))

	return result, nil
}
