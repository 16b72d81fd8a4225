// Package gapping implements the Model H2 gapping statistic and the
// Model H1 inter-session comparison. A session's carry distribution is
// banded by percentiles to discard mis-hits and monitor artifacts, and
// dispersion metrics are computed over the surviving "good shots".
package gapping

import (
	"fmt"
	"time"
)

// Frozen business constants. The [20, 95] carry band and the 20 good-shot
// floor balance trimming artifacts against preserving a skilled player's
// natural dispersion; they change only through a versioned rule change,
// via Config, never by editing call sites.
const (
	// DefaultLowerPercentile is the lower carry percentile of the
	// good-shot band.
	DefaultLowerPercentile = 20.0

	// DefaultUpperPercentile is the upper carry percentile of the
	// good-shot band.
	DefaultUpperPercentile = 95.0

	// DefaultMinGoodShots is the minimum in-band sample size below
	// which gapping is not statistically meaningful.
	DefaultMinGoodShots = 20
)

// Config carries the overridable gapping parameters.
type Config struct {
	LowerPercentile float64 `json:"lower_percentile" yaml:"lower_percentile" validate:"gte=0,lte=100"`
	UpperPercentile float64 `json:"upper_percentile" yaml:"upper_percentile" validate:"gte=0,lte=100"`
	MinGoodShots    int     `json:"min_good_shots" yaml:"min_good_shots" validate:"gte=1"`
}

// DefaultConfig returns the frozen rule set.
func DefaultConfig() Config {
	return Config{
		LowerPercentile: DefaultLowerPercentile,
		UpperPercentile: DefaultUpperPercentile,
		MinGoodShots:    DefaultMinGoodShots,
	}
}

// Validate checks band ordering and the sample floor.
func (c Config) Validate() error {
	if c.LowerPercentile < 0 || c.LowerPercentile > 100 {
		return ValidationError{Field: "LowerPercentile", Message: "must be within [0, 100]", Value: c.LowerPercentile}
	}
	if c.UpperPercentile < 0 || c.UpperPercentile > 100 {
		return ValidationError{Field: "UpperPercentile", Message: "must be within [0, 100]", Value: c.UpperPercentile}
	}
	if c.LowerPercentile >= c.UpperPercentile {
		return ValidationError{Field: "LowerPercentile", Message: "must be below UpperPercentile", Value: c.LowerPercentile}
	}
	if c.MinGoodShots < 1 {
		return ValidationError{Field: "MinGoodShots", Message: "must be at least 1", Value: c.MinGoodShots}
	}
	return nil
}

// Result is the Model H2 output for one (player, session): the good-shot
// band actually used, the size of the surviving subset, and the
// dispersion metrics computed over it. Side spin and the straight means
// skip shots whose monitor did not export the measure.
type Result struct {
	Player     string    `json:"player"`
	Date       time.Time `json:"date"`
	TotalShots int       `json:"total_shots"`
	GoodShots  int       `json:"good_shots"`

	// Band actually applied: configured percentile ranks and the
	// interpolated carry values they resolved to.
	LowerPercentile float64 `json:"lower_percentile"`
	UpperPercentile float64 `json:"upper_percentile"`
	CarryLowerBound float64 `json:"carry_lower_bound"`
	CarryUpperBound float64 `json:"carry_upper_bound"`

	CarryMean   float64 `json:"carry_mean"`
	CarryStdDev float64 `json:"carry_std_dev"`

	OfflineMean      float64 `json:"offline_mean"`
	OfflineStdDev    float64 `json:"offline_std_dev"`
	OfflineAbsMean   float64 `json:"offline_abs_mean"`
	OfflineAbsStdDev float64 `json:"offline_abs_std_dev"`

	BackSpinMean   float64 `json:"back_spin_mean"`
	SideSpinMean   float64 `json:"side_spin_mean"`
	VLAMean        float64 `json:"vla_mean"`
	PeakHeightMean float64 `json:"peak_height_mean"`
}

// BaselineStatus tells whether a comparison had a prior session to
// compare against. NoBaseline is a reportable state, not an error: a
// player's first session is valid.
type BaselineStatus string

const (
	BaselineOK   BaselineStatus = "ok"
	BaselineNone BaselineStatus = "none"
)

// Comparison is the Model H1 output: current − prior deltas for the
// tracked session metrics of one player.
type Comparison struct {
	Player      string         `json:"player"`
	CurrentDate time.Time      `json:"current_date"`
	PriorDate   time.Time      `json:"prior_date,omitempty"`
	Baseline    BaselineStatus `json:"baseline"`
	Reason      string         `json:"reason,omitempty"`

	DeltaCarryMean      float64 `json:"delta_carry_mean"`
	DeltaCarryStdDev    float64 `json:"delta_carry_std_dev"`
	DeltaOfflineMean    float64 `json:"delta_offline_mean"`
	DeltaOfflineAbsMean float64 `json:"delta_offline_abs_mean"`
	DeltaBackSpinMean   float64 `json:"delta_back_spin_mean"`
	DeltaSideSpinMean   float64 `json:"delta_side_spin_mean"`
	DeltaVLAMean        float64 `json:"delta_vla_mean"`
	DeltaPeakHeightMean float64 `json:"delta_peak_height_mean"`
}

// EmptySessionError signals a session with zero shots, fatal for that
// session only.
type EmptySessionError struct {
	Player string
	Date   time.Time
}

func (e *EmptySessionError) Error() string {
	if e.Player == "" {
		return "empty session: no shots"
	}
	return fmt.Sprintf("empty session for %s on %s", e.Player, e.Date.Format("2006-01-02"))
}

// InsufficientGoodShotsError signals an in-band subset below the
// configured floor. Fatal for H-series models only; callers may surface
// it as a reduced-confidence report instead of aborting.
type InsufficientGoodShotsError struct {
	Player string
	Date   time.Time
	Got    int
	Floor  int
}

func (e *InsufficientGoodShotsError) Error() string {
	return fmt.Sprintf("insufficient good shots for %s on %s: %d in band, floor %d",
		e.Player, e.Date.Format("2006-01-02"), e.Got, e.Floor)
}

// ValidationError describes an invalid gapping parameter.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}
