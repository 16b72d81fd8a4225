package models

import (
	"time"

	"golfpulse/internal/dataprocessing"
	"golfpulse/internal/gapping"
	"golfpulse/pkg/contracts/domain"
)

// Assembly defaults
const (
	// DefaultConcurrency bounds the per-player fan-out of a run.
	DefaultConcurrency = 4

	// MaxConcurrency caps what a run request may ask for.
	MaxConcurrency = 64
)

// Curve tendency labels, as the coaching reports print them.
const (
	CurveNeutral = "neutre"
	CurveDraw    = "draw"
	CurveFade    = "fade"
	CurveUnknown = "n/a"
)

// Side labels for the dispersion bias.
const (
	SideRight  = "droite"
	SideLeft   = "gauche"
	SideCenter = "centré"
)

// Dispersion comfort levels for the course strategy block.
const (
	LevelComfortable = "confortable"
	LevelAverage     = "moyen"
	LevelRisky       = "risqué"
)

// RunRequest carries the parameters of one assembly run.
type RunRequest struct {
	// SessionDates selects the dates to assemble. Empty means every
	// date present in the snapshot.
	SessionDates []time.Time `json:"session_dates,omitempty"`

	// Players restricts the student scope. Empty means every player
	// with shots on the date.
	Players []string `json:"players,omitempty" validate:"omitempty,dive,alias"`

	// Concurrency bounds the per-player fan-out. Zero selects
	// DefaultConcurrency.
	Concurrency int `json:"concurrency,omitempty" validate:"gte=0,lte=64"`

	// Diagnostics are the row-level drop reports from loading, passed
	// through to the run result untouched.
	Diagnostics []dataprocessing.RowDiagnostic `json:"diagnostics,omitempty"`
}

// RunResult is the outcome of one assembly run.
type RunResult struct {
	RunID       string                         `json:"run_id"`
	Records     []domain.ModelRecord           `json:"records"`
	Errors      *ErrorList                     `json:"errors,omitempty"`
	Diagnostics []dataprocessing.RowDiagnostic `json:"diagnostics,omitempty"`
	StartedAt   time.Time                      `json:"started_at"`
	Duration    time.Duration                  `json:"duration"`

	// Dates actually assembled, ascending.
	SessionDates []time.Time `json:"session_dates"`

	// PlayerCount counts distinct players a student record was built for.
	PlayerCount int `json:"player_count"`
}

// DegradedRecords returns the records emitted with degraded status.
func (r *RunResult) DegradedRecords() []domain.ModelRecord {
	var out []domain.ModelRecord
	for _, rec := range r.Records {
		if rec.Status == domain.StatusDegraded {
			out = append(out, rec)
		}
	}
	return out
}

// RecordsFor returns the records of one model letter.
func (r *RunResult) RecordsFor(model domain.ModelLetter) []domain.ModelRecord {
	var out []domain.ModelRecord
	for _, rec := range r.Records {
		if rec.Model == model {
			out = append(out, rec)
		}
	}
	return out
}

// Ellipse is a covariance confidence ellipse over a 2D scatter: center,
// full axis lengths, major-axis angle in degrees, coverage level.
type Ellipse struct {
	CenterX  float64 `json:"center_x"`
	CenterY  float64 `json:"center_y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	AngleDeg float64 `json:"angle_deg"`
	Level    float64 `json:"level"`
}

// DriverShotPoint is one driver shot in a scatter series. Optional
// measures are nil when the export lacked the column.
type DriverShotPoint struct {
	Index    int      `json:"index"`
	Carry    float64  `json:"carry"`
	Offline  float64  `json:"offline"`
	Smash    *float64 `json:"smash,omitempty"`
	HLA      *float64 `json:"hla,omitempty"`
	VLA      *float64 `json:"vla,omitempty"`
	BackSpin *float64 `json:"back_spin,omitempty"`
	SpinLat  *float64 `json:"spin_lat,omitempty"`
}

// DriveBandStats summarizes the good-drive subset of a session.
type DriveBandStats struct {
	N             int     `json:"n"`
	FairwayPct    float64 `json:"fairway_pct"`
	CarryMean     float64 `json:"carry_mean"`
	OfflineStdDev float64 `json:"offline_std_dev"`
	SmashMean     float64 `json:"smash_mean"`
}

// ModelAPayload is the session overview for one player: headline counts
// plus the good-drive scatter the renderer plots with its confidence
// ellipses.
type ModelAPayload struct {
	TotalShots  int               `json:"total_shots"`
	ClubsPlayed int               `json:"clubs_played"`
	Hand        domain.Hand       `json:"hand,omitempty"`
	GoodDrives  []DriverShotPoint `json:"good_drives"`
	Ellipse68   *Ellipse          `json:"ellipse_68,omitempty"`
	Ellipse95   *Ellipse          `json:"ellipse_95,omitempty"`
	DriveStats  DriveBandStats    `json:"drive_stats"`
}

// DriverKPIs is the indicator table over every driver shot of a session.
// GoodCarryMean averages good drives only; every other mean covers all
// drives with the measure present.
type DriverKPIs struct {
	DriveCount       int     `json:"drive_count"`
	GoodDriveCount   int     `json:"good_drive_count"`
	GoodCarryMean    float64 `json:"good_carry_mean"`
	TotalMean        float64 `json:"total_mean"`
	OfflineMean      float64 `json:"offline_mean"`
	OfflineStdDev    float64 `json:"offline_std_dev"`
	FairwayPct       float64 `json:"fairway_pct"`
	ClubSpeedMean    float64 `json:"club_speed_mean"`
	BallSpeedMean    float64 `json:"ball_speed_mean"`
	SmashMean        float64 `json:"smash_mean"`
	HLAMean          float64 `json:"hla_mean"`
	VLAMean          float64 `json:"vla_mean"`
	BackSpinMean     float64 `json:"back_spin_mean"`
	SpinAxisMean     float64 `json:"spin_axis_mean"`
	PeakHeightMean   float64 `json:"peak_height_mean"`
	DescentAngleMean float64 `json:"descent_angle_mean"`
}

// DispersionRead is the trajectory tendency readout of Model B.
type DispersionRead struct {
	N             int      `json:"n"`
	OfflineBias   float64  `json:"offline_bias"`
	FairwayPct    float64  `json:"fairway_pct"`
	SpinAxisMean  *float64 `json:"spin_axis_mean,omitempty"`
	CurveTendency string   `json:"curve_tendency"`
}

// DominantFault names the main miss of a driver session. Nil on the
// payload when fewer than five drives carry an offline measure.
type DominantFault struct {
	SampleSize    int     `json:"sample_size"`
	Bias          float64 `json:"bias"`
	Spread        float64 `json:"spread"`
	Side          string  `json:"side"`
	CurveTendency string  `json:"curve_tendency"`
}

// CourseStrategy is the on-course recommendation block of Model B.
type CourseStrategy struct {
	DispersionLevel string  `json:"dispersion_level"`
	BiasSide        string  `json:"bias_side"`
	AimOffsetMeters float64 `json:"aim_offset_meters"`
}

// ModelBPayload is the driver deep-dive for one player session: KPI
// table, dispersion scatter, dominant fault and course strategy.
type ModelBPayload struct {
	Hand       domain.Hand       `json:"hand,omitempty"`
	Drives     []DriverShotPoint `json:"drives"`
	KPIs       DriverKPIs        `json:"kpis"`
	Dispersion DispersionRead    `json:"dispersion"`
	Ellipse95  *Ellipse          `json:"ellipse_95,omitempty"`
	Fault      *DominantFault    `json:"fault,omitempty"`
	Course     *CourseStrategy   `json:"course,omitempty"`
}

// ClubLine is one row of the per-club table of Model C_ELEVE.
type ClubLine struct {
	Club           string  `json:"club"`
	N              int     `json:"n"`
	CarryMean      float64 `json:"carry_mean"`
	CarryStdDev    float64 `json:"carry_std_dev"`
	OfflineMean    float64 `json:"offline_mean"`
	OfflineAbsMean float64 `json:"offline_abs_mean"`
	SmashMean      float64 `json:"smash_mean"`
}

// ModelCElevePayload is a player's club ladder for the session, longest
// average carry first.
type ModelCElevePayload struct {
	Clubs []ClubLine `json:"clubs"`
}

// GroupPlayerLine is one player's row in a group comparison, computed
// over the player's good drives of the session.
type GroupPlayerLine struct {
	Player         string  `json:"player"`
	N              int     `json:"n"`
	CarryMean      float64 `json:"carry_mean"`
	CarryStdDev    float64 `json:"carry_std_dev"`
	OfflineMean    float64 `json:"offline_mean"`
	OfflineStdDev  float64 `json:"offline_std_dev"`
	OfflineAbsMean float64 `json:"offline_abs_mean"`
	FairwayPct     float64 `json:"fairway_pct"`
	SmashMean      float64 `json:"smash_mean"`
	BackSpinMean   float64 `json:"back_spin_mean"`
	SpinAxisMean   float64 `json:"spin_axis_mean"`
	SpinLatMean    float64 `json:"spin_lat_mean"`
	HLAMean        float64 `json:"hla_mean"`
	VLAMean        float64 `json:"vla_mean"`
	PeakHeightMean float64 `json:"peak_height_mean"`
}

// PlayerScatter is one player's good-drive series in the group
// comparison chart.
type PlayerScatter struct {
	Player    string            `json:"player"`
	Points    []DriverShotPoint `json:"points"`
	Ellipse95 *Ellipse          `json:"ellipse_95,omitempty"`
}

// GroupTakeaways names the standout players of a group session. The
// accuracy rule differs per model: C_GROUPE awards the lowest absolute
// offline mean, D the highest fairway percentage.
type GroupTakeaways struct {
	BestCarry    string `json:"best_carry,omitempty"`
	BestAccuracy string `json:"best_accuracy,omitempty"`
	BestSmash    string `json:"best_smash,omitempty"`
}

// ModelCGroupPayload is the group comparison: per-player lines, the
// per-player scatter series, and the session takeaways.
type ModelCGroupPayload struct {
	Lines     []GroupPlayerLine `json:"lines"`
	Scatter   []PlayerScatter   `json:"scatter"`
	Takeaways GroupTakeaways    `json:"takeaways"`
}

// GroupRanking is one ranking board of Model D, players in descending
// order of the metric.
type GroupRanking struct {
	Metric  string   `json:"metric"`
	Players []string `json:"players"`
}

// Ranking metrics of Model D.
const (
	RankCarry      = "carry"
	RankFairwayPct = "fairway_pct"
	RankSmash      = "smash"
)

// ModelDPayload is the group ranking board.
type ModelDPayload struct {
	Lines    []GroupPlayerLine `json:"lines"`
	Rankings []GroupRanking    `json:"rankings"`
	Leaders  GroupTakeaways    `json:"leaders"`
}

// SessionProgress is one historical session in a player's progression.
type SessionProgress struct {
	Date       time.Time `json:"date"`
	ShotCount  int       `json:"shot_count"`
	CarryMean  float64   `json:"carry_mean"`
	FairwayPct float64   `json:"fairway_pct"`
}

// ModelEPayload is a player's progression across sessions, ascending by
// date, up to and including the assembled session.
type ModelEPayload struct {
	Sessions []SessionProgress `json:"sessions"`
}

// ModelFPayload is the session roll-up: one summary per player present
// on the date.
type ModelFPayload struct {
	Summaries []domain.SessionSummary `json:"summaries"`
}

// ModelGPayload is the pooled group dispersion over every shot of the
// session, all clubs included.
type ModelGPayload struct {
	PlayerCount      int     `json:"player_count"`
	ShotCount        int     `json:"shot_count"`
	CarryMean        float64 `json:"carry_mean"`
	CarryStdDev      float64 `json:"carry_std_dev"`
	OfflineAbsMean   float64 `json:"offline_abs_mean"`
	OfflineAbsStdDev float64 `json:"offline_abs_std_dev"`
}

// ModelHElevePayload pairs the session's gapping result with the
// comparison against the player's previous session.
type ModelHElevePayload struct {
	Gapping    *gapping.Result     `json:"gapping,omitempty"`
	Comparison *gapping.Comparison `json:"comparison,omitempty"`
}

// PlayerGappingStatus is one player's line in the group gapping
// aggregation.
type PlayerGappingStatus struct {
	Player    string              `json:"player"`
	Status    domain.RecordStatus `json:"status"`
	Reason    string              `json:"reason,omitempty"`
	GoodShots int                 `json:"good_shots,omitempty"`
}

// ModelHGroupPayload aggregates the valid per-player gapping results:
// mean and spread across per-player carry means plus the pooled
// absolute offline mean, weighted by good shots.
type ModelHGroupPayload struct {
	PlayerCount    int                   `json:"player_count"`
	CarryMean      float64               `json:"carry_mean"`
	CarryStdDev    float64               `json:"carry_std_dev"`
	OfflineAbsMean float64               `json:"offline_abs_mean"`
	Statuses       []PlayerGappingStatus `json:"statuses"`
}
